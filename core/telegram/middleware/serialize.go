package middleware

import (
	"context"
	"errors"
	"log/slog"

	"github.com/m3rciful/shopbot/core/logger"
	"github.com/m3rciful/shopbot/core/serial"

	tele "gopkg.in/telebot.v4"
)

// SerializeMiddleware queues each update on its sender's lane and returns at once.
// Updates from one user run in arrival order; different users run in parallel.
// It expects the bot to dispatch updates synchronously so that arrival order
// is the submission order. Handler errors are passed to onError.
func SerializeMiddleware(lanes *serial.Lanes, onError func(error, tele.Context)) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			user := c.Sender()
			if lanes == nil || user == nil {
				return next(c)
			}
			err := lanes.Submit(user.ID, func(context.Context) {
				if err := next(c); err != nil && onError != nil {
					onError(err, c)
				}
			})
			if errors.Is(err, serial.ErrClosed) {
				logger.TG.Warn("update dropped",
					slog.String("event", "tg.serialize.closed"),
					slog.Int64("user_id", user.ID),
					slog.Int("update_id", c.Update().ID),
				)
				return nil
			}
			return err
		}
	}
}
