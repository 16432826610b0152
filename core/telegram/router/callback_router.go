package router

import (
	"log/slog"

	tg "github.com/m3rciful/shopbot/core/telegram"
	"github.com/m3rciful/shopbot/core/telegram/callbacks"

	tele "gopkg.in/telebot.v4"
)

// CallbackOptions customises fallback behaviour for callbacks.
type CallbackOptions struct {
	// NotFound is used when the registry has no not-found handler.
	NotFound tele.HandlerFunc
}

// CallbackRoute returns a handler that routes callbacks through the registry
// by the data key with any numeric argument stripped. Handlers answer the
// callback themselves so they can attach a notice.
func CallbackRoute(reg *tg.Registry, opts CallbackOptions) tg.Route {
	handler := func(c tele.Context) error {
		if c.Callback() == nil {
			return nil
		}
		key := callbacks.Key(c)
		s := begin(c, "callback."+key, slog.String("cb_key", key))

		if h, ok := reg.Callback(key); ok {
			return s.run(h)
		}
		s.extras = append(s.extras, slog.String("cause", "not_found"))
		fallback := reg.CallbackNotFound()
		if fallback == nil {
			fallback = opts.NotFound
		}
		if fallback == nil {
			return s.run(func(c tele.Context) error { return c.Respond() })
		}
		return s.run(fallback)
	}
	return tg.Route{Endpoint: tele.OnCallback, Handler: handler}
}
