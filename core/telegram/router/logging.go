package router

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/m3rciful/shopbot/core/logger"
	tghelpers "github.com/m3rciful/shopbot/core/telegram/helpers"
	"github.com/m3rciful/shopbot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// summary times one routed update and logs a handler.handled line for it.
type summary struct {
	c       tele.Context
	handler string
	start   time.Time
	extras  []slog.Attr
}

func begin(c tele.Context, handler string, extras ...slog.Attr) *summary {
	return &summary{c: c, handler: handlerName(handler), start: time.Now(), extras: extras}
}

// run calls h and logs its result.
func (s *summary) run(h tele.HandlerFunc) error {
	tghelpers.WithHandler(s.c, s.handler)
	err := h(s.c)
	s.log(err, "")
	return err
}

// skip logs an update nobody handled.
func (s *summary) skip() {
	s.log(nil, "skip")
}

func (s *summary) log(err error, status string) {
	outcome := "ok"
	if err != nil {
		outcome = "fail"
	}
	if status == "" {
		status = outcome
	}
	msgs, kb := middleware.GetCounters(s.c)
	attrs := append([]slog.Attr{
		slog.String("status", status),
		slog.String("outcome", outcome),
		slog.Int("messages", msgs),
		slog.Bool("kb", kb),
		slog.Duration("duration", time.Since(s.start)),
	}, s.extras...)
	if err != nil {
		attrs = append(attrs,
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
			slog.String("err_code", errorCode(err)),
		)
	}
	ctx := tghelpers.WithHandler(s.c, s.handler)
	logger.LogEvent(ctx, logger.TG, slog.LevelInfo, "handler.handled", attrs...)
}

func handlerName(name string) string {
	name = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), "/"))
	if name == "" {
		return "unknown"
	}
	return strings.ReplaceAll(name, " ", "_")
}

// errorCode names err by its Code method when it has one, else by its type.
func errorCode(err error) string {
	if c, ok := err.(interface{ Code() string }); ok {
		if code := strings.TrimSpace(c.Code()); code != "" {
			return strings.ToUpper(strings.ReplaceAll(code, " ", "_"))
		}
	}
	name := fmt.Sprintf("%T", err)
	return strings.ToUpper(name[strings.LastIndexByte(name, '.')+1:])
}
