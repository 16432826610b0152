package logger

import (
	"context"
	"log/slog"
)

type metaKey struct{}

// meta is the per-update correlation data carried in a context. It is
// stored by value, so every With* call produces a new copy.
type meta struct {
	log      *slog.Logger
	rid      string
	handler  string
	orderID  string
	updateID int
	userID   int64
	chatID   int64
}

func metaFrom(ctx context.Context) meta {
	if ctx == nil {
		return meta{}
	}
	m, _ := ctx.Value(metaKey{}).(meta)
	return m
}

func withMeta(ctx context.Context, edit func(*meta)) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	m := metaFrom(ctx)
	edit(&m)
	return context.WithValue(ctx, metaKey{}, m)
}

func (m meta) fill(r *record) {
	if m.rid != "" {
		r.setDefault("rid", m.rid)
	}
	if m.orderID != "" {
		r.setDefault("order_id", m.orderID)
	}
	if m.userID != 0 {
		r.setDefault("user_id", m.userID)
	}
	if m.updateID != 0 {
		r.setDefault("update_id", int64(m.updateID))
	}
	if m.chatID != 0 {
		r.setDefault("chat_id", m.chatID)
	}
	if m.handler != "" {
		r.setDefault("handler", m.handler)
	}
}

// WithLogger stores log in ctx for FromContext.
func WithLogger(ctx context.Context, log *slog.Logger) context.Context {
	if log == nil {
		return ctx
	}
	return withMeta(ctx, func(m *meta) { m.log = log })
}

// FromContext returns the logger stored in ctx, or L.
func FromContext(ctx context.Context) *slog.Logger {
	if l := metaFrom(ctx).log; l != nil {
		return l
	}
	return L
}

// WithRID attaches the update correlation id.
func WithRID(ctx context.Context, rid string) context.Context {
	return withMeta(ctx, func(m *meta) { m.rid = rid })
}

// WithUpdateMeta attaches the Telegram update, user and chat ids.
func WithUpdateMeta(ctx context.Context, updateID int, userID, chatID int64) context.Context {
	return withMeta(ctx, func(m *meta) {
		m.updateID, m.userID, m.chatID = updateID, userID, chatID
	})
}

// WithHandler names the handler serving the update.
func WithHandler(ctx context.Context, handler string) context.Context {
	if handler == "" {
		return ctx
	}
	return withMeta(ctx, func(m *meta) { m.handler = handler })
}

// WithOrderID tags ctx with an order reference so delivery logs can be correlated.
func WithOrderID(ctx context.Context, orderID string) context.Context {
	if orderID == "" {
		return ctx
	}
	return withMeta(ctx, func(m *meta) { m.orderID = orderID })
}
