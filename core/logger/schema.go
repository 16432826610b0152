package logger

import (
	"log/slog"
	"strings"
)

// Recognised values for the status and outcome fields. Unknown statuses are
// kept verbatim, unknown outcomes are dropped.
var (
	statuses = set("ok", "fail", "skip", "retry", "rate_limited", "cancelled")
	outcomes = set("ok", "fail", "ignored", "cancelled", "rate_limited")
)

func set(vals ...string) map[string]bool {
	m := make(map[string]bool, len(vals))
	for _, v := range vals {
		m[v] = true
	}
	return m
}

func levelName(l slog.Level) string {
	switch {
	case l < slog.LevelInfo:
		return "DEBUG"
	case l < slog.LevelWarn:
		return "INFO"
	case l < slog.LevelError:
		return "WARN"
	}
	return "ERROR"
}

func normalizeEnums(r *record) {
	if s, ok := r.str("status"); ok {
		if low := strings.ToLower(s); statuses[low] {
			r.set("status", low)
		}
	}
	if o, ok := r.str("outcome"); ok {
		if low := strings.ToLower(o); outcomes[low] {
			r.set("outcome", low)
		} else {
			r.del("outcome")
		}
	}
}

// defaultKeyOrder lists the keys printed first, in this order. Other keys
// follow alphabetically.
var defaultKeyOrder = []string{
	"ts", "level", "component", "event", "status",
	"rid", "rid_full", "ts_unix_nano",
	"update_id", "user_id", "chat_id", "chat_type",
	"handler", "cb_key", "outcome", "duration_ms", "messages", "kb",
	"state", "from_state", "to_state",
	"order_id", "product_id", "quantity", "lines", "total", "sink", "count", "payload",
	"lang", "username",
	"mode", "listen", "public_url",
	"backend", "db", "host", "port",
	"method", "path", "http_code",
	"err", "err_code", "cause", "attempts", "elapsed_ms",
}

func rankOf(order []string) map[string]int {
	rank := make(map[string]int, len(order))
	for i, k := range order {
		if _, dup := rank[k]; !dup {
			rank[k] = i
		}
	}
	return rank
}
