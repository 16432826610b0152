package logger

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"
)

const tsLayout = "2006-01-02T15:04:05.000Z07:00"

type handlerOptions struct {
	level  slog.Leveler
	out    *output
	format logFormat
	rank   map[string]int
}

// lineHandler is a slog.Handler that writes one flat line per record.
// Groups become dotted key prefixes and context metadata fills missing keys.
type lineHandler struct {
	opts   *handlerOptions
	preset []field
	prefix string
}

func newLineHandler(opts *handlerOptions) *lineHandler {
	if opts.level == nil {
		opts.level = slog.LevelInfo
	}
	if opts.rank == nil {
		opts.rank = rankOf(defaultKeyOrder)
	}
	return &lineHandler{opts: opts}
}

func (h *lineHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.level.Level()
}

func (h *lineHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.opts.out == nil {
		return fmt.Errorf("logger: output not initialized")
	}
	rec := newRecord(16 + len(h.preset))
	ts := r.Time.UTC()
	rec.set("ts", ts.Truncate(time.Millisecond).Format(tsLayout))
	rec.set("level", levelName(r.Level))
	if h.opts.format == formatJSON {
		rec.set("ts_unix_nano", ts.UnixNano())
	}
	for _, f := range h.preset {
		rec.set(f.key, f.val)
	}
	r.Attrs(func(a slog.Attr) bool {
		flatten(h.prefix, a, rec.set)
		return true
	})
	metaFrom(ctx).fill(rec)

	if rid, ok := rec.str("rid"); ok {
		if short := CompactRID(rid); short != rid {
			if h.opts.format == formatJSON {
				rec.setDefault("rid_full", rid)
			}
			rec.set("rid", short)
		}
	}
	if _, ok := rec.str("event"); !ok {
		rec.set("event", cmpOr(r.Message, "unknown"))
	}
	if _, ok := rec.str("component"); !ok {
		rec.set("component", "app")
	}
	normalizeEnums(rec)
	rec.prune()

	line, err := rec.encode(h.opts.format, h.opts.rank)
	if err != nil {
		return err
	}
	return h.opts.out.write(line)
}

func (h *lineHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.preset = append([]field(nil), h.preset...)
	for _, a := range attrs {
		flatten(h.prefix, a, func(k string, v any) {
			clone.preset = append(clone.preset, field{k, v})
		})
	}
	return &clone
}

func (h *lineHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.prefix = joinKey(h.prefix, name)
	return &clone
}

func joinKey(prefix, key string) string {
	switch {
	case prefix == "":
		return key
	case key == "":
		return prefix
	}
	return prefix + "." + key
}

func flatten(prefix string, a slog.Attr, emit func(string, any)) {
	v := a.Value.Resolve()
	key := joinKey(prefix, a.Key)
	if v.Kind() == slog.KindGroup {
		for _, child := range v.Group() {
			flatten(key, child, emit)
		}
		return
	}
	if key == "" {
		return
	}
	if k, val, ok := plain(key, v); ok {
		emit(k, val)
	}
}

// plain converts a slog value into something both encoders print well.
// Durations are rewritten to integer milliseconds under a *_ms key.
func plain(key string, v slog.Value) (string, any, bool) {
	switch v.Kind() {
	case slog.KindString:
		return key, strings.TrimSpace(v.String()), true
	case slog.KindBool:
		return key, v.Bool(), true
	case slog.KindInt64:
		return key, v.Int64(), true
	case slog.KindUint64:
		if u := v.Uint64(); u <= math.MaxInt64 {
			return key, int64(u), true
		}
		return key, v.Uint64(), true
	case slog.KindFloat64:
		return key, v.Float64(), true
	case slog.KindDuration:
		return msKey(key), RoundMS(v.Duration()).Milliseconds(), true
	case slog.KindTime:
		return key, v.Time().UTC().Format(time.RFC3339Nano), true
	}
	switch x := v.Any().(type) {
	case nil:
		return key, nil, false
	case error:
		return key, x.Error(), true
	case string:
		return key, strings.TrimSpace(x), true
	case time.Duration:
		return msKey(key), RoundMS(x).Milliseconds(), true
	case fmt.Stringer:
		return key, x.String(), true
	default:
		return key, fmt.Sprint(x), true
	}
}

func msKey(key string) string {
	if strings.HasSuffix(key, "_ms") {
		return key
	}
	return key + "_ms"
}

func cmpOr(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
