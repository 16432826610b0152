package logger

import (
	"context"
	"log/slog"
	"runtime"
	"strings"
	"sync"

	"github.com/m3rciful/shopbot/core/buildinfo"
	coreconfig "github.com/m3rciful/shopbot/core/config"
)

var (
	initOnce sync.Once
	closeMu  sync.Mutex
	out      *output

	levelVar slog.LevelVar
	sampling = &sampler{}
	trace    bool

	// L is the base logger; prefer Component or FromContext in new code.
	L *slog.Logger

	// DB logs database connection events.
	DB *slog.Logger
	// TG logs Telegram transport events.
	TG *slog.Logger
	// MIG logs database migration events.
	MIG *slog.Logger
	// TWire logs Telegram wiring steps.
	TWire *slog.Logger
	// SEED logs catalog seeding.
	SEED *slog.Logger
	// SVCCatalog logs catalog store activity.
	SVCCatalog *slog.Logger
	// SVCCart logs cart store activity.
	SVCCart *slog.Logger
	// SVCCheckout logs conversation state transitions.
	SVCCheckout *slog.Logger
	// SVCOrders logs order dispatch and notification delivery.
	SVCOrders *slog.Logger
	// HTTP logs the operational HTTP server.
	HTTP *slog.Logger
)

// Component loggers fall back to slog.Default until InitLogger runs, so
// packages and tests can log without bootstrapping.
func init() {
	L = slog.Default()
	bindComponents()
}

// InitLogger installs the structured handler as the process-wide logger.
// Only the first call has an effect.
func InitLogger(cfg *coreconfig.Config) error {
	var err error
	initOnce.Do(func() {
		s := settingsFrom(cfg)
		levelVar.Set(s.level)
		sampling.set(s.sampleKeep, s.sampleWindow)
		trace = s.trace

		o, openErr := openOutput(s.filePath)
		if openErr != nil {
			err = openErr
			return
		}
		out = o

		L = slog.New(newLineHandler(&handlerOptions{
			level:  &levelVar,
			out:    o,
			format: s.format,
			rank:   rankOf(s.order),
		}))
		slog.SetDefault(L)
		bindComponents()

		L.LogAttrs(context.Background(), slog.LevelInfo, "startup",
			slog.String("component", "app"),
			slog.String("go_version", runtime.Version()),
			slog.String("build_version", buildinfo.Version),
			slog.String("build_commit", buildinfo.Commit),
			slog.String("build_time", buildinfo.Date),
			slog.String("cfg_profile", s.profile),
		)
	})
	return err
}

func bindComponents() {
	DB = L.With("component", "db")
	TG = L.With("component", "tg")
	MIG = L.With("component", "db.migrate")
	TWire = L.With("component", "tg.wire")
	SEED = L.With("component", "db.seed")
	SVCCatalog = L.With("component", "service.catalog")
	SVCCart = L.With("component", "service.cart")
	SVCCheckout = L.With("component", "service.checkout")
	SVCOrders = L.With("component", "service.orders")
	HTTP = L.With("component", "http")
}

// Shutdown closes the log file opened by InitLogger. Calling it more than once is safe.
func Shutdown() error {
	closeMu.Lock()
	defer closeMu.Unlock()
	if out == nil {
		return nil
	}
	err := out.close()
	out = nil
	return err
}

// Component returns the base logger tagged with the given component.
func Component(name string) *slog.Logger {
	name = strings.TrimSpace(name)
	if name == "" {
		return L
	}
	return L.With("component", name)
}

// LogEvent writes an event through logg, falling back to the logger stored in ctx.
func LogEvent(ctx context.Context, logg *slog.Logger, level slog.Level, event string, attrs ...slog.Attr) {
	if logg == nil {
		logg = FromContext(ctx)
	}
	if event != "" {
		attrs = append([]slog.Attr{slog.String("event", event)}, attrs...)
	}
	logg.LogAttrs(ctx, level, "", attrs...)
}

// Debug logs a debug-level event for the given component.
func Debug(ctx context.Context, component, event string, attrs ...slog.Attr) {
	LogEvent(ctx, Component(component), slog.LevelDebug, event, attrs...)
}

// Info logs an info-level event for the given component.
func Info(ctx context.Context, component, event string, attrs ...slog.Attr) {
	LogEvent(ctx, Component(component), slog.LevelInfo, event, attrs...)
}

// Warn logs a warn-level event for the given component.
func Warn(ctx context.Context, component, event string, attrs ...slog.Attr) {
	LogEvent(ctx, Component(component), slog.LevelWarn, event, attrs...)
}

// Error logs an error-level event for the given component.
func Error(ctx context.Context, component, event string, attrs ...slog.Attr) {
	LogEvent(ctx, Component(component), slog.LevelError, event, attrs...)
}

// ShouldSampleDebug reports whether a high-volume debug event should be logged.
// TRACE=1 disables sampling.
func ShouldSampleDebug() bool {
	return trace || sampling.allow()
}
