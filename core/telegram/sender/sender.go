// Package sender wraps outbound Bot API calls with bounded retries and
// a single outcome log line per call.
package sender

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/m3rciful/shopbot/core/logger"
	"github.com/m3rciful/shopbot/core/telegram/netutil"
)

const component = "tg.sender"

// Options controls retry behaviour of outbound calls.
type Options struct {
	MaxRetries   int
	RetryBackoff time.Duration
	// MaxDuration bounds the time spent retrying a single call.
	MaxDuration time.Duration
}

// Sender executes outbound Telegram calls with bounded retries.
type Sender struct {
	opts Options
	errs atomic.Uint64
}

// New returns a Sender. Zero backoff and duration fall back to 2s and 12s.
func New(opts Options) *Sender {
	opts.MaxRetries = max(opts.MaxRetries, 0)
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = 2 * time.Second
	}
	if opts.MaxDuration <= 0 {
		opts.MaxDuration = 12 * time.Second
	}
	return &Sender{opts: opts}
}

// Do calls run until it succeeds, fails permanently or runs out of attempts.
// Transient network failures wait RetryBackoff times the attempt number.
// run must be idempotent when retries are enabled.
func (s *Sender) Do(ctx context.Context, action, endpoint string, run func() error) error {
	if run == nil {
		return errors.New("telegram sender: nil run function")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	bounded, cancel := context.WithTimeout(ctx, s.opts.MaxDuration)
	defer cancel()

	base := []slog.Attr{slog.String("action", action), slog.String("endpoint", endpoint)}
	start := time.Now()
	attempt, err := s.attempt(bounded, run)
	took := slog.Duration("elapsed", time.Since(start))

	if err == nil {
		logger.Debug(ctx, component, "send.success", append(base, slog.Int("attempts", attempt), took)...)
		return nil
	}
	s.errs.Add(1)
	logger.Error(ctx, component, "send.fail", append(base,
		slog.Int("attempts", attempt),
		slog.String("err", sanitizeErrorMessage(err)),
		slog.String("err_code", classifyError(err)),
		took,
	)...)
	return err
}

func (s *Sender) attempt(ctx context.Context, run func() error) (int, error) {
	last := s.opts.MaxRetries + 1
	for n := 1; ; n++ {
		if err := ctx.Err(); err != nil {
			return n - 1, err
		}
		err := run()
		if err == nil || n == last || !netutil.ShouldRetry(err) {
			return n, err
		}
		wait := time.NewTimer(s.opts.RetryBackoff * time.Duration(n))
		select {
		case <-ctx.Done():
			wait.Stop()
			return n, ctx.Err()
		case <-wait.C:
		}
	}
}

// ErrorCount returns the number of calls that failed after all retries.
func (s *Sender) ErrorCount() uint64 {
	return s.errs.Load()
}
