package order

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/m3rciful/shopbot/core/logger"
	"github.com/m3rciful/shopbot/shop/cart"
	"github.com/m3rciful/shopbot/shop/checkout"
)

// Stats counts dispatcher outcomes since start.
type Stats struct {
	Dispatched uint64 `json:"dispatched"`
	Failed     uint64 `json:"notify_failed"`
}

// Dispatcher finalizes confirmed checkouts. Calls for one user must be
// serialized by the caller; distinct users may finalize concurrently.
type Dispatcher struct {
	sessions checkout.Store
	carts    *cart.Service
	sink     Sink
	now      func() time.Time

	// notifyTimeout bounds one sink delivery.
	notifyTimeout time.Duration

	dispatched atomic.Uint64
	failed     atomic.Uint64
}

// NewDispatcher wires the stores a finalize reads and clears. sink may be nil.
func NewDispatcher(sessions checkout.Store, carts *cart.Service, sink Sink) *Dispatcher {
	return &Dispatcher{
		sessions:      sessions,
		carts:         carts,
		sink:          sink,
		now:           time.Now,
		notifyTimeout: DefaultNotifyTimeout,
	}
}

// DefaultNotifyTimeout is how long Finalize waits for the sink.
const DefaultNotifyTimeout = 15 * time.Second

// Finalize builds the order for a user at the confirmation step, notifies the
// operator best effort, then clears the cart and resets the conversation.
//
// It returns checkout.ErrInvalidState when the user is not awaiting
// confirmation, and checkout.ErrEmptyCart (after resetting the conversation)
// when the cart was emptied before confirming. Storage errors are returned
// with the conversation left as it was.
func (d *Dispatcher) Finalize(ctx context.Context, userID int64) (Order, error) {
	sess, err := d.sessions.Load(ctx, userID)
	if err != nil {
		return Order{}, err
	}
	next, _, err := checkout.Next(sess, checkout.Confirm{})
	if err != nil {
		return Order{}, err
	}

	items, err := d.carts.Items(ctx, userID)
	if err != nil {
		return Order{}, err
	}
	if len(items) == 0 {
		if err := d.sessions.Save(ctx, userID, next); err != nil {
			return Order{}, err
		}
		return Order{}, checkout.ErrEmptyCart
	}

	o := Build(userID, sess.Draft, items, d.now())
	ctx = logger.WithOrderID(ctx, o.ID)
	d.deliverBestEffort(ctx, o)

	if err := d.carts.Clear(ctx, userID); err != nil {
		return Order{}, err
	}
	if err := d.sessions.Save(ctx, userID, next); err != nil {
		return Order{}, err
	}
	logger.Info(ctx, "service.orders", "order.finalized",
		slog.Int64("user_id", userID),
		slog.Int("lines", len(o.Lines)),
		slog.String("total", o.Total.String()),
	)
	return o, nil
}

// deliverBestEffort hands the order to the sink. Failures are logged and
// counted, never returned: the user-facing flow completes regardless.
func (d *Dispatcher) deliverBestEffort(ctx context.Context, o Order) {
	if d.sink == nil {
		d.dispatched.Add(1)
		return
	}
	ctx, cancel := context.WithTimeout(ctx, d.notifyTimeout)
	defer cancel()

	start := time.Now()
	if err := d.sink.Deliver(ctx, o); err != nil {
		d.failed.Add(1)
		logger.Error(ctx, "service.orders", "order.notify.fail",
			slog.Int64("user_id", o.UserID),
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
			slog.Int64("elapsed_ms", time.Since(start).Milliseconds()),
		)
		return
	}
	d.dispatched.Add(1)
	logger.Debug(ctx, "service.orders", "order.notify",
		slog.Int64("user_id", o.UserID),
		slog.Int64("elapsed_ms", time.Since(start).Milliseconds()),
	)
}

// Stats returns dispatch counters.
func (d *Dispatcher) Stats() Stats {
	return Stats{Dispatched: d.dispatched.Load(), Failed: d.failed.Load()}
}
