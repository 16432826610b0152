// Package storefront routes shop events (commands, button tokens, free text)
// to the catalog, cart, checkout and order services and describes the replies.
// It knows nothing about the messaging transport.
package storefront

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/m3rciful/shopbot/core/logger"
	"github.com/m3rciful/shopbot/core/serial"
	"github.com/m3rciful/shopbot/shop/cart"
	"github.com/m3rciful/shopbot/shop/catalog"
	"github.com/m3rciful/shopbot/shop/checkout"
	"github.com/m3rciful/shopbot/shop/order"
)

// Options tune presentation.
type Options struct {
	// Currency is appended to every price; empty prints bare amounts.
	Currency string
}

// Storefront is safe for concurrent use. Every operation that reads or writes
// a user's cart or checkout runs under that user's lock, so events for one
// user never interleave while different users proceed in parallel.
type Storefront struct {
	catalog  catalog.Store
	carts    *cart.Service
	sessions checkout.Store
	orders   *order.Dispatcher
	locks    *serial.KeyedMutex
	currency string
}

// New wires a Storefront. All dependencies are required.
func New(products catalog.Store, carts *cart.Service, sessions checkout.Store, orders *order.Dispatcher, opts Options) *Storefront {
	return &Storefront{
		catalog:  products,
		carts:    carts,
		sessions: sessions,
		orders:   orders,
		locks:    serial.NewKeyedMutex(),
		currency: opts.Currency,
	}
}

func (s *Storefront) lock(userID int64) func() {
	return s.locks.Lock(userID)
}

// Start greets the user and shows the main menu.
func (s *Storefront) Start(context.Context, int64) (Response, error) {
	return sayWith(msgWelcome, mainMenu()), nil
}

// Help lists the available commands.
func (s *Storefront) Help(context.Context, int64) (Response, error) {
	return say(msgHelp), nil
}

// ShowCatalog lists products as buttons. With replace set it edits the
// message the button was pressed on.
func (s *Storefront) ShowCatalog(ctx context.Context, _ int64, replace bool) (Response, error) {
	products, err := s.catalog.List(ctx)
	if err != nil {
		return Response{}, err
	}
	if len(products) == 0 {
		if replace {
			return edit(msgCatalogEmpty, nil), nil
		}
		return say(msgCatalogEmpty), nil
	}
	if replace {
		return edit(msgChooseProduct, s.catalogKeyboard(products)), nil
	}
	return sayWith(msgChooseProduct, s.catalogKeyboard(products)), nil
}

// ShowProduct sends the product card.
func (s *Storefront) ShowProduct(ctx context.Context, _ int64, productID int64) (Response, error) {
	p, err := s.catalog.Get(ctx, productID)
	if errors.Is(err, catalog.ErrNotFound) {
		return say(msgNotFound), nil
	}
	if err != nil {
		return Response{}, err
	}
	return Response{Replies: []Reply{s.productCard(p)}}, nil
}

// AddToCart adds one unit of productID.
func (s *Storefront) AddToCart(ctx context.Context, userID, productID int64) (Response, error) {
	defer s.lock(userID)()
	err := s.carts.AddItem(ctx, userID, productID, 1)
	if errors.Is(err, cart.ErrInvalidReference) {
		return notice(msgNotFound), nil
	}
	if err != nil {
		return Response{}, err
	}
	return notice(msgAdded), nil
}

// ShowCart lists the cart with per-line remove buttons.
func (s *Storefront) ShowCart(ctx context.Context, userID int64) (Response, error) {
	defer s.lock(userID)()
	items, err := s.carts.Items(ctx, userID)
	if err != nil {
		return Response{}, err
	}
	if len(items) == 0 {
		return say(msgCartEmpty), nil
	}
	return sayWith(s.cartText(items), cartKeyboard(items)), nil
}

// RemoveFromCart deletes the line for productID and re-renders the cart in place.
func (s *Storefront) RemoveFromCart(ctx context.Context, userID, productID int64) (Response, error) {
	defer s.lock(userID)()
	if err := s.carts.RemoveItem(ctx, userID, productID); err != nil {
		return Response{}, err
	}
	items, err := s.carts.Items(ctx, userID)
	if err != nil {
		return Response{}, err
	}
	if len(items) == 0 {
		return edit(msgCartEmpty, nil), nil
	}
	resp := edit(s.cartText(items), cartKeyboard(items))
	resp.Notice = msgRemoved
	return resp, nil
}

// ClearCart empties the cart.
func (s *Storefront) ClearCart(ctx context.Context, userID int64) (Response, error) {
	defer s.lock(userID)()
	if err := s.carts.Clear(ctx, userID); err != nil {
		return Response{}, err
	}
	return edit(msgCartCleared, nil), nil
}

// BackToMain shows the main menu again.
func (s *Storefront) BackToMain(context.Context, int64) (Response, error) {
	return sayWith(msgChooseAction, mainMenu()), nil
}

// StartCheckout begins the dialogue when the cart has items. A request made
// mid-dialogue starts over with an empty draft.
func (s *Storefront) StartCheckout(ctx context.Context, userID int64) (Response, error) {
	defer s.lock(userID)()
	items, err := s.carts.Items(ctx, userID)
	if err != nil {
		return Response{}, err
	}
	sess, err := s.sessions.Load(ctx, userID)
	if err != nil {
		return Response{}, err
	}
	next, eff, err := checkout.Next(sess, checkout.Begin{CartEmpty: len(items) == 0})
	if errors.Is(err, checkout.ErrEmptyCart) {
		return edit(msgCannotCheckout, nil), nil
	}
	if err != nil {
		return Response{}, err
	}
	if err := s.commit(ctx, userID, sess, next, eff); err != nil {
		return Response{}, err
	}
	return say(msgAskName), nil
}

// SubmitText feeds free text into an active dialogue step. consumed is false
// when the user is not at a step that takes text, so the caller can route the
// text elsewhere.
func (s *Storefront) SubmitText(ctx context.Context, userID int64, text string) (resp Response, consumed bool, err error) {
	defer s.lock(userID)()
	sess, err := s.sessions.Load(ctx, userID)
	if err != nil {
		return Response{}, false, err
	}
	if !sess.State.AcceptsText() {
		return Response{}, false, nil
	}

	next, eff, err := checkout.Next(sess, checkout.Input{Text: text})
	if errors.Is(err, checkout.ErrBlankInput) {
		return say(msgBlank + " " + prompt(sess.State)), true, nil
	}
	if err != nil {
		return Response{}, true, err
	}

	var reply Response
	switch eff {
	case checkout.EffectAskPhone:
		reply = say(msgAskPhone)
	case checkout.EffectAskAddress:
		reply = say(msgAskAddress)
	case checkout.EffectReview:
		items, err := s.carts.Items(ctx, userID)
		if err != nil {
			return Response{}, true, err
		}
		reply = sayWith(s.reviewText(next.Draft, items), confirmKeyboard())
	default:
		return Response{}, true, fmt.Errorf("storefront: unexpected effect %s after text", eff)
	}
	if err := s.commit(ctx, userID, sess, next, eff); err != nil {
		return Response{}, true, err
	}
	return reply, true, nil
}

// Confirm finalizes the order. Stale or repeated confirm presses get a
// neutral notice and change nothing.
func (s *Storefront) Confirm(ctx context.Context, userID int64) (Response, error) {
	defer s.lock(userID)()
	o, err := s.orders.Finalize(ctx, userID)
	switch {
	case errors.Is(err, checkout.ErrInvalidState):
		logger.Debug(ctx, "service.checkout", "checkout.ignored",
			slog.Int64("user_id", userID),
			slog.String("reason", err.Error()),
		)
		return notice(msgNothingToDo), nil
	case errors.Is(err, checkout.ErrEmptyCart):
		return edit(msgOrderEmpty, nil), nil
	case err != nil:
		return Response{}, err
	}
	logger.Info(logger.WithOrderID(ctx, o.ID), "service.checkout", "checkout.transition",
		slog.Int64("user_id", userID),
		slog.String("from_state", checkout.AwaitingConfirmation.String()),
		slog.String("to_state", checkout.Idle.String()),
	)
	return edit(msgThanks, nil), nil
}

// CancelOrder handles the cancel button on the order review.
func (s *Storefront) CancelOrder(ctx context.Context, userID int64) (Response, error) {
	defer s.lock(userID)()
	return s.cancel(ctx, userID, checkout.Cancel{}, true)
}

// Abort handles the /cancel command at any dialogue step.
func (s *Storefront) Abort(ctx context.Context, userID int64) (Response, error) {
	defer s.lock(userID)()
	return s.cancel(ctx, userID, checkout.Abort{}, false)
}

func (s *Storefront) cancel(ctx context.Context, userID int64, ev checkout.Event, button bool) (Response, error) {
	sess, err := s.sessions.Load(ctx, userID)
	if err != nil {
		return Response{}, err
	}
	next, eff, err := checkout.Next(sess, ev)
	if errors.Is(err, checkout.ErrInvalidState) {
		if button {
			return notice(msgNothingToDo), nil
		}
		return say(msgNoCheckout), nil
	}
	if err != nil {
		return Response{}, err
	}
	if err := s.commit(ctx, userID, sess, next, eff); err != nil {
		return Response{}, err
	}
	if button {
		return edit(msgCancelled, nil), nil
	}
	return say(msgCancelled), nil
}

// Unknown answers text that matched nothing.
func (s *Storefront) Unknown(context.Context, int64) (Response, error) {
	return sayWith(msgUnknown, mainMenu()), nil
}

// Stats summarises catalog size and order counters for the operator.
func (s *Storefront) Stats(ctx context.Context, _ int64) (Response, error) {
	products, err := s.catalog.List(ctx)
	if err != nil {
		return Response{}, err
	}
	st := s.orders.Stats()
	return say(fmt.Sprintf("Products: %d\nOrders dispatched: %d\nNotification failures: %d",
		len(products), st.Dispatched, st.Failed)), nil
}

// HandleCallback dispatches a button token.
func (s *Storefront) HandleCallback(ctx context.Context, userID int64, data string) (Response, error) {
	tok := ParseToken(data)
	if tok.HasArg {
		switch tok.Action {
		case ActionView:
			return s.ShowProduct(ctx, userID, tok.Arg)
		case ActionAdd:
			return s.AddToCart(ctx, userID, tok.Arg)
		case ActionRemove:
			return s.RemoveFromCart(ctx, userID, tok.Arg)
		}
		return notice(msgUnsupported), nil
	}
	switch tok.Action {
	case TokenCatalog:
		return s.ShowCatalog(ctx, userID, true)
	case TokenClearCart:
		return s.ClearCart(ctx, userID)
	case TokenBackToMain:
		return s.BackToMain(ctx, userID)
	case TokenCheckout:
		return s.StartCheckout(ctx, userID)
	case TokenConfirm:
		return s.Confirm(ctx, userID)
	case TokenCancel:
		return s.CancelOrder(ctx, userID)
	}
	return notice(msgUnsupported), nil
}

// commit persists a transition and logs it.
func (s *Storefront) commit(ctx context.Context, userID int64, from, to checkout.Session, eff checkout.Effect) error {
	if err := s.sessions.Save(ctx, userID, to); err != nil {
		return err
	}
	logger.Info(ctx, "service.checkout", "checkout.transition",
		slog.Int64("user_id", userID),
		slog.String("from_state", from.State.String()),
		slog.String("to_state", to.State.String()),
		slog.String("effect", eff.String()),
	)
	return nil
}

func prompt(st checkout.State) string {
	switch st {
	case checkout.AwaitingName:
		return msgAskName
	case checkout.AwaitingPhone:
		return msgAskPhone
	case checkout.AwaitingAddress:
		return msgAskAddress
	}
	return ""
}
