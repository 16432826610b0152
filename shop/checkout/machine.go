package checkout

import (
	"fmt"
	"strings"
)

// Event is an input to the dialogue. The set is closed: only this package implements it.
type Event interface{ event() }

// Begin is a checkout request; CartEmpty reflects the cart at request time.
type Begin struct{ CartEmpty bool }

// Input is free text typed by the user.
type Input struct{ Text string }

// Confirm is the confirm button on the order review.
type Confirm struct{}

// Cancel is the cancel button on the order review.
type Cancel struct{}

// Abort is the /cancel command, valid at any step of an active checkout.
type Abort struct{}

func (Begin) event()   {}
func (Input) event()   {}
func (Confirm) event() {}
func (Cancel) event()  {}
func (Abort) event()   {}

// Effect tells the caller what to do after a successful transition.
type Effect uint8

const (
	EffectNone Effect = iota
	EffectAskName
	EffectAskPhone
	EffectAskAddress
	// EffectReview asks the caller to render the order summary with confirm/cancel buttons.
	EffectReview
	// EffectFinalize asks the caller to dispatch the order built from the previous draft.
	EffectFinalize
	EffectCancelled
)

var effectNames = [...]string{
	EffectNone:       "none",
	EffectAskName:    "ask_name",
	EffectAskPhone:   "ask_phone",
	EffectAskAddress: "ask_address",
	EffectReview:     "review",
	EffectFinalize:   "finalize",
	EffectCancelled:  "cancelled",
}

func (e Effect) String() string {
	if int(e) < len(effectNames) {
		return effectNames[e]
	}
	return fmt.Sprintf("effect(%d)", uint8(e))
}

// Next applies ev to s. On error the returned session equals s, so callers
// can persist the result unconditionally.
func Next(s Session, ev Event) (Session, Effect, error) {
	switch e := ev.(type) {
	case Begin:
		if e.CartEmpty {
			return s, EffectNone, ErrEmptyCart
		}
		// A request mid-dialogue restarts it with a fresh draft.
		return Session{State: AwaitingName}, EffectAskName, nil

	case Input:
		if !s.State.AcceptsText() {
			return s, EffectNone, fmt.Errorf("%w: text in %s", ErrInvalidState, s.State)
		}
		text := strings.TrimSpace(e.Text)
		if text == "" {
			return s, EffectNone, ErrBlankInput
		}
		next := s
		switch s.State {
		case AwaitingName:
			next.Draft.Name = text
			next.State = AwaitingPhone
			return next, EffectAskPhone, nil
		case AwaitingPhone:
			next.Draft.Phone = text
			next.State = AwaitingAddress
			return next, EffectAskAddress, nil
		case AwaitingAddress:
			next.Draft.Address = text
			next.State = AwaitingConfirmation
			return next, EffectReview, nil
		}

	case Confirm:
		if s.State != AwaitingConfirmation {
			return s, EffectNone, fmt.Errorf("%w: confirm in %s", ErrInvalidState, s.State)
		}
		return Session{}, EffectFinalize, nil

	case Cancel:
		if s.State != AwaitingConfirmation {
			return s, EffectNone, fmt.Errorf("%w: cancel in %s", ErrInvalidState, s.State)
		}
		return Session{}, EffectCancelled, nil

	case Abort:
		if !s.Active() {
			return s, EffectNone, fmt.Errorf("%w: abort in %s", ErrInvalidState, s.State)
		}
		return Session{}, EffectCancelled, nil
	}
	return s, EffectNone, fmt.Errorf("%w: unsupported event %T in %s", ErrInvalidState, ev, s.State)
}
