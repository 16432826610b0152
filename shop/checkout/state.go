// Package checkout models the per-user checkout dialogue as a closed set of
// states and a pure transition function over them.
package checkout

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidState is returned when an event arrives outside the state that accepts it.
	ErrInvalidState = errors.New("checkout: event not valid in current state")
	// ErrEmptyCart is returned when checkout is requested with nothing in the cart.
	ErrEmptyCart = errors.New("checkout: cart is empty")
	// ErrBlankInput is returned when a dialogue answer is empty after trimming.
	ErrBlankInput = errors.New("checkout: blank input")
)

// State is one step of the checkout dialogue.
type State uint8

// Dialogue steps. Idle is both the initial and the resting state.
const (
	Idle State = iota
	AwaitingName
	AwaitingPhone
	AwaitingAddress
	AwaitingConfirmation
)

var stateNames = [...]string{
	Idle:                 "idle",
	AwaitingName:         "awaiting_name",
	AwaitingPhone:        "awaiting_phone",
	AwaitingAddress:      "awaiting_address",
	AwaitingConfirmation: "awaiting_confirmation",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", uint8(s))
}

// ParseState is the inverse of State.String. An empty string is Idle.
func ParseState(v string) (State, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return Idle, nil
	}
	for i, name := range stateNames {
		if name == v {
			return State(i), nil
		}
	}
	return Idle, fmt.Errorf("checkout: unknown state %q", v)
}

// AcceptsText reports whether free text is consumed as a dialogue answer.
func (s State) AcceptsText() bool {
	switch s {
	case AwaitingName, AwaitingPhone, AwaitingAddress:
		return true
	}
	return false
}

// Draft holds the order fields collected so far.
type Draft struct {
	Name    string
	Phone   string
	Address string
}

// Session is a user's position in the dialogue plus the draft collected so far.
// The zero value is an idle session.
type Session struct {
	State State
	Draft Draft
}

// Active reports whether a checkout is in progress.
func (s Session) Active() bool { return s.State != Idle }
