// Package client is a Go client for the famfund API. It keeps the login
// session as an explicit state machine and attaches the session token to
// every call.
package client

import (
	"errors"
	"fmt"
	"time"

	"github.com/mmynk/famfund/pkg/api"
)

// ErrInvalidTransition is returned when an event does not apply to the current state.
var ErrInvalidTransition = errors.New("invalid session transition")

// Status is the tag of a session State.
type Status int

const (
	Unauthenticated Status = iota
	Authenticating
	Authenticated
)

func (s Status) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// State is a session snapshot. User, Token and ExpiresAt are set only when
// Authenticated; Err holds the reason of the last failed login.
type State struct {
	Status    Status
	User      *api.User
	Token     string
	ExpiresAt time.Time
	Err       error
}

// Event drives Transition.
type Event interface {
	event()
}

// LoginStarted is sent before credentials go to the server.
type LoginStarted struct{}

// LoginSucceeded carries the identity returned by the server.
type LoginSucceeded struct {
	User      *api.User
	Token     string
	ExpiresAt time.Time
}

// LoginFailed carries the error of a rejected or failed login.
type LoginFailed struct {
	Err error
}

// LoggedOut ends the session from any state.
type LoggedOut struct{}

func (LoginStarted) event()   {}
func (LoginSucceeded) event() {}
func (LoginFailed) event()    {}
func (LoggedOut) event()      {}

// Transition returns the state that follows s on e. It has no side effects;
// on ErrInvalidTransition the returned state is s.
func Transition(s State, e Event) (State, error) {
	switch ev := e.(type) {
	case LoggedOut:
		return State{Status: Unauthenticated}, nil

	case LoginStarted:
		if s.Status == Authenticating {
			break
		}
		return State{Status: Authenticating}, nil

	case LoginSucceeded:
		if s.Status != Authenticating {
			break
		}
		if ev.User == nil || ev.Token == "" {
			return s, fmt.Errorf("%w: login succeeded without user or token", ErrInvalidTransition)
		}
		return State{Status: Authenticated, User: ev.User, Token: ev.Token, ExpiresAt: ev.ExpiresAt}, nil

	case LoginFailed:
		if s.Status != Authenticating {
			break
		}
		return State{Status: Unauthenticated, Err: ev.Err}, nil
	}
	return s, fmt.Errorf("%w: %T in state %s", ErrInvalidTransition, e, s.Status)
}
