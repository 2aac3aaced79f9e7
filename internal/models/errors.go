package models

import (
	"errors"
	"fmt"
)

// Error kinds returned by the ledger, calculator and storage layers.
// Compare with errors.Is; the concrete error usually is a *FieldError.
var (
	ErrInvalidEvent       = errors.New("invalid event")
	ErrUnknownParticipant = errors.New("unknown participant")
	ErrNotFound           = errors.New("not found")

	// ErrAlreadyExists reports a clash with a unique key in storage.
	ErrAlreadyExists = errors.New("already exists")
	// ErrInUse reports a change refused because other records depend on
	// the current value.
	ErrInUse = errors.New("in use")
)

// FieldError names the offending input so the caller can correct it.
type FieldError struct {
	Kind   error
	Field  string
	Value  string
	Reason string
}

// NewFieldError builds a FieldError of the given kind.
func NewFieldError(kind error, field, value, reason string) *FieldError {
	return &FieldError{Kind: kind, Field: field, Value: value, Reason: reason}
}

func (e *FieldError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%v: %s: %s", e.Kind, e.Field, e.Reason)
	}
	return fmt.Sprintf("%v: %s %q: %s", e.Kind, e.Field, e.Value, e.Reason)
}

func (e *FieldError) Unwrap() error {
	return e.Kind
}
