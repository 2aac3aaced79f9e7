package models

import (
	"strconv"
	"time"
)

// Participant is a named party who can pay for or owe a share of an expense.
// Identity is stable per display name within one ledger.
type Participant struct {
	// ID is the unique identifier for the participant (UUID format).
	ID string

	// DisplayName is the free-text name as typed in the contribute form.
	// Matching is case-sensitive and exact.
	DisplayName string
}

// ExpenseEvent is one shared cost paid by one participant on behalf of a group.
// Everything except Settled is immutable once the event has been applied.
type ExpenseEvent struct {
	// ID is the unique identifier for the event (UUID format).
	ID string

	// Date is when the expense happened. History is ordered by it.
	Date time.Time

	// TotalAmount is the full cost in minor currency units. Must be positive.
	TotalAmount int64

	// Payer is the participant ID of whoever advanced the money.
	Payer string

	// Participants are the IDs sharing the cost. The payer may or may not be one.
	Participants []string

	// Note is an optional description ("groceries", "electricity").
	Note string

	// Settled marks the event as repaid in the real world ("done").
	// Settled events stay in history but no longer count towards balances.
	Settled bool
}

// Validate checks the event's intrinsic invariants.
// It does not check that the referenced participants exist.
func (e *ExpenseEvent) Validate() error {
	if e.TotalAmount <= 0 {
		return NewFieldError(ErrInvalidEvent, "total_amount", strconv.FormatInt(e.TotalAmount, 10), "must be positive")
	}
	if e.Payer == "" {
		return NewFieldError(ErrInvalidEvent, "payer", "", "is required")
	}
	if len(e.Participants) == 0 {
		return NewFieldError(ErrInvalidEvent, "participants", "", "must not be empty")
	}
	seen := make(map[string]bool, len(e.Participants))
	for _, p := range e.Participants {
		if p == "" {
			return NewFieldError(ErrInvalidEvent, "participants", "", "contains an empty id")
		}
		if seen[p] {
			return NewFieldError(ErrInvalidEvent, "participants", p, "listed more than once")
		}
		seen[p] = true
	}
	return nil
}

// SplitShare is the portion of an event's total owed by one participant.
// It is derived on demand and never stored.
type SplitShare struct {
	Event       string
	Participant string
	Owed        int64
}

// Transfer is a payment from a debtor to a creditor that reduces
// outstanding balances.
type Transfer struct {
	From   string
	To     string
	Amount int64
}
