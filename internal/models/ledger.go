package models

// LedgerInfo is the persisted header of a shared expense pool.
// The events themselves are stored separately and replayed into a ledger.
type LedgerInfo struct {
	// ID is the unique identifier for the ledger (UUID format).
	ID string

	// Name is the display name ("Family", "Trip to Da Lat").
	Name string

	// OwnerID is the user who created the ledger.
	OwnerID string

	// CreatedAt is the Unix timestamp when the ledger was created.
	CreatedAt int64
}

// TransferRecord is a repayment that happened in the real world and was recorded
// against a ledger.
type TransferRecord struct {
	// ID is the unique identifier for the record (UUID format).
	ID string

	// LedgerID is the ledger this repayment belongs to.
	LedgerID string

	// FromID is the participant who paid (debtor settling up).
	FromID string

	// ToID is the participant who received the payment.
	ToID string

	// Amount is the payment amount in minor units.
	Amount int64

	// CreatedAt is the Unix timestamp when the record was stored.
	CreatedAt int64

	// CreatedBy is the user ID who recorded the repayment.
	CreatedBy string

	// Note is an optional description.
	Note string
}
