// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/mmynk/famfund/internal/models"
)

// LedgerStore persists shared expense ledgers. Events are stored in the order
// they were applied so that replaying them rebuilds the same ledger.
type LedgerStore interface {
	// CreateLedger persists a new ledger header.
	// The ID and CreatedAt fields are populated by the store when empty.
	CreateLedger(ctx context.Context, ledger *models.LedgerInfo) error

	// GetLedger retrieves a ledger header by ID.
	// Returns an error wrapping models.ErrNotFound if it does not exist.
	GetLedger(ctx context.Context, ledgerID string) (*models.LedgerInfo, error)

	// ListLedgersByOwner returns the ledgers created by a user, newest first.
	ListLedgersByOwner(ctx context.Context, ownerID string) ([]*models.LedgerInfo, error)

	// SaveExpense stores newly registered participants and one event atomically.
	SaveExpense(ctx context.Context, ledgerID string, newParticipants []models.Participant, event models.ExpenseEvent) error

	// ListParticipants returns a ledger's participants in registration order.
	ListParticipants(ctx context.Context, ledgerID string) ([]models.Participant, error)

	// ListEvents returns a ledger's events in the order they were applied.
	ListEvents(ctx context.Context, ledgerID string) ([]models.ExpenseEvent, error)

	// MarkEventSettled sets the settled flag of an event.
	MarkEventSettled(ctx context.Context, ledgerID, eventID string) error

	// CreateTransferRecords stores repayments; all or none are written.
	CreateTransferRecords(ctx context.Context, records []*models.TransferRecord) error

	// ListTransferRecords returns a ledger's recorded repayments, newest first.
	ListTransferRecords(ctx context.Context, ledgerID string) ([]*models.TransferRecord, error)
}

// UserStore persists user accounts. CreateUser returns an error wrapping
// models.ErrAlreadyExists for a taken email.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// FinanceStore persists categories and personal transactions. Every call is
// scoped to one user.
type FinanceStore interface {
	CreateCategory(ctx context.Context, category *models.Category) error
	GetCategory(ctx context.Context, userID, categoryID string) (*models.Category, error)
	ListCategories(ctx context.Context, userID string, filter models.CategoryFilter) ([]*models.Category, error)

	// UpdateCategory returns an error wrapping models.ErrInUse when the type
	// changes while transactions reference the category.
	UpdateCategory(ctx context.Context, category *models.Category) error
	DeleteCategory(ctx context.Context, userID, categoryID string) error

	CreateTransaction(ctx context.Context, tx *models.Transaction) error
	GetTransaction(ctx context.Context, userID, txID string) (*models.Transaction, error)
	UpdateTransaction(ctx context.Context, tx *models.Transaction) error
	DeleteTransaction(ctx context.Context, userID, txID string) error

	// ListTransactions returns one page of matching transactions, newest first,
	// and the total number of matches.
	ListTransactions(ctx context.Context, userID string, filter models.TransactionFilter, page models.Page) ([]*models.Transaction, int, error)

	// Overview sums transactions per type in the inclusive date range.
	// A zero bound is open.
	Overview(ctx context.Context, userID string, dateFrom, dateTo int64) (models.Overview, error)
}

// Store defines the full storage interface used by the services.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	LedgerStore
	UserStore
	FinanceStore

	// Close releases any resources held by the store.
	Close() error
}
