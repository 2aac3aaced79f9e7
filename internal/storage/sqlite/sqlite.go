// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	sqlitedriver "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/mmynk/famfund/internal/models"
	"github.com/mmynk/famfund/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	if err := ensureDir(dbPath); err != nil {
		return nil, err
	}

	// Foreign keys are a per-connection setting, so they go into the DSN.
	dsn := "file:" + dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// notFound builds an error wrapping models.ErrNotFound.
func notFound(what, id string) error {
	return fmt.Errorf("%s %s: %w", what, id, models.ErrNotFound)
}

// isUniqueViolation reports whether err comes from a UNIQUE or PRIMARY KEY
// constraint.
func isUniqueViolation(err error) bool {
	var se *sqlitedriver.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	case sqlite3.SQLITE_CONSTRAINT:
		return strings.Contains(se.Error(), "UNIQUE constraint failed")
	}
	return false
}

// alreadyExists wraps models.ErrAlreadyExists.
func alreadyExists(what, value string) error {
	return fmt.Errorf("%s %q: %w", what, value, models.ErrAlreadyExists)
}

// CreateLedger persists a new ledger header.
func (s *SQLiteStore) CreateLedger(ctx context.Context, ledger *models.LedgerInfo) error {
	if ledger.ID == "" {
		ledger.ID = uuid.New().String()
	}
	if ledger.CreatedAt == 0 {
		ledger.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO ledgers (id, name, owner_id, created_at) VALUES (?, ?, ?, ?)",
		ledger.ID, ledger.Name, ledger.OwnerID, ledger.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert ledger: %w", err)
	}
	return nil
}

// GetLedger retrieves a ledger header by ID.
func (s *SQLiteStore) GetLedger(ctx context.Context, ledgerID string) (*models.LedgerInfo, error) {
	ledger := &models.LedgerInfo{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, owner_id, created_at FROM ledgers WHERE id = ?",
		ledgerID,
	).Scan(&ledger.ID, &ledger.Name, &ledger.OwnerID, &ledger.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("ledger", ledgerID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger: %w", err)
	}
	return ledger, nil
}

// ListLedgersByOwner returns the ledgers created by a user, newest first.
func (s *SQLiteStore) ListLedgersByOwner(ctx context.Context, ownerID string) ([]*models.LedgerInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, owner_id, created_at FROM ledgers
		 WHERE owner_id = ? ORDER BY created_at DESC, rowid DESC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledgers: %w", err)
	}
	defer rows.Close()

	var ledgers []*models.LedgerInfo
	for rows.Next() {
		ledger := &models.LedgerInfo{}
		if err := rows.Scan(&ledger.ID, &ledger.Name, &ledger.OwnerID, &ledger.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ledger: %w", err)
		}
		ledgers = append(ledgers, ledger)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ledgers: %w", err)
	}
	return ledgers, nil
}

// ensureDir creates the directory holding the database file.
func ensureDir(dbPath string) error {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}
	return nil
}
