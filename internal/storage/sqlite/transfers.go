package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/famfund/internal/models"
)

// CreateTransferRecords persists repayments in a single transaction.
func (s *SQLiteStore) CreateTransferRecords(ctx context.Context, records []*models.TransferRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	for _, r := range records {
		// Generate ID if not set
		if r.ID == "" {
			r.ID = uuid.New().String()
		}
		if r.CreatedAt == 0 {
			r.CreatedAt = now
		}

		var note interface{} = nil
		if r.Note != "" {
			note = r.Note
		}

		_, err := tx.ExecContext(ctx,
			`INSERT INTO transfers (id, ledger_id, from_id, to_id, amount, created_at, created_by, note)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			r.ID, r.LedgerID, r.FromID, r.ToID, r.Amount, r.CreatedAt, r.CreatedBy, note,
		)
		if err != nil {
			return fmt.Errorf("failed to insert transfer: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListTransferRecords retrieves all recorded repayments for a ledger.
func (s *SQLiteStore) ListTransferRecords(ctx context.Context, ledgerID string) ([]*models.TransferRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, ledger_id, from_id, to_id, amount, created_at, created_by, note
		 FROM transfers WHERE ledger_id = ? ORDER BY created_at DESC, rowid DESC`,
		ledgerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list transfers by ledger: %w", err)
	}
	defer rows.Close()

	var records []*models.TransferRecord
	for rows.Next() {
		r := &models.TransferRecord{}
		var note sql.NullString

		if err := rows.Scan(&r.ID, &r.LedgerID, &r.FromID, &r.ToID,
			&r.Amount, &r.CreatedAt, &r.CreatedBy, &note); err != nil {
			return nil, fmt.Errorf("failed to scan transfer: %w", err)
		}

		if note.Valid {
			r.Note = note.String
		}

		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transfers: %w", err)
	}

	return records, nil
}
