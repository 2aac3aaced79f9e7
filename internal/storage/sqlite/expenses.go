package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/mmynk/famfund/internal/models"
)

// SaveExpense stores new participants and the event in one transaction.
func (s *SQLiteStore) SaveExpense(ctx context.Context, ledgerID string, newParticipants []models.Participant, event models.ExpenseEvent) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, p := range newParticipants {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO participants (id, ledger_id, display_name, seq)
			 VALUES (?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM participants WHERE ledger_id = ?))`,
			p.ID, ledgerID, p.DisplayName, ledgerID,
		)
		if err != nil {
			return fmt.Errorf("failed to insert participant: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO expense_events (id, ledger_id, seq, date, total_amount, payer_id, note, settled)
		 VALUES (?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM expense_events WHERE ledger_id = ?), ?, ?, ?, ?, ?)`,
		event.ID, ledgerID, ledgerID, event.Date.Unix(), event.TotalAmount, event.Payer, event.Note, event.Settled,
	)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}

	for i, pid := range event.Participants {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO event_participants (event_id, participant_id, position) VALUES (?, ?, ?)",
			event.ID, pid, i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert event participant: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListParticipants returns a ledger's participants in registration order.
func (s *SQLiteStore) ListParticipants(ctx context.Context, ledgerID string) ([]models.Participant, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, display_name FROM participants WHERE ledger_id = ? ORDER BY seq",
		ledgerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	defer rows.Close()

	var participants []models.Participant
	for rows.Next() {
		var p models.Participant
		if err := rows.Scan(&p.ID, &p.DisplayName); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}
	return participants, nil
}

// ListEvents returns a ledger's events in the order they were applied.
func (s *SQLiteStore) ListEvents(ctx context.Context, ledgerID string) ([]models.ExpenseEvent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, date, total_amount, payer_id, note, settled
		 FROM expense_events WHERE ledger_id = ? ORDER BY seq`,
		ledgerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	var events []models.ExpenseEvent
	index := make(map[string]int)
	for rows.Next() {
		var (
			e    models.ExpenseEvent
			date int64
		)
		if err := rows.Scan(&e.ID, &date, &e.TotalAmount, &e.Payer, &e.Note, &e.Settled); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		e.Date = time.Unix(date, 0).UTC()
		index[e.ID] = len(events)
		events = append(events, e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}

	// Participants of every event in one query, in the order they were entered.
	partRows, err := s.db.QueryContext(ctx,
		`SELECT ep.event_id, ep.participant_id
		 FROM event_participants ep
		 JOIN expense_events e ON e.id = ep.event_id
		 WHERE e.ledger_id = ?
		 ORDER BY ep.event_id, ep.position, ep.participant_id`,
		ledgerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get event participants: %w", err)
	}
	defer partRows.Close()

	for partRows.Next() {
		var eventID, participantID string
		if err := partRows.Scan(&eventID, &participantID); err != nil {
			return nil, fmt.Errorf("failed to scan event participant: %w", err)
		}
		if i, ok := index[eventID]; ok {
			events[i].Participants = append(events[i].Participants, participantID)
		}
	}
	if err := partRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate event participants: %w", err)
	}

	return events, nil
}

// MarkEventSettled sets the settled flag of an event.
func (s *SQLiteStore) MarkEventSettled(ctx context.Context, ledgerID, eventID string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE expense_events SET settled = 1 WHERE id = ? AND ledger_id = ?",
		eventID, ledgerID,
	)
	if err != nil {
		return fmt.Errorf("failed to settle event: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check settled rows: %w", err)
	}
	if n == 0 {
		return notFound("event", eventID)
	}
	return nil
}
