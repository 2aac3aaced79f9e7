package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/famfund/internal/models"
)

// CreateCategory inserts a category for a user.
func (s *SQLiteStore) CreateCategory(ctx context.Context, c *models.Category) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.CreatedAt == 0 {
		c.CreatedAt = time.Now().Unix()
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO categories (id, user_id, name, type, note, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		c.ID, c.UserID, c.Name, string(c.Type), c.Note, c.CreatedAt,
	)
	if isUniqueViolation(err) {
		return alreadyExists("category", c.Name)
	}
	if err != nil {
		return fmt.Errorf("failed to insert category: %w", err)
	}
	return nil
}

// UpdateCategory rewrites the name, type and note of a category. The type
// cannot change while transactions reference the category.
func (s *SQLiteStore) UpdateCategory(ctx context.Context, c *models.Category) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var current string
	err = tx.QueryRowContext(ctx,
		"SELECT type FROM categories WHERE id = ? AND user_id = ?",
		c.ID, c.UserID,
	).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return notFound("category", c.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to get category: %w", err)
	}

	if models.TxType(current) != c.Type {
		var used int
		if err := tx.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM transactions WHERE category_id = ?", c.ID,
		).Scan(&used); err != nil {
			return fmt.Errorf("failed to count transactions: %w", err)
		}
		if used > 0 {
			return fmt.Errorf("category %s has %d %s transactions: %w", c.ID, used, current, models.ErrInUse)
		}
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE categories SET name = ?, type = ?, note = ? WHERE id = ? AND user_id = ?",
		c.Name, string(c.Type), c.Note, c.ID, c.UserID,
	)
	if isUniqueViolation(err) {
		return alreadyExists("category", c.Name)
	}
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetCategory retrieves one of a user's categories.
func (s *SQLiteStore) GetCategory(ctx context.Context, userID, categoryID string) (*models.Category, error) {
	c := &models.Category{}
	var txType string
	err := s.db.QueryRowContext(ctx,
		"SELECT id, user_id, name, type, note, created_at FROM categories WHERE id = ? AND user_id = ?",
		categoryID, userID,
	).Scan(&c.ID, &c.UserID, &c.Name, &txType, &c.Note, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("category", categoryID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	c.Type = models.TxType(txType)
	return c, nil
}

// ListCategories returns a user's matching categories ordered by name.
func (s *SQLiteStore) ListCategories(ctx context.Context, userID string, filter models.CategoryFilter) ([]*models.Category, error) {
	query := "SELECT id, user_id, name, type, note, created_at FROM categories WHERE user_id = ?"
	args := []interface{}{userID}
	if filter.Type != "" {
		query += " AND type = ?"
		args = append(args, string(filter.Type))
	}
	if filter.Name != "" {
		query += " AND LOWER(name) LIKE ? ESCAPE '\\'"
		args = append(args, "%"+escapeLike(strings.ToLower(filter.Name))+"%")
	}
	if filter.Note != "" {
		query += " AND LOWER(note) LIKE ? ESCAPE '\\'"
		args = append(args, "%"+escapeLike(strings.ToLower(filter.Note))+"%")
	}
	query += " ORDER BY name"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []*models.Category
	for rows.Next() {
		c := &models.Category{}
		var t string
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &t, &c.Note, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		c.Type = models.TxType(t)
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate categories: %w", err)
	}
	return categories, nil
}

// DeleteCategory removes a category and, through the foreign key, its transactions.
func (s *SQLiteStore) DeleteCategory(ctx context.Context, userID, categoryID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM categories WHERE id = ? AND user_id = ?", categoryID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return requireRow(res, "category", categoryID)
}

// CreateTransaction inserts a transaction.
func (s *SQLiteStore) CreateTransaction(ctx context.Context, t *models.Transaction) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.CreatedAt == 0 {
		t.CreatedAt = time.Now().Unix()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO transactions (id, user_id, category_id, type, date, amount, note, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, t.CategoryID, string(t.Type), t.Date, t.Amount, t.Note, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

const transactionColumns = "id, user_id, category_id, type, date, amount, note, created_at"

func scanTransaction(row interface{ Scan(...any) error }) (*models.Transaction, error) {
	t := &models.Transaction{}
	var txType string
	if err := row.Scan(&t.ID, &t.UserID, &t.CategoryID, &txType, &t.Date, &t.Amount, &t.Note, &t.CreatedAt); err != nil {
		return nil, err
	}
	t.Type = models.TxType(txType)
	return t, nil
}

// GetTransaction retrieves one of a user's transactions.
func (s *SQLiteStore) GetTransaction(ctx context.Context, userID, txID string) (*models.Transaction, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE id = ? AND user_id = ?",
		txID, userID,
	)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("transaction", txID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return t, nil
}

// UpdateTransaction overwrites the mutable fields of a transaction.
func (s *SQLiteStore) UpdateTransaction(ctx context.Context, t *models.Transaction) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE transactions SET category_id = ?, type = ?, date = ?, amount = ?, note = ?
		 WHERE id = ? AND user_id = ?`,
		t.CategoryID, string(t.Type), t.Date, t.Amount, t.Note, t.ID, t.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	return requireRow(res, "transaction", t.ID)
}

// DeleteTransaction removes a transaction.
func (s *SQLiteStore) DeleteTransaction(ctx context.Context, userID, txID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM transactions WHERE id = ? AND user_id = ?", txID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	return requireRow(res, "transaction", txID)
}

// transactionWhere builds the WHERE clause shared by listing and counting.
func transactionWhere(userID string, f models.TransactionFilter) (string, []interface{}) {
	clauses := []string{"user_id = ?"}
	args := []interface{}{userID}

	if f.Type != "" {
		clauses = append(clauses, "type = ?")
		args = append(args, string(f.Type))
	}
	if len(f.CategoryIDs) > 0 {
		clauses = append(clauses, "category_id IN (?"+strings.Repeat(", ?", len(f.CategoryIDs)-1)+")")
		for _, id := range f.CategoryIDs {
			args = append(args, id)
		}
	}
	if f.Note != "" {
		clauses = append(clauses, "LOWER(note) LIKE ? ESCAPE '\\'")
		args = append(args, "%"+escapeLike(strings.ToLower(f.Note))+"%")
	}
	if f.DateFrom != 0 {
		clauses = append(clauses, "date >= ?")
		args = append(args, f.DateFrom)
	}
	if f.DateTo != 0 {
		clauses = append(clauses, "date <= ?")
		args = append(args, f.DateTo)
	}
	return strings.Join(clauses, " AND "), args
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// ListTransactions returns one page of a user's matching transactions.
func (s *SQLiteStore) ListTransactions(ctx context.Context, userID string, filter models.TransactionFilter, page models.Page) ([]*models.Transaction, int, error) {
	page = page.Normalize()
	where, args := transactionWhere(userID, filter)

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM transactions WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	query := "SELECT " + transactionColumns + " FROM transactions WHERE " + where +
		" ORDER BY date DESC, created_at DESC, rowid DESC LIMIT ? OFFSET ?"
	rows, err := s.db.QueryContext(ctx, query, append(args, page.Size, page.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var txs []*models.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txs = append(txs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return txs, total, nil
}

// Overview sums a user's transactions per type.
func (s *SQLiteStore) Overview(ctx context.Context, userID string, dateFrom, dateTo int64) (models.Overview, error) {
	where, args := transactionWhere(userID, models.TransactionFilter{DateFrom: dateFrom, DateTo: dateTo})
	rows, err := s.db.QueryContext(ctx,
		"SELECT type, COALESCE(SUM(amount), 0) FROM transactions WHERE "+where+" GROUP BY type",
		args...,
	)
	if err != nil {
		return models.Overview{}, fmt.Errorf("failed to sum transactions: %w", err)
	}
	defer rows.Close()

	var o models.Overview
	for rows.Next() {
		var (
			txType string
			sum    int64
		)
		if err := rows.Scan(&txType, &sum); err != nil {
			return models.Overview{}, fmt.Errorf("failed to scan sum: %w", err)
		}
		switch models.TxType(txType) {
		case models.TxIncome:
			o.Income = sum
		case models.TxSpend:
			o.Spend = sum
		case models.TxSave:
			o.Save = sum
		}
	}
	if err := rows.Err(); err != nil {
		return models.Overview{}, fmt.Errorf("failed to iterate sums: %w", err)
	}
	return o, nil
}

func requireRow(res sql.Result, what, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if n == 0 {
		return notFound(what, id)
	}
	return nil
}
