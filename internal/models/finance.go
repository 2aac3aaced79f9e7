package models

import "fmt"

// TxType classifies categories and transactions.
type TxType string

const (
	TxSpend  TxType = "spend"
	TxIncome TxType = "income"
	TxSave   TxType = "save"
)

// ParseTxType converts user input into a TxType.
func ParseTxType(s string) (TxType, error) {
	switch TxType(s) {
	case TxSpend, TxIncome, TxSave:
		return TxType(s), nil
	}
	return "", fmt.Errorf("unknown transaction type %q", s)
}

// Category groups transactions of one type ("Food" for spend, "Salary" for income).
type Category struct {
	ID        string
	UserID    string
	Name      string
	Type      TxType
	Note      string
	CreatedAt int64
}

// CategoryFilter narrows ListCategories. Zero values match everything; Name
// and Note match case-insensitively anywhere in the field.
type CategoryFilter struct {
	Type TxType
	Name string
	Note string
}

// Transaction is a single income, spending or saving entry of a user.
type Transaction struct {
	ID         string
	UserID     string
	CategoryID string
	Type       TxType
	// Date is the Unix timestamp of the day the money moved.
	Date      int64
	Amount    int64
	Note      string
	CreatedAt int64
}

// TransactionFilter narrows ListTransactions. Zero values match everything.
type TransactionFilter struct {
	Type        TxType
	CategoryIDs []string
	// Note matches case-insensitively anywhere in the transaction note.
	Note     string
	DateFrom int64
	DateTo   int64
}

// Overview sums a user's transactions per type.
type Overview struct {
	Income int64
	Spend  int64
	Save   int64
}

// Remain is what is left after spending and saving.
func (o Overview) Remain() int64 {
	return o.Income - o.Spend - o.Save
}

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Page selects a window of a list result. Number is 1-based.
type Page struct {
	Number int
	Size   int
}

// Normalize clamps the page to valid bounds.
func (p Page) Normalize() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size <= 0 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	return p
}

// Offset is the number of rows to skip.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}
