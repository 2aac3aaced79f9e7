package api

// Ledger is a shared expense pool.
type Ledger struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt int64  `json:"created_at"`
}

// Person is a participant of a ledger.
type Person struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Share is what one participant owes for one expense.
type Share struct {
	ParticipantID string `json:"participant_id"`
	Name          string `json:"name"`
	Owed          int64  `json:"owed"`
}

// Expense is one shared cost with its split.
type Expense struct {
	ID         string   `json:"id"`
	Date       int64    `json:"date"`
	Amount     int64    `json:"amount"`
	From       *Person  `json:"from"`
	People     []Person `json:"people"`
	AmountEach []Share  `json:"amount_each"`
	Note       string   `json:"note,omitempty"`
	Done       bool     `json:"done"`
}

// Balance is a participant's net position. Positive means they are owed money.
type Balance struct {
	ParticipantID string `json:"participant_id"`
	Name          string `json:"name"`
	Net           int64  `json:"net"`
	Paid          int64  `json:"paid"`
	Owed          int64  `json:"owed"`
}

// Transfer is a payment from one participant to another.
type Transfer struct {
	FromID   string `json:"from_id"`
	FromName string `json:"from_name,omitempty"`
	ToID     string `json:"to_id"`
	ToName   string `json:"to_name,omitempty"`
	Amount   int64  `json:"amount"`
}

// TransferRecord is a repayment that was recorded against a ledger.
type TransferRecord struct {
	ID        string   `json:"id"`
	Transfer  Transfer `json:"transfer"`
	Note      string   `json:"note,omitempty"`
	CreatedAt int64    `json:"created_at"`
	CreatedBy string   `json:"created_by"`
}

type CreateLedgerRequest struct {
	Name string `json:"name"`
}

type CreateLedgerResponse struct {
	Ledger *Ledger `json:"ledger"`
}

type ListLedgersResponse struct {
	Ledgers []*Ledger `json:"ledgers"`
}

// AddExpenseRequest mirrors the contribute form. Participants may be given as a
// list, as the free-text People field, or both.
type AddExpenseRequest struct {
	LedgerID     string   `json:"ledger_id"`
	Date         int64    `json:"date"`
	Amount       int64    `json:"amount"`
	From         string   `json:"from"`
	Participants []string `json:"participants,omitempty"`
	People       string   `json:"people,omitempty"`
	Note         string   `json:"note,omitempty"`
}

type AddExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type LedgerRequest struct {
	LedgerID string `json:"ledger_id"`
}

type GetBalancesResponse struct {
	Balances []*Balance `json:"balances"`
}

type ProposeTransfersResponse struct {
	Transfers []*Transfer `json:"transfers"`
}

type MarkSettledRequest struct {
	LedgerID string `json:"ledger_id"`
	EventID  string `json:"event_id"`
}

type MarkSettledResponse struct {
	Expense *Expense `json:"expense"`
}

type ListExpensesRequest struct {
	LedgerID string `json:"ledger_id"`
	Page     int32  `json:"page"`
	PageSize int32  `json:"page_size"`
}

type ListExpensesResponse struct {
	Expenses []*Expense `json:"expenses"`
	Total    int32      `json:"total"`
}

type RecordTransfersRequest struct {
	LedgerID  string      `json:"ledger_id"`
	Transfers []*Transfer `json:"transfers"`
	Note      string      `json:"note,omitempty"`
}

type ListTransfersResponse struct {
	Records []*TransferRecord `json:"records"`
}
