package api

type Category struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	Note      string `json:"note,omitempty"`
	CreatedAt int64  `json:"created_at"`
}

type Transaction struct {
	ID         string `json:"id"`
	CategoryID string `json:"category_id"`
	Type       string `json:"type"`
	Date       int64  `json:"date"`
	Amount     int64  `json:"amount"`
	Note       string `json:"note,omitempty"`
	CreatedAt  int64  `json:"created_at"`
}

type CreateCategoryRequest struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Note string `json:"note,omitempty"`
}

type CategoryResponse struct {
	Category *Category `json:"category"`
}

// UpdateCategoryRequest replaces the name, type and note of a category.
type UpdateCategoryRequest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
	Note string `json:"note,omitempty"`
}

// ListCategoriesRequest filters categories. Name and Note match
// case-insensitively anywhere in the field.
type ListCategoriesRequest struct {
	Type string `json:"type,omitempty"`
	Name string `json:"name,omitempty"`
	Note string `json:"note,omitempty"`
}

type ListCategoriesResponse struct {
	Categories []*Category `json:"categories"`
}

type GetRequest struct {
	ID string `json:"id"`
}

type DeleteRequest struct {
	ID string `json:"id"`
}

// TransactionRequest creates a transaction, or updates one when ID is set.
type TransactionRequest struct {
	ID         string `json:"id,omitempty"`
	CategoryID string `json:"category_id"`
	Type       string `json:"type"`
	Date       int64  `json:"date"`
	Amount     int64  `json:"amount"`
	Note       string `json:"note,omitempty"`
}

type TransactionResponse struct {
	Transaction *Transaction `json:"transaction"`
}

type ListTransactionsRequest struct {
	Type        string   `json:"type,omitempty"`
	CategoryIDs []string `json:"category_ids,omitempty"`
	Note        string   `json:"note,omitempty"`
	DateFrom    int64    `json:"date_from,omitempty"`
	DateTo      int64    `json:"date_to,omitempty"`
	Page        int32    `json:"page"`
	PageSize    int32    `json:"page_size"`
}

type ListTransactionsResponse struct {
	Transactions []*Transaction `json:"transactions"`
	Total        int32          `json:"total"`
	Page         int32          `json:"page"`
	PageSize     int32          `json:"page_size"`
}

type GetOverviewRequest struct {
	DateFrom int64 `json:"date_from,omitempty"`
	DateTo   int64 `json:"date_to,omitempty"`
}

type GetOverviewResponse struct {
	Income int64 `json:"income"`
	Spend  int64 `json:"spend"`
	Save   int64 `json:"save"`
	Remain int64 `json:"remain"`
}
