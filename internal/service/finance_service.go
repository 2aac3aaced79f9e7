package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/mmynk/famfund/internal/models"
	"github.com/mmynk/famfund/internal/storage"
	"github.com/mmynk/famfund/pkg/api"
	"github.com/mmynk/famfund/pkg/api/apiconnect"
)

var _ apiconnect.FinanceServiceHandler = (*FinanceService)(nil)

// FinanceService implements the Connect FinanceService: a user's own
// categories, income/spend/save transactions and the overview of them.
type FinanceService struct {
	store storage.Store
	now   func() time.Time
}

// NewFinanceService creates a new FinanceService with the given storage backend.
func NewFinanceService(store storage.Store) *FinanceService {
	return &FinanceService{store: store, now: time.Now}
}

// CreateCategory creates a category. Names are unique per user and type,
// ignoring case.
func (s *FinanceService) CreateCategory(ctx context.Context, req *connect.Request[api.CreateCategoryRequest]) (*connect.Response[api.CategoryResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("CreateCategory request received", "name", req.Msg.Name, "type", req.Msg.Type)

	name := strings.TrimSpace(req.Msg.Name)
	if name == "" {
		return nil, invalidArgument("category name is required")
	}
	txType, err := models.ParseTxType(req.Msg.Type)
	if err != nil {
		return nil, invalidArgument("%v", err)
	}

	if err := s.checkCategoryName(ctx, "CreateCategory", userID, "", name, txType); err != nil {
		return nil, err
	}

	category := &models.Category{
		UserID: userID,
		Name:   name,
		Type:   txType,
		Note:   strings.TrimSpace(req.Msg.Note),
	}
	if err := s.store.CreateCategory(ctx, category); err != nil {
		return nil, connectError("CreateCategory", err)
	}

	slog.Info("Category created", "category_id", category.ID)
	return connect.NewResponse(&api.CategoryResponse{Category: categoryToAPI(category)}), nil
}

// GetCategory returns one of the caller's categories.
func (s *FinanceService) GetCategory(ctx context.Context, req *connect.Request[api.GetRequest]) (*connect.Response[api.CategoryResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if req.Msg.ID == "" {
		return nil, invalidArgument("category id is required")
	}

	category, err := s.store.GetCategory(ctx, userID, req.Msg.ID)
	if err != nil {
		return nil, connectError("GetCategory", err)
	}
	return connect.NewResponse(&api.CategoryResponse{Category: categoryToAPI(category)}), nil
}

// UpdateCategory replaces the name, type and note of a category. The type is
// fixed once transactions use the category.
func (s *FinanceService) UpdateCategory(ctx context.Context, req *connect.Request[api.UpdateCategoryRequest]) (*connect.Response[api.CategoryResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("UpdateCategory request received", "category_id", req.Msg.ID, "name", req.Msg.Name, "type", req.Msg.Type)

	if req.Msg.ID == "" {
		return nil, invalidArgument("category id is required")
	}
	name := strings.TrimSpace(req.Msg.Name)
	if name == "" {
		return nil, invalidArgument("category name is required")
	}
	txType, err := models.ParseTxType(req.Msg.Type)
	if err != nil {
		return nil, invalidArgument("%v", err)
	}

	existing, err := s.store.GetCategory(ctx, userID, req.Msg.ID)
	if err != nil {
		return nil, connectError("UpdateCategory", err)
	}
	if err := s.checkCategoryName(ctx, "UpdateCategory", userID, existing.ID, name, txType); err != nil {
		return nil, err
	}

	category := &models.Category{
		ID:        existing.ID,
		UserID:    userID,
		Name:      name,
		Type:      txType,
		Note:      strings.TrimSpace(req.Msg.Note),
		CreatedAt: existing.CreatedAt,
	}
	if err := s.store.UpdateCategory(ctx, category); err != nil {
		return nil, connectError("UpdateCategory", err)
	}
	return connect.NewResponse(&api.CategoryResponse{Category: categoryToAPI(category)}), nil
}

// ListCategories lists the caller's categories, filtered by type and by
// substrings of the name or note.
func (s *FinanceService) ListCategories(ctx context.Context, req *connect.Request[api.ListCategoriesRequest]) (*connect.Response[api.ListCategoriesResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	filter := models.CategoryFilter{
		Name: strings.TrimSpace(req.Msg.Name),
		Note: strings.TrimSpace(req.Msg.Note),
	}
	if req.Msg.Type != "" {
		if filter.Type, err = models.ParseTxType(req.Msg.Type); err != nil {
			return nil, invalidArgument("%v", err)
		}
	}

	categories, err := s.store.ListCategories(ctx, userID, filter)
	if err != nil {
		return nil, connectError("ListCategories", err)
	}

	out := make([]*api.Category, len(categories))
	for i, c := range categories {
		out[i] = categoryToAPI(c)
	}
	return connect.NewResponse(&api.ListCategoriesResponse{Categories: out}), nil
}

// DeleteCategory removes a category together with its transactions.
func (s *FinanceService) DeleteCategory(ctx context.Context, req *connect.Request[api.DeleteRequest]) (*connect.Response[emptypb.Empty], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("DeleteCategory request received", "category_id", req.Msg.ID)

	if err := s.store.DeleteCategory(ctx, userID, req.Msg.ID); err != nil {
		return nil, connectError("DeleteCategory", err)
	}
	return connect.NewResponse(&emptypb.Empty{}), nil
}

// CreateTransaction records an income, spending or saving.
func (s *FinanceService) CreateTransaction(ctx context.Context, req *connect.Request[api.TransactionRequest]) (*connect.Response[api.TransactionResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("CreateTransaction request received", "type", req.Msg.Type, "amount", req.Msg.Amount)

	tx, err := s.transactionFromRequest(ctx, userID, req.Msg)
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateTransaction(ctx, tx); err != nil {
		return nil, connectError("CreateTransaction", err)
	}

	slog.Info("Transaction created", "transaction_id", tx.ID)
	return connect.NewResponse(&api.TransactionResponse{Transaction: transactionToAPI(tx)}), nil
}

// GetTransaction returns one of the caller's transactions.
func (s *FinanceService) GetTransaction(ctx context.Context, req *connect.Request[api.GetRequest]) (*connect.Response[api.TransactionResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if req.Msg.ID == "" {
		return nil, invalidArgument("transaction id is required")
	}

	tx, err := s.store.GetTransaction(ctx, userID, req.Msg.ID)
	if err != nil {
		return nil, connectError("GetTransaction", err)
	}
	return connect.NewResponse(&api.TransactionResponse{Transaction: transactionToAPI(tx)}), nil
}

// UpdateTransaction replaces every editable field of an existing transaction.
func (s *FinanceService) UpdateTransaction(ctx context.Context, req *connect.Request[api.TransactionRequest]) (*connect.Response[api.TransactionResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("UpdateTransaction request received", "transaction_id", req.Msg.ID)

	if req.Msg.ID == "" {
		return nil, invalidArgument("transaction id is required")
	}
	existing, err := s.store.GetTransaction(ctx, userID, req.Msg.ID)
	if err != nil {
		return nil, connectError("UpdateTransaction", err)
	}

	tx, err := s.transactionFromRequest(ctx, userID, req.Msg)
	if err != nil {
		return nil, err
	}
	tx.ID = existing.ID
	tx.CreatedAt = existing.CreatedAt
	if err := s.store.UpdateTransaction(ctx, tx); err != nil {
		return nil, connectError("UpdateTransaction", err)
	}
	return connect.NewResponse(&api.TransactionResponse{Transaction: transactionToAPI(tx)}), nil
}

// DeleteTransaction removes one transaction.
func (s *FinanceService) DeleteTransaction(ctx context.Context, req *connect.Request[api.DeleteRequest]) (*connect.Response[emptypb.Empty], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("DeleteTransaction request received", "transaction_id", req.Msg.ID)

	if err := s.store.DeleteTransaction(ctx, userID, req.Msg.ID); err != nil {
		return nil, connectError("DeleteTransaction", err)
	}
	return connect.NewResponse(&emptypb.Empty{}), nil
}

// ListTransactions returns one page of matching transactions, newest first,
// with the total number of matches.
func (s *FinanceService) ListTransactions(ctx context.Context, req *connect.Request[api.ListTransactionsRequest]) (*connect.Response[api.ListTransactionsResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	filter := models.TransactionFilter{
		CategoryIDs: req.Msg.CategoryIDs,
		Note:        strings.TrimSpace(req.Msg.Note),
		DateFrom:    req.Msg.DateFrom,
		DateTo:      req.Msg.DateTo,
	}
	if req.Msg.Type != "" {
		if filter.Type, err = models.ParseTxType(req.Msg.Type); err != nil {
			return nil, invalidArgument("%v", err)
		}
	}
	if filter.DateFrom != 0 && filter.DateTo != 0 && filter.DateFrom > filter.DateTo {
		return nil, invalidArgument("date_from is after date_to")
	}
	page := models.Page{Number: int(req.Msg.Page), Size: int(req.Msg.PageSize)}.Normalize()

	txs, total, err := s.store.ListTransactions(ctx, userID, filter, page)
	if err != nil {
		return nil, connectError("ListTransactions", err)
	}

	out := make([]*api.Transaction, len(txs))
	for i, tx := range txs {
		out[i] = transactionToAPI(tx)
	}
	return connect.NewResponse(&api.ListTransactionsResponse{
		Transactions: out,
		Total:        int32(total),
		Page:         int32(page.Number),
		PageSize:     int32(page.Size),
	}), nil
}

// GetOverview sums the caller's transactions per type over an optional date range.
func (s *FinanceService) GetOverview(ctx context.Context, req *connect.Request[api.GetOverviewRequest]) (*connect.Response[api.GetOverviewResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if req.Msg.DateFrom != 0 && req.Msg.DateTo != 0 && req.Msg.DateFrom > req.Msg.DateTo {
		return nil, invalidArgument("date_from is after date_to")
	}

	o, err := s.store.Overview(ctx, userID, req.Msg.DateFrom, req.Msg.DateTo)
	if err != nil {
		return nil, connectError("GetOverview", err)
	}
	return connect.NewResponse(&api.GetOverviewResponse{
		Income: o.Income,
		Spend:  o.Spend,
		Save:   o.Save,
		Remain: o.Remain(),
	}), nil
}

// checkCategoryName rejects a name already used, ignoring case, by another
// category of the same type. The unique index catches concurrent writers.
func (s *FinanceService) checkCategoryName(ctx context.Context, op, userID, selfID, name string, txType models.TxType) error {
	existing, err := s.store.ListCategories(ctx, userID, models.CategoryFilter{Type: txType})
	if err != nil {
		return connectError(op, err)
	}
	for _, c := range existing {
		if c.ID != selfID && strings.EqualFold(c.Name, name) {
			return connect.NewError(connect.CodeAlreadyExists, fmt.Errorf("%s category %q already exists", txType, name))
		}
	}
	return nil
}

// transactionFromRequest validates the request and checks that the category
// belongs to the user and has the same type.
func (s *FinanceService) transactionFromRequest(ctx context.Context, userID string, msg *api.TransactionRequest) (*models.Transaction, error) {
	if msg.Amount <= 0 {
		return nil, invalidArgument("amount must be positive, got %d", msg.Amount)
	}
	txType, err := models.ParseTxType(msg.Type)
	if err != nil {
		return nil, invalidArgument("%v", err)
	}
	if msg.CategoryID == "" {
		return nil, invalidArgument("category_id is required")
	}

	category, err := s.store.GetCategory(ctx, userID, msg.CategoryID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, connect.NewError(connect.CodeFailedPrecondition, err)
	}
	if err != nil {
		return nil, connectError("GetCategory", err)
	}
	if category.Type != txType {
		return nil, invalidArgument("category %q is a %s category, not %s", category.Name, category.Type, txType)
	}

	date := msg.Date
	if date <= 0 {
		date = s.now().Unix()
	}
	return &models.Transaction{
		UserID:     userID,
		CategoryID: category.ID,
		Type:       txType,
		Date:       date,
		Amount:     msg.Amount,
		Note:       strings.TrimSpace(msg.Note),
	}, nil
}

func categoryToAPI(c *models.Category) *api.Category {
	return &api.Category{
		ID:        c.ID,
		Name:      c.Name,
		Type:      string(c.Type),
		Note:      c.Note,
		CreatedAt: c.CreatedAt,
	}
}

func transactionToAPI(tx *models.Transaction) *api.Transaction {
	return &api.Transaction{
		ID:         tx.ID,
		CategoryID: tx.CategoryID,
		Type:       string(tx.Type),
		Date:       tx.Date,
		Amount:     tx.Amount,
		Note:       tx.Note,
		CreatedAt:  tx.CreatedAt,
	}
}
