package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/mmynk/famfund/pkg/api"
)

// FinanceServiceName is the fully-qualified name of the FinanceService service.
const FinanceServiceName = "famfund.v1.FinanceService"

const (
	FinanceServiceCreateCategoryProcedure    = "/famfund.v1.FinanceService/CreateCategory"
	FinanceServiceGetCategoryProcedure       = "/famfund.v1.FinanceService/GetCategory"
	FinanceServiceUpdateCategoryProcedure    = "/famfund.v1.FinanceService/UpdateCategory"
	FinanceServiceListCategoriesProcedure    = "/famfund.v1.FinanceService/ListCategories"
	FinanceServiceDeleteCategoryProcedure    = "/famfund.v1.FinanceService/DeleteCategory"
	FinanceServiceCreateTransactionProcedure = "/famfund.v1.FinanceService/CreateTransaction"
	FinanceServiceGetTransactionProcedure    = "/famfund.v1.FinanceService/GetTransaction"
	FinanceServiceUpdateTransactionProcedure = "/famfund.v1.FinanceService/UpdateTransaction"
	FinanceServiceDeleteTransactionProcedure = "/famfund.v1.FinanceService/DeleteTransaction"
	FinanceServiceListTransactionsProcedure  = "/famfund.v1.FinanceService/ListTransactions"
	FinanceServiceGetOverviewProcedure       = "/famfund.v1.FinanceService/GetOverview"
)

// FinanceServiceHandler is implemented by the server.
type FinanceServiceHandler interface {
	CreateCategory(context.Context, *connect.Request[api.CreateCategoryRequest]) (*connect.Response[api.CategoryResponse], error)
	GetCategory(context.Context, *connect.Request[api.GetRequest]) (*connect.Response[api.CategoryResponse], error)
	UpdateCategory(context.Context, *connect.Request[api.UpdateCategoryRequest]) (*connect.Response[api.CategoryResponse], error)
	ListCategories(context.Context, *connect.Request[api.ListCategoriesRequest]) (*connect.Response[api.ListCategoriesResponse], error)
	DeleteCategory(context.Context, *connect.Request[api.DeleteRequest]) (*connect.Response[emptypb.Empty], error)
	CreateTransaction(context.Context, *connect.Request[api.TransactionRequest]) (*connect.Response[api.TransactionResponse], error)
	GetTransaction(context.Context, *connect.Request[api.GetRequest]) (*connect.Response[api.TransactionResponse], error)
	UpdateTransaction(context.Context, *connect.Request[api.TransactionRequest]) (*connect.Response[api.TransactionResponse], error)
	DeleteTransaction(context.Context, *connect.Request[api.DeleteRequest]) (*connect.Response[emptypb.Empty], error)
	ListTransactions(context.Context, *connect.Request[api.ListTransactionsRequest]) (*connect.Response[api.ListTransactionsResponse], error)
	GetOverview(context.Context, *connect.Request[api.GetOverviewRequest]) (*connect.Response[api.GetOverviewResponse], error)
}

// NewFinanceServiceHandler builds an HTTP handler from the service implementation.
func NewFinanceServiceHandler(svc FinanceServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = withCodec(opts)
	mux := http.NewServeMux()
	mux.Handle(FinanceServiceCreateCategoryProcedure, connect.NewUnaryHandler(FinanceServiceCreateCategoryProcedure, svc.CreateCategory, opts...))
	mux.Handle(FinanceServiceGetCategoryProcedure, connect.NewUnaryHandler(FinanceServiceGetCategoryProcedure, svc.GetCategory, opts...))
	mux.Handle(FinanceServiceUpdateCategoryProcedure, connect.NewUnaryHandler(FinanceServiceUpdateCategoryProcedure, svc.UpdateCategory, opts...))
	mux.Handle(FinanceServiceListCategoriesProcedure, connect.NewUnaryHandler(FinanceServiceListCategoriesProcedure, svc.ListCategories, opts...))
	mux.Handle(FinanceServiceDeleteCategoryProcedure, connect.NewUnaryHandler(FinanceServiceDeleteCategoryProcedure, svc.DeleteCategory, opts...))
	mux.Handle(FinanceServiceCreateTransactionProcedure, connect.NewUnaryHandler(FinanceServiceCreateTransactionProcedure, svc.CreateTransaction, opts...))
	mux.Handle(FinanceServiceGetTransactionProcedure, connect.NewUnaryHandler(FinanceServiceGetTransactionProcedure, svc.GetTransaction, opts...))
	mux.Handle(FinanceServiceUpdateTransactionProcedure, connect.NewUnaryHandler(FinanceServiceUpdateTransactionProcedure, svc.UpdateTransaction, opts...))
	mux.Handle(FinanceServiceDeleteTransactionProcedure, connect.NewUnaryHandler(FinanceServiceDeleteTransactionProcedure, svc.DeleteTransaction, opts...))
	mux.Handle(FinanceServiceListTransactionsProcedure, connect.NewUnaryHandler(FinanceServiceListTransactionsProcedure, svc.ListTransactions, opts...))
	mux.Handle(FinanceServiceGetOverviewProcedure, connect.NewUnaryHandler(FinanceServiceGetOverviewProcedure, svc.GetOverview, opts...))
	return "/" + FinanceServiceName + "/", mux
}

// FinanceServiceClient is a client for the FinanceService.
type FinanceServiceClient interface {
	FinanceServiceHandler
}

type financeServiceClient struct {
	createCategory    *connect.Client[api.CreateCategoryRequest, api.CategoryResponse]
	getCategory       *connect.Client[api.GetRequest, api.CategoryResponse]
	updateCategory    *connect.Client[api.UpdateCategoryRequest, api.CategoryResponse]
	listCategories    *connect.Client[api.ListCategoriesRequest, api.ListCategoriesResponse]
	deleteCategory    *connect.Client[api.DeleteRequest, emptypb.Empty]
	createTransaction *connect.Client[api.TransactionRequest, api.TransactionResponse]
	getTransaction    *connect.Client[api.GetRequest, api.TransactionResponse]
	updateTransaction *connect.Client[api.TransactionRequest, api.TransactionResponse]
	deleteTransaction *connect.Client[api.DeleteRequest, emptypb.Empty]
	listTransactions  *connect.Client[api.ListTransactionsRequest, api.ListTransactionsResponse]
	getOverview       *connect.Client[api.GetOverviewRequest, api.GetOverviewResponse]
}

// NewFinanceServiceClient constructs a client for the FinanceService at baseURL.
func NewFinanceServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) FinanceServiceClient {
	opts = withClientCodec(opts)
	baseURL = trimSlash(baseURL)
	return &financeServiceClient{
		createCategory:    connect.NewClient[api.CreateCategoryRequest, api.CategoryResponse](httpClient, baseURL+FinanceServiceCreateCategoryProcedure, opts...),
		getCategory:       connect.NewClient[api.GetRequest, api.CategoryResponse](httpClient, baseURL+FinanceServiceGetCategoryProcedure, opts...),
		updateCategory:    connect.NewClient[api.UpdateCategoryRequest, api.CategoryResponse](httpClient, baseURL+FinanceServiceUpdateCategoryProcedure, opts...),
		listCategories:    connect.NewClient[api.ListCategoriesRequest, api.ListCategoriesResponse](httpClient, baseURL+FinanceServiceListCategoriesProcedure, opts...),
		deleteCategory:    connect.NewClient[api.DeleteRequest, emptypb.Empty](httpClient, baseURL+FinanceServiceDeleteCategoryProcedure, opts...),
		createTransaction: connect.NewClient[api.TransactionRequest, api.TransactionResponse](httpClient, baseURL+FinanceServiceCreateTransactionProcedure, opts...),
		getTransaction:    connect.NewClient[api.GetRequest, api.TransactionResponse](httpClient, baseURL+FinanceServiceGetTransactionProcedure, opts...),
		updateTransaction: connect.NewClient[api.TransactionRequest, api.TransactionResponse](httpClient, baseURL+FinanceServiceUpdateTransactionProcedure, opts...),
		deleteTransaction: connect.NewClient[api.DeleteRequest, emptypb.Empty](httpClient, baseURL+FinanceServiceDeleteTransactionProcedure, opts...),
		listTransactions:  connect.NewClient[api.ListTransactionsRequest, api.ListTransactionsResponse](httpClient, baseURL+FinanceServiceListTransactionsProcedure, opts...),
		getOverview:       connect.NewClient[api.GetOverviewRequest, api.GetOverviewResponse](httpClient, baseURL+FinanceServiceGetOverviewProcedure, opts...),
	}
}

func (c *financeServiceClient) CreateCategory(ctx context.Context, req *connect.Request[api.CreateCategoryRequest]) (*connect.Response[api.CategoryResponse], error) {
	return c.createCategory.CallUnary(ctx, req)
}

func (c *financeServiceClient) GetCategory(ctx context.Context, req *connect.Request[api.GetRequest]) (*connect.Response[api.CategoryResponse], error) {
	return c.getCategory.CallUnary(ctx, req)
}

func (c *financeServiceClient) UpdateCategory(ctx context.Context, req *connect.Request[api.UpdateCategoryRequest]) (*connect.Response[api.CategoryResponse], error) {
	return c.updateCategory.CallUnary(ctx, req)
}

func (c *financeServiceClient) ListCategories(ctx context.Context, req *connect.Request[api.ListCategoriesRequest]) (*connect.Response[api.ListCategoriesResponse], error) {
	return c.listCategories.CallUnary(ctx, req)
}

func (c *financeServiceClient) DeleteCategory(ctx context.Context, req *connect.Request[api.DeleteRequest]) (*connect.Response[emptypb.Empty], error) {
	return c.deleteCategory.CallUnary(ctx, req)
}

func (c *financeServiceClient) CreateTransaction(ctx context.Context, req *connect.Request[api.TransactionRequest]) (*connect.Response[api.TransactionResponse], error) {
	return c.createTransaction.CallUnary(ctx, req)
}

func (c *financeServiceClient) GetTransaction(ctx context.Context, req *connect.Request[api.GetRequest]) (*connect.Response[api.TransactionResponse], error) {
	return c.getTransaction.CallUnary(ctx, req)
}

func (c *financeServiceClient) UpdateTransaction(ctx context.Context, req *connect.Request[api.TransactionRequest]) (*connect.Response[api.TransactionResponse], error) {
	return c.updateTransaction.CallUnary(ctx, req)
}

func (c *financeServiceClient) DeleteTransaction(ctx context.Context, req *connect.Request[api.DeleteRequest]) (*connect.Response[emptypb.Empty], error) {
	return c.deleteTransaction.CallUnary(ctx, req)
}

func (c *financeServiceClient) ListTransactions(ctx context.Context, req *connect.Request[api.ListTransactionsRequest]) (*connect.Response[api.ListTransactionsResponse], error) {
	return c.listTransactions.CallUnary(ctx, req)
}

func (c *financeServiceClient) GetOverview(ctx context.Context, req *connect.Request[api.GetOverviewRequest]) (*connect.Response[api.GetOverviewResponse], error) {
	return c.getOverview.CallUnary(ctx, req)
}
