package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/mmynk/famfund/pkg/api"
)

// ContributeServiceName is the fully-qualified name of the ContributeService service.
const ContributeServiceName = "famfund.v1.ContributeService"

const (
	ContributeServiceCreateLedgerProcedure     = "/famfund.v1.ContributeService/CreateLedger"
	ContributeServiceListLedgersProcedure      = "/famfund.v1.ContributeService/ListLedgers"
	ContributeServiceAddExpenseProcedure       = "/famfund.v1.ContributeService/AddExpense"
	ContributeServiceListExpensesProcedure     = "/famfund.v1.ContributeService/ListExpenses"
	ContributeServiceGetBalancesProcedure      = "/famfund.v1.ContributeService/GetBalances"
	ContributeServiceProposeTransfersProcedure = "/famfund.v1.ContributeService/ProposeTransfers"
	ContributeServiceMarkSettledProcedure      = "/famfund.v1.ContributeService/MarkSettled"
	ContributeServiceRecordTransfersProcedure  = "/famfund.v1.ContributeService/RecordTransfers"
	ContributeServiceListTransfersProcedure    = "/famfund.v1.ContributeService/ListTransfers"
)

// ContributeServiceHandler is implemented by the server.
type ContributeServiceHandler interface {
	CreateLedger(context.Context, *connect.Request[api.CreateLedgerRequest]) (*connect.Response[api.CreateLedgerResponse], error)
	ListLedgers(context.Context, *connect.Request[emptypb.Empty]) (*connect.Response[api.ListLedgersResponse], error)
	AddExpense(context.Context, *connect.Request[api.AddExpenseRequest]) (*connect.Response[api.AddExpenseResponse], error)
	ListExpenses(context.Context, *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error)
	GetBalances(context.Context, *connect.Request[api.LedgerRequest]) (*connect.Response[api.GetBalancesResponse], error)
	ProposeTransfers(context.Context, *connect.Request[api.LedgerRequest]) (*connect.Response[api.ProposeTransfersResponse], error)
	MarkSettled(context.Context, *connect.Request[api.MarkSettledRequest]) (*connect.Response[api.MarkSettledResponse], error)
	RecordTransfers(context.Context, *connect.Request[api.RecordTransfersRequest]) (*connect.Response[api.ListTransfersResponse], error)
	ListTransfers(context.Context, *connect.Request[api.LedgerRequest]) (*connect.Response[api.ListTransfersResponse], error)
}

// NewContributeServiceHandler builds an HTTP handler from the service implementation.
func NewContributeServiceHandler(svc ContributeServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = withCodec(opts)
	mux := http.NewServeMux()
	mux.Handle(ContributeServiceCreateLedgerProcedure, connect.NewUnaryHandler(ContributeServiceCreateLedgerProcedure, svc.CreateLedger, opts...))
	mux.Handle(ContributeServiceListLedgersProcedure, connect.NewUnaryHandler(ContributeServiceListLedgersProcedure, svc.ListLedgers, opts...))
	mux.Handle(ContributeServiceAddExpenseProcedure, connect.NewUnaryHandler(ContributeServiceAddExpenseProcedure, svc.AddExpense, opts...))
	mux.Handle(ContributeServiceListExpensesProcedure, connect.NewUnaryHandler(ContributeServiceListExpensesProcedure, svc.ListExpenses, opts...))
	mux.Handle(ContributeServiceGetBalancesProcedure, connect.NewUnaryHandler(ContributeServiceGetBalancesProcedure, svc.GetBalances, opts...))
	mux.Handle(ContributeServiceProposeTransfersProcedure, connect.NewUnaryHandler(ContributeServiceProposeTransfersProcedure, svc.ProposeTransfers, opts...))
	mux.Handle(ContributeServiceMarkSettledProcedure, connect.NewUnaryHandler(ContributeServiceMarkSettledProcedure, svc.MarkSettled, opts...))
	mux.Handle(ContributeServiceRecordTransfersProcedure, connect.NewUnaryHandler(ContributeServiceRecordTransfersProcedure, svc.RecordTransfers, opts...))
	mux.Handle(ContributeServiceListTransfersProcedure, connect.NewUnaryHandler(ContributeServiceListTransfersProcedure, svc.ListTransfers, opts...))
	return "/" + ContributeServiceName + "/", mux
}

// ContributeServiceClient is a client for the ContributeService.
type ContributeServiceClient interface {
	ContributeServiceHandler
}

type contributeServiceClient struct {
	createLedger     *connect.Client[api.CreateLedgerRequest, api.CreateLedgerResponse]
	listLedgers      *connect.Client[emptypb.Empty, api.ListLedgersResponse]
	addExpense       *connect.Client[api.AddExpenseRequest, api.AddExpenseResponse]
	listExpenses     *connect.Client[api.ListExpensesRequest, api.ListExpensesResponse]
	getBalances      *connect.Client[api.LedgerRequest, api.GetBalancesResponse]
	proposeTransfers *connect.Client[api.LedgerRequest, api.ProposeTransfersResponse]
	markSettled      *connect.Client[api.MarkSettledRequest, api.MarkSettledResponse]
	recordTransfers  *connect.Client[api.RecordTransfersRequest, api.ListTransfersResponse]
	listTransfers    *connect.Client[api.LedgerRequest, api.ListTransfersResponse]
}

// NewContributeServiceClient constructs a client for the ContributeService at baseURL.
func NewContributeServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) ContributeServiceClient {
	opts = withClientCodec(opts)
	baseURL = trimSlash(baseURL)
	return &contributeServiceClient{
		createLedger:     connect.NewClient[api.CreateLedgerRequest, api.CreateLedgerResponse](httpClient, baseURL+ContributeServiceCreateLedgerProcedure, opts...),
		listLedgers:      connect.NewClient[emptypb.Empty, api.ListLedgersResponse](httpClient, baseURL+ContributeServiceListLedgersProcedure, opts...),
		addExpense:       connect.NewClient[api.AddExpenseRequest, api.AddExpenseResponse](httpClient, baseURL+ContributeServiceAddExpenseProcedure, opts...),
		listExpenses:     connect.NewClient[api.ListExpensesRequest, api.ListExpensesResponse](httpClient, baseURL+ContributeServiceListExpensesProcedure, opts...),
		getBalances:      connect.NewClient[api.LedgerRequest, api.GetBalancesResponse](httpClient, baseURL+ContributeServiceGetBalancesProcedure, opts...),
		proposeTransfers: connect.NewClient[api.LedgerRequest, api.ProposeTransfersResponse](httpClient, baseURL+ContributeServiceProposeTransfersProcedure, opts...),
		markSettled:      connect.NewClient[api.MarkSettledRequest, api.MarkSettledResponse](httpClient, baseURL+ContributeServiceMarkSettledProcedure, opts...),
		recordTransfers:  connect.NewClient[api.RecordTransfersRequest, api.ListTransfersResponse](httpClient, baseURL+ContributeServiceRecordTransfersProcedure, opts...),
		listTransfers:    connect.NewClient[api.LedgerRequest, api.ListTransfersResponse](httpClient, baseURL+ContributeServiceListTransfersProcedure, opts...),
	}
}

func (c *contributeServiceClient) CreateLedger(ctx context.Context, req *connect.Request[api.CreateLedgerRequest]) (*connect.Response[api.CreateLedgerResponse], error) {
	return c.createLedger.CallUnary(ctx, req)
}

func (c *contributeServiceClient) ListLedgers(ctx context.Context, req *connect.Request[emptypb.Empty]) (*connect.Response[api.ListLedgersResponse], error) {
	return c.listLedgers.CallUnary(ctx, req)
}

func (c *contributeServiceClient) AddExpense(ctx context.Context, req *connect.Request[api.AddExpenseRequest]) (*connect.Response[api.AddExpenseResponse], error) {
	return c.addExpense.CallUnary(ctx, req)
}

func (c *contributeServiceClient) ListExpenses(ctx context.Context, req *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error) {
	return c.listExpenses.CallUnary(ctx, req)
}

func (c *contributeServiceClient) GetBalances(ctx context.Context, req *connect.Request[api.LedgerRequest]) (*connect.Response[api.GetBalancesResponse], error) {
	return c.getBalances.CallUnary(ctx, req)
}

func (c *contributeServiceClient) ProposeTransfers(ctx context.Context, req *connect.Request[api.LedgerRequest]) (*connect.Response[api.ProposeTransfersResponse], error) {
	return c.proposeTransfers.CallUnary(ctx, req)
}

func (c *contributeServiceClient) MarkSettled(ctx context.Context, req *connect.Request[api.MarkSettledRequest]) (*connect.Response[api.MarkSettledResponse], error) {
	return c.markSettled.CallUnary(ctx, req)
}

func (c *contributeServiceClient) RecordTransfers(ctx context.Context, req *connect.Request[api.RecordTransfersRequest]) (*connect.Response[api.ListTransfersResponse], error) {
	return c.recordTransfers.CallUnary(ctx, req)
}

func (c *contributeServiceClient) ListTransfers(ctx context.Context, req *connect.Request[api.LedgerRequest]) (*connect.Response[api.ListTransfersResponse], error) {
	return c.listTransfers.CallUnary(ctx, req)
}
