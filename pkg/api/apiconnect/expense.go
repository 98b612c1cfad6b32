package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/pkg/api"
)

// ExpenseServiceName is the fully-qualified name of the ExpenseService service.
const ExpenseServiceName = "ledger.v1.ExpenseService"

const (
	ExpenseServiceRecordExpenseProcedure = "/ledger.v1.ExpenseService/RecordExpense"
	ExpenseServicePreviewSplitProcedure  = "/ledger.v1.ExpenseService/PreviewSplit"
	ExpenseServiceListExpensesProcedure  = "/ledger.v1.ExpenseService/ListExpenses"
	ExpenseServiceListBalancesProcedure  = "/ledger.v1.ExpenseService/ListBalances"
)

// ExpenseServiceHandler is implemented by the server side of ExpenseService.
type ExpenseServiceHandler interface {
	RecordExpense(context.Context, *connect.Request[api.RecordExpenseRequest]) (*connect.Response[api.RecordExpenseResponse], error)
	PreviewSplit(context.Context, *connect.Request[api.PreviewSplitRequest]) (*connect.Response[api.PreviewSplitResponse], error)
	ListExpenses(context.Context, *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error)
	ListBalances(context.Context, *connect.Request[api.ListBalancesRequest]) (*connect.Response[api.ListBalancesResponse], error)
}

// NewExpenseServiceHandler builds an HTTP handler from the service
// implementation. It returns the path on which to mount the handler and the
// handler itself.
func NewExpenseServiceHandler(svc ExpenseServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(api.JSONCodec{})}, opts...)

	recordExpense := connect.NewUnaryHandler(ExpenseServiceRecordExpenseProcedure, svc.RecordExpense, opts...)
	previewSplit := connect.NewUnaryHandler(ExpenseServicePreviewSplitProcedure, svc.PreviewSplit, opts...)
	listExpenses := connect.NewUnaryHandler(ExpenseServiceListExpensesProcedure, svc.ListExpenses, opts...)
	listBalances := connect.NewUnaryHandler(ExpenseServiceListBalancesProcedure, svc.ListBalances, opts...)

	return "/" + ExpenseServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case ExpenseServiceRecordExpenseProcedure:
			recordExpense.ServeHTTP(w, r)
		case ExpenseServicePreviewSplitProcedure:
			previewSplit.ServeHTTP(w, r)
		case ExpenseServiceListExpensesProcedure:
			listExpenses.ServeHTTP(w, r)
		case ExpenseServiceListBalancesProcedure:
			listBalances.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// ExpenseServiceClient is a client for ExpenseService.
type ExpenseServiceClient interface {
	RecordExpense(context.Context, *connect.Request[api.RecordExpenseRequest]) (*connect.Response[api.RecordExpenseResponse], error)
	PreviewSplit(context.Context, *connect.Request[api.PreviewSplitRequest]) (*connect.Response[api.PreviewSplitResponse], error)
	ListExpenses(context.Context, *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error)
	ListBalances(context.Context, *connect.Request[api.ListBalancesRequest]) (*connect.Response[api.ListBalancesResponse], error)
}

// NewExpenseServiceClient constructs a client for ExpenseService at baseURL.
func NewExpenseServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) ExpenseServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(api.JSONCodec{})}, opts...)

	return &expenseServiceClient{
		recordExpense: connect.NewClient[api.RecordExpenseRequest, api.RecordExpenseResponse](httpClient, baseURL+ExpenseServiceRecordExpenseProcedure, opts...),
		previewSplit:  connect.NewClient[api.PreviewSplitRequest, api.PreviewSplitResponse](httpClient, baseURL+ExpenseServicePreviewSplitProcedure, opts...),
		listExpenses:  connect.NewClient[api.ListExpensesRequest, api.ListExpensesResponse](httpClient, baseURL+ExpenseServiceListExpensesProcedure, opts...),
		listBalances:  connect.NewClient[api.ListBalancesRequest, api.ListBalancesResponse](httpClient, baseURL+ExpenseServiceListBalancesProcedure, opts...),
	}
}

type expenseServiceClient struct {
	recordExpense *connect.Client[api.RecordExpenseRequest, api.RecordExpenseResponse]
	previewSplit  *connect.Client[api.PreviewSplitRequest, api.PreviewSplitResponse]
	listExpenses  *connect.Client[api.ListExpensesRequest, api.ListExpensesResponse]
	listBalances  *connect.Client[api.ListBalancesRequest, api.ListBalancesResponse]
}

func (c *expenseServiceClient) RecordExpense(ctx context.Context, req *connect.Request[api.RecordExpenseRequest]) (*connect.Response[api.RecordExpenseResponse], error) {
	return c.recordExpense.CallUnary(ctx, req)
}

func (c *expenseServiceClient) PreviewSplit(ctx context.Context, req *connect.Request[api.PreviewSplitRequest]) (*connect.Response[api.PreviewSplitResponse], error) {
	return c.previewSplit.CallUnary(ctx, req)
}

func (c *expenseServiceClient) ListExpenses(ctx context.Context, req *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error) {
	return c.listExpenses.CallUnary(ctx, req)
}

func (c *expenseServiceClient) ListBalances(ctx context.Context, req *connect.Request[api.ListBalancesRequest]) (*connect.Response[api.ListBalancesResponse], error) {
	return c.listBalances.CallUnary(ctx, req)
}
