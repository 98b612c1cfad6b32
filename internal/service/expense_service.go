package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/pkg/api"
	"github.com/mmynk/splitledger/pkg/api/apiconnect"
)

// Ensure ExpenseService implements the generated handler interface
var _ apiconnect.ExpenseServiceHandler = (*ExpenseService)(nil)

// ExpenseService implements the Connect ExpenseService
type ExpenseService struct {
	engine *ledger.Engine
}

// NewExpenseService creates a new ExpenseService backed by the ledger engine.
func NewExpenseService(engine *ledger.Engine) *ExpenseService {
	return &ExpenseService{engine: engine}
}

// RecordExpense records an expense and the debts it creates.
func (s *ExpenseService) RecordExpense(ctx context.Context, req *connect.Request[api.RecordExpenseRequest]) (*connect.Response[api.RecordExpenseResponse], error) {
	slog.Info("RecordExpense request received",
		"group_id", req.Msg.GroupID,
		"payer_id", req.Msg.PayerID,
		"strategy", req.Msg.Strategy,
	)

	record, err := s.engine.RecordExpense(ctx, ledger.ExpenseInput{
		GroupID:     req.Msg.GroupID,
		PayerID:     req.Msg.PayerID,
		Amount:      req.Msg.Amount,
		Description: req.Msg.Description,
		Strategy:    models.SplitStrategy(req.Msg.Strategy),
		Percentages: req.Msg.Percentages,
	})
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.RecordExpenseResponse{
		Expense:   toAPIExpense(record.Expense),
		Balances:  toAPIBalances(record.Balances),
		Remainder: record.Remainder,
	}), nil
}

// PreviewSplit shows how an expense would be split without recording it.
func (s *ExpenseService) PreviewSplit(ctx context.Context, req *connect.Request[api.PreviewSplitRequest]) (*connect.Response[api.PreviewSplitResponse], error) {
	result, err := s.engine.PreviewSplit(ctx, ledger.ExpenseInput{
		GroupID:     req.Msg.GroupID,
		PayerID:     req.Msg.PayerID,
		Amount:      req.Msg.Amount,
		Strategy:    models.SplitStrategy(req.Msg.Strategy),
		Percentages: req.Msg.Percentages,
	})
	if err != nil {
		slog.Debug("PreviewSplit rejected", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.PreviewSplitResponse{
		Shares:    toAPIShares(result.Shares),
		Debts:     toAPIShares(result.Debts),
		Remainder: result.Remainder,
	}), nil
}

// ListExpenses returns a group's expenses, newest first.
func (s *ExpenseService) ListExpenses(ctx context.Context, req *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error) {
	expenses, err := s.engine.ListExpenses(ctx, req.Msg.GroupID)
	if err != nil {
		slog.Error("ListExpenses failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	apiExpenses := make([]*api.Expense, len(expenses))
	for i, e := range expenses {
		apiExpenses[i] = toAPIExpense(e)
	}

	return connect.NewResponse(&api.ListExpensesResponse{Expenses: apiExpenses}), nil
}

// ListBalances returns a group's raw debt rows, optionally filtered by
// debtor and creditor.
func (s *ExpenseService) ListBalances(ctx context.Context, req *connect.Request[api.ListBalancesRequest]) (*connect.Response[api.ListBalancesResponse], error) {
	balances, err := s.engine.ListBalances(ctx, req.Msg.GroupID, storage.BalanceFilter{
		DebtorID:   req.Msg.DebtorID,
		CreditorID: req.Msg.CreditorID,
	})
	if err != nil {
		slog.Error("ListBalances failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.ListBalancesResponse{Balances: toAPIBalances(balances)}), nil
}
