package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/events"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// ExpenseInput describes an expense to record or preview.
type ExpenseInput struct {
	GroupID     string
	PayerID     string
	Amount      decimal.Decimal
	Description string
	Strategy    models.SplitStrategy

	// Percentages is required for SplitPercent: one entry per member, in
	// join order.
	Percentages []decimal.Decimal
}

// ExpenseRecord is the result of RecordExpense.
type ExpenseRecord struct {
	Expense *models.Expense

	// Balances are the debt rows written for this expense, in member order.
	Balances []*models.Balance

	// Remainder is the rounding difference between the amount and the sum
	// of all shares. It is zero unless a percent split did not divide evenly.
	Remainder decimal.Decimal
}

// RecordExpense persists an expense and one balance row per non-zero,
// non-payer share, all in one transaction. The participants are the group's
// current members in join order. Existing balances are never modified.
func (e *Engine) RecordExpense(ctx context.Context, in ExpenseInput) (*ExpenseRecord, error) {
	description := strings.TrimSpace(in.Description)
	if description == "" {
		description = models.DefaultExpenseDescription
	}

	record := &ExpenseRecord{}
	err := e.store.InTx(ctx, func(q storage.Queries) error {
		split, err := e.split(ctx, q, in)
		if err != nil {
			return err
		}
		record.Remainder = split.Remainder

		now := e.timestamp()
		record.Expense = &models.Expense{
			GroupID:     in.GroupID,
			PayerID:     in.PayerID,
			Amount:      in.Amount,
			Description: description,
			Strategy:    in.Strategy,
			CreatedAt:   now,
		}
		if err := q.CreateExpense(ctx, record.Expense); err != nil {
			return err
		}

		for _, debt := range split.Debts {
			balance := &models.Balance{
				GroupID:    in.GroupID,
				ExpenseID:  record.Expense.ID,
				DebtorID:   debt.UserID,
				CreditorID: in.PayerID,
				Amount:     debt.Amount,
				CreatedAt:  now,
			}
			if err := q.CreateBalance(ctx, balance); err != nil {
				return err
			}
			record.Balances = append(record.Balances, balance)
		}
		return nil
	})
	if err != nil {
		slog.ErrorContext(ctx, "RecordExpense failed", "group_id", in.GroupID, "error", err)
		return nil, err
	}

	slog.InfoContext(ctx, "Expense recorded",
		"group_id", in.GroupID,
		"expense_id", record.Expense.ID,
		"amount", in.Amount.StringFixed(calculator.MoneyPlaces),
		"strategy", in.Strategy,
		"balances", len(record.Balances))
	if !record.Remainder.IsZero() {
		slog.WarnContext(ctx, "Split shares do not add up to the expense amount",
			"group_id", in.GroupID,
			"expense_id", record.Expense.ID,
			"remainder", record.Remainder.String())
	}

	e.publish(ctx, events.Event{
		Kind:       events.KindExpenseRecorded,
		GroupID:    in.GroupID,
		UserID:     in.PayerID,
		ExpenseID:  record.Expense.ID,
		Amount:     in.Amount.StringFixed(calculator.MoneyPlaces),
		OccurredAt: record.Expense.CreatedAt,
	})
	return record, nil
}

// PreviewSplit runs the same checks and calculation as RecordExpense
// without writing anything.
func (e *Engine) PreviewSplit(ctx context.Context, in ExpenseInput) (*calculator.SplitResult, error) {
	var result *calculator.SplitResult
	err := e.store.InReadTx(ctx, func(q storage.Queries) error {
		var err error
		result, err = e.split(ctx, q, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// split checks the group and payer, then divides the amount among the
// current members.
func (e *Engine) split(ctx context.Context, q storage.Queries, in ExpenseInput) (*calculator.SplitResult, error) {
	if _, err := requireGroup(ctx, q, in.GroupID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.PayerID) == "" {
		return nil, fmt.Errorf("%w: payer id is required", models.ErrValidation)
	}

	isMember, err := q.MembershipExists(ctx, in.GroupID, in.PayerID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, fmt.Errorf("payer %s in group %s: %w", in.PayerID, in.GroupID, models.ErrNotAMember)
	}

	members, err := q.ListMembers(ctx, in.GroupID)
	if err != nil {
		return nil, err
	}
	participants := make([]string, len(members))
	for i, m := range members {
		participants[i] = m.ID
	}

	return calculator.ComputeSplits(in.Amount, in.Strategy, in.PayerID, participants, in.Percentages)
}

// ListExpenses returns the group's expenses, newest first.
func (e *Engine) ListExpenses(ctx context.Context, groupID string) ([]*models.Expense, error) {
	var expenses []*models.Expense
	err := e.store.InReadTx(ctx, func(q storage.Queries) error {
		if _, err := requireGroup(ctx, q, groupID); err != nil {
			return err
		}
		var err error
		expenses, err = q.ListExpenses(ctx, groupID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return expenses, nil
}

// ListBalances returns the group's raw debt rows in creation order.
func (e *Engine) ListBalances(ctx context.Context, groupID string, filter storage.BalanceFilter) ([]*models.Balance, error) {
	var balances []*models.Balance
	err := e.store.InReadTx(ctx, func(q storage.Queries) error {
		if _, err := requireGroup(ctx, q, groupID); err != nil {
			return err
		}
		var err error
		balances, err = q.ListBalances(ctx, groupID, filter)
		return err
	})
	if err != nil {
		return nil, err
	}
	return balances, nil
}
