package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SplitStrategy selects how an expense amount is divided among group members.
type SplitStrategy string

const (
	SplitEqual   SplitStrategy = "equal"
	SplitPercent SplitStrategy = "percent"
)

// Valid reports whether s is a known strategy tag.
func (s SplitStrategy) Valid() bool {
	return s == SplitEqual || s == SplitPercent
}

// DefaultExpenseDescription is used when an expense is recorded without one.
const DefaultExpenseDescription = "Expense"

// Expense records one payment made by a member on behalf of the group.
// Expenses are immutable once created.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	GroupID string

	// PayerID is the user who paid and who every generated debt is owed to.
	PayerID string

	// Amount is the total paid. Always positive with at most two decimal places.
	Amount decimal.Decimal

	Description string

	// Strategy is the split rule that produced this expense's balances.
	Strategy SplitStrategy

	// CreatedAt orders the group ledger (newest first).
	CreatedAt time.Time
}
