package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Balance is one directional debt edge: DebtorID owes CreditorID Amount within
// GroupID. Several rows may exist for the same pair, one per expense; the net
// position between users is computed by aggregation, never stored.
type Balance struct {
	// ID is the unique identifier for the balance row (UUID format).
	ID string

	GroupID string

	// ExpenseID is the expense this debt was derived from.
	ExpenseID string

	// DebtorID is the user who owes.
	DebtorID string

	// CreditorID is the user who is owed. Never equal to DebtorID.
	CreditorID string

	// Amount is always positive.
	Amount decimal.Decimal

	CreatedAt time.Time
}
