package calculator

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

// MoneyPlaces is the number of decimal places every amount is kept at.
const MoneyPlaces = 2

var (
	hundred = decimal.NewFromInt(100)

	// percentTolerance is how far the sum of percentages may drift from 100.
	percentTolerance = decimal.New(1, -2)
)

// Share is one user's portion of an expense.
type Share struct {
	UserID string
	Amount decimal.Decimal
}

// SplitResult is the output of ComputeSplits.
type SplitResult struct {
	// Shares holds every participant's portion in participant order, payer
	// and zero portions included.
	Shares []Share

	// Debts are the exact debt edges to persist, all owed to the payer.
	// Payer and zero rows are never present.
	Debts []Share

	// Remainder is amount minus the sum of all shares. Equal splits always
	// allocate exactly; percent splits may leave a few cents of rounding
	// drift, or more when the percentages only sum to 100 within tolerance.
	Remainder decimal.Decimal
}

// ComputeSplits divides amount among participants according to strategy.
// It performs no I/O.
//
// Equal splits allocate whole cents: every participant gets amount/n rounded
// down to the cent and the leftover cents go one each to the earliest
// participants, so shares sum to amount exactly.
//
// Percent splits require one percentage per participant in the same order,
// summing to 100 within ±0.01. Each share is amount × pct / 100 rounded to
// the cent (half away from zero).
func ComputeSplits(amount decimal.Decimal, strategy models.SplitStrategy, payerID string, participants []string, percentages []decimal.Decimal) (*SplitResult, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive (got %s)", models.ErrValidation, amount)
	}
	if !amount.Equal(amount.Round(MoneyPlaces)) {
		return nil, fmt.Errorf("%w: amount has more than %d decimal places (got %s)", models.ErrValidation, MoneyPlaces, amount)
	}
	if len(participants) == 0 {
		return nil, fmt.Errorf("%w: no participants", models.ErrInvalidSplit)
	}
	if err := checkUnique(participants); err != nil {
		return nil, err
	}

	var shares []Share
	var err error
	switch strategy {
	case models.SplitEqual:
		shares = equalShares(amount, participants)
	case models.SplitPercent:
		shares, err = percentShares(amount, participants, percentages)
	default:
		err = fmt.Errorf("%w: unknown strategy %q", models.ErrInvalidSplit, strategy)
	}
	if err != nil {
		return nil, err
	}

	result := &SplitResult{Shares: shares, Remainder: amount}
	for _, s := range shares {
		result.Remainder = result.Remainder.Sub(s.Amount)
		// A user never owes themself, and zero rows carry no debt.
		if s.UserID == payerID || s.Amount.IsZero() {
			continue
		}
		result.Debts = append(result.Debts, s)
	}
	return result, nil
}

func equalShares(amount decimal.Decimal, participants []string) []Share {
	// Cents stay in decimal; amounts are unbounded and would wrap an int64.
	cents := amount.Shift(MoneyPlaces)
	base, rem := cents.QuoRem(decimal.NewFromInt(int64(len(participants))), 0)
	extra := rem.IntPart()

	shares := make([]Share, len(participants))
	for i, p := range participants {
		c := base
		if int64(i) < extra {
			c = c.Add(decimal.NewFromInt(1))
		}
		shares[i] = Share{UserID: p, Amount: c.Shift(-MoneyPlaces)}
	}
	return shares
}

func percentShares(amount decimal.Decimal, participants []string, percentages []decimal.Decimal) ([]Share, error) {
	if len(percentages) == 0 {
		return nil, fmt.Errorf("%w: percentages missing", models.ErrInvalidSplit)
	}
	if len(percentages) != len(participants) {
		return nil, fmt.Errorf("%w: percentage count mismatch (got %d, want %d)",
			models.ErrInvalidSplit, len(percentages), len(participants))
	}

	sum := decimal.Zero
	for i, pct := range percentages {
		if pct.IsNegative() {
			return nil, fmt.Errorf("%w: negative percentage for %s (got %s)", models.ErrInvalidSplit, participants[i], pct)
		}
		sum = sum.Add(pct)
	}
	if sum.Sub(hundred).Abs().GreaterThan(percentTolerance) {
		return nil, fmt.Errorf("%w: percentage sum mismatch (got %s)", models.ErrInvalidSplit, sum)
	}

	shares := make([]Share, len(participants))
	for i, p := range participants {
		shares[i] = Share{
			UserID: p,
			Amount: amount.Mul(percentages[i]).Div(hundred).Round(MoneyPlaces),
		}
	}
	return shares, nil
}

func checkUnique(participants []string) error {
	seen := make(map[string]bool, len(participants))
	for _, p := range participants {
		if seen[p] {
			return fmt.Errorf("%w: duplicate participant %s", models.ErrInvalidSplit, p)
		}
		seen[p] = true
	}
	return nil
}
