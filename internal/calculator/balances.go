package calculator

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

// CounterpartyAmount is the total of a user's balance rows with one counterparty.
type CounterpartyAmount struct {
	UserID string
	Amount decimal.Decimal
}

// MemberBalance is the aggregate position of one group member.
type MemberBalance struct {
	UserID string

	// NetBalance is TotalOwedToThem - TotalOwed.
	// Positive = others owe this user, Negative = this user owes others.
	NetBalance decimal.Decimal

	// TotalOwed sums every row where this user is the debtor.
	TotalOwed decimal.Decimal

	// TotalOwedToThem sums every row where this user is the creditor.
	TotalOwedToThem decimal.Decimal

	// OwesTo lists what this user owes, grouped by creditor.
	OwesTo []CounterpartyAmount

	// OwedBy lists what is owed to this user, grouped by debtor.
	OwedBy []CounterpartyAmount
}

// NetBalances maps user ID to that member's aggregate position.
type NetBalances map[string]*MemberBalance

// AggregateBalances sums balance rows into one MemberBalance per member.
//
// Detail lists are raw by default: a user who owes B from one expense and is
// owed by B from another reports both directions. With netCounterparties set,
// each pair is collapsed to a single entry in the direction of the larger
// total. Totals and net balances are identical either way.
//
// Counterparties are listed in member order; any that are not members
// (which a consistent store never produces) follow, sorted by ID.
func AggregateBalances(memberIDs []string, rows []*models.Balance, netCounterparties bool) NetBalances {
	rank := make(map[string]int, len(memberIDs))
	for i, id := range memberIDs {
		rank[id] = i
	}

	// owes[debtor][creditor] = amount
	owes := make(map[string]map[string]decimal.Decimal)
	for _, row := range rows {
		if _, ok := owes[row.DebtorID]; !ok {
			owes[row.DebtorID] = make(map[string]decimal.Decimal)
		}
		owes[row.DebtorID][row.CreditorID] = owes[row.DebtorID][row.CreditorID].Add(row.Amount)
	}

	balances := make(NetBalances, len(memberIDs))
	for _, id := range memberIDs {
		balances[id] = &MemberBalance{UserID: id}
	}

	for debtor, creditors := range owes {
		for creditor, amount := range creditors {
			if bal, ok := balances[debtor]; ok {
				bal.TotalOwed = bal.TotalOwed.Add(amount)
			}
			if bal, ok := balances[creditor]; ok {
				bal.TotalOwedToThem = bal.TotalOwedToThem.Add(amount)
			}

			if netCounterparties {
				amount = amount.Sub(owes[creditor][debtor])
				if !amount.IsPositive() {
					continue
				}
			}
			if bal, ok := balances[debtor]; ok {
				bal.OwesTo = append(bal.OwesTo, CounterpartyAmount{UserID: creditor, Amount: amount})
			}
			if bal, ok := balances[creditor]; ok {
				bal.OwedBy = append(bal.OwedBy, CounterpartyAmount{UserID: debtor, Amount: amount})
			}
		}
	}

	for _, bal := range balances {
		bal.NetBalance = bal.TotalOwedToThem.Sub(bal.TotalOwed)
		sortCounterparties(bal.OwesTo, rank)
		sortCounterparties(bal.OwedBy, rank)
	}
	return balances
}

func sortCounterparties(list []CounterpartyAmount, rank map[string]int) {
	sort.Slice(list, func(i, j int) bool {
		ri, iok := rank[list[i].UserID]
		rj, jok := rank[list[j].UserID]
		switch {
		case iok && jok:
			return ri < rj
		case iok != jok:
			return iok
		default:
			return list[i].UserID < list[j].UserID
		}
	})
}
