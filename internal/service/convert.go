package service

import (
	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/pkg/api"
)

func toAPIUser(u *models.User) *api.User {
	return &api.User{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

func toAPIUsers(users []*models.User) []*api.User {
	out := make([]*api.User, len(users))
	for i, u := range users {
		out[i] = toAPIUser(u)
	}
	return out
}

func toAPIGroup(g *models.Group, members []*models.User) *api.Group {
	group := &api.Group{
		ID:        g.ID,
		Name:      g.Name,
		CreatedAt: g.CreatedAt,
	}
	if len(members) > 0 {
		group.Members = toAPIUsers(members)
	}
	return group
}

func toAPIExpense(e *models.Expense) *api.Expense {
	return &api.Expense{
		ID:          e.ID,
		GroupID:     e.GroupID,
		PayerID:     e.PayerID,
		Amount:      e.Amount,
		Description: e.Description,
		Strategy:    string(e.Strategy),
		CreatedAt:   e.CreatedAt,
	}
}

func toAPIBalances(balances []*models.Balance) []*api.Balance {
	out := make([]*api.Balance, len(balances))
	for i, b := range balances {
		out[i] = &api.Balance{
			ID:         b.ID,
			GroupID:    b.GroupID,
			ExpenseID:  b.ExpenseID,
			DebtorID:   b.DebtorID,
			CreditorID: b.CreditorID,
			Amount:     b.Amount,
			CreatedAt:  b.CreatedAt,
		}
	}
	return out
}

func toAPIShares(shares []calculator.Share) []*api.Share {
	out := make([]*api.Share, len(shares))
	for i, s := range shares {
		out[i] = &api.Share{UserID: s.UserID, Amount: s.Amount}
	}
	return out
}

func toAPICounterparties(list []calculator.CounterpartyAmount) []*api.Share {
	out := make([]*api.Share, len(list))
	for i, c := range list {
		out[i] = &api.Share{UserID: c.UserID, Amount: c.Amount}
	}
	return out
}

func toAPIMemberBalance(u *models.User, b *calculator.MemberBalance) *api.MemberBalance {
	return &api.MemberBalance{
		UserID:          u.ID,
		Name:            u.Name,
		NetBalance:      b.NetBalance,
		TotalOwed:       b.TotalOwed,
		TotalOwedToThem: b.TotalOwedToThem,
		OwesTo:          toAPICounterparties(b.OwesTo),
		OwedBy:          toAPICounterparties(b.OwedBy),
	}
}
