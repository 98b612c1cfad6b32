package ledger

import (
	"context"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// GroupBalances is the aggregate view of a group's debts.
type GroupBalances struct {
	// Members in join order; every member has an entry in Balances.
	Members  []*models.User
	Balances calculator.NetBalances
}

// ComputeNetBalances sums the group's balance rows into a per-member view.
// Members and rows are read from one snapshot, so a concurrently recorded
// expense is either fully counted or not at all. See
// calculator.AggregateBalances for netCounterparties.
func (e *Engine) ComputeNetBalances(ctx context.Context, groupID string, netCounterparties bool) (*GroupBalances, error) {
	result := &GroupBalances{}
	var rows []*models.Balance
	err := e.store.InReadTx(ctx, func(q storage.Queries) error {
		if _, err := requireGroup(ctx, q, groupID); err != nil {
			return err
		}

		var err error
		result.Members, err = q.ListMembers(ctx, groupID)
		if err != nil {
			return err
		}
		rows, err = q.ListBalances(ctx, groupID, storage.BalanceFilter{})
		return err
	})
	if err != nil {
		return nil, err
	}

	memberIDs := make([]string, len(result.Members))
	for i, m := range result.Members {
		memberIDs[i] = m.ID
	}
	result.Balances = calculator.AggregateBalances(memberIDs, rows, netCounterparties)
	return result, nil
}
