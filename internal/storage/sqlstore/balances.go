package sqlstore

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// CreateBalance persists a new debt row to the database.
func (q *queries) CreateBalance(ctx context.Context, balance *models.Balance) error {
	if balance.ID == "" {
		balance.ID = uuid.New().String()
	}
	nowIfZero(&balance.CreatedAt)

	var expenseID any = nil
	if balance.ExpenseID != "" {
		expenseID = balance.ExpenseID
	}

	_, err := q.exec(ctx,
		`INSERT INTO balances (id, group_id, expense_id, debtor_id, creditor_id, amount, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		balance.ID, balance.GroupID, expenseID, balance.DebtorID, balance.CreditorID,
		balance.Amount, toUnix(balance.CreatedAt),
	)
	if err != nil {
		return storageErr("failed to insert balance", err)
	}
	return nil
}

// ListBalances retrieves a group's debt rows in creation order.
func (q *queries) ListBalances(ctx context.Context, groupID string, filter storage.BalanceFilter) ([]*models.Balance, error) {
	where := []string{"group_id = ?"}
	args := []any{groupID}
	if filter.DebtorID != "" {
		where = append(where, "debtor_id = ?")
		args = append(args, filter.DebtorID)
	}
	if filter.CreditorID != "" {
		where = append(where, "creditor_id = ?")
		args = append(args, filter.CreditorID)
	}

	rows, err := q.query(ctx,
		`SELECT id, group_id, expense_id, debtor_id, creditor_id, amount, created_at
		 FROM balances WHERE `+strings.Join(where, " AND ")+` ORDER BY created_at, id`,
		args...,
	)
	if err != nil {
		return nil, storageErr("failed to list balances", err)
	}
	defer rows.Close()

	var balances []*models.Balance
	for rows.Next() {
		balance := &models.Balance{}
		var expenseID sql.NullString
		var createdAt int64

		if err := rows.Scan(&balance.ID, &balance.GroupID, &expenseID, &balance.DebtorID,
			&balance.CreditorID, &balance.Amount, &createdAt); err != nil {
			return nil, storageErr("failed to scan balance", err)
		}

		if expenseID.Valid {
			balance.ExpenseID = expenseID.String
		}
		balance.CreatedAt = fromUnix(createdAt)
		balances = append(balances, balance)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("failed to iterate balances", err)
	}

	return balances, nil
}

// DeleteBalances removes every row in the group where the user is debtor or
// creditor.
func (q *queries) DeleteBalances(ctx context.Context, groupID, userID string) (int64, error) {
	res, err := q.exec(ctx,
		"DELETE FROM balances WHERE group_id = ? AND (debtor_id = ? OR creditor_id = ?)",
		groupID, userID, userID,
	)
	if err != nil {
		return 0, storageErr("failed to delete balances", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, storageErr("failed to count deleted balances", err)
	}
	return n, nil
}
