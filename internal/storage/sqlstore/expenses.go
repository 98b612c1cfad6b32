package sqlstore

import (
	"context"

	"github.com/google/uuid"

	"github.com/mmynk/splitledger/internal/models"
)

// CreateExpense persists a new expense to the database.
func (q *queries) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	nowIfZero(&expense.CreatedAt)

	_, err := q.exec(ctx,
		`INSERT INTO expenses (id, group_id, payer_id, amount, description, split_type, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		expense.ID, expense.GroupID, expense.PayerID, expense.Amount,
		expense.Description, string(expense.Strategy), toUnix(expense.CreatedAt),
	)
	if err != nil {
		return storageErr("failed to insert expense", err)
	}
	return nil
}

// ListExpenses retrieves a group's expenses, newest first.
func (q *queries) ListExpenses(ctx context.Context, groupID string) ([]*models.Expense, error) {
	rows, err := q.query(ctx,
		`SELECT id, group_id, payer_id, amount, description, split_type, created_at
		 FROM expenses WHERE group_id = ? ORDER BY created_at DESC, id DESC`,
		groupID,
	)
	if err != nil {
		return nil, storageErr("failed to list expenses", err)
	}
	defer rows.Close()

	var expenses []*models.Expense
	for rows.Next() {
		expense := &models.Expense{}
		var strategy string
		var createdAt int64

		if err := rows.Scan(&expense.ID, &expense.GroupID, &expense.PayerID, &expense.Amount,
			&expense.Description, &strategy, &createdAt); err != nil {
			return nil, storageErr("failed to scan expense", err)
		}

		expense.Strategy = models.SplitStrategy(strategy)
		expense.CreatedAt = fromUnix(createdAt)
		expenses = append(expenses, expense)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("failed to iterate expenses", err)
	}

	return expenses, nil
}
