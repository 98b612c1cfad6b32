package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mmynk/splitledger/internal/models"
)

// CreateGroup persists a new group.
func (q *queries) CreateGroup(ctx context.Context, group *models.Group) error {
	// Generate ID if not set
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	nowIfZero(&group.CreatedAt)

	_, err := q.exec(ctx,
		"INSERT INTO groups (id, name, created_at) VALUES (?, ?, ?)",
		group.ID, group.Name, toUnix(group.CreatedAt),
	)
	if err != nil {
		return storageErr("failed to insert group", err)
	}
	return nil
}

// GetGroup retrieves a group by ID.
func (q *queries) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	group := &models.Group{}
	var createdAt int64

	err := q.queryRow(ctx,
		"SELECT id, name, created_at FROM groups WHERE id = ?",
		groupID,
	).Scan(&group.ID, &group.Name, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("group %s: %w", groupID, models.ErrNotFound)
	}
	if err != nil {
		return nil, storageErr("failed to get group", err)
	}

	group.CreatedAt = fromUnix(createdAt)
	return group, nil
}

// ListGroups retrieves all groups, newest first.
func (q *queries) ListGroups(ctx context.Context) ([]*models.Group, error) {
	rows, err := q.query(ctx, "SELECT id, name, created_at FROM groups ORDER BY created_at DESC, id")
	if err != nil {
		return nil, storageErr("failed to list groups", err)
	}
	defer rows.Close()

	var groups []*models.Group
	for rows.Next() {
		group := &models.Group{}
		var createdAt int64
		if err := rows.Scan(&group.ID, &group.Name, &createdAt); err != nil {
			return nil, storageErr("failed to scan group", err)
		}
		group.CreatedAt = fromUnix(createdAt)
		groups = append(groups, group)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("failed to iterate groups", err)
	}

	return groups, nil
}

// DeleteGroup removes a group and everything it owns. The deletes are issued
// explicitly so the cascade does not depend on foreign key enforcement; call
// it inside InTx to make them atomic.
func (q *queries) DeleteGroup(ctx context.Context, groupID string) error {
	for _, stmt := range []string{
		"DELETE FROM balances WHERE group_id = ?",
		"DELETE FROM expenses WHERE group_id = ?",
		"DELETE FROM group_memberships WHERE group_id = ?",
	} {
		if _, err := q.exec(ctx, stmt, groupID); err != nil {
			return storageErr("failed to delete group data", err)
		}
	}

	res, err := q.exec(ctx, "DELETE FROM groups WHERE id = ?", groupID)
	if err != nil {
		return storageErr("failed to delete group", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storageErr("failed to check deleted group", err)
	}
	if n == 0 {
		return fmt.Errorf("group %s: %w", groupID, models.ErrNotFound)
	}
	return nil
}
