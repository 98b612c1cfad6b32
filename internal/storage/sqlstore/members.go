package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mmynk/splitledger/internal/models"
)

// ListMembers returns the group's users in join order.
func (q *queries) ListMembers(ctx context.Context, groupID string) ([]*models.User, error) {
	rows, err := q.query(ctx,
		`SELECT u.id, u.name, u.email, u.created_at
		 FROM group_memberships m
		 JOIN users u ON u.id = m.user_id
		 WHERE m.group_id = ?
		 ORDER BY m.join_order, m.joined_at, u.id`,
		groupID,
	)
	if err != nil {
		return nil, storageErr("failed to list members", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, storageErr("failed to scan member", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("failed to iterate members", err)
	}

	return users, nil
}

// CreateMembership places the user after every existing member of the group.
// The group row is locked first where the backend supports it, so concurrent
// joins cannot read the same last position.
func (q *queries) CreateMembership(ctx context.Context, groupID, userID string, joinedAt time.Time) (bool, error) {
	nowIfZero(&joinedAt)

	var locked string
	err := q.queryRow(ctx, "SELECT id FROM groups WHERE id = ?"+q.dialect.lockRow, groupID).Scan(&locked)
	if errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("group %s: %w", groupID, models.ErrNotFound)
	}
	if err != nil {
		return false, storageErr("failed to lock group", err)
	}

	res, err := q.exec(ctx,
		`INSERT INTO group_memberships (group_id, user_id, join_order, joined_at)
		 SELECT CAST(? AS TEXT), CAST(? AS TEXT), COALESCE(MAX(join_order), 0) + 1, CAST(? AS BIGINT)
		 FROM group_memberships WHERE group_id = ?
		 ON CONFLICT (group_id, user_id) DO NOTHING`,
		groupID, userID, toUnix(joinedAt), groupID,
	)
	if err != nil {
		return false, storageErr("failed to insert membership", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, storageErr("failed to check inserted membership", err)
	}
	return n > 0, nil
}

// MembershipExists reports whether the user belongs to the group.
func (q *queries) MembershipExists(ctx context.Context, groupID, userID string) (bool, error) {
	var exists int
	err := q.queryRow(ctx,
		"SELECT 1 FROM group_memberships WHERE group_id = ? AND user_id = ?",
		groupID, userID,
	).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, storageErr("failed to check membership", err)
	}
	return true, nil
}

// DeleteMembership removes the user from the group.
func (q *queries) DeleteMembership(ctx context.Context, groupID, userID string) error {
	res, err := q.exec(ctx,
		"DELETE FROM group_memberships WHERE group_id = ? AND user_id = ?",
		groupID, userID,
	)
	if err != nil {
		return storageErr("failed to delete membership", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storageErr("failed to check deleted membership", err)
	}
	if n == 0 {
		return fmt.Errorf("user %s in group %s: %w", userID, groupID, models.ErrNotAMember)
	}
	return nil
}
