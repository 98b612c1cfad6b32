package ledger

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mmynk/splitledger/internal/events"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// AddMember adds the person identified by email to the group, creating the
// user first if no user has that email. Emails match case-insensitively.
// Adding an existing member is a no-op; added reports whether a membership
// was created.
func (e *Engine) AddMember(ctx context.Context, groupID string, member MemberInput) (user *models.User, added bool, err error) {
	in, err := member.normalize()
	if err != nil {
		return nil, false, err
	}

	err = e.store.InTx(ctx, func(q storage.Queries) error {
		if _, err := requireGroup(ctx, q, groupID); err != nil {
			return err
		}
		user, added, err = e.addMember(ctx, q, groupID, in)
		return err
	})
	if err != nil {
		slog.ErrorContext(ctx, "AddMember failed", "group_id", groupID, "error", err)
		return nil, false, err
	}

	if !added {
		slog.DebugContext(ctx, "Member already in group", "group_id", groupID, "user_id", user.ID)
		return user, false, nil
	}

	slog.InfoContext(ctx, "Member added", "group_id", groupID, "user_id", user.ID)
	e.publish(ctx, events.Event{
		Kind:       events.KindMemberAdded,
		GroupID:    groupID,
		UserID:     user.ID,
		OccurredAt: e.timestamp(),
	})
	return user, true, nil
}

// addMember finds or creates the user and joins them to the group. in must
// already be normalized and the group must exist.
func (e *Engine) addMember(ctx context.Context, q storage.Queries, groupID string, in MemberInput) (*models.User, bool, error) {
	now := e.timestamp()
	user, err := q.FindOrCreateUser(ctx, &models.User{Name: in.Name, Email: in.Email, CreatedAt: now})
	if err != nil {
		return nil, false, err
	}

	added, err := q.CreateMembership(ctx, groupID, user.ID, now)
	if err != nil {
		return nil, false, err
	}
	return user, added, nil
}

// RemoveMember deletes every balance row in the group where the user is
// debtor or creditor, then the membership itself. The user's debts in that
// group are forgiven, not transferred. It returns how many rows were erased.
func (e *Engine) RemoveMember(ctx context.Context, groupID, userID string) (int64, error) {
	var removed int64
	err := e.store.InTx(ctx, func(q storage.Queries) error {
		if _, err := requireGroup(ctx, q, groupID); err != nil {
			return err
		}

		exists, err := q.MembershipExists(ctx, groupID, userID)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("user %s in group %s: %w", userID, groupID, models.ErrNotAMember)
		}

		removed, err = q.DeleteBalances(ctx, groupID, userID)
		if err != nil {
			return err
		}
		return q.DeleteMembership(ctx, groupID, userID)
	})
	if err != nil {
		slog.ErrorContext(ctx, "RemoveMember failed", "group_id", groupID, "user_id", userID, "error", err)
		return 0, err
	}

	slog.InfoContext(ctx, "Member removed",
		"group_id", groupID,
		"user_id", userID,
		"balances_removed", removed)

	e.publish(ctx, events.Event{
		Kind:            events.KindMemberRemoved,
		GroupID:         groupID,
		UserID:          userID,
		BalancesRemoved: removed,
		OccurredAt:      e.timestamp(),
	})
	return removed, nil
}

// ListMembers returns the group's members in join order.
func (e *Engine) ListMembers(ctx context.Context, groupID string) ([]*models.User, error) {
	var members []*models.User
	err := e.store.InReadTx(ctx, func(q storage.Queries) error {
		if _, err := requireGroup(ctx, q, groupID); err != nil {
			return err
		}
		var err error
		members, err = q.ListMembers(ctx, groupID)
		return err
	})
	return members, err
}
