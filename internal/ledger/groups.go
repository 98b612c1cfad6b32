package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mmynk/splitledger/internal/events"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// GroupDetails is a group together with its members in join order.
type GroupDetails struct {
	Group   *models.Group
	Members []*models.User
}

// CreateGroup creates a group and adds the initial members, in order, in one
// transaction. Members repeated by email are added once.
func (e *Engine) CreateGroup(ctx context.Context, name string, members []MemberInput) (*GroupDetails, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: group name is required", models.ErrValidation)
	}

	inputs := make([]MemberInput, len(members))
	for i, m := range members {
		norm, err := m.normalize()
		if err != nil {
			return nil, err
		}
		inputs[i] = norm
	}

	details := &GroupDetails{Group: &models.Group{Name: name, CreatedAt: e.timestamp()}}
	err := e.store.InTx(ctx, func(q storage.Queries) error {
		if err := q.CreateGroup(ctx, details.Group); err != nil {
			return err
		}
		for _, in := range inputs {
			user, added, err := e.addMember(ctx, q, details.Group.ID, in)
			if err != nil {
				return err
			}
			if added {
				details.Members = append(details.Members, user)
			}
		}
		return nil
	})
	if err != nil {
		slog.ErrorContext(ctx, "CreateGroup failed", "name", name, "error", err)
		return nil, err
	}

	slog.InfoContext(ctx, "Group created",
		"group_id", details.Group.ID,
		"members_count", len(details.Members))

	evs := []events.Event{{Kind: events.KindGroupCreated, GroupID: details.Group.ID, OccurredAt: details.Group.CreatedAt}}
	for _, m := range details.Members {
		evs = append(evs, events.Event{
			Kind:       events.KindMemberAdded,
			GroupID:    details.Group.ID,
			UserID:     m.ID,
			OccurredAt: details.Group.CreatedAt,
		})
	}
	e.publish(ctx, evs...)

	return details, nil
}

// GetGroup returns a group and its members from one snapshot.
func (e *Engine) GetGroup(ctx context.Context, groupID string) (*GroupDetails, error) {
	details := &GroupDetails{}
	err := e.store.InReadTx(ctx, func(q storage.Queries) error {
		group, err := requireGroup(ctx, q, groupID)
		if err != nil {
			return err
		}
		details.Group = group

		details.Members, err = q.ListMembers(ctx, groupID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return details, nil
}

// ListGroups returns every group, newest first.
func (e *Engine) ListGroups(ctx context.Context) ([]*models.Group, error) {
	return e.store.ListGroups(ctx)
}

// DeleteGroup removes a group with its memberships, expenses and balances.
// Users are kept.
func (e *Engine) DeleteGroup(ctx context.Context, groupID string) error {
	err := e.store.InTx(ctx, func(q storage.Queries) error {
		if _, err := requireGroup(ctx, q, groupID); err != nil {
			return err
		}
		return q.DeleteGroup(ctx, groupID)
	})
	if err != nil {
		slog.ErrorContext(ctx, "DeleteGroup failed", "group_id", groupID, "error", err)
		return err
	}

	slog.InfoContext(ctx, "Group deleted", "group_id", groupID)
	e.publish(ctx, events.Event{Kind: events.KindGroupDeleted, GroupID: groupID, OccurredAt: e.timestamp()})
	return nil
}
