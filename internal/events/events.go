// Package events publishes ledger domain events after their transaction
// commits. Delivery is best effort: a failed publish never undoes a write.
package events

import (
	"context"
	"encoding/json"
	"time"
)

// Kind names an event; it doubles as the AMQP routing key.
type Kind string

const (
	KindGroupCreated    Kind = "group.created"
	KindGroupDeleted    Kind = "group.deleted"
	KindMemberAdded     Kind = "member.added"
	KindMemberRemoved   Kind = "member.removed"
	KindExpenseRecorded Kind = "expense.recorded"
)

// Event is the JSON body of a published message. Fields that do not apply
// to a kind are omitted.
type Event struct {
	Kind      Kind   `json:"kind"`
	GroupID   string `json:"group_id"`
	UserID    string `json:"user_id,omitempty"`
	ExpenseID string `json:"expense_id,omitempty"`

	// Amount is the expense total as a decimal string.
	Amount string `json:"amount,omitempty"`

	// BalancesRemoved counts debt rows erased by a member removal.
	BalancesRemoved int64 `json:"balances_removed,omitempty"`

	OccurredAt time.Time `json:"occurred_at"`
}

// ToJSON encodes the event body.
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// Publisher delivers events to interested consumers.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Noop discards every event. It is used when no broker is configured.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }
