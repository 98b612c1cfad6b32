// Package ledger is the bookkeeping core: it records expenses as append-only
// debt rows, aggregates them into net balances, and manages group
// membership. Every operation runs as one store transaction; events are
// published only after that transaction commits.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/mmynk/splitledger/internal/events"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// Engine implements the ledger operations on top of a storage.Store.
// It is safe for concurrent use.
type Engine struct {
	store     storage.Store
	publisher events.Publisher
	now       func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithPublisher sets where domain events are sent. The default discards them.
func WithPublisher(p events.Publisher) Option {
	return func(e *Engine) { e.publisher = p }
}

// WithClock overrides the time source used for created_at stamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New creates an Engine backed by store.
func New(store storage.Store, opts ...Option) *Engine {
	e := &Engine{
		store:     store,
		publisher: events.Noop{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) timestamp() time.Time {
	return e.now().UTC()
}

// publish sends events after commit. Failures are logged, never returned.
func (e *Engine) publish(ctx context.Context, evs ...events.Event) {
	for _, ev := range evs {
		if err := e.publisher.Publish(ctx, ev); err != nil {
			slog.WarnContext(ctx, "Failed to publish event",
				"kind", ev.Kind,
				"group_id", ev.GroupID,
				"error", err)
		}
	}
}

// requireGroup loads the group so later steps can rely on it existing.
func requireGroup(ctx context.Context, q storage.Queries, groupID string) (*models.Group, error) {
	if strings.TrimSpace(groupID) == "" {
		return nil, fmt.Errorf("%w: group id is required", models.ErrValidation)
	}
	return q.GetGroup(ctx, groupID)
}

// MemberInput identifies a person to add to a group.
type MemberInput struct {
	Name  string
	Email string
}

// normalize trims the name, normalizes the email and checks both.
func (m MemberInput) normalize() (MemberInput, error) {
	out := MemberInput{
		Name:  strings.TrimSpace(m.Name),
		Email: models.NormalizeEmail(m.Email),
	}
	if out.Name == "" {
		return out, fmt.Errorf("%w: member name is required", models.ErrValidation)
	}
	if out.Email == "" {
		return out, fmt.Errorf("%w: member email is required", models.ErrValidation)
	}
	addr, err := mail.ParseAddress(out.Email)
	if err != nil || addr.Address != out.Email {
		return out, fmt.Errorf("%w: invalid email %q", models.ErrValidation, m.Email)
	}
	return out, nil
}
