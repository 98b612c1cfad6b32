// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"time"

	"github.com/mmynk/splitledger/internal/models"
)

// BalanceFilter narrows ListBalances. Empty fields match everything; when both
// are set a row must match both.
type BalanceFilter struct {
	DebtorID   string
	CreditorID string
}

// Queries is the set of entity operations the ledger needs. Every method is
// available both directly on a Store and on the transactional handle passed
// to Store.InTx, so multi-write operations compose into one transaction.
//
// Lookups by ID return an error wrapping models.ErrNotFound when the row is
// missing. Driver failures wrap models.ErrStorageFailure.
type Queries interface {
	// GetGroup retrieves a group by its ID.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// ListGroups returns every group, newest first.
	ListGroups(ctx context.Context) ([]*models.Group, error)

	// CreateGroup persists a new group. ID and CreatedAt are filled in when empty.
	CreateGroup(ctx context.Context, group *models.Group) error

	// DeleteGroup removes a group along with its memberships, expenses and balances.
	DeleteGroup(ctx context.Context, groupID string) error

	// GetUser retrieves a user by ID.
	GetUser(ctx context.Context, userID string) (*models.User, error)

	// GetUserByEmail retrieves a user by normalized email.
	// Returns nil and no error if no such user exists.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// CreateUser persists a new user. ID and CreatedAt are filled in when empty.
	CreateUser(ctx context.Context, user *models.User) error

	// FindOrCreateUser returns the user with user.Email, inserting user when
	// there is none. Concurrent callers with the same email get the same row.
	FindOrCreateUser(ctx context.Context, user *models.User) (*models.User, error)

	// ListMembers returns the users of a group in join order.
	ListMembers(ctx context.Context, groupID string) ([]*models.User, error)

	// CreateMembership appends a user to the end of the group's join order.
	// It reports false, without error, when the user is already a member.
	// A zero joinedAt means now.
	CreateMembership(ctx context.Context, groupID, userID string, joinedAt time.Time) (bool, error)

	// MembershipExists reports whether the user belongs to the group.
	MembershipExists(ctx context.Context, groupID, userID string) (bool, error)

	// DeleteMembership removes the user from the group.
	// Returns models.ErrNotAMember if there was no such membership.
	DeleteMembership(ctx context.Context, groupID, userID string) error

	// CreateExpense persists a new expense. ID and CreatedAt are filled in when empty.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// ListExpenses returns a group's expenses, newest first.
	ListExpenses(ctx context.Context, groupID string) ([]*models.Expense, error)

	// CreateBalance persists a new debt row. ID and CreatedAt are filled in when empty.
	CreateBalance(ctx context.Context, balance *models.Balance) error

	// ListBalances returns a group's debt rows in creation order.
	ListBalances(ctx context.Context, groupID string, filter BalanceFilter) ([]*models.Balance, error)

	// DeleteBalances removes every row in the group where the user is debtor
	// or creditor, returning how many rows were removed.
	DeleteBalances(ctx context.Context, groupID, userID string) (int64, error)
}

// Store defines the interface for ledger storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the ledger.
type Store interface {
	Queries

	// InTx runs fn inside one read-write transaction. The transaction commits
	// if fn returns nil and rolls back otherwise.
	InTx(ctx context.Context, fn func(q Queries) error) error

	// InReadTx runs fn inside a read-only transaction that sees a single
	// consistent snapshot.
	InReadTx(ctx context.Context, fn func(q Queries) error) error

	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}
