package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/internal/storage/sqlstore"
)

func newTestStore(t *testing.T) *sqlstore.Store {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "nested", "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func createUser(t *testing.T, store storage.Queries, name string) *models.User {
	t.Helper()
	user := &models.User{Name: name, Email: models.NormalizeEmail(name + "@example.com")}
	require.NoError(t, store.CreateUser(context.Background(), user))
	return user
}

func createGroup(t *testing.T, store storage.Queries, name string, members ...*models.User) *models.Group {
	t.Helper()
	ctx := context.Background()
	group := &models.Group{Name: name}
	require.NoError(t, store.CreateGroup(ctx, group))
	for _, m := range members {
		added, err := store.CreateMembership(ctx, group.ID, m.ID, time.Time{})
		require.NoError(t, err)
		require.True(t, added)
	}
	return group
}

func TestSQLiteStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("CreateGroup generates ID and timestamp", func(t *testing.T) {
		group := &models.Group{Name: "Trip"}
		require.NoError(t, store.CreateGroup(ctx, group))

		assert.NotEmpty(t, group.ID)
		assert.False(t, group.CreatedAt.IsZero())

		got, err := store.GetGroup(ctx, group.ID)
		require.NoError(t, err)
		assert.Equal(t, "Trip", got.Name)
		assert.True(t, got.CreatedAt.Equal(group.CreatedAt), "created_at round-trips at nanosecond precision")
	})

	t.Run("GetGroup unknown ID is NotFound", func(t *testing.T) {
		_, err := store.GetGroup(ctx, "missing")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("GetUserByEmail returns nil when missing", func(t *testing.T) {
		user, err := store.GetUserByEmail(ctx, "nobody@example.com")
		require.NoError(t, err)
		assert.Nil(t, user)
	})

	t.Run("duplicate email is a storage failure", func(t *testing.T) {
		createUser(t, store, "dup")
		err := store.CreateUser(ctx, &models.User{Name: "Dup", Email: "dup@example.com"})
		assert.ErrorIs(t, err, models.ErrStorageFailure)
	})

	t.Run("ListMembers follows join order", func(t *testing.T) {
		c := createUser(t, store, "carol")
		a := createUser(t, store, "alice")
		b := createUser(t, store, "bob")
		group := createGroup(t, store, "Order", c, a, b)

		members, err := store.ListMembers(ctx, group.ID)
		require.NoError(t, err)
		require.Len(t, members, 3)
		assert.Equal(t, []string{c.ID, a.ID, b.ID}, []string{members[0].ID, members[1].ID, members[2].ID})

		// Rejoining after removal goes to the end.
		require.NoError(t, store.DeleteMembership(ctx, group.ID, c.ID))
		added, err := store.CreateMembership(ctx, group.ID, c.ID, time.Time{})
		require.NoError(t, err)
		assert.True(t, added)
		members, err = store.ListMembers(ctx, group.ID)
		require.NoError(t, err)
		assert.Equal(t, c.ID, members[2].ID)
	})

	t.Run("CreateMembership twice is a no-op", func(t *testing.T) {
		u := createUser(t, store, "twice")
		group := createGroup(t, store, "Twice", u)

		added, err := store.CreateMembership(ctx, group.ID, u.ID, time.Time{})
		require.NoError(t, err)
		assert.False(t, added)

		members, err := store.ListMembers(ctx, group.ID)
		require.NoError(t, err)
		assert.Len(t, members, 1)
	})

	t.Run("CreateMembership for unknown group is NotFound", func(t *testing.T) {
		u := createUser(t, store, "orphan")
		_, err := store.CreateMembership(ctx, "missing", u.ID, time.Time{})
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("FindOrCreateUser returns the existing row", func(t *testing.T) {
		first, err := store.FindOrCreateUser(ctx, &models.User{Name: "Erin", Email: "erin@example.com"})
		require.NoError(t, err)

		second, err := store.FindOrCreateUser(ctx, &models.User{Name: "Someone Else", Email: "erin@example.com"})
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, "Erin", second.Name)
	})

	t.Run("DeleteMembership without membership is NotAMember", func(t *testing.T) {
		u := createUser(t, store, "loner")
		group := createGroup(t, store, "Empty")
		err := store.DeleteMembership(ctx, group.ID, u.ID)
		assert.ErrorIs(t, err, models.ErrNotAMember)

		ok, err := store.MembershipExists(ctx, group.ID, u.ID)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("expenses round-trip decimal amounts newest first", func(t *testing.T) {
		payer := createUser(t, store, "payer")
		group := createGroup(t, store, "Ledger", payer)

		base := time.Now().UTC()
		for i, amt := range []string{"10.50", "0.01", "1234.99"} {
			e := &models.Expense{
				GroupID:     group.ID,
				PayerID:     payer.ID,
				Amount:      decimal.RequireFromString(amt),
				Description: "item",
				Strategy:    models.SplitEqual,
				CreatedAt:   base.Add(time.Duration(i) * time.Millisecond),
			}
			require.NoError(t, store.CreateExpense(ctx, e))
		}

		expenses, err := store.ListExpenses(ctx, group.ID)
		require.NoError(t, err)
		require.Len(t, expenses, 3)
		assert.True(t, expenses[0].Amount.Equal(decimal.RequireFromString("1234.99")))
		assert.True(t, expenses[2].Amount.Equal(decimal.RequireFromString("10.50")))
		assert.Equal(t, models.SplitEqual, expenses[0].Strategy)
	})

	t.Run("ListBalances filters by debtor and creditor", func(t *testing.T) {
		a, b, c := createUser(t, store, "fa"), createUser(t, store, "fb"), createUser(t, store, "fc")
		group := createGroup(t, store, "Filters", a, b, c)

		for _, row := range [][2]*models.User{{b, a}, {c, a}, {a, b}} {
			require.NoError(t, store.CreateBalance(ctx, &models.Balance{
				GroupID:    group.ID,
				DebtorID:   row[0].ID,
				CreditorID: row[1].ID,
				Amount:     decimal.NewFromInt(5),
			}))
		}

		all, err := store.ListBalances(ctx, group.ID, storage.BalanceFilter{})
		require.NoError(t, err)
		assert.Len(t, all, 3)
		assert.Empty(t, all[0].ExpenseID, "rows without an expense store NULL")

		owedToA, err := store.ListBalances(ctx, group.ID, storage.BalanceFilter{CreditorID: a.ID})
		require.NoError(t, err)
		assert.Len(t, owedToA, 2)

		both, err := store.ListBalances(ctx, group.ID, storage.BalanceFilter{DebtorID: c.ID, CreditorID: a.ID})
		require.NoError(t, err)
		require.Len(t, both, 1)
		assert.Equal(t, c.ID, both[0].DebtorID)
	})

	t.Run("DeleteBalances only touches the given group", func(t *testing.T) {
		a, b := createUser(t, store, "da"), createUser(t, store, "db")
		g1 := createGroup(t, store, "G1", a, b)
		g2 := createGroup(t, store, "G2", a, b)
		for _, g := range []*models.Group{g1, g2} {
			require.NoError(t, store.CreateBalance(ctx, &models.Balance{
				GroupID: g.ID, DebtorID: b.ID, CreditorID: a.ID, Amount: decimal.NewFromInt(1),
			}))
		}

		n, err := store.DeleteBalances(ctx, g1.ID, a.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		left, err := store.ListBalances(ctx, g2.ID, storage.BalanceFilter{})
		require.NoError(t, err)
		assert.Len(t, left, 1)
	})

	t.Run("DeleteGroup removes everything the group owns", func(t *testing.T) {
		a, b := createUser(t, store, "xa"), createUser(t, store, "xb")
		group := createGroup(t, store, "Doomed", a, b)
		expense := &models.Expense{
			GroupID: group.ID, PayerID: a.ID, Amount: decimal.NewFromInt(10),
			Description: "x", Strategy: models.SplitEqual,
		}
		require.NoError(t, store.CreateExpense(ctx, expense))
		require.NoError(t, store.CreateBalance(ctx, &models.Balance{
			GroupID: group.ID, ExpenseID: expense.ID, DebtorID: b.ID, CreditorID: a.ID, Amount: decimal.NewFromInt(5),
		}))

		require.NoError(t, store.InTx(ctx, func(q storage.Queries) error {
			return q.DeleteGroup(ctx, group.ID)
		}))

		_, err := store.GetGroup(ctx, group.ID)
		assert.ErrorIs(t, err, models.ErrNotFound)

		members, err := store.ListMembers(ctx, group.ID)
		require.NoError(t, err)
		assert.Empty(t, members)
		expenses, err := store.ListExpenses(ctx, group.ID)
		require.NoError(t, err)
		assert.Empty(t, expenses)
		balances, err := store.ListBalances(ctx, group.ID, storage.BalanceFilter{})
		require.NoError(t, err)
		assert.Empty(t, balances)

		// Users outlive their groups.
		_, err = store.GetUser(ctx, a.ID)
		assert.NoError(t, err)

		assert.ErrorIs(t, store.DeleteGroup(ctx, group.ID), models.ErrNotFound)
	})

	t.Run("InTx rolls back when fn fails", func(t *testing.T) {
		boom := errors.New("boom")
		var groupID string
		err := store.InTx(ctx, func(q storage.Queries) error {
			group := &models.Group{Name: "Ghost"}
			if err := q.CreateGroup(ctx, group); err != nil {
				return err
			}
			groupID = group.ID
			return boom
		})
		assert.ErrorIs(t, err, boom)

		_, err = store.GetGroup(ctx, groupID)
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("InReadTx sees committed data", func(t *testing.T) {
		group := createGroup(t, store, "Readable")
		err := store.InReadTx(ctx, func(q storage.Queries) error {
			_, err := q.GetGroup(ctx, group.ID)
			return err
		})
		assert.NoError(t, err)
	})

	t.Run("Ping", func(t *testing.T) {
		assert.NoError(t, store.Ping(ctx))
	})
}

func TestNew_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")
	ctx := context.Background()

	first, err := New(path)
	require.NoError(t, err)
	group := &models.Group{Name: "Persistent"}
	require.NoError(t, first.CreateGroup(ctx, group))
	require.NoError(t, first.Close())

	// Running migrations again must be a no-op.
	second, err := New(path)
	require.NoError(t, err)
	defer second.Close()

	got, err := second.GetGroup(ctx, group.ID)
	require.NoError(t, err)
	assert.Equal(t, "Persistent", got.Name)
}

func TestDSN(t *testing.T) {
	dsn := DSN("/tmp/x.db")
	assert.Contains(t, dsn, "file:/tmp/x.db?")
	assert.Contains(t, dsn, "foreign_keys%281%29")
	assert.Contains(t, dsn, "busy_timeout%285000%29")
}
