// Package sqlstore implements storage.Store on top of database/sql. The same
// queries serve SQLite and PostgreSQL; a Dialect covers the differences.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// Ensure Store implements storage.Store
var _ storage.Store = (*Store)(nil)

// Dialect describes how a backend differs from the queries as written.
type Dialect struct {
	Name string

	// placeholder renders the n-th (1-based) bind parameter.
	placeholder func(n int) string

	// readTx is passed to BeginTx by InReadTx.
	readTx *sql.TxOptions

	// lockRow is appended to a single-row SELECT to hold the row until the
	// transaction ends. SQLite has one writer at a time and needs nothing.
	lockRow string
}

var (
	// SQLite transactions are serializable already; the driver takes no options.
	SQLite = Dialect{
		Name:        "sqlite",
		placeholder: func(int) string { return "?" },
	}

	// Postgres reads run at REPEATABLE READ so one call sees one snapshot.
	Postgres = Dialect{
		Name:        "postgres",
		placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
		readTx:      &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true},
		lockRow:     " FOR UPDATE",
	}
)

// rebind rewrites '?' placeholders for the dialect. Queries never contain a
// literal question mark.
func (d Dialect) rebind(query string) string {
	if d.Name == SQLite.Name {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString(d.placeholder(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// queries implements storage.Queries against either the pool or a transaction.
type queries struct {
	db      dbtx
	dialect Dialect
}

func (q *queries) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return q.db.ExecContext(ctx, q.dialect.rebind(query), args...)
}

func (q *queries) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return q.db.QueryContext(ctx, q.dialect.rebind(query), args...)
}

func (q *queries) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return q.db.QueryRowContext(ctx, q.dialect.rebind(query), args...)
}

// Store implements storage.Store using a database/sql pool.
type Store struct {
	*queries
	db *sql.DB
}

// New wraps an open, migrated database.
func New(db *sql.DB, dialect Dialect) *Store {
	return &Store{
		queries: &queries{db: db, dialect: dialect},
		db:      db,
	}
}

// InTx runs fn inside a read-write transaction.
func (s *Store) InTx(ctx context.Context, fn func(q storage.Queries) error) error {
	return s.inTx(ctx, nil, fn)
}

// InReadTx runs fn inside a transaction that sees one consistent snapshot.
func (s *Store) InReadTx(ctx context.Context, fn func(q storage.Queries) error) error {
	return s.inTx(ctx, s.dialect.readTx, fn)
}

func (s *Store) inTx(ctx context.Context, opts *sql.TxOptions, fn func(q storage.Queries) error) error {
	tx, err := s.db.BeginTx(ctx, opts)
	if err != nil {
		return storageErr("failed to begin transaction", err)
	}
	defer tx.Rollback()

	if err := fn(&queries{db: tx, dialect: s.dialect}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return storageErr("failed to commit transaction", err)
	}
	return nil
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return storageErr("failed to ping database", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// storageErr marks a driver error as a storage failure.
func storageErr(msg string, err error) error {
	return fmt.Errorf("%s: %w: %w", msg, models.ErrStorageFailure, err)
}

// Timestamps are stored as Unix nanoseconds so ordering by created_at is
// stable for rows written in quick succession.
func toUnix(t time.Time) int64 {
	return t.UnixNano()
}

func fromUnix(n int64) time.Time {
	return time.Unix(0, n).UTC()
}

func nowIfZero(t *time.Time) {
	if t.IsZero() {
		*t = time.Now().UTC()
	}
}
