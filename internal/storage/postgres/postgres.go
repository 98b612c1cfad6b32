// Package postgres opens a PostgreSQL-backed storage.Store.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	migratepostgres "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/lib/pq" // registers the "postgres" driver

	"github.com/mmynk/splitledger/internal/storage/migrations"
	"github.com/mmynk/splitledger/internal/storage/sqlstore"
)

// New connects to the database at dsn and runs migrations.
func New(ctx context.Context, dsn string) (*sqlstore.Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := runMigrations(dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return sqlstore.New(db, sqlstore.Postgres), nil
}

// runMigrations uses its own connection because migrate closes the database
// it was given.
func runMigrations(dsn string) error {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("open migration database: %w", err)
	}

	driver, err := migratepostgres.WithInstance(db, &migratepostgres.Config{})
	if err != nil {
		db.Close()
		return fmt.Errorf("create postgres driver: %w", err)
	}

	return migrations.Up("postgres", driver)
}
