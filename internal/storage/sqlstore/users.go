package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mmynk/splitledger/internal/models"
)

const userColumns = "id, name, email, created_at"

// CreateUser inserts a new user into the database.
func (q *queries) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	nowIfZero(&user.CreatedAt)

	_, err := q.exec(ctx,
		"INSERT INTO users ("+userColumns+") VALUES (?, ?, ?, ?)",
		user.ID, user.Name, user.Email, toUnix(user.CreatedAt),
	)
	if err != nil {
		return storageErr("failed to create user", err)
	}
	return nil
}

// FindOrCreateUser inserts the user unless the email is taken, then reads
// back whichever row owns the email.
func (q *queries) FindOrCreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	nowIfZero(&user.CreatedAt)

	_, err := q.exec(ctx,
		"INSERT INTO users ("+userColumns+") VALUES (?, ?, ?, ?) ON CONFLICT (email) DO NOTHING",
		user.ID, user.Name, user.Email, toUnix(user.CreatedAt),
	)
	if err != nil {
		return nil, storageErr("failed to create user", err)
	}

	found, err := q.GetUserByEmail(ctx, user.Email)
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, storageErr("failed to read back user", fmt.Errorf("no user with email %s", user.Email))
	}
	return found, nil
}

// GetUser retrieves a user by their ID.
func (q *queries) GetUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := scanUser(q.queryRow(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", userID, models.ErrNotFound)
	}
	if err != nil {
		return nil, storageErr("failed to get user by ID", err)
	}
	return user, nil
}

// GetUserByEmail retrieves a user by their email address.
func (q *queries) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := scanUser(q.queryRow(ctx, "SELECT "+userColumns+" FROM users WHERE email = ?", email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // User not found
	}
	if err != nil {
		return nil, storageErr("failed to get user by email", err)
	}
	return user, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (*models.User, error) {
	user := &models.User{}
	var createdAt int64
	if err := row.Scan(&user.ID, &user.Name, &user.Email, &createdAt); err != nil {
		return nil, err
	}
	user.CreatedAt = fromUnix(createdAt)
	return user, nil
}
