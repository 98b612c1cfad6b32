package models

import (
	"strings"
	"time"
)

// User is a person who can belong to groups. Users outlive the groups they
// belong to and are never deleted.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string

	// Name is the display name of the user.
	Name string

	// Email is the natural key used to deduplicate users on creation.
	// Always stored normalized (see NormalizeEmail).
	Email string

	// CreatedAt is when the user was first seen.
	CreatedAt time.Time
}

// NormalizeEmail trims surrounding whitespace and lower-cases the address.
// Email lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
