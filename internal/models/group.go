package models

import "time"

// Group is the root of the ownership cascade: deleting a group deletes its
// memberships, expenses and balances.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Trip", "Roommates").
	Name string

	// CreatedAt is when the group was created.
	CreatedAt time.Time
}

// Membership links one user to one group. The pair (GroupID, UserID) is unique.
type Membership struct {
	GroupID string
	UserID  string

	// Position is the 1-based join order within the group. Split participants
	// are always listed in this order.
	Position int64

	JoinedAt time.Time
}
