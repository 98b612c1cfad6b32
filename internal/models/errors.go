package models

import "errors"

// Error taxonomy shared by the calculator, ledger and storage layers.
// Callers match with errors.Is; messages carry the detail.
var (
	// ErrNotFound means a referenced group, user or expense does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNotAMember means the operation requires a membership that is absent.
	ErrNotAMember = errors.New("not a member")

	// ErrInvalidSplit means the split strategy input is malformed.
	ErrInvalidSplit = errors.New("invalid split")

	// ErrValidation means a field failed validation (non-positive amount,
	// empty name or email, ...).
	ErrValidation = errors.New("validation error")

	// ErrStorageFailure means the underlying store failed or aborted.
	ErrStorageFailure = errors.New("storage failure")
)
