package models

import "errors"

// Domain sentinel errors, wrapped by repositories and checked by handlers
// with errors.Is.
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrProblemNotFound = errors.New("problem not found")
	ErrLedgerNotFound  = errors.New("progress ledger not found")
	ErrAttemptNotFound = errors.New("attempt record not found")
)
