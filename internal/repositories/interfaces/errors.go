package interfaces

import "errors"

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrStaleStatus is returned by conditional booking updates when the
	// booking was not in any of the required statuses. A concurrent actor
	// already moved it; the caller lost the race.
	ErrStaleStatus = errors.New("booking status changed concurrently")

	// ErrInsufficientBalance is returned when a guarded credit decrement
	// would take a balance below zero.
	ErrInsufficientBalance = errors.New("insufficient credit balance")
)
