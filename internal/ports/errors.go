package ports

import "errors"

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a write collides with existing data.
	ErrConflict = errors.New("conflict")

	// ErrStaleStatus is returned when a compare-and-set transition lost the race.
	ErrStaleStatus = errors.New("stale status")
)
