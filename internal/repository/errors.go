package repository

import "errors"

var (
	// ErrNotFound is returned when a referenced row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrVersionConflict is returned when an optimistic-concurrency commit
	// matched no row because another writer got there first.
	ErrVersionConflict = errors.New("version conflict")
)
