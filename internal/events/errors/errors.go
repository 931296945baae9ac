package errors

import "errors"

var (
	ErrNotFound = errors.New("event not found")

	ErrInvalidID = errors.New("invalid event ID format")

	// ErrDuplicateSlug is returned when the unique slug index rejects a write.
	ErrDuplicateSlug = errors.New("event slug already exists")
)
