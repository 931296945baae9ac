package errors

import "errors"

var (
	ErrNotFound = errors.New("venue not found")

	ErrInvalidID = errors.New("invalid venue ID format")

	// ErrDuplicate is returned when (name, location, sport) is already taken.
	ErrDuplicate = errors.New("venue already exists")
)
