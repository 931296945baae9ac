package errors

import "errors"

var (
	ErrEventNotFound = errors.New("event not found")

	ErrParticipantNotFound = errors.New("participant not found")

	ErrInvalidID = errors.New("invalid ID format")

	// ErrStaleParticipant is returned when a conditional participant update
	// matched nothing because the participant left the expected status.
	ErrStaleParticipant = errors.New("participant status changed concurrently")
)
