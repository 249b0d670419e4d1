package domain

import "errors"

// Sentinel errors shared by repositories, services and HTTP controllers.
var (
	// ErrNotFound is returned when an entity does not exist. Attendee token
	// lookups use it for unknown and malformed tokens alike.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput is returned when a request fails validation before any store access.
	ErrInvalidInput = errors.New("invalid input")

	// ErrLifecycleViolation is returned when an operation is not legal for the event's current status.
	ErrLifecycleViolation = errors.New("operation not allowed in current event status")

	// ErrClaimConflict is the expected outcome of losing a claim race: the item is already claimed.
	ErrClaimConflict = errors.New("gift item already claimed")

	// ErrNotClaimant is returned when an attendee releases an item they do not hold.
	ErrNotClaimant = errors.New("gift item is not claimed by this attendee")

	// ErrUnauthorized covers missing, malformed, badly signed and expired admin credentials.
	ErrUnauthorized = errors.New("invalid or expired token")

	// ErrInvalidCredentials is returned by login and change-password.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrEventGone is returned to attendees whose event has been archived.
	ErrEventGone = errors.New("event has been archived")

	// ErrConfirmationRequired is returned when deleting a published event without confirmation.
	ErrConfirmationRequired = errors.New("deleting a published event requires confirmation")

	// ErrDuplicate is returned when a unique constraint is violated.
	ErrDuplicate = errors.New("already exists")
)
