package session

import "errors"

// Session errors.
var (
	// ErrNotFound is returned when a session does not exist.
	ErrNotFound = errors.New("session: not found")

	// ErrExpired is returned when a session has expired.
	ErrExpired = errors.New("session: expired")

	// ErrInvalidToken is returned when a session token is empty or malformed.
	ErrInvalidToken = errors.New("session: invalid token")

	// ErrSerialization is returned when a session or one of its values cannot
	// be encoded or decoded. A corrupt payload is never silently ignored:
	// it indicates tampering or a format change.
	ErrSerialization = errors.New("session: serialization failed")

	// ErrStoreFailed is returned when the backing store is unreachable.
	ErrStoreFailed = errors.New("session: store operation failed")
)
