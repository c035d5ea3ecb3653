package session

import "context"

// Store defines the interface for session persistence.
// Sessions are addressed by their cookie token.
type Store interface {
	// Get retrieves a session by its token.
	// Returns ErrNotFound if the session doesn't exist, ErrExpired if it has
	// expired and ErrSerialization if the stored payload is corrupt.
	Get(ctx context.Context, token string) (*Session, error)

	// Save persists the session under its current token until ExpiresAt.
	Save(ctx context.Context, s *Session) error

	// Delete removes the session stored under token.
	// Deleting a missing session is not an error.
	Delete(ctx context.Context, token string) error
}

