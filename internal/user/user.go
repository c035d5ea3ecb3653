package user

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"time"
)

// User is a locally persisted account created from a provider profile.
type User struct {
	CreatedAt   time.Time
	Name        *string
	ID          string
	Email       string
	AccessToken string
}

// NewUser holds the fields supplied on insert. The ID is generated by the repository.
type NewUser struct {
	Name        *string
	Email       string
	AccessToken string
}

// Identifier returns the user's stable ID.
func (u *User) Identifier() string {
	return u.ID
}

// SessionAuthHash ties a session to the access token the user logged in with.
// Sessions remembering a different hash are no longer authenticated.
// The value is the hex-encoded SHA-256 of the token.
func (u *User) SessionAuthHash() string {
	sum := sha256.Sum256([]byte(u.AccessToken))
	return hex.EncodeToString(sum[:])
}

// DisplayName returns the profile name or an empty string.
func (u *User) DisplayName() string {
	if u.Name == nil {
		return ""
	}
	return *u.Name
}

// LogValue omits the access token.
func (u *User) LogValue() slog.Value {
	if u == nil {
		return slog.StringValue("<nil>")
	}
	return slog.GroupValue(
		slog.String("id", u.ID),
		slog.String("email", u.Email),
	)
}

var _ slog.LogValuer = (*User)(nil)
