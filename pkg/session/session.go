package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Session represents a client session with an optional bound user and
// arbitrary JSON-encoded values.
type Session struct {
	CreatedAt    time.Time                  `json:"created_at"`
	LastActiveAt time.Time                  `json:"last_active_at"`
	ExpiresAt    time.Time                  `json:"expires_at"`
	UserID       *string                    `json:"user_id,omitempty"`   // nil = anonymous session
	AuthHash     string                     `json:"auth_hash,omitempty"` // hash of the bound user's credential
	Values       map[string]json.RawMessage `json:"values,omitempty"`
	ID           string                     `json:"id"`    // stable identifier
	Token        string                     `json:"token"` // cookie token, rotated on login

	dirty     bool
	isNew     bool
	destroyed bool
}

// New creates a new session with the given ID and token.
func New(id, token string, expiresAt time.Time) *Session {
	now := time.Now()
	return &Session{
		ID:           id,
		Token:        token,
		Values:       make(map[string]json.RawMessage),
		CreatedAt:    now,
		LastActiveAt: now,
		ExpiresAt:    expiresAt,
		isNew:        true,
		dirty:        true,
	}
}

// IsAuthenticated returns true if the session has an associated user.
func (s *Session) IsAuthenticated() bool {
	return s.UserID != nil && *s.UserID != ""
}

// Bind associates the session with a user.
func (s *Session) Bind(userID, authHash string) {
	s.UserID = &userID
	s.AuthHash = authHash
	s.dirty = true
}

// Unbind removes the user association, leaving other values intact.
func (s *Session) Unbind() {
	if s.UserID == nil && s.AuthHash == "" {
		return
	}
	s.UserID = nil
	s.AuthHash = ""
	s.dirty = true
}

// Set stores v under key as JSON.
// Returns ErrSerialization if v cannot be encoded.
func (s *Session) Set(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Join(ErrSerialization, fmt.Errorf("encode %q: %w", key, err))
	}
	if s.Values == nil {
		s.Values = make(map[string]json.RawMessage)
	}
	s.Values[key] = data
	s.dirty = true
	return nil
}

// Get decodes the value stored under key into dest.
// Reports false without error when the key does not exist.
// Returns ErrSerialization if the stored value does not decode into dest.
func (s *Session) Get(key string, dest any) (bool, error) {
	data, ok := s.Values[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return true, errors.Join(ErrSerialization, fmt.Errorf("decode %q: %w", key, err))
	}
	return true, nil
}

// Delete removes a value from the session.
// Marks the session as dirty only if the key existed.
func (s *Session) Delete(key string) {
	if _, exists := s.Values[key]; exists {
		delete(s.Values, key)
		s.dirty = true
	}
}

// IsDirty returns true if the session has unsaved changes.
func (s *Session) IsDirty() bool {
	return s.dirty
}

// ClearDirty marks the session as clean (saved).
func (s *Session) ClearDirty() {
	s.dirty = false
}

// MarkDirty marks the session as needing to be saved.
func (s *Session) MarkDirty() {
	s.dirty = true
}

// IsNew returns true if the session has never been persisted.
func (s *Session) IsNew() bool {
	return s.isNew
}

// ClearNew marks the session as persisted.
func (s *Session) ClearNew() {
	s.isNew = false
}

// IsDestroyed returns true once the session was removed from the store.
func (s *Session) IsDestroyed() bool {
	return s.destroyed
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Value is a typed helper around Get.
// Returns ErrNotFound if the key doesn't exist.
func Value[T any](s *Session, key string) (T, error) {
	var v T
	if s == nil {
		return v, ErrNotFound
	}
	ok, err := s.Get(key, &v)
	if err != nil {
		return v, err
	}
	if !ok {
		return v, ErrNotFound
	}
	return v, nil
}

// ValueOr returns the value stored under key, or defaultVal if the key
// doesn't exist or does not decode into T.
func ValueOr[T any](s *Session, key string, defaultVal T) T {
	v, err := Value[T](s, key)
	if err != nil {
		return defaultVal
	}
	return v
}
