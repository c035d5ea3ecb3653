package auth

import (
	"context"
	"crypto/subtle"
	"errors"

	"github.com/dmitrymomot/oauthgate/pkg/session"
)

// SessionManager is the part of session.Manager the handle needs.
type SessionManager interface {
	RotateToken(ctx context.Context, sess *session.Session) error
	Destroy(ctx context.Context, sess *session.Session) error
}

// AuthSession binds a backend to one request's session.
// The bound user is resolved at most once per handle. It is not safe for
// concurrent use; create one per request.
type AuthSession[C any, U Identity] struct {
	backend  Backend[C, U]
	manager  SessionManager
	sess     *session.Session
	user     U
	found    bool
	resolved bool
}

// NewAuthSession creates a handle for sess.
func NewAuthSession[C any, U Identity](backend Backend[C, U], manager SessionManager, sess *session.Session) *AuthSession[C, U] {
	return &AuthSession[C, U]{backend: backend, manager: manager, sess: sess}
}

// Backend returns the backend the handle authenticates with.
func (a *AuthSession[C, U]) Backend() Backend[C, U] {
	return a.backend
}

// Session returns the underlying session.
func (a *AuthSession[C, U]) Session() *session.Session {
	return a.sess
}

// Authenticate delegates to the backend without touching the session.
func (a *AuthSession[C, U]) Authenticate(ctx context.Context, creds C) (U, bool, error) {
	return a.backend.Authenticate(ctx, creds)
}

// User returns the user bound to the session.
//
// An unbound session, a user that no longer exists and a stale auth hash all
// report (zero, false, nil); the latter two also clear the binding.
// A backend failure returns ErrIdentityUnavailable and leaves the binding alone.
func (a *AuthSession[C, U]) User(ctx context.Context) (U, bool, error) {
	var zero U
	if a.resolved {
		return a.user, a.found, nil
	}
	if !a.sess.IsAuthenticated() {
		a.resolved = true
		return zero, false, nil
	}

	u, ok, err := a.backend.GetUser(ctx, *a.sess.UserID)
	if err != nil {
		return zero, false, errors.Join(ErrIdentityUnavailable, err)
	}

	a.resolved = true
	if !ok || subtle.ConstantTimeCompare([]byte(u.SessionAuthHash()), []byte(a.sess.AuthHash)) != 1 {
		a.sess.Unbind()
		return zero, false, nil
	}

	a.user, a.found = u, true
	return u, true, nil
}

// Login binds u to the session and issues a new session token so a token
// known before login stops resolving.
func (a *AuthSession[C, U]) Login(ctx context.Context, u U) error {
	a.sess.Bind(u.Identifier(), u.SessionAuthHash())
	if err := a.manager.RotateToken(ctx, a.sess); err != nil {
		a.sess.Unbind()
		return err
	}
	a.user, a.found, a.resolved = u, true, true
	return nil
}

// Logout destroys the session.
func (a *AuthSession[C, U]) Logout(ctx context.Context) error {
	if err := a.manager.Destroy(ctx, a.sess); err != nil {
		return err
	}
	var zero U
	a.user, a.found, a.resolved = zero, false, true
	return nil
}
