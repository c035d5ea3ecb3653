package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/oauthgate/pkg/cookie"
)

// Default session configuration.
const (
	defaultCookieName    = "__sid"
	defaultMaxAge        = 24 * time.Hour
	defaultTouchInterval = time.Minute
)

// Manager handles session lifecycle and the session cookie.
// Expiry is sliding: every committed change, and any request arriving more
// than the touch interval after the last activity, pushes ExpiresAt forward
// by the configured max age.
type Manager struct {
	store         Store
	cookies       *cookie.Manager
	logger        *slog.Logger
	cookieName    string
	maxAge        time.Duration
	touchInterval time.Duration
}

// ManagerOption configures the Manager.
type ManagerOption func(*Manager)

// NewManager creates a new Manager with the given store and cookie manager.
func NewManager(store Store, cookies *cookie.Manager, opts ...ManagerOption) *Manager {
	m := &Manager{
		store:         store,
		cookies:       cookies,
		logger:        slog.New(slog.DiscardHandler),
		cookieName:    defaultCookieName,
		maxAge:        defaultMaxAge,
		touchInterval: defaultTouchInterval,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// WithCookieName sets the session cookie name.
func WithCookieName(name string) ManagerOption {
	return func(m *Manager) {
		if name != "" {
			m.cookieName = name
		}
	}
}

// WithMaxAge sets the inactivity period after which a session expires.
func WithMaxAge(d time.Duration) ManagerOption {
	return func(m *Manager) {
		if d > 0 {
			m.maxAge = d
		}
	}
}

// WithTouchInterval sets how stale LastActiveAt may get before a read-only
// request refreshes the expiry.
func WithTouchInterval(d time.Duration) ManagerOption {
	return func(m *Manager) {
		if d > 0 {
			m.touchInterval = d
		}
	}
}

// WithLogger sets the logger for session events.
func WithLogger(l *slog.Logger) ManagerOption {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// Load returns the session referenced by the request cookie.
// A missing, forged, expired or unknown session yields a fresh unsaved one.
// Store failures and corrupt payloads are returned as errors.
func (m *Manager) Load(ctx context.Context, r *http.Request) (*Session, error) {
	token, err := m.cookies.GetSigned(r, m.cookieName)
	if err != nil {
		if errors.Is(err, cookie.ErrBadSig) {
			m.logger.WarnContext(ctx, "session cookie signature mismatch")
		}
		return m.fresh()
	}

	sess, err := m.store.Get(ctx, token)
	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrExpired), errors.Is(err, ErrInvalidToken):
		return m.fresh()
	default:
		return nil, err
	}

	if time.Since(sess.LastActiveAt) > m.touchInterval {
		sess.MarkDirty()
	}
	return sess, nil
}

// Commit persists a dirty session and writes the cookie.
// A destroyed session has its cookie cleared instead.
func (m *Manager) Commit(ctx context.Context, w http.ResponseWriter, sess *Session) error {
	if sess == nil {
		return nil
	}
	if sess.IsDestroyed() {
		m.cookies.Delete(w, m.cookieName)
		return nil
	}
	if !sess.IsDirty() {
		return nil
	}

	now := time.Now()
	sess.LastActiveAt = now
	sess.ExpiresAt = now.Add(m.maxAge)

	if err := m.store.Save(ctx, sess); err != nil {
		return err
	}
	sess.ClearDirty()
	sess.ClearNew()

	m.cookies.SetSigned(w, m.cookieName, sess.Token, int(m.maxAge.Seconds()))
	return nil
}

// RotateToken generates a new token for the session.
// Called after authentication to prevent session fixation: the token an
// attacker may have planted before login stops resolving.
func (m *Manager) RotateToken(ctx context.Context, sess *Session) error {
	oldToken := sess.Token
	newToken, err := generateToken()
	if err != nil {
		return fmt.Errorf("generate session token: %w", err)
	}
	sess.Token = newToken
	sess.MarkDirty()

	if sess.IsNew() {
		return nil
	}

	if err := m.store.Save(ctx, sess); err != nil {
		sess.Token = oldToken // Rollback on error
		return err
	}
	if err := m.store.Delete(ctx, oldToken); err != nil {
		m.logger.WarnContext(ctx, "failed to delete rotated session token",
			slog.String("session_id", sess.ID),
			slog.String("error", err.Error()),
		)
	}
	return nil
}

// Destroy removes the session from the store. The next Commit clears the cookie.
func (m *Manager) Destroy(ctx context.Context, sess *Session) error {
	if !sess.IsNew() {
		if err := m.store.Delete(ctx, sess.Token); err != nil {
			return err
		}
	}
	sess.Values = nil
	sess.UserID = nil
	sess.AuthHash = ""
	sess.destroyed = true
	return nil
}

// Store returns the underlying session store.
func (m *Manager) Store() Store {
	return m.store
}

// fresh returns a new session that is persisted only once something is written to it.
func (m *Manager) fresh() (*Session, error) {
	token, err := generateToken()
	if err != nil {
		return nil, fmt.Errorf("generate session token: %w", err)
	}
	sess := New(uuid.NewString(), token, time.Now().Add(m.maxAge))
	sess.ClearDirty()
	return sess, nil
}

// generateToken creates a cryptographically secure random token.
func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
