package handler

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"unicode"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/oauthgate/internal/auth"
	"github.com/dmitrymomot/oauthgate/internal/user"
	"github.com/dmitrymomot/oauthgate/middlewares"
	"github.com/dmitrymomot/oauthgate/pkg/session"
)

// Session keys holding the state of an in-flight login.
const (
	CSRFStateKey = "auth.csrf-state"
	NextURLKey   = "auth.next-url"
)

const (
	defaultNextURL  = "/"
	logoutRedirect  = "/login"
	refusedMessage  = "invalid login state"
	missingIdentity = "not authenticated"
)

// Authenticator is the backend the auth routes drive.
type Authenticator interface {
	auth.Backend[auth.Credentials, *user.User]
	AuthorizeURL() (string, string, error)
	Revoke(ctx context.Context, u *user.User) error
}

// TokenRevoker invalidates a user's provider token on logout.
type TokenRevoker interface {
	Revoke(ctx context.Context, u *user.User) error
}

// AuthHandler serves the login, callback, logout and identity routes.
type AuthHandler struct {
	backend  Authenticator
	sessions auth.SessionManager
	revoker  TokenRevoker
	logger   *slog.Logger
	onError  ErrorHandler
}

// AuthOption configures an AuthHandler.
type AuthOption func(*AuthHandler)

// WithRevoker replaces inline revocation through the backend, typically with
// an auth.RevokeQueue.
func WithRevoker(r TokenRevoker) AuthOption {
	return func(h *AuthHandler) {
		if r != nil {
			h.revoker = r
		}
	}
}

// WithErrorHandler overrides how handler errors are rendered.
func WithErrorHandler(fn ErrorHandler) AuthOption {
	return func(h *AuthHandler) {
		if fn != nil {
			h.onError = fn
		}
	}
}

// NewAuthHandler creates the auth routes over backend and the session manager.
func NewAuthHandler(backend Authenticator, sessions auth.SessionManager, log *slog.Logger, opts ...AuthOption) *AuthHandler {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	h := &AuthHandler{
		backend:  backend,
		sessions: sessions,
		revoker:  backend,
		logger:   log,
		onError:  DefaultErrorHandler(log),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes implements Handler.
func (h *AuthHandler) Routes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Get("/login", Adapt(h.login, h.onError))
		r.Get("/callback", Adapt(h.callback, h.onError))
		r.Get("/logout", Adapt(h.logout, h.onError))
		r.Get("/me", Adapt(h.me, h.onError))
	})
}

type urlResponse struct {
	URL string `json:"url"`
}

type meResponse struct {
	Name  *string `json:"name"`
	ID    string  `json:"id"`
	Email string  `json:"email"`
}

// login starts the flow: the CSRF state and the post-login destination are
// remembered in the session, the authorization URL goes back to the client.
func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) error {
	sess, err := sessionFrom(r)
	if err != nil {
		return err
	}

	authURL, state, err := h.backend.AuthorizeURL()
	if err != nil {
		return ErrInternal(err)
	}
	if err := sess.Set(CSRFStateKey, state); err != nil {
		return ErrInternal(err)
	}

	if next := r.URL.Query().Get("next"); next != "" {
		if err := sess.Set(NextURLKey, next); err != nil {
			return ErrInternal(err)
		}
	} else {
		sess.Delete(NextURLKey)
	}

	writeJSON(w, http.StatusOK, urlResponse{URL: authURL})
	return nil
}

// callback completes the flow. The flow state is single-use and is cleared
// whatever the outcome.
func (h *AuthHandler) callback(w http.ResponseWriter, r *http.Request) error {
	sess, err := sessionFrom(r)
	if err != nil {
		return err
	}

	// A stored value that no longer decodes is a server-side fault.
	serverState, err := optionalValue(sess, CSRFStateKey)
	if err != nil {
		return ErrInternal(err)
	}
	next, err := optionalValue(sess, NextURLKey)
	if err != nil {
		return ErrInternal(err)
	}
	sess.Delete(CSRFStateKey)
	sess.Delete(NextURLKey)

	q := r.URL.Query()
	as := h.authSession(sess)
	u, ok, err := as.Authenticate(r.Context(), auth.Credentials{
		Code:        q.Get("code"),
		ClientState: q.Get("state"),
		ServerState: serverState,
	})
	if err != nil {
		return ErrInternal(err)
	}
	if !ok {
		return ErrUnauthorized(refusedMessage)
	}

	if err := as.Login(r.Context(), u); err != nil {
		return ErrInternal(err)
	}

	http.Redirect(w, r, SafeRedirect(next), http.StatusFound)
	return nil
}

// logout revokes the provider token when possible and destroys the session.
func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) error {
	sess, err := sessionFrom(r)
	if err != nil {
		return err
	}

	as := h.authSession(sess)
	ctx := r.Context()

	u, ok, err := as.User(ctx)
	switch {
	case err != nil:
		h.logger.WarnContext(ctx, "skipping token revocation: identity unavailable",
			slog.String("error", err.Error()))
	case ok:
		if err := h.revoker.Revoke(ctx, u); err != nil {
			h.logger.WarnContext(ctx, "token revocation failed",
				slog.String("user_id", u.ID),
				slog.String("error", err.Error()))
		}
	}

	if err := as.Logout(ctx); err != nil {
		return ErrInternal(err)
	}

	http.Redirect(w, r, logoutRedirect, http.StatusFound)
	return nil
}

// me reports the signed-in user.
func (h *AuthHandler) me(w http.ResponseWriter, r *http.Request) error {
	sess, err := sessionFrom(r)
	if err != nil {
		return err
	}

	u, ok, err := h.authSession(sess).User(r.Context())
	if err != nil {
		return ErrServiceUnavailable(err)
	}
	if !ok {
		return ErrUnauthorized(missingIdentity)
	}

	writeJSON(w, http.StatusOK, meResponse{ID: u.ID, Email: u.Email, Name: u.Name})
	return nil
}

func (h *AuthHandler) authSession(sess *session.Session) *auth.AuthSession[auth.Credentials, *user.User] {
	return auth.NewAuthSession[auth.Credentials, *user.User](h.backend, h.sessions, sess)
}

func sessionFrom(r *http.Request) (*session.Session, error) {
	sess, ok := middlewares.SessionFromContext(r.Context())
	if !ok {
		return nil, ErrInternal(ErrNoSession)
	}
	return sess, nil
}

// optionalValue reads a string value, treating a missing key as empty.
func optionalValue(sess *session.Session, key string) (string, error) {
	var v string
	if _, err := sess.Get(key, &v); err != nil {
		return "", err
	}
	return v, nil
}

// SafeRedirect returns next when it is a local absolute path, "/" otherwise.
// Scheme-relative ("//host") and backslash forms are rejected, as is any
// control character: browsers strip tabs and newlines before resolving, so
// "/\t/host" would otherwise leave the site.
func SafeRedirect(next string) string {
	if next == "" || next[0] != '/' {
		return defaultNextURL
	}
	if strings.IndexFunc(next, unicode.IsControl) >= 0 {
		return defaultNextURL
	}
	if len(next) > 1 && (next[1] == '/' || next[1] == '\\') {
		return defaultNextURL
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" || u.User != nil {
		return defaultNextURL
	}
	return next
}
