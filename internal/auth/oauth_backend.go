package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/oauth2"

	"github.com/dmitrymomot/oauthgate/internal/user"
	"github.com/dmitrymomot/oauthgate/pkg/oauth"
)

const defaultCallTimeout = 10 * time.Second

// UserStore persists users created by sign-in.
type UserStore interface {
	Create(ctx context.Context, in user.NewUser) (*user.User, error)
	FindByID(ctx context.Context, id string) (*user.User, bool, error)
}

// OAuthBackend signs users in with the OAuth2 authorization code flow.
type OAuthBackend struct {
	provider    oauth.Provider
	users       UserStore
	logger      *slog.Logger
	recorder    Recorder
	callTimeout time.Duration
}

// Option configures an OAuthBackend.
type Option func(*OAuthBackend)

// WithLogger sets the logger for login outcomes.
func WithLogger(l *slog.Logger) Option {
	return func(b *OAuthBackend) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithRecorder sets the login metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(b *OAuthBackend) {
		if r != nil {
			b.recorder = r
		}
	}
}

// WithCallTimeout bounds each provider call and store query.
func WithCallTimeout(d time.Duration) Option {
	return func(b *OAuthBackend) {
		if d > 0 {
			b.callTimeout = d
		}
	}
}

// NewOAuthBackend creates a backend over the given provider and user store.
func NewOAuthBackend(provider oauth.Provider, users UserStore, opts ...Option) *OAuthBackend {
	b := &OAuthBackend{
		provider:    provider,
		users:       users,
		logger:      slog.New(slog.DiscardHandler),
		recorder:    nopRecorder{},
		callTimeout: defaultCallTimeout,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// AuthorizeURL returns the provider authorization URL and the CSRF state it carries.
// The caller must remember the state in the session to validate the callback.
func (b *OAuthBackend) AuthorizeURL() (string, string, error) {
	state, err := oauth.GenerateState()
	if err != nil {
		return "", "", errors.Join(ErrAuthorizeURL, err)
	}
	return b.provider.AuthCodeURL(state), state, nil
}

// Authenticate runs the callback half of the flow: validate state, exchange
// the code, fetch the profile and create the user.
//
// A state mismatch, including a missing server state, refuses the attempt
// with (nil, false, nil) before any outbound call. Nothing is retried.
func (b *OAuthBackend) Authenticate(ctx context.Context, creds Credentials) (u *user.User, ok bool, err error) {
	start := time.Now()
	defer func() {
		outcome := OutcomeOf(ok, err)
		b.recorder.ObserveLogin(string(outcome), time.Since(start).Seconds())
		b.logOutcome(ctx, outcome, u, err)
	}()

	if !statesMatch(creds.ClientState, creds.ServerState) {
		return nil, false, nil
	}
	if creds.Code == "" {
		return nil, false, errors.Join(ErrOAuth2, errors.New("missing authorization code"))
	}

	token, err := b.exchange(ctx, creds.Code)
	if err != nil {
		return nil, false, errors.Join(ErrOAuth2, err)
	}

	info, err := b.fetchProfile(ctx, token)
	if err != nil {
		return nil, false, errors.Join(ErrNetwork, err)
	}

	u, err = b.createUser(ctx, info, token.AccessToken)
	if err != nil {
		return nil, false, errors.Join(ErrDatabase, err)
	}
	return u, true, nil
}

// GetUser loads a user by ID. Unknown IDs yield (nil, false, nil).
func (b *OAuthBackend) GetUser(ctx context.Context, id string) (*user.User, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, b.callTimeout)
	defer cancel()

	u, ok, err := b.users.FindByID(ctx, id)
	if err != nil {
		return nil, false, errors.Join(ErrDatabase, err)
	}
	if !ok {
		return nil, false, nil
	}
	return u, true, nil
}

// Revoke asks the provider to invalidate the user's access token.
func (b *OAuthBackend) Revoke(ctx context.Context, u *user.User) error {
	if u == nil || u.AccessToken == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, b.callTimeout)
	defer cancel()

	if err := b.provider.Revoke(ctx, u.AccessToken); err != nil {
		return errors.Join(ErrNetwork, err)
	}
	return nil
}

func (b *OAuthBackend) exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	ctx, cancel := context.WithTimeout(ctx, b.callTimeout)
	defer cancel()
	return b.provider.Exchange(ctx, code, "")
}

func (b *OAuthBackend) fetchProfile(ctx context.Context, token *oauth2.Token) (*oauth.UserInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, b.callTimeout)
	defer cancel()
	return b.provider.FetchUserInfo(ctx, token)
}

func (b *OAuthBackend) createUser(ctx context.Context, info *oauth.UserInfo, accessToken string) (*user.User, error) {
	ctx, cancel := context.WithTimeout(ctx, b.callTimeout)
	defer cancel()

	var name *string
	if info.Name != "" {
		name = &info.Name
	}
	return b.users.Create(ctx, user.NewUser{
		Email:       info.Email,
		Name:        name,
		AccessToken: accessToken,
	})
}

func (b *OAuthBackend) logOutcome(ctx context.Context, outcome Outcome, u *user.User, err error) {
	attrs := []any{slog.String("provider", b.provider.Name()), slog.String("outcome", string(outcome))}
	switch outcome {
	case OutcomeSuccess:
		b.logger.InfoContext(ctx, "login succeeded", append(attrs, slog.Any("user", u))...)
	case OutcomeRefused:
		b.logger.WarnContext(ctx, "login refused: state mismatch", attrs...)
	default:
		b.logger.ErrorContext(ctx, "login failed", append(attrs, slog.String("error", err.Error()))...)
	}
}

// statesMatch compares in constant time. An empty server state never matches.
func statesMatch(client, server string) bool {
	if server == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(client), []byte(server)) == 1
}

var _ Backend[Credentials, *user.User] = (*OAuthBackend)(nil)
