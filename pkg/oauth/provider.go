package oauth

import (
	"context"

	"golang.org/x/oauth2"
)

// UserInfo represents provider-agnostic user information
// retrieved from an OAuth provider's userinfo endpoint.
type UserInfo struct {
	ID    string // Provider's unique user identifier
	Email string
	Name  string
}

// Provider abstracts provider-specific OAuth operations.
type Provider interface {
	// Name returns the provider identifier (e.g., "google").
	Name() string

	// AuthCodeURL generates the authorization URL for the OAuth flow.
	AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string

	// Exchange trades an authorization code for tokens.
	// The code is single-use; implementations must not retry.
	Exchange(ctx context.Context, code, redirectURI string) (*oauth2.Token, error)

	// FetchUserInfo retrieves user information using the access token.
	// Returns ErrMissingEmail if the profile carries no email.
	FetchUserInfo(ctx context.Context, token *oauth2.Token) (*UserInfo, error)

	// Revoke invalidates the token at the provider (RFC 7009).
	Revoke(ctx context.Context, token string) error
}
