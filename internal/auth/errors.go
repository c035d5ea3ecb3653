package auth

import "errors"

var (
	// ErrOAuth2 means the provider rejected the code or returned a malformed token.
	ErrOAuth2 = errors.New("auth: oauth2 code exchange failed")
	// ErrNetwork means the profile could not be fetched or decoded.
	ErrNetwork = errors.New("auth: provider request failed")
	// ErrDatabase means the user store failed.
	ErrDatabase = errors.New("auth: user store failed")
	// ErrIdentityUnavailable means a bound session could not be verified right now.
	// It is distinct from "not authenticated".
	ErrIdentityUnavailable = errors.New("auth: identity cannot be verified")
	// ErrAuthorizeURL means no CSRF state could be generated for the authorization URL.
	ErrAuthorizeURL = errors.New("auth: failed to build authorization url")
)
