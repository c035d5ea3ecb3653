package oauth

import "errors"

var (
	// ErrMissingClientID is returned when the OAuth client ID is not provided.
	ErrMissingClientID = errors.New("oauth: missing client ID")

	// ErrMissingClientSecret is returned when the OAuth client secret is not provided.
	ErrMissingClientSecret = errors.New("oauth: missing client secret")

	// ErrInvalidEndpoint is returned when a configured endpoint is not an absolute URL.
	ErrInvalidEndpoint = errors.New("oauth: invalid endpoint URL")

	// ErrStateGeneration is returned when the CSRF state cannot be generated.
	ErrStateGeneration = errors.New("oauth: failed to generate state")

	// ErrExchangeFailed is returned when the provider rejects the authorization
	// code or answers the token request with a malformed response.
	ErrExchangeFailed = errors.New("oauth: code exchange failed")

	// ErrNilResponse is returned when the OAuth provider returns a nil response.
	ErrNilResponse = errors.New("oauth: nil response from provider")

	// ErrFetchFailed is returned when fetching data from the OAuth provider fails.
	ErrFetchFailed = errors.New("oauth: failed to fetch from provider")

	// ErrRequestFailed is returned when the OAuth provider returns a non-OK status.
	ErrRequestFailed = errors.New("oauth: request returned non-OK status")

	// ErrDecodeFailed is returned when decoding the OAuth provider response fails.
	ErrDecodeFailed = errors.New("oauth: failed to decode response")

	// ErrMissingEmail is returned when the profile response has no email.
	ErrMissingEmail = errors.New("oauth: profile has no email")

	// ErrRevocationUnsupported is returned by Revoke when no revocation endpoint is configured.
	ErrRevocationUnsupported = errors.New("oauth: token revocation not configured")
)
