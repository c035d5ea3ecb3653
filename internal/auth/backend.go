package auth

import "context"

// Identity is a user a session can be bound to.
type Identity interface {
	Identifier() string
	// SessionAuthHash changes whenever the user's credential changes,
	// which logs out every session bound with the previous value.
	SessionAuthHash() string
}

// Backend authenticates credentials of type C into users of type U.
//
// Refusals and unknown users are reported as (zero, false, nil). Errors are
// reserved for failures of the backend itself.
type Backend[C any, U Identity] interface {
	Authenticate(ctx context.Context, creds C) (U, bool, error)
	GetUser(ctx context.Context, id string) (U, bool, error)
}

// Credentials are presented at the OAuth callback.
type Credentials struct {
	// Code is the authorization code from the callback query.
	Code string
	// ClientState is the state echoed back by the provider.
	ClientState string
	// ServerState is the state remembered in the session at login start.
	ServerState string
}

// Outcome labels the terminal state of a login attempt.
type Outcome string

const (
	// OutcomeSuccess: the user was created and returned.
	OutcomeSuccess Outcome = "success"
	// OutcomeRefused: the state did not match; nothing was called.
	OutcomeRefused Outcome = "refused"
	// OutcomeOAuth2Error: the code exchange failed.
	OutcomeOAuth2Error Outcome = "oauth2_error"
	// OutcomeNetworkError: the profile fetch failed.
	OutcomeNetworkError Outcome = "network_error"
	// OutcomeDatabaseError: the user insert failed.
	OutcomeDatabaseError Outcome = "database_error"
	// OutcomeUnknownError: any other failure.
	OutcomeUnknownError Outcome = "error"
)

// Recorder observes finished login attempts.
type Recorder interface {
	ObserveLogin(outcome string, seconds float64)
}

type nopRecorder struct{}

func (nopRecorder) ObserveLogin(string, float64) {}
