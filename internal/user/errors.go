package user

import "errors"

var (
	// ErrCreateFailed is returned when a user row cannot be inserted.
	ErrCreateFailed = errors.New("user: failed to create user")
	// ErrQueryFailed is returned when a user lookup fails for a reason other than not found.
	ErrQueryFailed = errors.New("user: failed to query user")
	// ErrInvalidInput is returned when NewUser lacks an email or access token.
	ErrInvalidInput = errors.New("user: invalid input")
)
