package auth

import "errors"

// OutcomeOf classifies the result of Authenticate.
func OutcomeOf(ok bool, err error) Outcome {
	switch {
	case err == nil && ok:
		return OutcomeSuccess
	case err == nil:
		return OutcomeRefused
	case errors.Is(err, ErrOAuth2):
		return OutcomeOAuth2Error
	case errors.Is(err, ErrNetwork):
		return OutcomeNetworkError
	case errors.Is(err, ErrDatabase):
		return OutcomeDatabaseError
	default:
		return OutcomeUnknownError
	}
}
