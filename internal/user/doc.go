// Package user stores accounts created by OAuth sign-in.
//
// [Repository] inserts one row per successful sign-in and looks users up by
// ID. Lookups of unknown IDs return (nil, false, nil); only storage failures
// are errors, joined with [ErrCreateFailed] or [ErrQueryFailed].
package user
