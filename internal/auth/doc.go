// Package auth implements sign-in through the OAuth2 authorization code flow.
//
// [Backend] is the provider-agnostic contract: Authenticate turns credentials
// into a user, GetUser resolves a session's user ID. Refusals and missing
// users are (zero, false, nil); errors mean the backend itself failed.
//
// [OAuthBackend] is the Google-backed implementation. A login attempt moves
// through these states:
//
//	started -> callback received -> validated | refused
//	validated -> token exchanged -> profile fetched -> user created
//
// and fails at the first step that errors, typed by [ErrOAuth2],
// [ErrNetwork] or [ErrDatabase]. The CSRF state comparison is the only
// forgery defence; a mismatch never reaches the provider.
//
// [AuthSession] is the per-request handle tying a backend to a session.
package auth
