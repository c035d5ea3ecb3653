// Package session provides server-side sessions referenced by a signed cookie.
//
// A Session carries an optional bound user (UserID plus an AuthHash of the
// user's credential) and arbitrary JSON values. Values round-trip through
// encoding/json; a value or payload that fails to decode is reported as
// ErrSerialization and must be treated as fatal for the request.
//
// Sessions live in a Store. RedisStore shares them across instances with a
// TTL equal to the remaining lifetime; MemoryStore is for development and tests.
//
// Manager ties a Store to the HTTP cookie:
//
//	sess, err := manager.Load(ctx, r)
//	if err != nil {
//		// store unreachable or payload corrupt
//	}
//	if err := sess.Set("auth.next-url", "/dashboard"); err != nil {
//		// handle error
//	}
//	if err := manager.Commit(ctx, w, sess); err != nil {
//		// handle error
//	}
//
// Fresh sessions are not written to the store until something is set on them,
// so anonymous traffic does not create store entries.
package session
