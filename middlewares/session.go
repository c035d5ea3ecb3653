package middlewares

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/oauthgate/pkg/session"
)

type sessionKey struct{}

// Session loads the request's session before the handler runs and commits it
// right before the response header is sent. A session that cannot be loaded
// or saved, including one whose payload no longer decodes, fails the request
// with 500.
func Session(manager *session.Manager, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			sess, err := manager.Load(ctx, r)
			if err != nil {
				log.ErrorContext(ctx, "failed to load session", slog.String("error", err.Error()))
				writeError(w, http.StatusInternalServerError, "internal server error")
				return
			}

			rw := NewResponseWriter(w)
			rw.OnBeforeWrite(func() error {
				// The request context may already be past its deadline.
				if err := manager.Commit(context.WithoutCancel(ctx), rw.ResponseWriter, sess); err != nil {
					log.ErrorContext(ctx, "failed to commit session", slog.String("error", err.Error()))
					return err
				}
				return nil
			})

			next.ServeHTTP(rw, r.WithContext(context.WithValue(ctx, sessionKey{}, sess)))

			// Handlers that write nothing still get their session saved.
			// After a deadline the timeout middleware answers instead.
			if !rw.Written() && ctx.Err() == nil {
				rw.WriteHeader(http.StatusOK)
			}
		})
	}
}

// SessionFromContext returns the session loaded by the Session middleware.
func SessionFromContext(ctx context.Context) (*session.Session, bool) {
	sess, ok := ctx.Value(sessionKey{}).(*session.Session)
	return sess, ok && sess != nil
}
