package middlewares

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"
)

// DefaultTimeout applies when Timeout is given a non-positive duration.
const DefaultTimeout = 30 * time.Second

// Timeout bounds the request context. Handlers and the calls they make see the
// deadline through r.Context(); if the deadline passes before anything is
// written, the client receives 504.
func Timeout(d time.Duration, log *slog.Logger) func(http.Handler) http.Handler {
	if d <= 0 {
		d = DefaultTimeout
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()

			rw := NewResponseWriter(w)
			next.ServeHTTP(rw, r.WithContext(ctx))

			if errors.Is(ctx.Err(), context.DeadlineExceeded) && !rw.Written() {
				te := &TimeoutError{Duration: d}
				log.WarnContext(ctx, "request timeout",
					slog.String("error", te.Error()),
					slog.String("path", r.URL.Path),
				)
				writeError(rw, http.StatusGatewayTimeout, "request timeout")
			}
		})
	}
}
