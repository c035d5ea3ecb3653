package middlewares

import (
	"log/slog"
	"net/http"
	"runtime"
)

// DefaultStackSize bounds the logged stack trace.
const DefaultStackSize = 4096

// Recover turns a handler panic into a 500 response and an error log entry.
// A response that already started is left as is.
// http.ErrAbortHandler is re-panicked so the server can abort the connection.
func Recover(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
			w := NewResponseWriter(rw)
			defer func() {
				v := recover()
				if v == nil {
					return
				}
				if v == http.ErrAbortHandler { //nolint:errorlint // sentinel compared by identity
					panic(v)
				}

				stack := make([]byte, DefaultStackSize)
				stack = stack[:runtime.Stack(stack, false)]
				pe := &PanicError{Value: v, Stack: stack}

				log.ErrorContext(r.Context(), "panic recovered",
					slog.String("error", pe.Error()),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.String("stack", string(stack)),
				)
				writeError(w, http.StatusInternalServerError, "internal server error")
			}()

			next.ServeHTTP(w, r)
		})
	}
}
