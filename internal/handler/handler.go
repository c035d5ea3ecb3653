package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Handler declares routes on a router.
type Handler interface {
	Routes(r chi.Router)
}

// HandlerFunc is the signature for route handlers.
// A non-nil error is passed to the ErrorHandler.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// ErrorHandler writes the response for an error returned by a HandlerFunc.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// DefaultErrorHandler answers with a JSON {"error": message} body.
// Server errors are logged with their cause; the client only sees the status text.
func DefaultErrorHandler(log *slog.Logger) ErrorHandler {
	return func(w http.ResponseWriter, r *http.Request, err error) {
		httpErr := AsHTTPError(err)
		if httpErr.Code >= http.StatusInternalServerError {
			cause := err
			if httpErr.Err != nil {
				cause = httpErr.Err
			}
			log.ErrorContext(r.Context(), "request failed",
				slog.Int("status", httpErr.Code),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("error", cause.Error()),
			)
		}
		writeJSON(w, httpErr.Code, map[string]string{"error": httpErr.Message})
	}
}

// Adapt converts fn into an http.HandlerFunc that routes errors to onError.
func Adapt(fn HandlerFunc, onError ErrorHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			onError(w, r, err)
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
