package handler

import (
	"errors"
	"net/http"
)

// ErrNoSession is returned when a route runs without the session middleware.
var ErrNoSession = errors.New("handler: no session in request context")

// HTTPError carries a status code and a client-facing message.
// Err holds the underlying cause for logging and is never sent to the client.
type HTTPError struct {
	Err     error
	Message string
	Code    int
}

func (e *HTTPError) Error() string {
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// NewHTTPError creates an HTTPError with the given status code and message.
func NewHTTPError(code int, message string, cause error) *HTTPError {
	return &HTTPError{Code: code, Message: message, Err: cause}
}

// ErrUnauthorized answers 401 with message.
func ErrUnauthorized(message string) *HTTPError {
	return NewHTTPError(http.StatusUnauthorized, message, nil)
}

// ErrInternal answers a generic 500; cause is only logged.
func ErrInternal(cause error) *HTTPError {
	return NewHTTPError(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError), cause)
}

// ErrServiceUnavailable answers a generic 503; cause is only logged.
func ErrServiceUnavailable(cause error) *HTTPError {
	return NewHTTPError(http.StatusServiceUnavailable, http.StatusText(http.StatusServiceUnavailable), cause)
}

// AsHTTPError extracts an HTTPError from err's chain.
// Any other error becomes a 500 wrapping it.
func AsHTTPError(err error) *HTTPError {
	if err == nil {
		return nil
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return ErrInternal(err)
}
