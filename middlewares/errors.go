package middlewares

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// PanicError describes a recovered panic.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// TimeoutError describes a request that ran past its deadline.
type TimeoutError struct {
	Duration time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request timeout after %s", e.Duration)
}

// writeError sends a JSON error body unless the response already started.
func writeError(w http.ResponseWriter, status int, msg string) {
	if rw, ok := w.(*ResponseWriter); ok && rw.Written() {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
