package middlewares

import (
	"bufio"
	"net"
	"net/http"
	"sync"
)

const internalErrorBody = `{"error":"internal server error"}` + "\n"

// ResponseWriter runs hooks right before the response header is sent.
// If a hook fails, the response is replaced with a generic 500 and the
// handler's body is discarded.
type ResponseWriter struct {
	http.ResponseWriter
	beforeWrite []func() error
	status      int
	size        int64
	mu          sync.Mutex
	written     bool
	failed      bool
}

// NewResponseWriter wraps w. If w is already a *ResponseWriter it is returned as is.
func NewResponseWriter(w http.ResponseWriter) *ResponseWriter {
	if rw, ok := w.(*ResponseWriter); ok {
		return rw
	}
	return &ResponseWriter{ResponseWriter: w, status: http.StatusOK}
}

// OnBeforeWrite registers a hook. Hooks run once, in registration order.
func (w *ResponseWriter) OnBeforeWrite(fn func() error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.beforeWrite = append(w.beforeWrite, fn)
}

func (w *ResponseWriter) WriteHeader(code int) {
	w.mu.Lock()
	if w.written {
		w.mu.Unlock()
		return
	}
	w.written = true
	w.status = code
	hooks := w.beforeWrite
	w.beforeWrite = nil
	w.mu.Unlock()

	for _, fn := range hooks {
		if err := fn(); err != nil {
			w.fail()
			return
		}
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *ResponseWriter) Write(b []byte) (int, error) {
	w.WriteHeader(w.Status())

	w.mu.Lock()
	failed := w.failed
	w.mu.Unlock()
	if failed {
		return len(b), nil
	}

	n, err := w.ResponseWriter.Write(b)
	w.mu.Lock()
	w.size += int64(n)
	w.mu.Unlock()
	return n, err
}

func (w *ResponseWriter) fail() {
	w.mu.Lock()
	w.failed = true
	w.status = http.StatusInternalServerError
	w.mu.Unlock()

	h := w.ResponseWriter.Header()
	h.Del("Location")
	h.Del("Content-Length")
	h.Set("Content-Type", "application/json")
	w.ResponseWriter.WriteHeader(http.StatusInternalServerError)
	_, _ = w.ResponseWriter.Write([]byte(internalErrorBody))
}

// Status returns the status code sent, or 200 if nothing was sent yet.
func (w *ResponseWriter) Status() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status
}

// Size returns the number of body bytes written by the handler.
func (w *ResponseWriter) Size() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.size
}

// Written reports whether the header has been sent.
func (w *ResponseWriter) Written() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.written
}

func (w *ResponseWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *ResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := w.ResponseWriter.(http.Hijacker); ok {
		return h.Hijack()
	}
	return nil, nil, http.ErrNotSupported
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *ResponseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
