package middlewares_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/oauthgate/middlewares"
)

func TestResponseWriter_HooksRunOnceInOrder(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	rw := middlewares.NewResponseWriter(rec)

	var calls []string
	rw.OnBeforeWrite(func() error { calls = append(calls, "first"); return nil })
	rw.OnBeforeWrite(func() error { calls = append(calls, "second"); return nil })

	_, err := rw.Write([]byte("hello"))
	require.NoError(t, err)
	rw.WriteHeader(http.StatusTeapot)

	require.Equal(t, []string{"first", "second"}, calls)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "hello", rec.Body.String())
	require.Equal(t, int64(5), rw.Size())
	require.True(t, rw.Written())
}

func TestResponseWriter_HookFailure(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	rw := middlewares.NewResponseWriter(rec)
	rw.OnBeforeWrite(func() error { return errors.New("store down") })

	rw.Header().Set("Location", "/somewhere")
	rw.WriteHeader(http.StatusFound)
	n, err := rw.Write([]byte("secret body"))

	require.NoError(t, err)
	require.Equal(t, len("secret body"), n)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, http.StatusInternalServerError, rw.Status())
	require.Empty(t, rec.Header().Get("Location"))
	require.NotContains(t, rec.Body.String(), "secret body")
	require.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
}

func TestNewResponseWriter_ReusesWrapper(t *testing.T) {
	t.Parallel()

	rw := middlewares.NewResponseWriter(httptest.NewRecorder())
	require.Same(t, rw, middlewares.NewResponseWriter(rw))
	require.Equal(t, http.StatusOK, rw.Status())
	require.False(t, rw.Written())
}
