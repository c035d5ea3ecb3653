package handler_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/oauthgate/pkg/health"
)

// loginCount reads oauthgate_logins_total for one outcome.
func loginCount(t *testing.T, app *testApp, outcome string) float64 {
	t.Helper()
	families, err := app.registry.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() != "oauthgate_logins_total" {
			continue
		}
		for _, m := range f.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "outcome" && l.GetValue() == outcome {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestProbes(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, health.Checks{
		"postgres": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return errors.New("dial tcp: refused") },
	})

	require.Equal(t, http.StatusOK, app.get(t, "/healthz").StatusCode)
	require.Equal(t, http.StatusServiceUnavailable, app.get(t, "/readyz").StatusCode)
	require.Empty(t, app.sessionCookie(t), "probes must not create sessions")
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, nil)
	app.get(t, "/auth/me")

	resp := app.get(t, "/metrics")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, readBody(t, resp), `oauthgate_http_requests_total{method="GET",route="/auth/me",status="401"} 1`)
}

func TestNotFound(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, nil)
	resp := app.get(t, "/nope")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.JSONEq(t, `{"error":"Not Found"}`, readBody(t, resp))
}

func TestCORSPreflight(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, nil)
	req, err := http.NewRequestWithContext(context.Background(), http.MethodOptions, app.server.URL+"/auth/login", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)

	resp, err := app.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	require.Equal(t, "https://app.example.com", resp.Header.Get("Access-Control-Allow-Origin"))
	require.Equal(t, "true", resp.Header.Get("Access-Control-Allow-Credentials"))
}
