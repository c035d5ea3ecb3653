package metrics

import (
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "oauthgate"

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	gatherer prometheus.Gatherer

	logins        *prometheus.CounterVec
	loginDuration *prometheus.HistogramVec

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	httpInflight prometheus.Gauge
}

// New creates the collectors and registers them on reg.
// A nil reg uses a fresh registry.
func New(reg *prometheus.Registry) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	logins := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Finished OAuth login attempts by outcome.",
	}, []string{"outcome"})
	loginDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "login_duration_seconds",
		Help:      "Time spent in the OAuth callback: exchange, profile fetch and insert.",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"outcome"})
	httpRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})
	httpDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by method and route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})
	httpInflight := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "http_inflight_requests",
		Help:      "Requests currently being served.",
	})

	m := &Metrics{gatherer: reg}
	var err error
	if m.logins, err = register(reg, logins); err != nil {
		return nil, err
	}
	if m.loginDuration, err = register(reg, loginDuration); err != nil {
		return nil, err
	}
	if m.httpRequests, err = register(reg, httpRequests); err != nil {
		return nil, err
	}
	if m.httpDuration, err = register(reg, httpDuration); err != nil {
		return nil, err
	}
	if m.httpInflight, err = register(reg, httpInflight); err != nil {
		return nil, err
	}
	return m, nil
}

// ObserveLogin records one finished login attempt.
func (m *Metrics) ObserveLogin(outcome string, seconds float64) {
	m.logins.WithLabelValues(outcome).Inc()
	m.loginDuration.WithLabelValues(outcome).Observe(seconds)
}

// RegisterPool exposes pgx pool statistics.
func RegisterPool(reg *prometheus.Registry, pool *pgxpool.Pool) error {
	_, err := register[prometheus.Collector](reg, newPoolCollector(pool))
	return err
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// register returns the collector already registered under the same
// descriptor when there is one, so repeated New calls share series.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}
