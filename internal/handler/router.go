package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/oauthgate/internal/metrics"
	"github.com/dmitrymomot/oauthgate/middlewares"
	"github.com/dmitrymomot/oauthgate/pkg/health"
	"github.com/dmitrymomot/oauthgate/pkg/session"
)

// RouterConfig holds what the router needs besides the route handlers.
type RouterConfig struct {
	Logger         *slog.Logger
	Metrics        *metrics.Metrics // nil disables /metrics and request metrics
	Sessions       *session.Manager
	Checks         health.Checks
	AllowedOrigins []string
	RequestTimeout time.Duration
}

// NewRouter builds the HTTP router.
//
// Probes and /metrics sit outside the session layer so they never create sessions.
// Application routes run with a request deadline and a loaded session.
func NewRouter(cfg RouterConfig, handlers ...Handler) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	r := chi.NewRouter()
	r.Use(middleware.CleanPath)
	r.Use(middlewares.RequestID())
	r.Use(middlewares.Recover(log))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
	}
	// Preflight requests must be answered before routing rejects OPTIONS.
	r.Use(middlewares.CORS(cfg.AllowedOrigins))

	onError := DefaultErrorHandler(log)
	r.NotFound(Adapt(func(http.ResponseWriter, *http.Request) error {
		return NewHTTPError(http.StatusNotFound, http.StatusText(http.StatusNotFound), nil)
	}, onError))
	r.MethodNotAllowed(Adapt(func(http.ResponseWriter, *http.Request) error {
		return NewHTTPError(http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed), nil)
	}, onError))

	r.Get("/healthz", health.LivenessHandler())
	r.Get("/readyz", health.ReadinessHandler(cfg.Checks, health.WithLogger(log)))
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	}

	r.Group(func(r chi.Router) {
		r.Use(middlewares.Timeout(cfg.RequestTimeout, log))
		r.Use(middlewares.Session(cfg.Sessions, log))
		for _, h := range handlers {
			h.Routes(r)
		}
	})

	return r
}
