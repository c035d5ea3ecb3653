package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/oauthgate/internal/auth"
	"github.com/dmitrymomot/oauthgate/internal/config"
	"github.com/dmitrymomot/oauthgate/internal/db/migrations"
	"github.com/dmitrymomot/oauthgate/internal/handler"
	"github.com/dmitrymomot/oauthgate/internal/metrics"
	"github.com/dmitrymomot/oauthgate/internal/server"
	"github.com/dmitrymomot/oauthgate/internal/user"
	"github.com/dmitrymomot/oauthgate/pkg/cookie"
	"github.com/dmitrymomot/oauthgate/pkg/db"
	"github.com/dmitrymomot/oauthgate/pkg/health"
	"github.com/dmitrymomot/oauthgate/pkg/job"
	"github.com/dmitrymomot/oauthgate/pkg/oauth"
	"github.com/dmitrymomot/oauthgate/pkg/redis"
	"github.com/dmitrymomot/oauthgate/pkg/session"
)

// writeTimeoutMargin keeps http.Server.WriteTimeout above the request
// timeout so a 504 can still be written.
const writeTimeoutMargin = 5 * time.Second

// App wires the service's dependencies together.
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	pool    *pgxpool.Pool
	redis   goredis.UniversalClient // nil with the memory session store
	memory  *session.MemoryStore    // nil with the redis session store
	jobs    *job.Manager            // nil when jobs are disabled
	handler http.Handler
}

// New connects to the backing services and builds the HTTP handler.
// On failure every connection opened so far is closed.
func New(ctx context.Context, cfg *config.Config, log *slog.Logger) (_ *App, err error) {
	a := &App{cfg: cfg, logger: log}
	defer func() {
		if err != nil {
			_ = a.Close(context.Background())
		}
	}()

	a.pool, err = db.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	checks := health.Checks{"postgres": db.Healthcheck(a.pool)}

	var store session.Store
	switch cfg.Session.Store {
	case config.StoreMemory:
		log.Warn("using in-memory session store; sessions are lost on restart")
		a.memory = session.NewMemoryStore(time.Minute)
		store = a.memory
	default:
		a.redis, err = redis.Connect(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		store = session.NewRedisStore(a.redis, session.WithRedisPrefix(cfg.Session.RedisPrefix))
		checks["redis"] = redis.Healthcheck(a.redis)
	}

	cookies, err := cookie.New(cfg.Session.Secret,
		cookie.WithDomain(cfg.Session.CookieDomain),
		cookie.WithSecure(cfg.Session.Secure),
	)
	if err != nil {
		return nil, err
	}
	sessions := session.NewManager(store, cookies,
		session.WithCookieName(cfg.Session.CookieName),
		session.WithMaxAge(cfg.Session.MaxAge),
		session.WithLogger(log),
	)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m, err := metrics.New(reg)
	if err != nil {
		return nil, err
	}
	if err := metrics.RegisterPool(reg, a.pool); err != nil {
		return nil, err
	}

	provider, err := oauth.NewGoogleProvider(cfg.OAuth,
		oauth.WithHTTPClient(&http.Client{Timeout: cfg.HTTP.CallTimeout}),
	)
	if err != nil {
		return nil, err
	}

	backend := auth.NewOAuthBackend(provider, user.NewRepository(a.pool),
		auth.WithLogger(log),
		auth.WithRecorder(m),
		auth.WithCallTimeout(cfg.HTTP.CallTimeout),
	)

	var authOpts []handler.AuthOption
	if cfg.Jobs.Enabled {
		a.jobs, err = job.NewManager(a.pool,
			job.WithTask[auth.RevokePayload](auth.NewRevokeTask(backend, log)),
			job.WithLogger(log),
			job.WithMaxWorkers(cfg.Jobs.MaxWorkers),
		)
		if err != nil {
			return nil, err
		}
		checks["jobs"] = job.Healthcheck(a.jobs)
		authOpts = append(authOpts, handler.WithRevoker(auth.NewRevokeQueue(a.jobs, cfg.Jobs.RevokeMaxAttempts)))
	}

	a.handler = handler.NewRouter(handler.RouterConfig{
		Logger:         log,
		Metrics:        m,
		Sessions:       sessions,
		Checks:         checks,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		RequestTimeout: cfg.HTTP.RequestTimeout,
	}, handler.NewAuthHandler(backend, sessions, log, authOpts...))

	return a, nil
}

// Handler returns the HTTP handler.
func (a *App) Handler() http.Handler {
	return a.handler
}

// Migrate applies pending database migrations, then the job queue schema.
func (a *App) Migrate(ctx context.Context) error {
	if err := db.Migrate(ctx, a.pool, migrations.FS, a.cfg.Database.MigrationsTable, a.logger); err != nil {
		return err
	}
	return job.Migrate(ctx, a.pool, a.logger)
}

// Run serves HTTP until ctx is cancelled or a termination signal arrives,
// then stops the job workers and closes the backing connections.
func (a *App) Run(ctx context.Context, opts ...server.Option) error {
	base := []server.Option{
		server.WithAddress(a.cfg.HTTP.Address),
		server.WithLogger(a.logger),
		server.WithShutdownTimeout(a.cfg.HTTP.ShutdownTimeout),
		server.WithWriteTimeout(a.cfg.HTTP.RequestTimeout + writeTimeoutMargin),
		server.WithShutdownHook(a.Close),
	}
	if a.jobs != nil {
		base = append(base, server.WithStartupHook(a.jobs.StartFunc()))
	}

	// Close again in case the server never reached its shutdown hooks.
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTP.ShutdownTimeout)
		defer cancel()
		_ = a.Close(closeCtx)
	}()
	return server.Run(ctx, a.handler, append(base, opts...)...)
}

// Close stops the job workers and releases the backing connections.
// It is safe to call more than once.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.jobs != nil {
		if err := a.jobs.Stop(ctx); err != nil && !errors.Is(err, job.ErrNotStarted) {
			errs = append(errs, err)
		}
		a.jobs = nil
	}
	if a.memory != nil {
		errs = append(errs, a.memory.Close())
		a.memory = nil
	}
	if a.redis != nil {
		errs = append(errs, redis.Shutdown(a.redis)(ctx))
		a.redis = nil
	}
	if a.pool != nil {
		errs = append(errs, db.Shutdown(a.pool)(ctx))
		a.pool = nil
	}
	return errors.Join(errs...)
}
