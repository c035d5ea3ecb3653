package server

import (
	"context"
	"log/slog"
	"net"
	"time"
)

// Option configures Run.
type Option func(*config)

type config struct {
	logger          *slog.Logger
	onListen        func(net.Addr)
	address         string
	startupHooks    []func(context.Context) error
	shutdownHooks   []func(context.Context) error
	shutdownTimeout time.Duration
	writeTimeout    time.Duration
}

func newConfig(opts ...Option) *config {
	cfg := &config{
		logger:          slog.New(slog.DiscardHandler),
		address:         defaultAddress,
		shutdownTimeout: defaultShutdownTimeout,
		writeTimeout:    defaultWriteTimeout,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithAddress sets the listen address. Defaults to ":8080".
func WithAddress(addr string) Option {
	return func(c *config) {
		if addr != "" {
			c.address = addr
		}
	}
}

// WithLogger sets the server logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithShutdownTimeout bounds draining requests plus all shutdown hooks.
func WithShutdownTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.shutdownTimeout = d
		}
	}
}

// WithWriteTimeout sets http.Server.WriteTimeout.
// It must exceed the request timeout or slow handlers lose their 504.
func WithWriteTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.writeTimeout = d
		}
	}
}

// WithStartupHook registers a function to run before the listener opens.
//
//	server.WithStartupHook(func(ctx context.Context) error {
//	    return db.Migrate(ctx, pool, migrations.FS, "", log)
//	})
func WithStartupHook(fn func(context.Context) error) Option {
	return func(c *config) {
		if fn != nil {
			c.startupHooks = append(c.startupHooks, fn)
		}
	}
}

// WithShutdownHook registers a cleanup function, e.g. db.Shutdown(pool).
// Hooks run in registration order after the server stops accepting requests.
func WithShutdownHook(fn func(context.Context) error) Option {
	return func(c *config) {
		if fn != nil {
			c.shutdownHooks = append(c.shutdownHooks, fn)
		}
	}
}

// WithListenNotify is called with the bound address once the listener is open.
func WithListenNotify(fn func(net.Addr)) Option {
	return func(c *config) {
		c.onListen = fn
	}
}
