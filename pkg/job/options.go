package job

import (
	"log/slog"
	"time"
)

type config struct {
	registry   *registry
	logger     *slog.Logger
	maxWorkers int
}

// Option configures the Manager.
type Option func(*config)

// WithTask registers a task whose Handle accepts payloads of type P.
//
//	job.WithTask[auth.RevokePayload](auth.NewRevokeTask(backend, log))
func WithTask[P any](task Task[P]) Option {
	return func(c *config) {
		c.registry.register(task.Name(), taskExecutor[P]{task: task})
	}
}

// WithLogger sets the logger for job processing.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMaxWorkers bounds concurrent jobs. Defaults to 10.
func WithMaxWorkers(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxWorkers = n
		}
	}
}

type enqueueConfig struct {
	uniqueKey   string
	scheduledIn time.Duration
	uniqueFor   time.Duration
	maxAttempts int
}

// EnqueueOption configures a single Enqueue call.
type EnqueueOption func(*enqueueConfig)

// MaxAttempts caps retries of a failing job.
func MaxAttempts(n int) EnqueueOption {
	return func(c *enqueueConfig) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// ScheduledIn delays the first attempt.
func ScheduledIn(d time.Duration) EnqueueOption {
	return func(c *enqueueConfig) {
		if d > 0 {
			c.scheduledIn = d
		}
	}
}

// UniqueFor drops a job when one with the same key was inserted within d.
//
//	m.Enqueue(ctx, "revoke_token", payload,
//	    job.UniqueFor(time.Hour),
//	    job.UniqueKey(userID))
func UniqueFor(d time.Duration) EnqueueOption {
	return func(c *enqueueConfig) {
		c.uniqueFor = d
	}
}

// UniqueKey sets the deduplication key used with UniqueFor.
func UniqueKey(key string) EnqueueOption {
	return func(c *enqueueConfig) {
		c.uniqueKey = key
	}
}
