package job

import "errors"

// Job errors.
var (
	// ErrUnknownTask is returned when enqueueing or executing a task that
	// has not been registered.
	ErrUnknownTask = errors.New("job: unknown task")

	// ErrInvalidPayload is returned when a task payload cannot be encoded
	// or decoded.
	ErrInvalidPayload = errors.New("job: invalid payload")

	// ErrAlreadyStarted is returned when starting a running manager.
	ErrAlreadyStarted = errors.New("job: already started")

	// ErrNotStarted is returned when stopping a manager that is not running.
	ErrNotStarted = errors.New("job: not started")

	// ErrPoolRequired is returned when no database pool is provided.
	ErrPoolRequired = errors.New("job: pool is required")

	// ErrEnqueueFailed is returned when a job cannot be inserted.
	ErrEnqueueFailed = errors.New("job: enqueue failed")

	// ErrMigrationFailed is returned when the queue schema cannot be applied.
	ErrMigrationFailed = errors.New("job: migration failed")

	// ErrHealthcheckFailed is returned when the manager is not serving.
	ErrHealthcheckFailed = errors.New("job: healthcheck failed")
)
