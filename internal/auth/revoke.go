package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dmitrymomot/oauthgate/internal/user"
	"github.com/dmitrymomot/oauthgate/pkg/job"
	"github.com/dmitrymomot/oauthgate/pkg/oauth"
)

// RevokeTaskName identifies the background token revocation task.
const RevokeTaskName = "revoke_token"

const (
	defaultRevokeAttempts = 5
	revokeUniqueWindow    = time.Hour
)

// RevokePayload names the user whose token should be revoked.
// The token itself never leaves the database.
type RevokePayload struct {
	UserID string `json:"user_id"`
}

// Revoker is the subset of OAuthBackend the revocation task needs.
type Revoker interface {
	GetUser(ctx context.Context, id string) (*user.User, bool, error)
	Revoke(ctx context.Context, u *user.User) error
}

// RevokeTask revokes a user's provider token in the background.
type RevokeTask struct {
	backend Revoker
	logger  *slog.Logger
}

// NewRevokeTask creates the revocation task over backend.
func NewRevokeTask(backend Revoker, log *slog.Logger) *RevokeTask {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &RevokeTask{backend: backend, logger: log}
}

// Name implements job.Task.
func (t *RevokeTask) Name() string {
	return RevokeTaskName
}

// Handle implements job.Task. A deleted user or a provider without a
// revocation endpoint completes the job; anything else is retried.
func (t *RevokeTask) Handle(ctx context.Context, p RevokePayload) error {
	u, ok, err := t.backend.GetUser(ctx, p.UserID)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	if err := t.backend.Revoke(ctx, u); err != nil {
		if errors.Is(err, oauth.ErrRevocationUnsupported) {
			t.logger.DebugContext(ctx, "provider has no revocation endpoint", slog.String("user_id", u.ID))
			return nil
		}
		return err
	}
	t.logger.InfoContext(ctx, "provider token revoked", slog.String("user_id", u.ID))
	return nil
}

// Enqueuer inserts background jobs.
type Enqueuer interface {
	Enqueue(ctx context.Context, name string, payload any, opts ...job.EnqueueOption) error
}

// RevokeQueue schedules token revocation instead of calling the provider
// inline, so logout does not wait on it and failures are retried.
type RevokeQueue struct {
	enqueuer    Enqueuer
	maxAttempts int
}

// NewRevokeQueue creates a queue that enqueues RevokeTaskName jobs.
func NewRevokeQueue(e Enqueuer, maxAttempts int) *RevokeQueue {
	if maxAttempts <= 0 {
		maxAttempts = defaultRevokeAttempts
	}
	return &RevokeQueue{enqueuer: e, maxAttempts: maxAttempts}
}

// Revoke enqueues revocation of u's token. Repeats for the same user within
// an hour are dropped.
func (q *RevokeQueue) Revoke(ctx context.Context, u *user.User) error {
	if u == nil || u.AccessToken == "" {
		return nil
	}
	return q.enqueuer.Enqueue(ctx, RevokeTaskName, RevokePayload{UserID: u.ID},
		job.MaxAttempts(q.maxAttempts),
		job.UniqueFor(revokeUniqueWindow),
		job.UniqueKey(u.ID),
	)
}
