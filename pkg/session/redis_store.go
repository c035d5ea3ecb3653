package session

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "session"

// RedisStore persists sessions in Redis with a TTL matching the session expiry,
// so any number of service instances can share them.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithRedisPrefix sets the key prefix. Keys are stored as "{prefix}:{token}".
// Default: "session".
func WithRedisPrefix(prefix string) RedisOption {
	return func(r *RedisStore) {
		if prefix != "" {
			r.prefix = prefix
		}
	}
}

// NewRedisStore creates a Redis-backed session store.
// The client should be obtained from pkg/redis.Open.
func NewRedisStore(client redis.UniversalClient, opts ...RedisOption) *RedisStore {
	r := &RedisStore{
		client: client,
		prefix: defaultRedisPrefix,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Get retrieves a session by its token.
func (r *RedisStore) Get(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}

	data, err := r.client.Get(ctx, r.key(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, errors.Join(ErrStoreFailed, err)
	}

	s, err := unmarshalSession(data)
	if err != nil {
		return nil, err
	}
	if s.IsExpired() {
		return nil, ErrExpired
	}
	return s, nil
}

// Save persists the session with a TTL equal to the time left until ExpiresAt.
// Saving an already expired session deletes it.
func (r *RedisStore) Save(ctx context.Context, s *Session) error {
	if s == nil || s.Token == "" {
		return ErrInvalidToken
	}

	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return r.Delete(ctx, s.Token)
	}

	data, err := marshalSession(s)
	if err != nil {
		return err
	}

	if err := r.client.Set(ctx, r.key(s.Token), data, ttl).Err(); err != nil {
		return errors.Join(ErrStoreFailed, err)
	}
	return nil
}

// Delete removes the session stored under token.
func (r *RedisStore) Delete(ctx context.Context, token string) error {
	if err := r.client.Del(ctx, r.key(token)).Err(); err != nil {
		return errors.Join(ErrStoreFailed, err)
	}
	return nil
}

func (r *RedisStore) key(token string) string {
	return r.prefix + ":" + token
}

var _ Store = (*RedisStore)(nil)
