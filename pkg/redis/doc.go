// Package redis opens the go-redis client backing the session store.
//
// [Connect] takes a [Config] populated from REDIS_* environment variables,
// retries the initial ping and returns a [github.com/redis/go-redis/v9.UniversalClient].
// [Healthcheck] and [Shutdown] plug into the readiness endpoint and the server
// shutdown hooks.
package redis
