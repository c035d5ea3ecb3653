package db

import "time"

// Config holds PostgreSQL connection settings for the user store.
type Config struct {
	ConnectionString string `env:"DATABASE_CONN_URL,required"`
	MigrationsTable  string `env:"DATABASE_MIGRATIONS_TABLE" envDefault:"schema_migrations"`

	// Pool sizing. Callers beyond MaxOpenConns wait for a free connection.
	MaxOpenConns int32 `env:"DATABASE_MAX_OPEN_CONNS" envDefault:"10"`
	MinConns     int32 `env:"DATABASE_MIN_CONNS" envDefault:"2"`

	HealthCheckPeriod time.Duration `env:"DATABASE_HEALTHCHECK_PERIOD" envDefault:"1m"`
	MaxConnIdleTime   time.Duration `env:"DATABASE_MAX_CONN_IDLE_TIME" envDefault:"10m"`
	MaxConnLifetime   time.Duration `env:"DATABASE_MAX_CONN_LIFETIME" envDefault:"30m"`

	// Startup retry. Attempt n waits n*RetryInterval before the next one.
	RetryAttempts int           `env:"DATABASE_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval time.Duration `env:"DATABASE_RETRY_INTERVAL" envDefault:"5s"`
}

// withDefaults fills zero values so a hand-built Config still yields a usable pool.
func (c Config) withDefaults() Config {
	if c.MigrationsTable == "" {
		c.MigrationsTable = "schema_migrations"
	}
	if c.MaxOpenConns <= 0 {
		c.MaxOpenConns = 10
	}
	if c.MinConns < 0 || c.MinConns > c.MaxOpenConns {
		c.MinConns = 0
	}
	return c
}
