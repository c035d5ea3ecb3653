// Package db connects to PostgreSQL through a pgx pool and applies the
// embedded goose migrations.
//
// Configuration is read from the environment through [Config]:
//
//	DATABASE_CONN_URL           - connection URL (required)
//	DATABASE_MIGRATIONS_TABLE   - goose version table (default: schema_migrations)
//	DATABASE_MAX_OPEN_CONNS     - pool size (default: 10)
//	DATABASE_MIN_CONNS          - idle connections kept open (default: 2)
//	DATABASE_HEALTHCHECK_PERIOD - pool health check interval (default: 1m)
//	DATABASE_MAX_CONN_IDLE_TIME - idle connection lifetime (default: 10m)
//	DATABASE_MAX_CONN_LIFETIME  - connection lifetime (default: 30m)
//	DATABASE_RETRY_ATTEMPTS     - startup connection attempts (default: 3)
//	DATABASE_RETRY_INTERVAL     - base retry interval (default: 5s)
//
// Usage:
//
//	pool, err := db.Connect(ctx, cfg.Database)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	if err := db.Migrate(ctx, pool, migrations.FS, cfg.Database.MigrationsTable, log); err != nil {
//		return err
//	}
//
// Errors are sentinel values joined with the underlying cause via [errors.Join].
package db
