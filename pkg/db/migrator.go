package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// goose keeps its settings in package globals.
var gooseMu sync.Mutex

// Migrate applies all pending migrations found at the root of migrations.
func Migrate(ctx context.Context, pool *pgxpool.Pool, migrations fs.FS, table string, log *slog.Logger) error {
	return withGoose(pool, migrations, table, log, func(db *sql.DB) error {
		if err := goose.UpContext(ctx, db, "."); err != nil {
			return errors.Join(ErrApplyMigrations, err)
		}
		return nil
	})
}

// Version returns the currently applied migration version.
func Version(ctx context.Context, pool *pgxpool.Pool, migrations fs.FS, table string, log *slog.Logger) (int64, error) {
	var v int64
	err := withGoose(pool, migrations, table, log, func(db *sql.DB) error {
		var err error
		v, err = goose.GetDBVersionContext(ctx, db)
		if err != nil {
			return errors.Join(ErrMigrationStatus, err)
		}
		return nil
	})
	return v, err
}

// withGoose configures goose and runs fn against a database/sql bridge of the
// pool. The bridge shares the pool's connections and is not closed here.
func withGoose(pool *pgxpool.Pool, migrations fs.FS, table string, log *slog.Logger, fn func(*sql.DB) error) error {
	if table == "" {
		table = "schema_migrations"
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations)
	goose.SetLogger(&gooseLoggerAdapter{log: log})
	goose.SetTableName(table)
	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Join(ErrSetDialect, err)
	}

	return fn(stdlib.OpenDBFromPool(pool))
}

type gooseLoggerAdapter struct {
	log *slog.Logger
}

func (g *gooseLoggerAdapter) Printf(format string, args ...any) {
	g.log.Info(fmt.Sprintf(format, args...))
}

// Fatalf logs only. goose returns the error, so the caller decides how to exit.
func (g *gooseLoggerAdapter) Fatalf(format string, args ...any) {
	g.log.Error(fmt.Sprintf(format, args...))
}
