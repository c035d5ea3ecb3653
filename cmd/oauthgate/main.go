package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/dmitrymomot/oauthgate/internal/app"
	"github.com/dmitrymomot/oauthgate/internal/config"
	"github.com/dmitrymomot/oauthgate/internal/db/migrations"
	"github.com/dmitrymomot/oauthgate/middlewares"
	"github.com/dmitrymomot/oauthgate/pkg/db"
	"github.com/dmitrymomot/oauthgate/pkg/job"
	"github.com/dmitrymomot/oauthgate/pkg/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var envFiles []string

	root := &cobra.Command{
		Use:          "oauthgate",
		Short:        "OAuth2 sign-in service backed by Postgres and Redis sessions",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "dotenv files to load before reading the environment (default .env)")

	root.AddCommand(newServeCmd(&envFiles), newMigrateCmd(&envFiles))
	return root
}

func newServeCmd(envFiles *[]string) *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*envFiles...)
			if err != nil {
				return err
			}

			log, flush, err := logger.New(cfg.Log, os.Stdout, middlewares.RequestIDExtractor())
			if err != nil {
				return err
			}
			defer flush()
			slog.SetDefault(log)

			ctx := cmd.Context()
			a, err := app.New(ctx, cfg, log)
			if err != nil {
				log.Error("failed to start", slog.String("error", err.Error()))
				return err
			}

			if migrate {
				if err := a.Migrate(ctx); err != nil {
					_ = a.Close(context.Background())
					log.Error("failed to apply migrations", slog.String("error", err.Error()))
					return err
				}
			}

			return a.Run(ctx)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply pending migrations before serving")
	return cmd
}

func newMigrateCmd(envFiles *[]string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database and job queue migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withPool(cmd, *envFiles, func(ctx context.Context, m migrator) error {
				if err := db.Migrate(ctx, m.pool, migrations.FS, m.table, m.log); err != nil {
					return err
				}
				if err := job.Migrate(ctx, m.pool, m.log); err != nil {
					return err
				}
				return printVersion(ctx, cmd, m)
			})
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Print the applied migration version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withPool(cmd, *envFiles, func(ctx context.Context, m migrator) error {
				return printVersion(ctx, cmd, m)
			})
		},
	})
	return cmd
}

type migrator struct {
	pool  *pgxpool.Pool
	log   *slog.Logger
	table string
}

// withPool connects to the database only; migrations need no other settings.
func withPool(cmd *cobra.Command, envFiles []string, fn func(context.Context, migrator) error) error {
	cfg, err := config.LoadDatabase(envFiles...)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	return fn(ctx, migrator{
		pool:  pool,
		log:   slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), nil)),
		table: cfg.MigrationsTable,
	})
}

func printVersion(ctx context.Context, cmd *cobra.Command, m migrator) error {
	v, err := db.Version(ctx, m.pool, migrations.FS, m.table, m.log)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "database at version %d\n", v)
	return nil
}
