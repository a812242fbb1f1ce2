package main

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/akeren/waitlist-api/config"
	"github.com/akeren/waitlist-api/internal/log"
	"github.com/akeren/waitlist-api/pkg/migrations"
	"github.com/akeren/waitlist-api/pkg/utils"
	"github.com/spf13/cobra"
)

const migrateTimeout = 5 * time.Minute

func migrateCmd(logger *log.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the PostgreSQL schema of the waitlist store",
		Long: `Apply or roll back the SQL migrations in MIGRATIONS_DIR (default "migrations").

Only the postgres store uses migrations; sqlite is migrated automatically on
startup and the Notion store has no schema to manage.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply every pending migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrationDB(cmd.Context(), logger, func(ctx context.Context, db *sql.DB, cfg migrations.Config) error {
				if err := migrations.Up(ctx, db, cfg); err != nil {
					return err
				}
				logger.Info("Database migrations completed")
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down [steps]",
		Short: "Roll back the given number of migrations (default 1)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			steps := 1
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n <= 0 {
					return fmt.Errorf("steps must be a positive integer, got %q", args[0])
				}
				steps = n
			}

			return withMigrationDB(cmd.Context(), logger, func(ctx context.Context, db *sql.DB, cfg migrations.Config) error {
				if err := migrations.Down(ctx, db, cfg, steps); err != nil {
					return err
				}
				logger.Info("Database migrations rolled back", "steps", steps)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrationDB(cmd.Context(), logger, func(ctx context.Context, db *sql.DB, cfg migrations.Config) error {
				status, err := migrations.Version(ctx, db, cfg)
				if err != nil {
					return err
				}
				if !status.Applied {
					fmt.Fprintln(cmd.OutOrStdout(), "no migrations applied")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %t)\n", status.Version, status.Dirty)
				return nil
			})
		},
	})

	return cmd
}

func withMigrationDB(parent context.Context, logger *log.Logger, fn func(context.Context, *sql.DB, migrations.Config) error) error {
	if parent == nil {
		parent = context.Background()
	}

	db, err := config.NewDatabase(logger, nil)
	if err != nil {
		return fmt.Errorf("connect to database for migration: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get SQL DB instance for migration: %w", err)
	}
	defer func() {
		if err := sqlDB.Close(); err != nil {
			logger.Warn("Failed to close SQL DB after migration", "error", err)
		}
	}()

	ctx, cancel := context.WithTimeout(parent, migrateTimeout)
	defer cancel()

	return fn(ctx, sqlDB, migrations.Config{
		Dir:    utils.GetEnvTrimmedOrDefault("MIGRATIONS_DIR", "migrations"),
		Logger: logger,
	})
}
