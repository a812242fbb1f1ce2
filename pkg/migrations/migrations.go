package migrations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"sync"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

type migrator interface {
	Up() error
	Steps(n int) error
	Version() (version uint, dirty bool, err error)
	Close() (sourceErr error, databaseErr error)
}

var driverFactory = func(db *sql.DB, cfg Config) (database.Driver, error) {
	return postgres.WithInstance(db, &postgres.Config{MigrationsTable: cfg.MigrationsTable})
}

var migratorFactory = func(sourceURL string, driver database.Driver) (migrator, error) {
	return migrate.NewWithDatabaseInstance(sourceURL, "postgres", driver)
}

type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type Config struct {
	Dir             string
	MigrationsTable string
	Logger          Logger
}

// Status describes the schema version recorded in the migrations table.
type Status struct {
	Version uint
	Dirty   bool
	Applied bool
}

// Up applies every pending migration.
func Up(ctx context.Context, db *sql.DB, cfg Config) error {
	return run(ctx, db, cfg, "up", func(m migrator) error { return m.Up() })
}

// Down rolls back the given number of applied migrations.
func Down(ctx context.Context, db *sql.DB, cfg Config, steps int) error {
	if steps <= 0 {
		return fmt.Errorf("migrations: down steps must be positive, got %d", steps)
	}
	return run(ctx, db, cfg, "down", func(m migrator) error { return m.Steps(-steps) })
}

func Version(ctx context.Context, db *sql.DB, cfg Config) (Status, error) {
	var status Status
	err := run(ctx, db, cfg, "version", func(m migrator) error {
		v, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			return nil
		}
		if err != nil {
			return err
		}
		status = Status{Version: v, Dirty: dirty, Applied: true}
		return nil
	})
	return status, err
}

func sourceURLFor(dir string) (string, string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", "", fmt.Errorf("migrations: resolve dir: %w", err)
	}

	// ToSlash keeps Windows paths valid inside the file:// URL.
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(absDir)}).String(), absDir, nil
}

func run(ctx context.Context, db *sql.DB, cfg Config, op string, fn func(migrator) error) error {
	if db == nil {
		return fmt.Errorf("migrations: db is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(cfg.Dir) == "" {
		cfg.Dir = "migrations"
	}
	if strings.TrimSpace(cfg.MigrationsTable) == "" {
		cfg.MigrationsTable = "schema_migrations"
	}

	sourceURL, absDir, err := sourceURLFor(cfg.Dir)
	if err != nil {
		return err
	}

	driver, err := driverFactory(db, cfg)
	if err != nil {
		return fmt.Errorf("migrations: postgres driver: %w", err)
	}

	m, err := migratorFactory(sourceURL, driver)
	if err != nil {
		return fmt.Errorf("migrations: init: %w", err)
	}

	var closeOnce sync.Once
	closeMigrator := func() {
		closeOnce.Do(func() {
			srcErr, dbErr := m.Close()
			if cfg.Logger == nil {
				return
			}
			if srcErr != nil {
				cfg.Logger.Warn("Migrations source close error", "error", srcErr)
			}
			if dbErr != nil {
				cfg.Logger.Warn("Migrations db close error", "error", dbErr)
			}
		})
	}
	defer closeMigrator()

	if cfg.Logger != nil {
		cfg.Logger.Info("Running SQL migrations", "op", op, "dir", absDir, "table", cfg.MigrationsTable)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- fn(m)
	}()

	select {
	case <-ctx.Done():
		// migrate takes no context; closing is the only way to interrupt it.
		closeMigrator()
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, migrate.ErrNoChange) {
			if cfg.Logger != nil {
				cfg.Logger.Info("No migrations to apply")
			}
			return nil
		}
		if err != nil {
			return fmt.Errorf("migrations: %s: %w", op, err)
		}
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("Migrations applied successfully", "op", op)
	}
	return nil
}
