package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/akeren/waitlist-api/internal/log"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type DBConfig struct {
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	SSLMode         string // Default: "require" for prod safety
}

func defaultDBConfig() *DBConfig {
	return &DBConfig{
		MaxIdleConns:    10,
		MaxOpenConns:    100,
		ConnMaxLifetime: time.Minute,
		SSLMode:         "require",
	}
}

func gormConfig() *gorm.Config {
	return &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)}
}

// NewDatabase connects to PostgreSQL using APP_DATABASE_URL or POSTGRES_* vars.
func NewDatabase(logger *log.Logger, cfg *DBConfig) (*gorm.DB, error) {
	if cfg == nil {
		cfg = defaultDBConfig()
	}

	dsn, err := buildPostgresDSN(logger, cfg)
	if err != nil {
		return nil, err
	}

	gdb, err := gorm.Open(postgres.Open(dsn), gormConfig())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		logger.Error("Failed to get database instance", "error", err)
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		logger.Error("Database ping failed", "error", err)
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	logger.Info("Database connection established successfully", "driver", StorePostgres)
	return gdb, nil
}

// NewSQLiteDatabase opens a SQLite file (or ":memory:"). SQLite serialises
// writers, so the pool is pinned to one connection.
func NewSQLiteDatabase(logger *log.Logger, path string) (*gorm.DB, error) {
	if strings.TrimSpace(path) == "" {
		path = "waitlist.db"
	}

	gdb, err := gorm.Open(sqlite.Open(path), gormConfig())
	if err != nil {
		logger.Error("Failed to open SQLite database", "path", path, "error", err)
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	logger.Info("Database connection established successfully", "driver", StoreSQLite, "path", path)
	return gdb, nil
}

// OpenStoreDatabase returns nil for the Notion store, which needs no SQL connection.
func OpenStoreDatabase(logger *log.Logger, driver StoreDriver) (*gorm.DB, error) {
	switch driver {
	case StorePostgres:
		return NewDatabase(logger, nil)
	case StoreSQLite:
		return NewSQLiteDatabase(logger, sanitizeEnv(GetValueFromEnvironmentVariable("SQLITE_PATH", "")))
	default:
		return nil, nil
	}
}

func buildPostgresDSN(logger *log.Logger, cfg *DBConfig) (string, error) {
	if appDatabaseURL := sanitizeEnv(GetValueFromEnvironmentVariable("APP_DATABASE_URL", "")); appDatabaseURL != "" {
		logger.Info("Using APP_DATABASE_URL for database connection")
		return appDatabaseURL, nil
	}

	host, portStr, user, pass, dbName, ssl := getDatabaseEnvParams()
	if ssl == "" {
		ssl = cfg.SSLMode
	}

	var missing []string
	for _, required := range []struct{ name, value string }{
		{"POSTGRES_HOST", host},
		{"POSTGRES_PORT", portStr},
		{"POSTGRES_USER", user},
		{"POSTGRES_DB_NAME", dbName},
	} {
		if required.value == "" {
			missing = append(missing, required.name)
		}
	}

	if len(missing) > 0 {
		logger.Error("Missing required database environment variables", "missing_vars", strings.Join(missing, ", "))
		return "", fmt.Errorf("missing required database env vars: %s", strings.Join(missing, ", "))
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		logger.Error("Invalid POSTGRES_PORT", "error", err)
		return "", fmt.Errorf("invalid POSTGRES_PORT %q: %w", portStr, err)
	}

	logger.Info("Connecting to database",
		"host", host,
		"port", port,
		"user", user,
		"dbname", dbName,
		"sslmode", ssl,
	)

	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, pass, dbName, ssl,
	), nil
}

func getDatabaseEnvParams() (host, port, user, pass, dbName, ssl string) {
	host = sanitizeEnv(GetValueFromEnvironmentVariable("POSTGRES_HOST", ""))
	port = sanitizeEnv(GetValueFromEnvironmentVariable("POSTGRES_PORT", ""))
	user = sanitizeEnv(GetValueFromEnvironmentVariable("POSTGRES_USER", ""))
	pass = sanitizeEnv(GetValueFromEnvironmentVariable("POSTGRES_PASSWORD", ""))
	dbName = sanitizeEnv(GetValueFromEnvironmentVariable("POSTGRES_DB_NAME", ""))
	ssl = sanitizeEnv(GetValueFromEnvironmentVariable("POSTGRES_SSLMODE", ""))

	return host, port, user, pass, dbName, ssl
}

// sanitizeEnv trims whitespace and one pair of surrounding quotes.
func sanitizeEnv(v string) string {
	s := strings.TrimSpace(v)

	if len(s) >= 2 && ((s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'')) {
		s = s[1 : len(s)-1]
	}

	return s
}

func AutoMigrate(logger *log.Logger, db *gorm.DB, models ...interface{}) error {
	if db == nil {
		logger.Error("Cannot migrate: db is empty")
		return fmt.Errorf("cannot migrate: db is empty")
	}

	if err := db.AutoMigrate(models...); err != nil {
		logger.Error("Database migration failed", "error", err)
		return fmt.Errorf("auto-migrate failed: %w", err)
	}

	logger.Info("Database migration completed successfully")

	return nil
}

func CloseDatabase(db *gorm.DB, logger *log.Logger) {
	if db == nil {
		return
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Error("Failed to get SQL DB instance", "error", err)
		return
	}

	if err := sqlDB.Close(); err != nil {
		logger.Error("Failed to close database", "error", err)
		return
	}
	logger.Info("Database closed successfully")
}
