package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/akeren/waitlist-api/internal/log"
	"github.com/joho/godotenv"
)

const AppEnvKey = "APP_ENV"

type StoreDriver string

const (
	StoreNotion   StoreDriver = "notion"
	StorePostgres StoreDriver = "postgres"
	StoreSQLite   StoreDriver = "sqlite"
)

func InitializeEnvFile(logger *log.Logger) {
	if os.Getenv("SKIP_DOTENV") == "true" {
		logger.Debug("Skipping .env file load (SKIP_DOTENV=true)")
		return
	}

	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file loaded", "error", err.Error())
		return
	}

	logger.Info("Environment variables loaded from .env file")
}

func GetValueFromEnvironmentVariable(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}

	return defaultValue
}

func GetAppEnv() string {
	return strings.ToLower(strings.TrimSpace(os.Getenv(AppEnvKey)))
}

// GetStoreDriver reads STORE_DRIVER; Notion is the default store.
func GetStoreDriver() (StoreDriver, error) {
	raw := strings.ToLower(sanitizeEnv(os.Getenv("STORE_DRIVER")))

	switch StoreDriver(raw) {
	case "", StoreNotion:
		return StoreNotion, nil
	case StorePostgres, "postgresql":
		return StorePostgres, nil
	case StoreSQLite, "sqlite3":
		return StoreSQLite, nil
	default:
		return "", fmt.Errorf("unsupported STORE_DRIVER %q (allowed: notion, postgres, sqlite)", raw)
	}
}

func ValidateAutoMigrateAllowed(appEnv string) error {
	env := strings.ToLower(strings.TrimSpace(appEnv))

	switch env {
	case "", "dev", "development", "local", "test", "testing":
		return nil
	default:
		return fmt.Errorf("--auto-migrate is not allowed when %s=%q (allowed: \"\", dev, development, local, test, testing)", AppEnvKey, env)
	}
}
