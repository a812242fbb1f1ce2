package config

import (
	"context"
	"net/http"
	"time"

	"github.com/akeren/waitlist-api/config/router"
	"github.com/akeren/waitlist-api/internal/log"
	"github.com/akeren/waitlist-api/internal/models"
	"github.com/akeren/waitlist-api/pkg/constants"
	"github.com/akeren/waitlist-api/pkg/mailer"
	"github.com/akeren/waitlist-api/pkg/utils"
	"github.com/jomei/notionapi"
	"gorm.io/gorm"
)

const DefaultRequestTimeout = 30 * time.Second

// ApplicationConfig owns every long-lived collaborator. Exactly one of DB and
// Notion is set, according to StoreDriver.
type ApplicationConfig struct {
	StoreDriver      StoreDriver
	DB               *gorm.DB
	Notion           *notionapi.Client
	NotionToken      string
	NotionHTTPClient *http.Client
	NotionDatabaseID string
	Mailer           mailer.Mailer
	Cache            Cache
	RouterService    *router.RouterService
	Logger           *log.Logger
	Config           *AppConfig
	TracingShutdown  func(context.Context) error
}

type AppConfig struct {
	RateLimitRequests int
	RateLimitWindow   time.Duration
	RequestTimeout    time.Duration
	Mail              MailConfig
}

func NewAppConfig() *AppConfig {
	return &AppConfig{
		RateLimitRequests: utils.GetEnvPositiveInt("RATE_LIMIT_REQUESTS", constants.DefaultRateLimitRequests),
		RateLimitWindow:   utils.GetEnvDuration("RATE_LIMIT_WINDOW", constants.DefaultRateLimitWindow()),
		RequestTimeout:    utils.GetEnvDuration("REQUEST_TIMEOUT", DefaultRequestTimeout),
		Mail:              NewMailConfig(),
	}
}

func (ac *ApplicationConfig) Cleanup() {
	if ac.TracingShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := ac.TracingShutdown(ctx); err != nil {
			ac.Logger.Error("Failed to shutdown tracer provider", "error", err)
		}
	}

	if ac.RouterService != nil {
		ac.RouterService.Cleanup()
	}

	CloseDatabase(ac.DB, ac.Logger)
	_ = CloseCache(ac.Cache, ac.Logger)

	ac.Logger.Info("Application cleanup completed")
}

func LoadApplicationConfiguration(logger *log.Logger, autoMigrate bool) (*ApplicationConfig, error) {
	InitializeEnvFile(logger)

	if autoMigrate {
		appEnv := GetAppEnv()
		if err := ValidateAutoMigrateAllowed(appEnv); err != nil {
			return nil, err
		}
		if appEnv == "" {
			logger.Warn("APP_ENV not set; allowing --auto-migrate as development")
		}
	}

	driver, err := GetStoreDriver()
	if err != nil {
		return nil, err
	}

	tracingShutdown, err := SetupTracing(logger)
	if err != nil {
		return nil, err
	}

	appConfig := NewAppConfig()
	app := &ApplicationConfig{
		StoreDriver:     driver,
		Logger:          logger,
		Config:          appConfig,
		TracingShutdown: tracingShutdown,
	}

	if driver == StoreNotion {
		notionCfg := NewNotionConfig()
		app.NotionHTTPClient = notionCfg.NewHTTPClient()
		app.Notion = notionCfg.NewClient(logger, app.NotionHTTPClient)
		app.NotionToken = notionCfg.Secret
		app.NotionDatabaseID = notionCfg.DatabaseID
	} else {
		db, err := OpenStoreDatabase(logger, driver)
		if err != nil {
			return nil, err
		}
		app.DB = db

		if autoMigrate || driver == StoreSQLite {
			if err := AutoMigrate(logger, db, models.ModelRegistry...); err != nil {
				return nil, err
			}
		}
	}

	app.Mailer = appConfig.Mail.NewMailer(logger)

	startupCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	app.Cache = NewCacheConfig().NewCacheOrNil(startupCtx, logger)

	app.RouterService = router.CreateRouterService(logger, app.Cache, &router.RouterConfig{
		RateLimitRequests: appConfig.RateLimitRequests,
		RateLimitWindow:   appConfig.RateLimitWindow,
		RequestTimeout:    appConfig.RequestTimeout,
	})

	logger.Info("Application configuration loaded successfully", "store", driver)

	return app, nil
}
