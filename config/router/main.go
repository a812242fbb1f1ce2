package router

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/akeren/waitlist-api/internal/log"
	apperrors "github.com/akeren/waitlist-api/pkg/errors"
	"github.com/akeren/waitlist-api/pkg/factory"
	"github.com/akeren/waitlist-api/pkg/ratelimit"
	"github.com/akeren/waitlist-api/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const (
	// DefaultTimeoutDuration is the default request timeout
	DefaultTimeoutDuration = 30 * time.Second
)

type MiddlewareConfig struct {
	TimeoutDuration time.Duration
}

type RedisClientProvider interface {
	GetClient() *redis.Client
}

type RouterService struct {
	engine           *gin.Engine
	server           *http.Server
	logger           *log.Logger
	rateLimiter      ratelimit.RateLimiter
	limiterFactory   *factory.DefaultRateLimiterFactory
	limiters         []ratelimit.RateLimiter
	registry         *prometheus.Registry
	metrics          *metrics
	middlewareConfig *MiddlewareConfig
	routerConfig     RouterConfig

	handlerToControllerMap map[string]*RESTController
	rateLimitOverrides     map[string]ratelimit.RateLimiter
}

type RouterConfig struct {
	RateLimitRequests int
	RateLimitWindow   time.Duration
	RequestTimeout    time.Duration
}

// CreateRouterService builds the gin engine and its middleware chain. cache may
// be nil; when it exposes a reachable Redis client every limiter is distributed.
func CreateRouterService(logger *log.Logger, cache any, routerConfig *RouterConfig) *RouterService {
	if mode, ok := os.LookupEnv("GIN_MODE"); ok && mode != "" {
		logger.Info("Setting Gin mode", "mode", mode)
		gin.SetMode(mode)
	}

	if routerConfig.RequestTimeout <= 0 {
		routerConfig.RequestTimeout = DefaultTimeoutDuration
	}

	ginRouter := gin.New()
	ginRouter.Use(gin.Recovery())

	if utils.IsTracingEnabled() {
		ginRouter.Use(otelgin.Middleware(utils.OTelServiceName()))
		logger.Info("Tracing middleware enabled")
	}

	// SECURITY: Gin trusts all proxies by default, which makes ClientIP() depend
	// on potentially spoofed X-Forwarded-For headers. Trust is opt-in via TRUSTED_PROXIES.
	trustedProxies := parseTrustedProxiesEnv(os.Getenv("TRUSTED_PROXIES"))
	if err := ginRouter.SetTrustedProxies(trustedProxies); err != nil {
		logger.Error("Invalid TRUSTED_PROXIES; disabling trusted proxies", "error", err)
		_ = ginRouter.SetTrustedProxies(nil)
	} else if trustedProxies == nil {
		logger.Info("Trusted proxies disabled (TRUSTED_PROXIES not set)")
	}

	rs := &RouterService{
		engine:           ginRouter,
		logger:           logger.WithSource("router"),
		registry:         prometheus.NewRegistry(),
		middlewareConfig: &MiddlewareConfig{TimeoutDuration: routerConfig.RequestTimeout},
		routerConfig:     *routerConfig,

		rateLimitOverrides:     make(map[string]ratelimit.RateLimiter),
		handlerToControllerMap: make(map[string]*RESTController),
	}

	rs.initRateLimiting(cache)

	// Observability (opt-out): /metrics
	rs.mountMetrics()

	ginRouter.Use(rs.securityHeadersMiddleware())
	ginRouter.Use(rs.maxBodySizeMiddleware())
	ginRouter.Use(rs.corsMiddleware())
	ginRouter.Use(rs.correlationIDMiddleware())
	ginRouter.Use(rs.loggerInjectionMiddleware())
	ginRouter.Use(rs.requestLoggingMiddleware())
	ginRouter.Use(rs.rateLimitMiddleware())
	ginRouter.Use(rs.timeoutMiddleware())

	ginRouter.HandleMethodNotAllowed = true
	ginRouter.RedirectTrailingSlash = true

	ginRouter.NoRoute(func(c *gin.Context) {
		rs.logger.WithCorrelationID(c.Request.Context()).Warn("Route not found", "path", c.Request.URL.Path)
		c.JSON(http.StatusNotFound, NotFoundResult("Route not found").ToJSON())
	})

	ginRouter.NoMethod(func(c *gin.Context) {
		rs.logger.WithCorrelationID(c.Request.Context()).Warn("Method not allowed", "method", c.Request.Method, "path", c.Request.URL.Path)
		c.JSON(http.StatusMethodNotAllowed, ErrorResult(apperrors.StatusMethodNotAllowed, "Method not allowed", nil).ToJSON())
	})

	rs.server = &http.Server{
		Addr:    ":8080", // Overridden in RunHTTPServer
		Handler: ginRouter,

		// Gin's Context is not goroutine-safe, so request time limits are
		// enforced by the server rather than by running handlers in goroutines.
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       routerConfig.RequestTimeout,
		WriteTimeout:      routerConfig.RequestTimeout,
		IdleTimeout:       60 * time.Second,
	}

	rs.logger.Info("Router service initialized")
	return rs
}

func parseTrustedProxiesEnv(v string) []string {
	s := strings.TrimSpace(v)
	if s == "" {
		return nil
	}
	if s == "*" {
		// Explicit escape hatch for local/dev.
		return []string{"0.0.0.0/0", "::/0"}
	}
	parts := strings.Split(s, ",")
	proxies := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			proxies = append(proxies, p)
		}
	}
	if len(proxies) == 0 {
		return nil
	}
	return proxies
}

func (routerService *RouterService) initRateLimiting(cache any) {
	var provider any
	if p, ok := cache.(RedisClientProvider); ok && p.GetClient() != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err := p.GetClient().Ping(ctx).Err()
		cancel()

		if err != nil {
			routerService.logger.Warn("Failed to connect to Redis for rate limiting, falling back to in-memory", "error", err)
		} else {
			provider = p
		}
	}

	routerService.limiterFactory = factory.NewDefaultRateLimiterFactory(provider, routerService.logger)
	routerService.rateLimiter = routerService.NewRateLimiter(
		routerService.routerConfig.RateLimitRequests,
		routerService.routerConfig.RateLimitWindow,
		ratelimit.TokenBucket,
	)

	backend := "in-memory"
	if routerService.limiterFactory.Distributed() {
		backend = "redis"
	}
	routerService.logger.Info("Rate limiting initialized",
		"backend", backend,
		"requests", routerService.routerConfig.RateLimitRequests,
		"window", routerService.routerConfig.RateLimitWindow)
}

// NewRateLimiter builds a limiter on the router's backend (Redis when
// reachable at startup) and closes it on Cleanup.
func (routerService *RouterService) NewRateLimiter(requests int, window time.Duration, algorithm ratelimit.Algorithm) ratelimit.RateLimiter {
	limiter := routerService.limiterFactory.CreateRateLimiter(requests, window, algorithm)
	routerService.limiters = append(routerService.limiters, limiter)
	return limiter
}

func (routerService *RouterService) GetEngine() *gin.Engine {
	return routerService.engine
}

// Registerer is where domain controllers register their own collectors.
func (routerService *RouterService) Registerer() prometheus.Registerer {
	return routerService.registry
}

func (routerService *RouterService) GetLogger(c *RequestContext) *log.Logger {
	return routerService.logger.WithCorrelationID(c.Request.Context())
}

func (routerService *RouterService) Cleanup() {
	for _, limiter := range routerService.limiters {
		if err := limiter.Close(); err != nil {
			routerService.logger.Error("Failed to close rate limiter", "error", err)
		}
	}
	routerService.logger.Info("Router service cleanup completed")
}

func (routerService *RouterService) MountController(controller *RESTController) {
	routerService.logger.Info("Mounting controller",
		"name", controller.name,
		"path", controller.mountPoint,
	)

	controller.prepare(routerService, controller)

	routerService.logger.Info("Controller mounted",
		"name", controller.name,
		"handlers", controller.handlerCount,
	)
}

func (routerService *RouterService) RunHTTPServer() error {
	appPort := utils.GetEnvTrimmedOrDefault("APP_PORT", "8080")
	routerService.server.Addr = ":" + appPort

	routerService.logger.Info("Starting HTTP server", "addr", routerService.server.Addr)

	if err := routerService.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		routerService.logger.Error("Failed to start HTTP server", "error", err)
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	return nil
}

func (routerService *RouterService) Shutdown(ctx context.Context) error {
	routerService.logger.Info("Shutting down HTTP server gracefully...")
	return routerService.server.Shutdown(ctx)
}
