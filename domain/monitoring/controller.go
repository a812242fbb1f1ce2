package monitoring

import (
	"context"
	"time"

	"github.com/akeren/waitlist-api/config/router"
	"github.com/akeren/waitlist-api/internal/log"
	"github.com/akeren/waitlist-api/pkg/ratelimit"
)

const healthCheckTimeout = 3 * time.Second

// Pinger is anything the health check can ping: the waitlist store or the cache.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthStatus struct {
	Store  int `json:"store"`  // 1 = healthy, 0 = unhealthy
	Cache  int `json:"cache"`  // 1 = healthy, 0 = unhealthy/not configured
	Uptime int `json:"uptime"` // uptime in seconds
}

type MonitoringController struct {
	store     Pinger
	cache     Pinger
	logger    *log.Logger
	startTime time.Time
}

// NewMonitoringController takes nil for a collaborator that is not configured.
func NewMonitoringController(store Pinger, cache Pinger, logger *log.Logger) *router.RESTController {
	ctrl := &MonitoringController{
		store:     store,
		cache:     cache,
		logger:    logger,
		startTime: time.Now(),
	}

	return router.NewRESTController(
		"MonitoringController",
		"/",
		func(routerService *router.RouterService, controller *router.RESTController) {
			monitoringRateLimiter := createMonitoringRateLimiter(routerService)

			routerService.AddGetHandler(controller, monitoringRateLimiter, "", func(c *router.RequestContext) *router.ServiceResult {
				return ctrl.monitor(c)
			})

			routerService.AddGetHandler(controller, monitoringRateLimiter, "health", func(c *router.RequestContext) *router.ServiceResult {
				return ctrl.healthCheck(routerService, c)
			})
		},
	)
}

func createMonitoringRateLimiter(routerService *router.RouterService) ratelimit.RateLimiter {
	const monitoringRequestsPerMinute = 10

	return routerService.NewRateLimiter(monitoringRequestsPerMinute, time.Minute, ratelimit.TokenBucket)
}

func (ctrl *MonitoringController) healthCheck(
	routerService *router.RouterService,
	c *router.RequestContext,
) *router.ServiceResult {
	logger := routerService.GetLogger(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	return router.OKResult(ctrl.performHealthChecks(ctx, logger), "waitlist-api health check completed")
}

func (ctrl *MonitoringController) monitor(
	c *router.RequestContext,
) *router.ServiceResult {
	return router.OKResult("Monitoring endpoint is operational.", "Monitoring successful")
}

func (ctrl *MonitoringController) performHealthChecks(ctx context.Context, logger *log.Logger) HealthStatus {
	return HealthStatus{
		Store:  pingStatus(ctx, ctrl.store, "store", logger),
		Cache:  pingStatus(ctx, ctrl.cache, "cache", logger),
		Uptime: int(time.Since(ctrl.startTime).Seconds()),
	}
}

func pingStatus(ctx context.Context, target Pinger, name string, logger *log.Logger) int {
	if target == nil {
		logger.Debug("Health check skipped, not configured", "component", name)
		return 0
	}

	if err := target.Ping(ctx); err != nil {
		logger.Error("Health check failed", "component", name, "error", err)
		return 0
	}

	return 1
}
