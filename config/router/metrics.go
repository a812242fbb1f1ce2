package router

import (
	"net/http"
	"strconv"
	"time"

	"github.com/akeren/waitlist-api/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	metricsPath = "/metrics"
	// unmatchedRoute labels paths with no gin route so scanners cannot blow up cardinality.
	unmatchedRoute = "unmatched"
)

type metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	rateLimited     *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	labels := []string{"method", "route", "status"}
	m := &metrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		}, labels),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}, labels),
		rateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_rate_limited_total",
			Help: "Requests rejected with 429, by limiter scope.",
		}, []string{"scope"}),
	}

	reg.MustRegister(m.requestsTotal, m.requestDuration, m.rateLimited)
	return m
}

func (m *metrics) instrument() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		status := strconv.Itoa(c.Writer.Status())

		m.requestsTotal.WithLabelValues(c.Request.Method, route, status).Inc()
		m.requestDuration.WithLabelValues(c.Request.Method, route, status).Observe(time.Since(start).Seconds())
	}
}

// observeRateLimited is a no-op when metrics are disabled.
func (routerService *RouterService) observeRateLimited(scope string) {
	if routerService.metrics == nil {
		return
	}
	routerService.metrics.rateLimited.WithLabelValues(scope).Inc()
}

// mountMetrics runs before the rest of the middleware chain so scrapes are
// never rate limited. METRICS_ENABLED=false turns it off.
func (routerService *RouterService) mountMetrics() {
	if !utils.GetEnvBool("METRICS_ENABLED", true) {
		routerService.logger.Info("Metrics disabled (METRICS_ENABLED=false)")
		return
	}

	reg := routerService.registry
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	routerService.metrics = newMetrics(reg)
	routerService.engine.Use(routerService.metrics.instrument())

	routerService.engine.GET(metricsPath, gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	routerService.engine.OPTIONS(metricsPath, func(c *gin.Context) {
		c.AbortWithStatus(http.StatusNoContent)
	})

	routerService.logger.Info("Metrics endpoint mounted", "path", metricsPath)
}
