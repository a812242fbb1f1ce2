package router

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/akeren/waitlist-api/internal/log"
	apperrors "github.com/akeren/waitlist-api/pkg/errors"
	"github.com/akeren/waitlist-api/pkg/ratelimit"
	"github.com/akeren/waitlist-api/pkg/utils"
	"github.com/gin-gonic/gin"
)

func (routerService *RouterService) correlationIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(log.CorrelationHeader))
		if id == "" {
			id = log.GenerateCorrelationID()
		}
		c.Request = c.Request.WithContext(log.ContextWithCorrelationID(c.Request.Context(), id))
		c.Header(log.CorrelationHeader, id)
		c.Next()
	}
}

func (routerService *RouterService) loggerInjectionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		correlatedLogger := routerService.logger.WithCorrelationID(c.Request.Context())
		c.Request = c.Request.WithContext(log.ContextWithLogger(c.Request.Context(), correlatedLogger))
		c.Next()
	}
}

func (routerService *RouterService) requestLoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		routerService.logger.WithCorrelationID(c.Request.Context()).Info("HTTP request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"remote_addr", c.ClientIP(),
		)
	}
}

func (routerService *RouterService) securityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")

		if shouldSetHSTS(c) {
			h.Set("Strict-Transport-Security", buildHSTSValue())
		}
		c.Next()
	}
}

// HSTS is on by default in production (HSTS_ENABLED overrides) and only for
// requests that arrived over TLS directly or via a TLS-terminating proxy.
func shouldSetHSTS(c *gin.Context) bool {
	appEnv := strings.ToLower(utils.GetEnvTrimmed("APP_ENV"))

	enabled := appEnv == "production" || appEnv == "prod"
	if !utils.GetEnvBool("HSTS_ENABLED", enabled) {
		return false
	}

	if c.Request.TLS != nil {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(c.GetHeader("X-Forwarded-Proto")), "https")
}

func buildHSTSValue() string {
	value := fmt.Sprintf("max-age=%d", utils.GetEnvPositiveInt64("HSTS_MAX_AGE", 31536000))
	if utils.GetEnvBool("HSTS_INCLUDE_SUBDOMAINS", true) {
		value += "; includeSubDomains"
	}
	return value
}

func (routerService *RouterService) maxBodySizeMiddleware() gin.HandlerFunc {
	maxBytes := utils.GetEnvPositiveInt64("MAX_REQUEST_BODY_BYTES", 1<<20)

	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, ErrorResult(
				http.StatusRequestEntityTooLarge,
				"Request payload too large",
				nil,
			).ToJSON())
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}

func parseAllowedOrigins(raw string) []string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func (routerService *RouterService) corsMiddleware() gin.HandlerFunc {
	allowedOrigins := parseAllowedOrigins(os.Getenv("CORS_ALLOWED_ORIGIN"))
	if len(allowedOrigins) == 0 {
		routerService.logger.Warn("CORS_ALLOWED_ORIGIN not set; cross-origin requests will not receive CORS headers")
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin == "" || len(allowedOrigins) == 0 {
			c.Next()
			return
		}

		originAllowed := false
		for _, allowedOrigin := range allowedOrigins {
			if allowedOrigin == "*" || allowedOrigin == origin {
				originAllowed = true
				break
			}
		}

		if !originAllowed {
			routerService.logger.Warn("CORS origin not allowed", "origin", origin, "allowed_origins", allowedOrigins)
			c.Next()
			return
		}

		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", origin)
		h.Set("Access-Control-Allow-Credentials", "true")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, Accept, Origin, Cache-Control, X-Requested-With, X-Correlation-ID")
		h.Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")
		h.Set("Access-Control-Expose-Headers", "X-Correlation-ID, X-RateLimit-Limit, X-RateLimit-Remaining, Retry-After")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(apperrors.StatusNoContent)
			return
		}

		c.Next()
	}
}

func (routerService *RouterService) timeoutMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), routerService.middlewareConfig.TimeoutDuration)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)

		// Do NOT call c.Next() in a goroutine: gin's Context is not safe for concurrent use.
		c.Next()

		// Mid-flight enforcement is left to the http.Server timeouts; here we only
		// answer when the chain overran its deadline without writing.
		if ctx.Err() == context.DeadlineExceeded && !c.Writer.Written() {
			routerService.logger.WithCorrelationID(c.Request.Context()).Warn("Request timeout detected")
			c.AbortWithStatusJSON(http.StatusRequestTimeout, ErrorResult(
				apperrors.StatusRequestTimeout,
				"Request timeout",
				nil,
			).ToJSON())
		}
	}
}

// limiterFor resolves the limiter and the counter scope for a route. Handler
// overrides take precedence over controller overrides. Scopes keep counters of
// different limiters apart when they share one Redis.
func (routerService *RouterService) limiterFor(handlerKey string, controller *RESTController) (ratelimit.RateLimiter, string) {
	if limiter, ok := routerService.rateLimitOverrides[handlerKey]; ok {
		return limiter, handlerKey
	}
	if limiter, ok := routerService.rateLimitOverrides[controller.mountPoint]; ok {
		return limiter, controller.mountPoint
	}
	return routerService.rateLimiter, "global"
}

func setRateLimitHeaders(c *gin.Context, limit int, window time.Duration, remaining int) {
	c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
	c.Header("X-RateLimit-Window", window.String())
	if remaining >= 0 {
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
	}
}

func (routerService *RouterService) rateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := routerService.logger.WithCorrelationID(c.Request.Context())
		clientIP := ClientIPFromRequest(c.Request)
		handlerPath := c.Request.URL.Path
		handlerKey := routerService.keyForPathAndMethod(c.FullPath(), c.Request.Method)

		handlerController, found := routerService.handlerToControllerMap[handlerKey]
		if !found || handlerController == nil {
			logger.Error("Request reached a route with no controller mapping", "path", handlerPath, "method", c.Request.Method)
			c.AbortWithStatusJSON(http.StatusNotFound, NotFoundResult(fmt.Sprintf("There is no handler configured to handle any resource at the path %s", handlerPath)).ToJSON())
			return
		}

		usedLimiter, scope := routerService.limiterFor(handlerKey, handlerController)
		if usedLimiter == nil {
			c.Next()
			return
		}

		limit, window := usedLimiter.GetLimitDetails()
		key := scope + ":" + clientIP

		decision, err := usedLimiter.Allow(c.Request.Context(), key)
		if err != nil {
			// Availability wins over limiting when the limiter backend is down.
			logger.Error("Rate limiter error", "error", err, "client_ip", clientIP)
			setRateLimitHeaders(c, limit, window, -1)
			c.Next()
			return
		}

		setRateLimitHeaders(c, limit, window, decision.Remaining)

		if !decision.Allowed {
			retryAfter := decision.RetryAfter
			if retryAfter <= 0 {
				retryAfter = window
			}
			retryAfterSeconds := max(1, int(math.Ceil(retryAfter.Seconds())))

			logger.Warn("Rate limit exceeded", "client_ip", clientIP, "path", handlerPath, "retry_after_s", retryAfterSeconds)
			routerService.observeRateLimited(scope)
			c.Header("Retry-After", strconv.Itoa(retryAfterSeconds))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, TooManyRequestsResult(RateLimitResponse{
				Limit:      limit,
				Remaining:  decision.Remaining,
				Window:     window.String(),
				RetryAfter: strconv.Itoa(retryAfterSeconds),
			}).ToJSON())
			return
		}

		c.Next()
	}
}
