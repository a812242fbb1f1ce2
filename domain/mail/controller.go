package mail

import (
	"net/http"

	"github.com/akeren/waitlist-api/config/router"
	"github.com/akeren/waitlist-api/pkg/constants"
	"github.com/akeren/waitlist-api/pkg/ratelimit"
)

// NewMailController mounts POST /api/mail behind its own limiter of
// constants.MailRateLimitRequests per rolling window per client IP.
func NewMailController(service MailService) *router.RESTController {
	return router.NewRESTController(
		"MailController",
		"/api",
		func(rs *router.RouterService, c *router.RESTController) {
			metrics := newDispatchMetrics(rs.Registerer())
			limiter := rs.NewRateLimiter(
				constants.MailRateLimitRequests,
				constants.MailRateLimitWindow,
				ratelimit.SlidingWindow,
			)

			rs.AddPostHandler(c, limiter, "mail", sendWelcomeHandler(service, metrics))
		},
	)
}

func sendWelcomeHandler(service MailService, metrics *dispatchMetrics) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		logger := router.GetLogger(ctx)

		var req SendWelcomeRequest

		if err := router.BindJSON(ctx, &req); err != nil {
			logger.Warn("Failed to bind mail request", "error", err)
			metrics.dispatches.WithLabelValues("invalid").Inc()
			return router.ValidationErrorResult(err, &req)
		}

		response, err := service.SendWelcome(ctx.Request.Context(), &req)
		metrics.observe(err)
		if err != nil {
			return router.AppErrorResult(ctx, err)
		}

		return router.RawResult(http.StatusOK, response)
	}
}
