package waitlist

import (
	"net/http"

	"github.com/akeren/waitlist-api/config/router"
)

func NewWaitlistController(service WaitlistService) *router.RESTController {
	return router.NewRESTController(
		"WaitlistController",
		"/api",
		func(rs *router.RouterService, c *router.RESTController) {
			metrics := newEnrollmentMetrics(rs.Registerer())

			rs.AddPostHandler(c, nil, "notion", enrollHandler(service, metrics))
		},
	)
}

func enrollHandler(service WaitlistService, metrics *enrollmentMetrics) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		logger := router.GetLogger(ctx)

		var req EnrollRequest

		if err := router.BindJSON(ctx, &req); err != nil {
			logger.Warn("Failed to bind enrollment request", "error", err)
			metrics.enrollments.WithLabelValues("invalid").Inc()
			return router.ValidationErrorResult(err, &req)
		}

		response, err := service.Enroll(ctx.Request.Context(), &req)
		metrics.observe(err)
		if err != nil {
			return router.AppErrorResult(ctx, err)
		}

		return router.RawResult(http.StatusOK, response)
	}
}
