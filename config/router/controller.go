package router

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/akeren/waitlist-api/pkg/ratelimit"
)

func normalizePath(controller *RESTController, relativePath string) string {
	path := controller.mountPoint

	if relativePath != "" {
		path = path + "/" + relativePath
	}

	if path[0] != '/' {
		path = "/" + path
	}

	path = strings.ReplaceAll(path, "//", "/")

	if len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}

	return path
}

func (routerService *RouterService) keyForPathAndMethod(path, method string) string {
	return fmt.Sprintf("%s-%s", method, path)
}

func (controller *RESTController) bindHandlerToController(routerService *RouterService, path, method string) {
	key := routerService.keyForPathAndMethod(path, method)

	if otherController, foundPrevious := routerService.handlerToControllerMap[key]; foundPrevious {
		panic(fmt.Sprintf("A handler is already registered for %s '%s' by controller '%s'", method, path, otherController.name))
	}

	routerService.handlerToControllerMap[key] = controller
}

func (routerService *RouterService) bindOverrideRateLimiter(key string, limiter ratelimit.RateLimiter) {
	if limiter == nil {
		return
	}

	if _, foundPrevious := routerService.rateLimitOverrides[key]; foundPrevious {
		panic(fmt.Sprintf("A rate limiter is already registered for '%s'", key))
	}

	routerService.rateLimitOverrides[key] = limiter
}

func createHandler(handler HandlerFunction) MiddlewareFunc {
	return func(c *RequestContext) {
		result := handler(c)

		if result == nil {
			c.JSON(http.StatusInternalServerError, InternalServerErrorResult("A handler returned an undefined result. This typically indicates a bug in a handler's implementation.").ToJSON())
			return
		}

		c.JSON(result.StatusCode, result.Body())
	}
}

func NewRESTController(name, mountPoint string, prepare func(*RouterService, *RESTController)) *RESTController {
	return &RESTController{
		name:       name,
		mountPoint: strings.ReplaceAll("/"+mountPoint, "//", "/"),
		prepare:    prepare,
	}
}

func (routerService *RouterService) addHandler(
	method string,
	controller *RESTController,
	limiter ratelimit.RateLimiter,
	path string,
	handler HandlerFunction,
	middlewares []MiddlewareFunc,
) {
	controller.handlerCount++
	mountPoint := normalizePath(controller, path)
	controller.bindHandlerToController(routerService, mountPoint, method)
	routerService.bindOverrideRateLimiter(routerService.keyForPathAndMethod(mountPoint, method), limiter)
	routerService.engine.Handle(method, mountPoint, append(middlewares, createHandler(handler))...)
	routerService.logger.Debug("Handler registered", "method", method, "path", mountPoint)
}

// AddPostHandler registers a POST route. A nil limiter inherits the controller's
// or the global limiter.
func (routerService *RouterService) AddPostHandler(
	controller *RESTController,
	limiter ratelimit.RateLimiter,
	path string,
	handler HandlerFunction,
	middlewares ...MiddlewareFunc,
) {
	routerService.addHandler(http.MethodPost, controller, limiter, path, handler, middlewares)
}

func (routerService *RouterService) AddGetHandler(
	controller *RESTController,
	limiter ratelimit.RateLimiter,
	path string,
	handler HandlerFunction,
	middlewares ...MiddlewareFunc,
) {
	routerService.addHandler(http.MethodGet, controller, limiter, path, handler, middlewares)
}
