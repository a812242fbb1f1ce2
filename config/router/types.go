package router

import (
	"github.com/gin-gonic/gin"
)

type RequestContext = gin.Context

type MiddlewareFunc = gin.HandlerFunc

// ServiceResult is the {code, data, message} envelope. A result built with
// RawResult carries its own body and is written without the envelope.
type ServiceResult struct {
	StatusCode int    `json:"code"`
	Data       any    `json:"data"`
	Message    string `json:"message"`

	raw any
}

type RateLimitResponse struct {
	Limit      int    `json:"limit"`
	Remaining  int    `json:"remaining"`
	Window     string `json:"window"`
	RetryAfter string `json:"retry_after"`
}

type HandlerFunction func(*RequestContext) *ServiceResult

type RESTController struct {
	name         string
	mountPoint   string
	handlerCount int
	prepare      func(*RouterService, *RESTController)
}

func (result *ServiceResult) ToJSON() gin.H {
	return gin.H{
		"code":    result.StatusCode,
		"data":    result.Data,
		"message": result.Message,
	}
}

// Body is what gets serialized to the client.
func (result *ServiceResult) Body() any {
	if result.raw != nil {
		return result.raw
	}
	return result.ToJSON()
}
