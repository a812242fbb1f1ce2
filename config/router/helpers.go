package router

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/akeren/waitlist-api/internal/log"
	apperrors "github.com/akeren/waitlist-api/pkg/errors"
	"github.com/gin-gonic/gin/binding"
)

// Normalizer is implemented by request DTOs that clean their own input.
type Normalizer interface {
	Normalize()
}

// BindJSON decodes the body, normalizes obj when it is a Normalizer and only
// then runs the binding tags, so " A@B.com " validates as "a@b.com".
func BindJSON(ctx *RequestContext, obj any) error {
	if ctx.Request == nil || ctx.Request.Body == nil {
		return io.EOF
	}
	if err := json.NewDecoder(ctx.Request.Body).Decode(obj); err != nil {
		return err
	}
	if n, ok := obj.(Normalizer); ok {
		n.Normalize()
	}
	return binding.Validator.ValidateStruct(obj)
}

func GetLogger(ctx *RequestContext) *log.Logger {
	return log.GetLoggerInstanceFromContext(ctx.Request.Context(), nil)
}

func OKResult(data any, message string) *ServiceResult {
	return &ServiceResult{
		StatusCode: http.StatusOK,
		Data:       data,
		Message:    message,
	}
}

// RawResult writes body as-is, without the {code, data, message} envelope.
func RawResult(statusCode int, body any) *ServiceResult {
	return &ServiceResult{
		StatusCode: statusCode,
		raw:        body,
	}
}

func TooManyRequestsResult(data RateLimitResponse) *ServiceResult {
	return &ServiceResult{
		StatusCode: http.StatusTooManyRequests,
		Data:       data,
		Message:    "Too many requests. Please try again later.",
	}
}

func BadRequestResult(message string, payload any) *ServiceResult {
	return &ServiceResult{
		StatusCode: http.StatusBadRequest,
		Data:       payload,
		Message:    message,
	}
}

func NotFoundResult(message string) *ServiceResult {
	return &ServiceResult{
		StatusCode: http.StatusNotFound,
		Data:       nil,
		Message:    message,
	}
}

func InternalServerErrorResult(message string) *ServiceResult {
	return &ServiceResult{
		StatusCode: http.StatusInternalServerError,
		Data:       nil,
		Message:    message,
	}
}

func ErrorResult(statusCode int, message string, data any) *ServiceResult {
	return &ServiceResult{
		StatusCode: statusCode,
		Data:       data,
		Message:    message,
	}
}

// ErrorDetail lets clients quote the request id when reporting a server error.
type ErrorDetail struct {
	CorrelationID string `json:"correlation_id"`
}

// AppErrorResult maps err through the AppError taxonomy. Server errors carry
// the correlation id; their internal cause is logged, never returned.
func AppErrorResult(ctx *RequestContext, err error) *ServiceResult {
	status := apperrors.HTTPStatusCode(err)
	message := apperrors.GetHumanReadableMessage(err)

	if status < http.StatusInternalServerError {
		return ErrorResult(status, message, nil)
	}

	GetLogger(ctx).Error("Request failed", "error", err, "error_type", apperrors.GetErrorType(err))

	return ErrorResult(status, message, ErrorDetail{
		CorrelationID: log.GetOrGenerateCorrelationID(ctx.Request.Context()),
	})
}

// ValidationErrorResult renders a binding error as field-level messages.
func ValidationErrorResult(err error, model any) *ServiceResult {
	if details := apperrors.FormatValidationErrors(err, model); len(details) > 0 {
		return BadRequestResult("Invalid request payload", details)
	}
	return BadRequestResult("Invalid request body", nil)
}
