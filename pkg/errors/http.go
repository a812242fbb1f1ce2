package errors

import (
	"errors"
)

const genericMessage = "An unexpected error occurred"

// statusByType maps each AppError type to its HTTP status. Types missing here,
// including DATABASE_ERROR and DELIVERY_ERROR, surface as 500.
var statusByType = map[string]int{
	ErrorTypeNotFound:          StatusNotFound,
	ErrorTypeInvalidRequest:    StatusBadRequest,
	ErrorTypeConflict:          StatusConflict,
	ErrorTypeUnauthorized:      StatusUnauthorized,
	ErrorTypeForbidden:         StatusForbidden,
	ErrorTypeTooManyRequests:   StatusTooManyRequests,
	ErrorTypeRateLimitExceeded: StatusTooManyRequests,
	ErrorTypeRequestTimeout:    StatusRequestTimeout,
	ErrorTypeMethodNotAllowed:  StatusMethodNotAllowed,
	ErrorTypeNoContent:         StatusNoContent,
}

func HTTPStatusCode(err error) int {
	if err == nil {
		return StatusInternalServerError
	}
	if status, ok := statusByType[GetErrorType(err)]; ok {
		return status
	}
	return StatusInternalServerError
}

// GetHumanReadableMessage never echoes raw driver or provider errors; only
// AppError messages reach clients.
func GetHumanReadableMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return genericMessage
}
