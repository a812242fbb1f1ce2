package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

type ValidationErrorResponse struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// fieldMessages override the generic tag message for the fields clients
// actually send, keyed "jsonField.tag".
var fieldMessages = map[string]string{
	"email.required": "Email is required",
	"email.email":    "Please enter a valid email address",
	"email.max":      "Email must not exceed 255 characters",
	"firstname.max":  "First name must not exceed 255 characters",
	"name.max":       "Name must not exceed 255 characters",
}

var tagMessages = map[string]string{
	"required": "This field is required",
	"email":    "Invalid email format",
	"url":      "Invalid URL format",
	"alphanum": "Value must contain only letters and numbers",
	"oneof":    "Value is not one of the allowed options",
}

// paramMessages are used when the tag carries a parameter, e.g. max=255.
var paramMessages = map[string]string{
	"min":   "Must be at least %s characters",
	"max":   "Must not exceed %s characters",
	"len":   "Must be exactly %s characters",
	"gt":    "Must be greater than %s",
	"gte":   "Must be greater than or equal to %s",
	"lt":    "Must be less than %s",
	"lte":   "Must be less than or equal to %s",
	"oneof": "Must be one of: %s",
}

func messageFor(field string, fe validator.FieldError) string {
	if msg, ok := fieldMessages[field+"."+fe.Tag()]; ok {
		return msg
	}
	if fe.Param() != "" {
		if format, ok := paramMessages[fe.Tag()]; ok {
			return fmt.Sprintf(format, fe.Param())
		}
	}
	if msg, ok := tagMessages[fe.Tag()]; ok {
		return msg
	}
	return "Invalid value"
}

func jsonFieldName(structType reflect.Type, fieldName string) string {
	if structType == nil {
		return fieldName
	}
	field, found := structType.FieldByName(fieldName)
	if !found {
		return fieldName
	}
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return fieldName
	}
	return name
}

func modelType(model any) reflect.Type {
	if model == nil {
		return nil
	}
	t := reflect.TypeOf(model)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}
	return t
}

// FormatValidationErrors turns a gin binding error into per-field messages.
// model is the bound request and supplies JSON field names; it may be nil.
func FormatValidationErrors(err error, model any) []ValidationErrorResponse {
	if err == nil {
		return nil
	}

	if errors.Is(err, io.EOF) {
		return []ValidationErrorResponse{{Field: "body", Message: "Request body is required"}}
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) || errors.Is(err, io.ErrUnexpectedEOF) {
		return []ValidationErrorResponse{{Field: "body", Message: "Request body must be valid JSON"}}
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return []ValidationErrorResponse{{
			Field:   typeErr.Field,
			Message: fmt.Sprintf("Invalid type for field %s. Expected %s, got %s", typeErr.Field, typeErr.Type, typeErr.Value),
		}}
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}

	structType := modelType(model)
	out := make([]ValidationErrorResponse, 0, len(validationErrors))
	for _, fe := range validationErrors {
		field := jsonFieldName(structType, fe.Field())
		out = append(out, ValidationErrorResponse{Field: field, Message: messageFor(field, fe)})
	}
	return out
}
