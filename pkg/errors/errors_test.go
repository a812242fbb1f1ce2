package errors

import (
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusCode(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", NewInvalidRequestError("bad", nil), StatusBadRequest},
		{"conflict", NewConflictError("dup", nil), StatusConflict},
		{"rate limit", NewRateLimitError("slow down", nil), StatusTooManyRequests},
		{"delivery", NewDeliveryError("mail failed", errors.New("provider down")), StatusInternalServerError},
		{"plain error", errors.New("boom"), StatusInternalServerError},
		{"nil", nil, StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, HTTPStatusCode(tc.err))
		})
	}
}

func TestGetHumanReadableMessage_DoesNotLeakInternals(t *testing.T) {
	assert.Equal(t, "An unexpected error occurred", GetHumanReadableMessage(errors.New("pq: connection refused")))
	assert.Equal(t, "You're already on the waitlist.", GetHumanReadableMessage(NewConflictError("You're already on the waitlist.", nil)))
}

func TestIsType_UnwrapsWrappedErrors(t *testing.T) {
	wrapped := errors.Join(errors.New("context"), NewDeliveryError("failed", nil))
	assert.True(t, IsType(wrapped, ErrorTypeDelivery))
	assert.False(t, IsType(wrapped, ErrorTypeConflict))
}

func TestIsDuplicateKeyError(t *testing.T) {
	assert.True(t, IsDuplicateKeyError(errors.New(`ERROR: duplicate key value violates unique constraint "idx_waitlist_entries_email"`)))
	assert.True(t, IsDuplicateKeyError(errors.New("UNIQUE constraint failed: waitlist_entries.email")))
	assert.False(t, IsDuplicateKeyError(errors.New("connection reset")))
	assert.False(t, IsDuplicateKeyError(nil))
}

func TestFormatValidationErrors_BodyErrors(t *testing.T) {
	out := FormatValidationErrors(io.EOF, nil)
	assert.Equal(t, []ValidationErrorResponse{{Field: "body", Message: "Request body is required"}}, out)

	var target map[string]any
	syntaxErr := json.Unmarshal([]byte("{"), &target)
	out = FormatValidationErrors(syntaxErr, nil)
	if assert.Len(t, out, 1) {
		assert.Equal(t, "body", out[0].Field)
	}
}

type enrollPayload struct {
	Email      string `json:"email" validate:"required,email,max=255"`
	ReferredBy string `json:"referredBy" validate:"omitempty,max=8"`
	Nickname   string `json:"nickname,omitempty" validate:"omitempty,min=3"`
}

func TestFormatValidationErrors_UsesJSONNamesAndFieldMessages(t *testing.T) {
	v := validator.New()
	payload := &enrollPayload{Email: "not-an-email", ReferredBy: "WAY-TOO-LONG-CODE", Nickname: "ab"}

	out := FormatValidationErrors(v.Struct(payload), payload)

	assert.ElementsMatch(t, []ValidationErrorResponse{
		{Field: "email", Message: "Please enter a valid email address"},
		{Field: "referredBy", Message: "Must not exceed 8 characters"},
		{Field: "nickname", Message: "Must be at least 3 characters"},
	}, out)
}

func TestFormatValidationErrors_TypeMismatch(t *testing.T) {
	var target struct {
		Email string `json:"email"`
	}
	err := json.Unmarshal([]byte(`{"email": 42}`), &target)

	out := FormatValidationErrors(err, nil)
	if assert.Len(t, out, 1) {
		assert.Equal(t, "email", out[0].Field)
		assert.Contains(t, out[0].Message, "Expected string")
	}
}

func TestFormatValidationErrors_UnknownErrorYieldsNothing(t *testing.T) {
	assert.Empty(t, FormatValidationErrors(errors.New("something else"), nil))
	assert.Nil(t, FormatValidationErrors(nil, nil))
}

func TestGetHumanReadableMessage_EmptyAppErrorMessage(t *testing.T) {
	assert.Equal(t, genericMessage, GetHumanReadableMessage(NewDeliveryError("", errors.New("resend: 502"))))
	assert.Equal(t, genericMessage, GetHumanReadableMessage(nil))
}
