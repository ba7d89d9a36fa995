package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFactories_HTTPStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		status int
		code   string
	}{
		{"not found", NewNotFound("order", "42"), http.StatusNotFound, CodeNotFound},
		{"invalid input", NewInvalidInput("price", "price must not be negative"), http.StatusBadRequest, CodeInvalidInput},
		{"validation", NewValidation("invalid request body"), http.StatusBadRequest, CodeValidation},
		{"unauthorized", NewUnauthorized("invalid credentials"), http.StatusUnauthorized, CodeUnauthorized},
		{"forbidden", NewForbidden("insufficient permissions"), http.StatusForbidden, CodeForbidden},
		{"duplicate", NewDuplicate("user", "username", "admin"), http.StatusConflict, CodeDuplicate},
		{"concurrent", NewConcurrentModification("order", "42"), http.StatusConflict, CodeConcurrentModification},
		{"internal", NewInternal(errors.New("boom")), http.StatusInternalServerError, CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.HTTPStatus)
			assert.Equal(t, tt.code, tt.err.Code)
		})
	}
}

func TestAsAppError_Wrapped(t *testing.T) {
	base := NewNotFound("customer", "c-1")
	wrapped := fmt.Errorf("load customer: %w", base)

	got, ok := AsAppError(wrapped)
	assert.True(t, ok)
	assert.Same(t, base, got)
	assert.True(t, IsNotFound(wrapped))
	assert.Equal(t, http.StatusNotFound, GetHTTPStatus(wrapped))
	assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus(errors.New("plain")))
}

func TestWithCause_Unwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewInternal(nil).WithCause(cause).WithDetail("op", "list")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "list", err.Details["op"])
	assert.Contains(t, err.Error(), "connection reset")
}
