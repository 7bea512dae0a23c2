package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPError(t *testing.T) {
	tests := []struct {
		name     string
		err      *HTTPError
		expected string
	}{
		{
			name:     "server message",
			err:      &HTTPError{Method: "GET", Path: "/transactions", Status: 500, Message: "database unavailable"},
			expected: "GET /transactions: 500 database unavailable",
		},
		{
			name:     "falls back to status text",
			err:      &HTTPError{Method: "DELETE", Path: "/categories/1", Status: 404},
			expected: "DELETE /categories/1: 404 Not Found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestTransportError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := &TransportError{Method: "GET", Path: "/emails/accounts", Err: cause}

	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "connection refused")
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{
		Form: "transaction",
		Fields: FieldErrors{
			"vendor":            "Vendor is required",
			"recurrencePattern": "Recurrence pattern is required for recurring transactions",
		},
	}

	assert.Equal(t, []string{"recurrencePattern", "vendor"}, err.Fields.Fields())
	assert.Equal(t,
		"invalid transaction: recurrencePattern: Recurrence pattern is required for recurring transactions; vendor: Vendor is required",
		err.Error())
}

func TestMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{name: "http with message", err: &HTTPError{Status: 400, Message: "Vendor too long"}, expected: "Vendor too long"},
		{name: "http without message", err: &HTTPError{Status: 502}, expected: "Failed to fetch transactions"},
		{name: "wrapped http", err: fmt.Errorf("create: %w", &HTTPError{Status: 422, Message: "bad date"}), expected: "bad date"},
		{name: "transport", err: &TransportError{Err: errors.New("eof")}, expected: "Failed to fetch transactions"},
		{name: "conflict", err: &ConflictError{Resource: "category", ID: "1", Reason: "has sub-categories"}, expected: "has sub-categories"},
		{name: "session expired", err: fmt.Errorf("x: %w", ErrSessionExpired), expected: ErrSessionExpired.Error()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Message(tt.err, "Failed to fetch transactions"))
		})
	}
}

func TestIsStatus(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", &HTTPError{Status: http.StatusConflict})
	assert.True(t, IsStatus(err, http.StatusConflict))
	assert.False(t, IsStatus(err, http.StatusNotFound))
	assert.False(t, IsStatus(errors.New("plain"), http.StatusConflict))
}
