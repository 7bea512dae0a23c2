// Package apierror defines the error taxonomy shared by the gateway, the stores
// and the command layer.
package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

var (
	// ErrSessionExpired is returned by the gateway when a 401 could not be
	// recovered by a token refresh. The session has already been cleared.
	ErrSessionExpired = errors.New("session expired, please log in again")

	// ErrNotAuthenticated is returned when an operation needs a session and none is held.
	ErrNotAuthenticated = errors.New("not authenticated")
)

// HTTPError is a non-2xx response from the API.
type HTTPError struct {
	Method  string
	Path    string
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, msg)
}

// TransportError is a failure below HTTP: DNS, connection refused, reset.
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: transport failure: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// FieldErrors maps a form field to its message.
type FieldErrors map[string]string

// Fields returns the field names in a stable order.
func (f FieldErrors) Fields() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ValidationError is a client-side form validation failure. It never
// reaches a store.
type ValidationError struct {
	Form   string
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, k := range e.Fields.Fields() {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return fmt.Sprintf("invalid %s: %s", e.Form, strings.Join(parts, "; "))
}

// ConflictError is a domain conflict, detected either locally before a
// request is issued or reported by the server with 409.
type ConflictError struct {
	Resource string
	ID       string
	Reason   string
	Err      error
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("cannot modify %s %s: %s", e.Resource, e.ID, e.Reason)
}

func (e *ConflictError) Unwrap() error {
	return e.Err
}

// Message returns the text a store puts in its error field. HTTP errors
// carry the server message when it sent one, everything else falls back
// to the given generic text.
func Message(err error, fallback string) string {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) && httpErr.Message != "" {
		return httpErr.Message
	}
	var conflict *ConflictError
	if errors.As(err, &conflict) {
		return conflict.Reason
	}
	if errors.Is(err, ErrSessionExpired) {
		return ErrSessionExpired.Error()
	}
	return fallback
}

// IsStatus reports whether err is an HTTPError with the given status.
func IsStatus(err error, status int) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.Status == status
}
