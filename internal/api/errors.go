package api

import (
	"errors"
	"fmt"
	"strings"
)

// NetworkError wraps a transport or connectivity failure. Controllers treat
// it as transient: keep last-known state, surface a banner, allow retry.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error during %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// AuthError reports a missing or expired session (HTTP 401). Callers redirect
// to login rather than retrying.
type AuthError struct {
	Detail string
}

func (e *AuthError) Error() string {
	if e.Detail == "" {
		return "authentication required"
	}
	return "authentication required: " + e.Detail
}

// ValidationError reports a request the server rejected (4xx), optionally with
// field-level detail, or a response body whose shape the client refuses to
// coerce.
type ValidationError struct {
	Status int
	Detail string
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) > 0 {
		parts := make([]string, 0, len(e.Fields))
		for field, msgs := range e.Fields {
			parts = append(parts, field+": "+strings.Join(msgs, "; "))
		}
		return "validation failed: " + strings.Join(parts, ", ")
	}
	if e.Detail != "" {
		return "validation failed: " + e.Detail
	}
	return fmt.Sprintf("validation failed (HTTP %d)", e.Status)
}

// NotFoundError reports a 404, e.g. a conversation deleted server-side.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return e.Resource + " not found"
}

// IsAuth reports whether err is an AuthError.
func IsAuth(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// IsNetwork reports whether err is a NetworkError.
func IsNetwork(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var valErr *ValidationError
	return errors.As(err, &valErr)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nfErr *NotFoundError
	return errors.As(err, &nfErr)
}
