// Package apperrors defines the error taxonomy shared by services and handlers.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound is returned when a resource is absent or not owned by the caller.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when an operation is not allowed in the current state.
	ErrConflict = errors.New("conflict")

	// ErrUnauthorized is returned for missing, invalid, expired or revoked credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden is returned when the caller's role is insufficient.
	ErrForbidden = errors.New("forbidden")

	// ErrUnavailable marks a downstream dependency that could not be reached.
	ErrUnavailable = errors.New("service unavailable")
)

// ValidationError describes a missing or invalid field.
type ValidationError struct {
	Field   string            `json:"field"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError creates a validation error for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Details: map[string]string{field: message},
	}
}

// ConflictError wraps ErrConflict with a user-facing message.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

func (e *ConflictError) Unwrap() error { return ErrConflict }

// NewConflictError creates a conflict error.
func NewConflictError(message string) *ConflictError {
	return &ConflictError{Message: message}
}

// AuthError carries a 401 or 403 outcome.
type AuthError struct {
	Status  int
	Message string
}

func (e *AuthError) Error() string { return e.Message }

func (e *AuthError) Unwrap() error {
	if e.Status == http.StatusForbidden {
		return ErrForbidden
	}
	return ErrUnauthorized
}

// Unauthorized creates a 401 auth error.
func Unauthorized(message string) *AuthError {
	return &AuthError{Status: http.StatusUnauthorized, Message: message}
}

// Forbidden creates a 403 auth error.
func Forbidden(message string) *AuthError {
	return &AuthError{Status: http.StatusForbidden, Message: message}
}

// TransientError wraps a failure to reach a downstream dependency.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() []error { return []error{ErrUnavailable, e.Err} }

// Transient wraps err as a TransientError for the given operation.
func Transient(op string, err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Op: op, Err: err}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// StatusCode maps an error onto an HTTP status code.
func StatusCode(err error) int {
	var (
		validationErr *ValidationError
		authErr       *AuthError
	)
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.As(err, &authErr):
		return authErr.Status
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
