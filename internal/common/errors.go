// Package common defines shared constants and sentinel errors used across
// the interview backend. Callers should use errors.Is / errors.As to match
// these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")
	ErrorConflict = errors.New("already exists")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")
	ErrorBadRequest   = errors.New("bad request")

	// Auth errors.
	ErrInvalidLogin = errors.New("invalid email or password")
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
	ErrTokenRevoked = errors.New("token revoked")

	// Vendor credential errors.
	ErrNotConfigured     = errors.New("API key not configured")
	ErrInvalidCredential = errors.New("invalid api key")

	// Interview lifecycle errors.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// ValidationError reports a malformed or missing input field. It matches
// ErrorBadRequest with errors.Is.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Is(target error) bool { return target == ErrorBadRequest }

// NewValidationError builds a ValidationError with a formatted message.
func NewValidationError(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// VendorError is a failure reported by an upstream vendor API. Status is the
// vendor's HTTP status code, or 0 when the call never produced a response.
type VendorError struct {
	Vendor  string
	Status  int
	Message string
	Details any
}

func (e *VendorError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s error (status %d): %s", e.Vendor, e.Status, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Vendor, e.Message)
}
