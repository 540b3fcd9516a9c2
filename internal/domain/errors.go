package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors used across all layers.
var (
	ErrValidation        = errors.New("validation error")
	ErrRateLimited       = errors.New("rate limited")
	ErrUpstream          = errors.New("upstream error")
	ErrSearchUnavailable = errors.New("search unavailable")
	ErrLinkFetch         = errors.New("link fetch failed")
	ErrUnauthorized      = errors.New("unauthorized")
)

// FieldError describes a validation error for a specific field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError contains a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation: %s: %s", e.Errors[0].Field, e.Errors[0].Message)
	}
	return fmt.Sprintf("validation: %d errors", len(e.Errors))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Reason returns a single human-readable reason suitable for API responses.
func (e *ValidationError) Reason() string {
	if len(e.Errors) == 0 {
		return "invalid input"
	}
	return e.Errors[0].Field + ": " + e.Errors[0].Message
}

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Errors: []FieldError{{Field: field, Message: message}},
	}
}

// UpstreamError is returned by completion providers when the AI endpoint
// answers with a non-2xx status or a body of an unexpected shape.
type UpstreamError struct {
	Status int
	Detail string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream: status %d: %s", e.Status, e.Detail)
}

func (e *UpstreamError) Unwrap() error { return ErrUpstream }

// NewUpstreamError creates an UpstreamError.
func NewUpstreamError(status int, detail string) *UpstreamError {
	return &UpstreamError{Status: status, Detail: detail}
}
