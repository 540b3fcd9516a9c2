package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestValidationError_SingleField(t *testing.T) {
	t.Parallel()

	err := NewValidationError("prompt", "required")

	if got := err.Error(); got != "validation: prompt: required" {
		t.Fatalf("unexpected Error(): %q", got)
	}
	if got := err.Reason(); got != "prompt: required" {
		t.Fatalf("unexpected Reason(): %q", got)
	}
	if !errors.Is(err, ErrValidation) {
		t.Fatal("errors.Is(err, ErrValidation) = false")
	}
}

func TestValidationError_MultipleFields(t *testing.T) {
	t.Parallel()

	err := &ValidationError{Errors: []FieldError{
		{Field: "prompt", Message: "required"},
		{Field: "image", Message: "too large"},
	}}

	if got := err.Error(); got != "validation: 2 errors" {
		t.Fatalf("unexpected Error(): %q", got)
	}
	if got := err.Reason(); got != "prompt: required" {
		t.Fatalf("Reason should report the first field, got %q", got)
	}
}

func TestUpstreamError_Unwrap(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("gemini: %w", NewUpstreamError(503, "overloaded"))

	if !errors.Is(err, ErrUpstream) {
		t.Fatal("errors.Is(err, ErrUpstream) = false")
	}
	var upErr *UpstreamError
	if !errors.As(err, &upErr) {
		t.Fatal("errors.As should find *UpstreamError")
	}
	if upErr.Status != 503 || upErr.Detail != "overloaded" {
		t.Errorf("unexpected upstream error: %+v", upErr)
	}
}

func TestSentinelErrors_AreDistinct(t *testing.T) {
	t.Parallel()

	sentinels := []error{
		ErrValidation, ErrRateLimited, ErrUpstream,
		ErrSearchUnavailable, ErrLinkFetch, ErrUnauthorized,
	}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j && errors.Is(a, b) {
				t.Errorf("sentinel errors %d and %d should not match", i, j)
			}
		}
	}
}

func TestRateLimited_IsError(t *testing.T) {
	t.Parallel()

	var err error = RateLimited{Remaining: 0}

	if !errors.Is(err, ErrRateLimited) {
		t.Fatal("errors.Is(RateLimited, ErrRateLimited) = false")
	}
	if got := err.Error(); got != "rate limited: 0 remaining" {
		t.Errorf("unexpected Error(): %q", got)
	}
}
