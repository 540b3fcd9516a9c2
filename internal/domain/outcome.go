package domain

import "fmt"

// Outcome is the result of a question submission. It is a closed set:
// Success, RateLimited, ValidationFailed and UpstreamFailed are the only
// implementations.
type Outcome interface {
	isOutcome()
}

// Success carries the completion text returned verbatim by the provider.
type Success struct {
	Text      string
	Videos    []VideoRef
	Citations []SearchResult
	Provider  string
	// Fallback is set when Text came from the offline responder after an
	// upstream failure.
	Fallback bool
	// Remaining is the anonymous caller's daily quota after this call, -1 for
	// authenticated callers.
	Remaining int
}

// RateLimited means admission was denied; no upstream service was contacted.
// It is also an error wrapping ErrRateLimited.
type RateLimited struct {
	Remaining int
}

func (r RateLimited) Error() string {
	return fmt.Sprintf("%s: %d remaining", ErrRateLimited, r.Remaining)
}

func (r RateLimited) Unwrap() error { return ErrRateLimited }

// ValidationFailed means the input was rejected by the sanitizer.
type ValidationFailed struct {
	Reason string
}

// UpstreamFailed means the AI provider answered with a non-2xx status or an
// unexpected body. Detail is for operators only.
type UpstreamFailed struct {
	Status int
	Detail string
}

func (Success) isOutcome()          {}
func (RateLimited) isOutcome()      {}
func (ValidationFailed) isOutcome() {}
func (UpstreamFailed) isOutcome()   {}
