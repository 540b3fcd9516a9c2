// Package sanitize validates and normalizes untrusted learner input before it
// is forwarded to any upstream service.
package sanitize

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/heartmarshall/learnflow-backend/internal/config"
	"github.com/heartmarshall/learnflow-backend/internal/domain"
)

const (
	// DefaultMaxTextLength is the prompt cap in runes. Deployments that need a
	// tighter cap set sanitize.max_text_length.
	DefaultMaxTextLength = 1000

	// DefaultMaxImageBytes is the decoded image size limit (10 MiB).
	DefaultMaxImageBytes = 10 << 20
)

var (
	javascriptScheme = regexp.MustCompile(`(?i)javascript:`)
	eventHandler     = regexp.MustCompile(`(?i)on\w+\s*=`)
)

// RawInput is an unvalidated submission as decoded from the request body.
type RawInput struct {
	Prompt  any
	Image   string
	LinkURL string
}

// Sanitizer applies the text, image and URL gates.
type Sanitizer struct {
	maxTextLength int
	maxImageBytes int
}

// New creates a Sanitizer. Non-positive limits fall back to the defaults.
func New(cfg config.SanitizeConfig) *Sanitizer {
	s := &Sanitizer{
		maxTextLength: cfg.MaxTextLength,
		maxImageBytes: cfg.MaxImageBytes,
	}
	if s.maxTextLength <= 0 {
		s.maxTextLength = DefaultMaxTextLength
	}
	if s.maxImageBytes <= 0 {
		s.maxImageBytes = DefaultMaxImageBytes
	}
	return s
}

// MaxTextLength returns the configured prompt cap in runes.
func (s *Sanitizer) MaxTextLength() int { return s.maxTextLength }

// TextValue is the type-checked entry point for decoded JSON values.
func (s *Sanitizer) TextValue(v any) (string, error) {
	raw, ok := v.(string)
	if !ok {
		return "", domain.NewValidationError("prompt", "must be a string")
	}
	return s.Text(raw)
}

// Text strips markup markers and script vectors, trims and truncates the
// prompt. An empty result is a validation failure.
func (s *Sanitizer) Text(raw string) (string, error) {
	text := stripMarkers(raw)
	text = strings.TrimSpace(text)
	text = truncateRunes(text, s.maxTextLength)
	text = strings.TrimSpace(text)

	if text == "" {
		return "", domain.NewValidationError("prompt", "required")
	}
	return text, nil
}

// Input runs every gate over a raw submission.
func (s *Sanitizer) Input(raw RawInput) (*domain.SanitizedInput, error) {
	text, err := s.TextValue(raw.Prompt)
	if err != nil {
		return nil, err
	}

	out := &domain.SanitizedInput{Text: text}

	if raw.Image != "" {
		img, err := Image(raw.Image, s.maxImageBytes)
		if err != nil {
			return nil, err
		}
		out.Image = img
	}

	if raw.LinkURL != "" {
		u, err := URL(raw.LinkURL)
		if err != nil {
			return nil, err
		}
		out.LinkURL = u
	}

	return out, nil
}

// stripMarkers removes angle brackets, javascript: schemes and inline event
// handlers until the text no longer changes, so that a removal cannot join
// two fragments into a new marker ("javajavascript:script:").
func stripMarkers(text string) string {
	for {
		next := strings.NewReplacer("<", "", ">", "").Replace(text)
		next = javascriptScheme.ReplaceAllString(next, "")
		next = eventHandler.ReplaceAllString(next, "")
		if next == text {
			return next
		}
		text = next
	}
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit])
}
