// Package offline answers questions deterministically without any network
// access. It is used when no AI provider key is configured and, optionally,
// as a fallback when the provider fails.
package offline

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/heartmarshall/learnflow-backend/internal/domain"
)

// Name is the provider name reported in outcomes.
const Name = "offline"

//go:embed templates.yaml
var defaultTemplates []byte

type templates struct {
	Greetings []string `yaml:"greetings"`
	Greeting  string   `yaml:"greeting"`
	Topics    []struct {
		Keywords []string `yaml:"keywords"`
		Answer   string   `yaml:"answer"`
	} `yaml:"topics"`
	Fallback string `yaml:"fallback"`
}

// Responder produces canned answers keyed by simple keyword matching.
type Responder struct {
	t templates
}

// New creates a Responder from the embedded templates.
func New() *Responder {
	var t templates
	if err := yaml.Unmarshal(defaultTemplates, &t); err != nil {
		panic(fmt.Sprintf("offline: embedded templates: %v", err))
	}
	return &Responder{t: t}
}

func (r *Responder) Name() string { return Name }

// Complete answers the last user message of req.
func (r *Responder) Complete(_ context.Context, req domain.CompletionRequest) (string, error) {
	return r.Answer(lastUserText(req.Messages)), nil
}

// Answer returns the canned answer for question.
func (r *Responder) Answer(question string) string {
	if expr, v, ok := findExpression(question); ok {
		return fmt.Sprintf("$$%s = %s$$\n\nThe answer is **%s**.", expr, formatNumber(v), formatNumber(v))
	}

	q := domain.NormalizeQuery(question)

	if r.isGreeting(q) {
		return strings.TrimSpace(r.t.Greeting)
	}

	for _, topic := range r.t.Topics {
		for _, kw := range topic.Keywords {
			if strings.Contains(q, kw) {
				return strings.TrimSpace(topic.Answer)
			}
		}
	}

	return strings.TrimSpace(r.t.Fallback)
}

func (r *Responder) isGreeting(q string) bool {
	q = strings.Trim(q, "!.?, ")
	for _, g := range r.t.Greetings {
		if q == g || strings.HasPrefix(q, g+" ") || strings.HasPrefix(q, g+",") || strings.HasPrefix(q, g+"!") {
			return true
		}
	}
	return false
}

func lastUserText(msgs []domain.PromptMessage) string {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == domain.RoleUser {
			return msgs[i].Text()
		}
	}
	return ""
}
