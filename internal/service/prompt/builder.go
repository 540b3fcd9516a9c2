// Package prompt assembles the ordered message list sent to completion
// providers.
package prompt

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/heartmarshall/learnflow-backend/internal/domain"
)

// DefaultSubject is used when the request carries no known subject tag.
const DefaultSubject = "general"

// maxLinkContent bounds linked page text composed into the user message.
const maxLinkContent = 2000

var subjectFocus = map[string]string{
	"general":   "Answer questions on any school subject.",
	"math":      "You specialise in mathematics. Show every step of a calculation and state the final answer clearly.",
	"physics":   "You specialise in physics. State the laws and formulas you use and keep track of units.",
	"chemistry": "You specialise in chemistry. Balance equations and name the reaction types involved.",
	"biology":   "You specialise in biology. Explain processes in order and name the structures involved.",
	"history":   "You specialise in history. Give dates, places and causes, and separate facts from interpretation.",
	"language":  "You specialise in language and literature. Quote examples and explain grammar rules plainly.",
	"coding":    "You specialise in programming. Use fenced code blocks with a language tag and explain the code line by line when useful.",
}

const persona = `You are LearnFlow, a patient tutor for students.
%s

Formatting rules:
- Reply in Markdown.
- Write mathematics in LaTeX: $...$ inline and $$...$$ for display equations.
- Keep answers focused on the question and suitable for students.
- If the question is unclear, say what you assumed.`

const searchInstruction = `Use the web search results below to answer with up-to-date information. Cite the sources you use by their number, like [1], and say so if the results do not answer the question.`

// NormalizeSubject maps unknown or empty tags to DefaultSubject.
func NormalizeSubject(subject string) string {
	s := strings.ToLower(strings.TrimSpace(subject))
	if _, ok := subjectFocus[s]; ok {
		return s
	}
	return DefaultSubject
}

// SystemPrompt returns the persona instructions for subject.
func SystemPrompt(subject string) string {
	return fmt.Sprintf(persona, subjectFocus[NormalizeSubject(subject)])
}

// BuildMessages returns system, user and (when searchContext is non-empty)
// search-context messages in that fixed order. The user message carries the
// text part first and the image part second.
func BuildMessages(subject, userText string, image *domain.ImagePayload, searchContext string) []domain.PromptMessage {
	msgs := make([]domain.PromptMessage, 0, 3)

	msgs = append(msgs, domain.PromptMessage{
		Role:  domain.RoleSystem,
		Parts: []domain.ContentPart{{Type: domain.PartText, Text: SystemPrompt(subject)}},
	})

	user := domain.PromptMessage{
		Role:  domain.RoleUser,
		Parts: []domain.ContentPart{{Type: domain.PartText, Text: userText}},
	}
	if image != nil {
		user.Parts = append(user.Parts, domain.ContentPart{Type: domain.PartImage, Image: image})
	}
	msgs = append(msgs, user)

	if strings.TrimSpace(searchContext) != "" {
		msgs = append(msgs, domain.PromptMessage{
			Role: domain.RoleSystem,
			Parts: []domain.ContentPart{{
				Type: domain.PartText,
				Text: searchContext + "\n\n" + searchInstruction,
			}},
		})
	}

	return msgs
}

// WithLinkContent appends a summary of the linked page to the user text.
// Empty content leaves the text unchanged apart from the link reference.
func WithLinkContent(userText, linkURL, content string) string {
	if linkURL == "" {
		return userText
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return userText + "\n\nLink: " + linkURL
	}
	if utf8.RuneCountInString(content) > maxLinkContent {
		content = string([]rune(content)[:maxLinkContent])
	}
	return fmt.Sprintf("%s\n\nContent of the linked page (%s):\n%s", userText, linkURL, content)
}
