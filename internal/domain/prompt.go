package domain

import "strings"

// Role of a prompt message.
type Role string

const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

// PartType discriminates ContentPart.
type PartType string

const (
	PartText  PartType = "text"
	PartImage PartType = "image"
)

// ContentPart is one block inside a PromptMessage.
type ContentPart struct {
	Type  PartType
	Text  string
	Image *ImagePayload
}

// PromptMessage is a role-tagged sequence of content blocks.
type PromptMessage struct {
	Role  Role
	Parts []ContentPart
}

// Text concatenates all text parts of the message.
func (m PromptMessage) Text() string {
	var texts []string
	for _, p := range m.Parts {
		if p.Type == PartText && p.Text != "" {
			texts = append(texts, p.Text)
		}
	}
	return strings.Join(texts, "\n\n")
}

// HasImage reports whether the message carries an image part.
func (m PromptMessage) HasImage() bool {
	for _, p := range m.Parts {
		if p.Type == PartImage && p.Image != nil {
			return true
		}
	}
	return false
}

// GenerationParams are sampling parameters forwarded to the completion provider.
type GenerationParams struct {
	Temperature     float64
	TopK            int
	TopP            float64
	MaxOutputTokens int
}

// CompletionRequest is what a completion provider receives.
type CompletionRequest struct {
	Messages []PromptMessage
	Params   GenerationParams
}
