package gemini

import (
	"encoding/base64"
	"fmt"

	"google.golang.org/genai"

	"github.com/heartmarshall/learnflow-backend/internal/domain"
)

// toContents sends a leading system message as the system instruction and
// every later message as a user turn, so a trailing search-context message
// stays after the question.
func toContents(msgs []domain.PromptMessage) (*genai.Content, []*genai.Content, error) {
	var system *genai.Content
	if len(msgs) > 0 && msgs[0].Role == domain.RoleSystem {
		if text := msgs[0].Text(); text != "" {
			system = &genai.Content{Parts: []*genai.Part{{Text: text}}}
		}
		msgs = msgs[1:]
	}

	contents := make([]*genai.Content, 0, len(msgs))
	for _, msg := range msgs {
		c := &genai.Content{Role: "user"}
		for _, part := range msg.Parts {
			switch part.Type {
			case domain.PartText:
				if part.Text != "" {
					c.Parts = append(c.Parts, &genai.Part{Text: part.Text})
				}
			case domain.PartImage:
				if part.Image == nil {
					continue
				}
				data, err := base64.StdEncoding.DecodeString(part.Image.Data)
				if err != nil {
					return nil, nil, fmt.Errorf("gemini: decode image: %w", err)
				}
				c.Parts = append(c.Parts, &genai.Part{
					InlineData: &genai.Blob{MIMEType: part.Image.MimeType, Data: data},
				})
			}
		}
		if len(c.Parts) > 0 {
			contents = append(contents, c)
		}
	}
	return system, contents, nil
}
