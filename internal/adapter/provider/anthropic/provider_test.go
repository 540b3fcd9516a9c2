package anthropic

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/learnflow-backend/internal/domain"
)

func testRequest() domain.CompletionRequest {
	return domain.CompletionRequest{
		Messages: []domain.PromptMessage{
			{Role: domain.RoleSystem, Parts: []domain.ContentPart{{Type: domain.PartText, Text: "persona"}}},
			{Role: domain.RoleUser, Parts: []domain.ContentPart{
				{Type: domain.PartText, Text: "what is this?"},
				{Type: domain.PartImage, Image: &domain.ImagePayload{MimeType: "image/png", Data: "QUJD"}},
			}},
			{Role: domain.RoleSystem, Parts: []domain.ContentPart{{Type: domain.PartText, Text: "Web Search Results:"}}},
		},
		Params: domain.GenerationParams{Temperature: 0.5, MaxOutputTokens: 256},
	}
}

func TestProvider_Complete(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "k", r.Header.Get("X-Api-Key"))

		raw, _ := io.ReadAll(r.Body)
		var body struct {
			System    []map[string]any `json:"system"`
			MaxTokens int              `json:"max_tokens"`
			Messages  []struct {
				Role    string           `json:"role"`
				Content []map[string]any `json:"content"`
			} `json:"messages"`
		}
		if assert.NoError(t, json.Unmarshal(raw, &body)) {
			assert.Equal(t, 256, body.MaxTokens)
			if assert.Len(t, body.System, 1) {
				assert.Equal(t, "persona", body.System[0]["text"])
			}
			if assert.Len(t, body.Messages, 1) {
				content := body.Messages[0].Content
				if assert.Len(t, content, 3) {
					assert.Equal(t, "text", content[0]["type"])
					assert.Equal(t, "image", content[1]["type"])
					assert.Equal(t, "Web Search Results:", content[2]["text"])
				}
			}
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"m1","type":"message","role":"assistant","model":"claude-test",
			"content":[{"type":"text","text":"A picture."}],
			"stop_reason":"end_turn","usage":{"input_tokens":1,"output_tokens":2}}`))
	}))
	defer srv.Close()

	p := NewProvider(srv.URL, "k", "claude-test", 5*time.Second, slog.Default())

	text, err := p.Complete(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, "A picture.", text)
	assert.Equal(t, "anthropic", p.Name())
}

func TestProvider_CompleteAPIError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"overloaded_error","message":"Overloaded"}}`))
	}))
	defer srv.Close()

	_, err := NewProvider(srv.URL, "k", "", time.Second, slog.Default()).Complete(context.Background(), testRequest())

	var upErr *domain.UpstreamError
	require.ErrorAs(t, err, &upErr)
	assert.Equal(t, http.StatusServiceUnavailable, upErr.Status)
}

func TestToMessages_TextOnly(t *testing.T) {
	t.Parallel()

	system, msgs := toMessages([]domain.PromptMessage{
		{Role: domain.RoleSystem, Parts: []domain.ContentPart{{Type: domain.PartText, Text: "sys"}}},
		{Role: domain.RoleUser, Parts: []domain.ContentPart{{Type: domain.PartText, Text: "q"}}},
	})
	assert.Equal(t, "sys", system)
	require.Len(t, msgs, 1)
	assert.Len(t, msgs[0].Content, 1)
}
