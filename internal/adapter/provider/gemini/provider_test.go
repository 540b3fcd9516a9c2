package gemini

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

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
		Params: domain.GenerationParams{Temperature: 0.5, TopK: 40, TopP: 0.95, MaxOutputTokens: 2048},
	}
}

func newTestProvider(t *testing.T, url, model string) *Provider {
	t.Helper()
	p, err := NewProvider(url, "k", model, 5*time.Second, slog.Default())
	require.NoError(t, err)
	return p
}

func TestProvider_Complete(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.True(t, strings.HasSuffix(r.URL.Path, "/v1beta/models/gemini-test:generateContent"), r.URL.Path)
		assert.Equal(t, "k", r.Header.Get("x-goog-api-key"))

		raw, _ := io.ReadAll(r.Body)
		body := gjson.ParseBytes(raw)
		assert.Equal(t, "persona", body.Get("systemInstruction.parts.0.text").String())
		assert.EqualValues(t, 2, body.Get("contents.#").Int())
		assert.Equal(t, "what is this?", body.Get("contents.0.parts.0.text").String())
		assert.Equal(t, "image/png", body.Get("contents.0.parts.1.inlineData.mimeType").String())
		assert.Equal(t, "QUJD", body.Get("contents.0.parts.1.inlineData.data").String())
		assert.Equal(t, "Web Search Results:", body.Get("contents.1.parts.0.text").String())
		assert.InDelta(t, 0.5, body.Get("generationConfig.temperature").Float(), 1e-6)
		assert.InDelta(t, 0.95, body.Get("generationConfig.topP").Float(), 1e-6)
		assert.EqualValues(t, 40, body.Get("generationConfig.topK").Int())
		assert.EqualValues(t, 2048, body.Get("generationConfig.maxOutputTokens").Int())

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"It is "},{"text":"**ABC**."}]}}]}`))
	}))
	defer srv.Close()

	p := newTestProvider(t, srv.URL, "gemini-test")

	text, err := p.Complete(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, "It is **ABC**.", text)
	assert.Equal(t, "gemini", p.Name())
}

func TestProvider_CompleteAPIError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"code":429,"message":"quota exceeded","status":"RESOURCE_EXHAUSTED"}}`))
	}))
	defer srv.Close()

	_, err := newTestProvider(t, srv.URL, "").Complete(context.Background(), testRequest())

	var upErr *domain.UpstreamError
	require.ErrorAs(t, err, &upErr)
	assert.Equal(t, http.StatusTooManyRequests, upErr.Status)
	assert.Contains(t, upErr.Detail, "quota exceeded")
}

func TestProvider_CompleteNoCandidateText(t *testing.T) {
	t.Parallel()

	bodies := []string{
		`{"candidates":[]}`,
		`{"promptFeedback":{"blockReason":"SAFETY"}}`,
		`{"candidates":[{"content":{"role":"model","parts":[]}}]}`,
		`{"candidates":[{"finishReason":"SAFETY"}]}`,
	}
	for _, body := range bodies {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(body))
		}))

		_, err := newTestProvider(t, srv.URL, "").Complete(context.Background(), testRequest())
		srv.Close()

		var upErr *domain.UpstreamError
		require.ErrorAs(t, err, &upErr, body)
		assert.Equal(t, http.StatusBadGateway, upErr.Status)
	}
}

func TestToContents_BadImage(t *testing.T) {
	t.Parallel()

	_, _, err := toContents([]domain.PromptMessage{{
		Role:  domain.RoleUser,
		Parts: []domain.ContentPart{{Type: domain.PartImage, Image: &domain.ImagePayload{MimeType: "image/png", Data: "!!"}}},
	}})
	assert.Error(t, err)
}

func TestToContents_NoSystemMessage(t *testing.T) {
	t.Parallel()

	system, contents, err := toContents([]domain.PromptMessage{{
		Role:  domain.RoleUser,
		Parts: []domain.ContentPart{{Type: domain.PartText, Text: "hi"}},
	}})
	require.NoError(t, err)
	assert.Nil(t, system)
	require.Len(t, contents, 1)
	assert.Equal(t, "hi", contents[0].Parts[0].Text)
}
