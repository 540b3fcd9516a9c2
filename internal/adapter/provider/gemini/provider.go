// Package gemini calls the Gemini generateContent API through the genai SDK.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/heartmarshall/learnflow-backend/internal/domain"
)

// Name is the provider name reported in outcomes.
const Name = "gemini"

const (
	defaultModel = "gemini-1.5-flash"
	apiVersion   = "v1beta"
)

// Provider sends prompts through a genai client.
type Provider struct {
	client *genai.Client
	model  string
	log    *slog.Logger
}

// NewProvider creates a Provider. An empty baseURL uses the SDK default
// endpoint; an empty model uses gemini-1.5-flash.
func NewProvider(baseURL, apiKey, model string, timeout time.Duration, logger *slog.Logger) (*Provider, error) {
	cfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: timeout},
		HTTPOptions: genai.HTTPOptions{
			APIVersion: apiVersion,
		},
	}
	if baseURL != "" {
		cfg.HTTPOptions.BaseURL = baseURL
	}

	client, err := genai.NewClient(context.Background(), cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	if model == "" {
		model = defaultModel
	}
	return &Provider{
		client: client,
		model:  model,
		log:    logger.With("adapter", "gemini"),
	}, nil
}

func (p *Provider) Name() string { return Name }

// Complete returns the text of the first candidate. API errors keep their
// status; a response without candidate text is a 502 *domain.UpstreamError.
func (p *Provider) Complete(ctx context.Context, req domain.CompletionRequest) (string, error) {
	system, contents, err := toContents(req.Messages)
	if err != nil {
		return "", err
	}

	config := generationConfig(req.Params)
	config.SystemInstruction = system

	start := time.Now()
	resp, err := p.client.Models.GenerateContent(ctx, p.model, contents, config)
	if err != nil {
		if status, detail, ok := apiError(err); ok {
			return "", domain.NewUpstreamError(status, detail)
		}
		return "", fmt.Errorf("gemini: generate content: %w", err)
	}

	text := candidateText(resp)
	if text == "" {
		return "", domain.NewUpstreamError(http.StatusBadGateway, "gemini: no candidate text in response")
	}

	p.log.DebugContext(ctx, "gemini response",
		slog.String("model", p.model),
		slog.Duration("took", time.Since(start)),
	)

	return text, nil
}

func generationConfig(params domain.GenerationParams) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(params.Temperature)),
	}
	if params.TopK > 0 {
		config.TopK = genai.Ptr(float32(params.TopK))
	}
	if params.TopP > 0 {
		config.TopP = genai.Ptr(float32(params.TopP))
	}
	if params.MaxOutputTokens > 0 {
		config.MaxOutputTokens = int32(params.MaxOutputTokens)
	}
	return config
}

// candidateText joins the text parts of the first candidate.
func candidateText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			b.WriteString(part.Text)
		}
	}
	return b.String()
}

func apiError(err error) (int, string, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code, apiErr.Message, true
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return apiErrPtr.Code, apiErrPtr.Message, true
	}
	return 0, "", false
}
