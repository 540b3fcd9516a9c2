// Package anthropic calls the Anthropic Messages API.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/heartmarshall/learnflow-backend/internal/domain"
)

// Name is the provider name reported in outcomes.
const Name = "anthropic"

const (
	defaultModel     = "claude-3-5-haiku-latest"
	defaultMaxTokens = 2048
)

// Provider sends prompts through the Anthropic SDK.
type Provider struct {
	client anthropic.Client
	model  string
	log    *slog.Logger
}

// NewProvider creates a Provider. Empty baseURL uses the SDK default.
func NewProvider(baseURL, apiKey, model string, timeout time.Duration, logger *slog.Logger) *Provider {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithRequestTimeout(timeout),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if model == "" {
		model = defaultModel
	}
	return &Provider{
		client: anthropic.NewClient(opts...),
		model:  model,
		log:    logger.With("adapter", "anthropic"),
	}
}

func (p *Provider) Name() string { return Name }

// Complete returns the concatenated text blocks of the reply.
func (p *Provider) Complete(ctx context.Context, req domain.CompletionRequest) (string, error) {
	system, messages := toMessages(req.Messages)

	maxTokens := int64(req.Params.MaxOutputTokens)
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: maxTokens,
		Messages:  messages,
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}
	if req.Params.Temperature > 0 {
		params.Temperature = anthropic.Float(req.Params.Temperature)
	}
	if req.Params.TopK > 0 {
		params.TopK = anthropic.Int(int64(req.Params.TopK))
	}

	start := time.Now()
	msg, err := p.client.Messages.New(ctx, params)
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return "", domain.NewUpstreamError(apiErr.StatusCode, apiErr.Error())
		}
		return "", fmt.Errorf("anthropic: messages: %w", err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", domain.NewUpstreamError(http.StatusBadGateway, "anthropic: no text content in response")
	}

	p.log.DebugContext(ctx, "anthropic response",
		slog.String("model", p.model),
		slog.Int64("output_tokens", msg.Usage.OutputTokens),
		slog.Duration("took", time.Since(start)),
	)

	return sb.String(), nil
}

// toMessages moves the leading system message into the system prompt. Later
// system messages (search context) become a trailing text block of the last
// user message so their position after the question is kept.
func toMessages(msgs []domain.PromptMessage) (string, []anthropic.MessageParam) {
	var (
		system string
		blocks [][]anthropic.ContentBlockParamUnion
	)

	for i, msg := range msgs {
		switch msg.Role {
		case domain.RoleSystem:
			if i == 0 {
				system = msg.Text()
				continue
			}
			if len(blocks) == 0 {
				blocks = append(blocks, nil)
			}
			last := len(blocks) - 1
			blocks[last] = append(blocks[last], anthropic.NewTextBlock(msg.Text()))
		case domain.RoleUser:
			var b []anthropic.ContentBlockParamUnion
			for _, part := range msg.Parts {
				switch {
				case part.Type == domain.PartText && part.Text != "":
					b = append(b, anthropic.NewTextBlock(part.Text))
				case part.Type == domain.PartImage && part.Image != nil:
					b = append(b, anthropic.NewImageBlockBase64(part.Image.MimeType, part.Image.Data))
				}
			}
			blocks = append(blocks, b)
		}
	}

	out := make([]anthropic.MessageParam, 0, len(blocks))
	for _, b := range blocks {
		if len(b) > 0 {
			out = append(out, anthropic.NewUserMessage(b...))
		}
	}
	return system, out
}
