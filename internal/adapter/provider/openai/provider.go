// Package openai calls OpenAI-compatible chat completion endpoints.
package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/heartmarshall/learnflow-backend/internal/domain"
)

// Name is the provider name reported in outcomes.
const Name = "openai"

const defaultModel = "gpt-4o-mini"

// Provider sends prompts through the openai-go client.
type Provider struct {
	client openai.Client
	model  string
	log    *slog.Logger
}

// NewProvider creates a Provider. baseURL may point at any OpenAI-compatible
// endpoint; empty uses the SDK default.
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
		client: openai.NewClient(opts...),
		model:  model,
		log:    logger.With("adapter", "openai"),
	}
}

func (p *Provider) Name() string { return Name }

// Complete returns choices[0].message.content.
func (p *Provider) Complete(ctx context.Context, req domain.CompletionRequest) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model:    p.model,
		Messages: toChatMessages(req.Messages),
	}
	if req.Params.Temperature > 0 {
		params.Temperature = openai.Float(req.Params.Temperature)
	}
	if req.Params.TopP > 0 {
		params.TopP = openai.Float(req.Params.TopP)
	}
	if req.Params.MaxOutputTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(req.Params.MaxOutputTokens))
	}

	start := time.Now()
	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", domain.NewUpstreamError(apiErr.StatusCode, apiErr.Message)
		}
		return "", fmt.Errorf("openai: chat completion: %w", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", domain.NewUpstreamError(http.StatusBadGateway, "openai: no choices in response")
	}

	p.log.DebugContext(ctx, "openai response",
		slog.String("model", p.model),
		slog.Int64("completion_tokens", resp.Usage.CompletionTokens),
		slog.Duration("took", time.Since(start)),
	)

	return resp.Choices[0].Message.Content, nil
}

func toChatMessages(msgs []domain.PromptMessage) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, msg := range msgs {
		switch msg.Role {
		case domain.RoleSystem:
			out = append(out, openai.SystemMessage(msg.Text()))
		case domain.RoleUser:
			if !msg.HasImage() {
				out = append(out, openai.UserMessage(msg.Text()))
				continue
			}
			out = append(out, openai.ChatCompletionMessageParamUnion{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfArrayOfContentParts: toContentParts(msg.Parts),
					},
				},
			})
		}
	}
	return out
}

func toContentParts(parts []domain.ContentPart) []openai.ChatCompletionContentPartUnionParam {
	out := make([]openai.ChatCompletionContentPartUnionParam, 0, len(parts))
	for _, part := range parts {
		switch part.Type {
		case domain.PartText:
			if strings.TrimSpace(part.Text) == "" {
				continue
			}
			out = append(out, openai.ChatCompletionContentPartUnionParam{
				OfText: &openai.ChatCompletionContentPartTextParam{Text: part.Text},
			})
		case domain.PartImage:
			if part.Image == nil {
				continue
			}
			out = append(out, openai.ChatCompletionContentPartUnionParam{
				OfImageURL: &openai.ChatCompletionContentPartImageParam{
					ImageURL: openai.ChatCompletionContentPartImageImageURLParam{
						URL: "data:" + part.Image.MimeType + ";base64," + part.Image.Data,
					},
				},
			})
		}
	}
	return out
}
