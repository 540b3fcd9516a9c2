package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/learnflow-backend/internal/adapter/provider/anthropic"
	"github.com/heartmarshall/learnflow-backend/internal/adapter/provider/gemini"
	"github.com/heartmarshall/learnflow-backend/internal/adapter/provider/offline"
	"github.com/heartmarshall/learnflow-backend/internal/adapter/provider/openai"
	"github.com/heartmarshall/learnflow-backend/internal/config"
	"github.com/heartmarshall/learnflow-backend/internal/domain"
)

// completer is satisfied by every completion provider adapter.
type completer interface {
	Name() string
	Complete(ctx context.Context, req domain.CompletionRequest) (string, error)
}

// newCompleter selects the completion provider. A blank API key always
// yields the offline responder.
func newCompleter(cfg config.AIConfig, logger *slog.Logger) (completer, error) {
	switch p := cfg.EffectiveProvider(); p {
	case config.ProviderOffline:
		return offline.New(), nil
	case config.ProviderGemini:
		p, err := gemini.NewProvider(cfg.BaseURL, cfg.APIKey, cfg.Model, cfg.Timeout, logger)
		if err != nil {
			return nil, err
		}
		return p, nil
	case config.ProviderOpenAI:
		return openai.NewProvider(cfg.BaseURL, cfg.APIKey, cfg.Model, cfg.Timeout, logger), nil
	case config.ProviderAnthropic:
		return anthropic.NewProvider(cfg.BaseURL, cfg.APIKey, cfg.Model, cfg.Timeout, logger), nil
	default:
		return nil, fmt.Errorf("unknown ai provider %q", p)
	}
}

func generationParams(cfg config.AIConfig) domain.GenerationParams {
	return domain.GenerationParams{
		Temperature:     cfg.Temperature,
		TopK:            cfg.TopK,
		TopP:            cfg.TopP,
		MaxOutputTokens: cfg.MaxOutputTokens,
	}
}
