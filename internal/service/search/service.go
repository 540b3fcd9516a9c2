// Package search decides when a question needs fresh information and fetches
// web search results to ground the answer.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"

	"github.com/heartmarshall/learnflow-backend/internal/domain"
)

type source interface {
	Fetch(ctx context.Context, query string) ([]byte, error)
}

// Service fetches and normalizes web search results.
type Service struct {
	log   *slog.Logger
	src   source
	cache *expirable.LRU[string, []domain.SearchResult]
	group singleflight.Group
}

// NewService creates a search service. A nil src disables search: every call
// returns ErrSearchUnavailable. A non-positive cacheSize disables caching.
func NewService(logger *slog.Logger, src source, cacheSize int, cacheTTL time.Duration) *Service {
	s := &Service{
		log: logger.With("service", "search"),
		src: src,
	}
	if cacheSize > 0 {
		s.cache = expirable.NewLRU[string, []domain.SearchResult](cacheSize, nil, cacheTTL)
	}
	return s
}

// Enabled reports whether a search source is configured.
func (s *Service) Enabled() bool { return s.src != nil }

// Search returns up to MaxResults results for query. Any failure is reported
// as domain.ErrSearchUnavailable; callers continue without search context.
func (s *Service) Search(ctx context.Context, query string) ([]domain.SearchResult, error) {
	if s.src == nil {
		return nil, domain.ErrSearchUnavailable
	}

	key := domain.NormalizeQuery(query)
	if s.cache != nil {
		if cached, ok := s.cache.Get(key); ok {
			s.log.DebugContext(ctx, "search cache hit", slog.String("query", key))
			return cached, nil
		}
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		return s.fetch(ctx, query)
	})
	if err != nil {
		s.log.WarnContext(ctx, "search failed", slog.String("query", key), slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %v", domain.ErrSearchUnavailable, err)
	}

	results := v.([]domain.SearchResult)
	if s.cache != nil {
		s.cache.Add(key, results)
	}
	return results, nil
}

func (s *Service) fetch(ctx context.Context, query string) ([]domain.SearchResult, error) {
	start := time.Now()

	body, err := s.src.Fetch(ctx, query)
	if err != nil {
		return nil, err
	}

	results, err := parseResults(body)
	if err != nil {
		return nil, err
	}

	s.log.DebugContext(ctx, "search completed",
		slog.Int("results", len(results)),
		slog.Duration("took", time.Since(start)),
	)
	return results, nil
}
