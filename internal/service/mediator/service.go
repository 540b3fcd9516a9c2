// Package mediator runs a question submission through admission,
// sanitization, optional enrichment and exactly one completion call.
package mediator

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/heartmarshall/learnflow-backend/internal/domain"
	"github.com/heartmarshall/learnflow-backend/internal/quota"
	"github.com/heartmarshall/learnflow-backend/internal/sanitize"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type dailyQuota interface {
	Reserve(ctx context.Context, deviceID string, loc *time.Location) (*quota.Reservation, bool, error)
}

type sanitizer interface {
	Input(raw sanitize.RawInput) (*domain.SanitizedInput, error)
}

type completer interface {
	Name() string
	Complete(ctx context.Context, req domain.CompletionRequest) (string, error)
}

type searcher interface {
	Enabled() bool
	Search(ctx context.Context, query string) ([]domain.SearchResult, error)
}

type linkFetcher interface {
	Fetch(ctx context.Context, rawURL string) (string, error)
}

type videoLookup interface {
	Lookup(question string) []domain.VideoRef
}

type fallbackResponder interface {
	Answer(question string) string
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Options tune a Service.
type Options struct {
	Params domain.GenerationParams
	// LinkTimeout bounds the linked page fetch. Zero means 5s.
	LinkTimeout time.Duration
	// FallbackOnError answers from the offline responder when the provider
	// fails. Fallback answers do not consume quota.
	FallbackOnError bool
}

// Service mediates question submissions.
type Service struct {
	log       *slog.Logger
	quota     dailyQuota
	sanitizer sanitizer
	ai        completer
	search    searcher
	links     linkFetcher
	videos    videoLookup
	fallback  fallbackResponder
	opts      Options
}

// NewService creates a mediator. search, links, videos and fallback are
// optional and may be set later.
func NewService(
	logger *slog.Logger,
	quota dailyQuota,
	sanitizer sanitizer,
	ai completer,
	opts Options,
) *Service {
	if opts.LinkTimeout <= 0 {
		opts.LinkTimeout = 5 * time.Second
	}
	return &Service{
		log:       logger.With("service", "mediator"),
		quota:     quota,
		sanitizer: sanitizer,
		ai:        ai,
		opts:      opts,
	}
}

// SetSearch injects the web search dispatcher.
func (s *Service) SetSearch(sr searcher) { s.search = sr }

// SetLinkFetcher injects the linked page fetcher.
func (s *Service) SetLinkFetcher(lf linkFetcher) { s.links = lf }

// SetVideos injects the video catalog.
func (s *Service) SetVideos(v videoLookup) { s.videos = v }

// SetFallback injects the responder used when FallbackOnError is enabled.
func (s *Service) SetFallback(f fallbackResponder) { s.fallback = f }

// Provider returns the name of the configured completion provider.
func (s *Service) Provider() string { return s.ai.Name() }

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// reservation abstracts over a real reservation and the unmetered path for
// authenticated callers and fail-open admissions.
type reservation struct {
	res *quota.Reservation
}

func (r reservation) commit(ctx context.Context, log *slog.Logger) int {
	if r.res == nil {
		return -1
	}
	remaining, err := r.res.Commit(ctx)
	if err != nil {
		log.ErrorContext(ctx, "commit daily quota", slog.String("error", err.Error()))
	}
	return remaining
}

// unconsumed is the quota left if this reservation is never committed.
func (r reservation) unconsumed() int {
	if r.res == nil {
		return -1
	}
	return r.res.Remaining() + 1
}

// release drops an uncommitted reservation; after commit it is a no-op.
func (r reservation) release() {
	if r.res != nil {
		r.res.Release()
	}
}

func validationReason(err error) string {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return ve.Reason()
	}
	return "invalid input"
}
