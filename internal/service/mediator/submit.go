package mediator

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/heartmarshall/learnflow-backend/internal/domain"
	"github.com/heartmarshall/learnflow-backend/internal/sanitize"
	"github.com/heartmarshall/learnflow-backend/internal/service/prompt"
	searchsvc "github.com/heartmarshall/learnflow-backend/internal/service/search"
)

// Submission is a raw question as received from the transport.
type Submission struct {
	Prompt   any
	Image    string
	LinkURL  string
	Subject  string
	Caller   domain.Caller
	Location *time.Location
}

// Submit runs one submission to completion. It never returns nil.
func (s *Service) Submit(ctx context.Context, sub Submission) domain.Outcome {
	loc := sub.Location
	if loc == nil {
		loc = time.UTC
	}

	res, outcome := s.admit(ctx, sub.Caller, loc)
	if outcome != nil {
		return outcome
	}
	defer res.release()

	in, err := s.sanitizer.Input(sanitize.RawInput{
		Prompt:  sub.Prompt,
		Image:   sub.Image,
		LinkURL: sub.LinkURL,
	})
	if err != nil {
		return domain.ValidationFailed{Reason: validationReason(err)}
	}

	userText := in.Text
	if in.LinkURL != "" {
		userText = prompt.WithLinkContent(in.Text, in.LinkURL, s.fetchLink(ctx, in.LinkURL))
	}

	var results []domain.SearchResult
	if s.search != nil && s.search.Enabled() && searchsvc.NeedsSearch(in.Text) {
		results = s.runSearch(ctx, in.Text)
	}

	req := domain.CompletionRequest{
		Messages: prompt.BuildMessages(sub.Subject, userText, in.Image, searchsvc.Context(results)),
		Params:   s.opts.Params,
	}

	start := time.Now()
	text, err := s.ai.Complete(ctx, req)
	if err != nil {
		return s.upstreamFailure(ctx, err, in.Text, res.unconsumed())
	}

	// A client that hangs up after the answer was produced still used it.
	remaining := res.commit(context.WithoutCancel(ctx), s.log)

	s.log.InfoContext(ctx, "question answered",
		slog.String("provider", s.ai.Name()),
		slog.Bool("anonymous", sub.Caller.Anonymous),
		slog.Bool("search", len(results) > 0),
		slog.Bool("image", in.Image != nil),
		slog.Duration("took", time.Since(start)),
	)

	return domain.Success{
		Text:      text,
		Videos:    s.lookupVideos(in.Text),
		Citations: searchsvc.Citations(results),
		Provider:  s.ai.Name(),
		Remaining: remaining,
	}
}

// admit reserves a daily unit for anonymous callers. A store failure admits
// the caller unmetered.
func (s *Service) admit(ctx context.Context, caller domain.Caller, loc *time.Location) (reservation, domain.Outcome) {
	if !caller.Anonymous {
		return reservation{}, nil
	}

	res, ok, err := s.quota.Reserve(ctx, caller.DeviceID, loc)
	if err != nil {
		s.log.WarnContext(ctx, "daily quota unavailable, admitting", slog.String("error", err.Error()))
		return reservation{}, nil
	}
	if !ok {
		return reservation{}, domain.RateLimited{Remaining: 0}
	}
	return reservation{res: res}, nil
}

func (s *Service) fetchLink(ctx context.Context, url string) string {
	if s.links == nil {
		return ""
	}
	ctx, cancel := context.WithTimeout(ctx, s.opts.LinkTimeout)
	defer cancel()

	content, err := s.links.Fetch(ctx, url)
	if err != nil {
		s.log.WarnContext(ctx, "link fetch failed", slog.String("url", url), slog.String("error", err.Error()))
		return ""
	}
	return content
}

func (s *Service) runSearch(ctx context.Context, query string) []domain.SearchResult {
	results, err := s.search.Search(ctx, query)
	if err != nil {
		s.log.WarnContext(ctx, "search unavailable", slog.String("error", err.Error()))
		return nil
	}
	return results
}

func (s *Service) lookupVideos(question string) []domain.VideoRef {
	if s.videos == nil {
		return []domain.VideoRef{}
	}
	return s.videos.Lookup(question)
}

func (s *Service) upstreamFailure(ctx context.Context, err error, question string, remaining int) domain.Outcome {
	status, detail := http.StatusBadGateway, err.Error()
	var upErr *domain.UpstreamError
	if errors.As(err, &upErr) {
		status, detail = upErr.Status, upErr.Detail
	}

	s.log.ErrorContext(ctx, "completion failed",
		slog.String("provider", s.ai.Name()),
		slog.Int("status", status),
		slog.String("error", err.Error()),
	)

	if s.opts.FallbackOnError && s.fallback != nil {
		return domain.Success{
			Text:      s.fallback.Answer(question),
			Videos:    s.lookupVideos(question),
			Citations: []domain.SearchResult{},
			Provider:  s.ai.Name(),
			Fallback:  true,
			Remaining: remaining,
		}
	}
	return domain.UpstreamFailed{Status: status, Detail: detail}
}
