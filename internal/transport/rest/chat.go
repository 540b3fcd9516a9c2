package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/heartmarshall/learnflow-backend/internal/domain"
	"github.com/heartmarshall/learnflow-backend/internal/service/mediator"
)

const (
	msgRateLimited = "Daily question limit reached. Sign in or come back tomorrow."
	msgUpstream    = "The AI service is temporarily unavailable. Please try again."
)

type submitter interface {
	Submit(ctx context.Context, sub mediator.Submission) domain.Outcome
}

// ChatHandler serves POST /api/ai-chat.
type ChatHandler struct {
	svc          submitter
	log          *slog.Logger
	maxBodyBytes int64
	defaultLoc   *time.Location
}

// NewChatHandler creates a ChatHandler.
func NewChatHandler(svc submitter, logger *slog.Logger, maxBodyBytes int64, defaultLoc *time.Location) *ChatHandler {
	return &ChatHandler{
		svc:          svc,
		log:          logger.With("handler", "chat"),
		maxBodyBytes: maxBodyBytes,
		defaultLoc:   defaultLoc,
	}
}

// Prompt stays untyped so that a non-string value is reported as a
// validation failure rather than a decoding error.
type chatRequest struct {
	Prompt  any    `json:"prompt"`
	Image   string `json:"image,omitempty"`
	LinkURL string `json:"linkUrl,omitempty"`
	Subject string `json:"subject,omitempty"`
}

type chatResponse struct {
	Text      string                `json:"text"`
	Videos    []domain.VideoRef     `json:"videos"`
	Citations []domain.SearchResult `json:"citations"`
	Remaining *int                  `json:"remaining,omitempty"`
	Fallback  bool                  `json:"fallback,omitempty"`
}

type rateLimitedResponse struct {
	Error     string `json:"error"`
	Remaining int    `json:"remaining"`
}

// Chat handles POST /api/ai-chat.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	out := h.svc.Submit(r.Context(), mediator.Submission{
		Prompt:   req.Prompt,
		Image:    req.Image,
		LinkURL:  req.LinkURL,
		Subject:  req.Subject,
		Caller:   callerFromRequest(r),
		Location: locationFromRequest(r, h.defaultLoc),
	})

	h.writeOutcome(w, r, out)
}

func (h *ChatHandler) writeOutcome(w http.ResponseWriter, r *http.Request, out domain.Outcome) {
	switch o := out.(type) {
	case domain.Success:
		resp := chatResponse{
			Text:      o.Text,
			Videos:    nonNil(o.Videos),
			Citations: nonNil(o.Citations),
			Fallback:  o.Fallback,
		}
		if o.Remaining >= 0 {
			resp.Remaining = &o.Remaining
		}
		writeJSON(w, http.StatusOK, resp)

	case domain.RateLimited:
		h.log.InfoContext(r.Context(), "submission rejected", slog.String("error", o.Error()))
		writeJSON(w, http.StatusTooManyRequests, rateLimitedResponse{Error: msgRateLimited, Remaining: o.Remaining})

	case domain.ValidationFailed:
		writeError(w, http.StatusBadRequest, o.Reason)

	case domain.UpstreamFailed:
		h.log.ErrorContext(r.Context(), "upstream failure",
			slog.Int("upstream_status", o.Status),
			slog.String("detail", o.Detail),
		)
		writeError(w, http.StatusInternalServerError, msgUpstream)

	default:
		h.log.ErrorContext(r.Context(), "unknown outcome", slog.Any("outcome", out))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
