package rest

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

type dailyQuotaReader interface {
	Limit() int
	Remaining(ctx context.Context, deviceID string, loc *time.Location) (int, time.Time, error)
}

// QuotaHandler serves GET /api/quota.
type QuotaHandler struct {
	daily      dailyQuotaReader
	log        *slog.Logger
	defaultLoc *time.Location
}

// NewQuotaHandler creates a QuotaHandler.
func NewQuotaHandler(daily dailyQuotaReader, logger *slog.Logger, defaultLoc *time.Location) *QuotaHandler {
	return &QuotaHandler{
		daily:      daily,
		log:        logger.With("handler", "quota"),
		defaultLoc: defaultLoc,
	}
}

// quotaResponse leaves limit and remaining null for authenticated callers,
// who are not metered.
type quotaResponse struct {
	Authenticated bool       `json:"authenticated"`
	Limit         *int       `json:"limit"`
	Remaining     *int       `json:"remaining"`
	ResetAt       *time.Time `json:"resetAt,omitempty"`
}

// Get handles GET /api/quota.
func (h *QuotaHandler) Get(w http.ResponseWriter, r *http.Request) {
	caller := callerFromRequest(r)
	if !caller.Anonymous {
		writeJSON(w, http.StatusOK, quotaResponse{Authenticated: true})
		return
	}

	loc := locationFromRequest(r, h.defaultLoc)
	remaining, resetAt, err := h.daily.Remaining(r.Context(), caller.DeviceID, loc)
	if err != nil {
		h.log.ErrorContext(r.Context(), "read daily quota", slog.String("error", err.Error()))
		writeError(w, http.StatusServiceUnavailable, "quota is temporarily unavailable")
		return
	}

	limit := h.daily.Limit()
	writeJSON(w, http.StatusOK, quotaResponse{
		Limit:     &limit,
		Remaining: &remaining,
		ResetAt:   &resetAt,
	})
}
