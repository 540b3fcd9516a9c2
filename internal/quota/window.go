package quota

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/heartmarshall/learnflow-backend/internal/domain"
)

// Decision is the result of a limiter check.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// WindowLimiter is a fixed-window counter per source IP. Requests arriving at
// a window boundary may briefly see up to twice the nominal rate.
type WindowLimiter struct {
	store  Store
	keys   *ScopeHasher
	max    int
	window time.Duration
	locks  keyedMutex
	now    func() time.Time
	log    *slog.Logger
}

// NewWindowLimiter creates a limiter admitting limit requests per window.
func NewWindowLimiter(store Store, keys *ScopeHasher, limit int, window time.Duration, log *slog.Logger) *WindowLimiter {
	return &WindowLimiter{
		store:  store,
		keys:   keys,
		max:    limit,
		window: window,
		now:    time.Now,
		log:    log.With("service", "window_limiter"),
	}
}

// Limit returns the configured maximum per window.
func (l *WindowLimiter) Limit() int { return l.max }

// Admit records one request for ip and reports whether it is within the limit.
// On store failure Admit fails open: it returns true together with the error.
func (l *WindowLimiter) Admit(ctx context.Context, ip string) (bool, error) {
	d, err := l.Take(ctx, ip)
	return d.Allowed, err
}

// Take is Admit with the full decision for response headers.
func (l *WindowLimiter) Take(ctx context.Context, ip string) (Decision, error) {
	key := l.keys.Key("ip", ip)
	unlock := l.locks.Lock(key)
	defer unlock()

	now := l.now()

	rec, err := l.store.Get(ctx, key)
	if err != nil {
		l.log.WarnContext(ctx, "limiter store read failed, admitting", slog.String("error", err.Error()))
		return l.openDecision(now), fmt.Errorf("get window record: %w", err)
	}

	if rec == nil || !now.Before(rec.ResetAt) {
		rec = &domain.QuotaRecord{ScopeKey: key, Count: 1, ResetAt: now.Add(l.window)}
	} else if rec.Count >= l.max {
		return Decision{Allowed: false, Limit: l.max, Remaining: 0, ResetAt: rec.ResetAt}, nil
	} else {
		rec.Count++
	}
	rec.UpdatedAt = now

	if err := l.store.Set(ctx, *rec); err != nil {
		l.log.WarnContext(ctx, "limiter store write failed, admitting", slog.String("error", err.Error()))
		return l.openDecision(now), fmt.Errorf("set window record: %w", err)
	}

	return Decision{
		Allowed:   true,
		Limit:     l.max,
		Remaining: max(0, l.max-rec.Count),
		ResetAt:   rec.ResetAt,
	}, nil
}

func (l *WindowLimiter) openDecision(now time.Time) Decision {
	return Decision{Allowed: true, Limit: l.max, Remaining: l.max, ResetAt: now.Add(l.window)}
}
