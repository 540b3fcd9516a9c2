package middleware

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/heartmarshall/learnflow-backend/internal/quota"
	"github.com/heartmarshall/learnflow-backend/pkg/ctxutil"
)

type windowLimiter interface {
	Take(ctx context.Context, ip string) (quota.Decision, error)
}

// RateLimit admits requests per client IP through limiter and reports the
// window state in X-RateLimit-* headers. A limiter error admits the request.
// ClientIP must run first.
func RateLimit(limiter windowLimiter, logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := ctxutil.ClientIPFromCtx(r.Context())
			if ip == "" {
				ip = clientIP(r, false)
			}

			d, err := limiter.Take(r.Context(), ip)
			if err != nil {
				logger.WarnContext(r.Context(), "rate limiter unavailable", slog.String("error", err.Error()))
			}

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
			if !d.ResetAt.IsZero() {
				h.Set("X-RateLimit-Reset", strconv.FormatInt(d.ResetAt.Unix(), 10))
			}

			if !d.Allowed {
				h.Set("Retry-After", strconv.Itoa(retryAfterSeconds(d.ResetAt)))
				writeError(w, http.StatusTooManyRequests, "Too many requests. Please wait a minute and try again.")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func retryAfterSeconds(resetAt time.Time) int {
	secs := int(math.Ceil(time.Until(resetAt).Seconds()))
	return max(1, secs)
}
