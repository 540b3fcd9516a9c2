package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/heartmarshall/learnflow-backend/internal/auth"
	"github.com/heartmarshall/learnflow-backend/pkg/ctxutil"
)

type tokenVerifier interface {
	Verify(token string) (auth.Identity, error)
}

// Auth resolves the caller from the bearer token. Requests without a token
// continue anonymously; an invalid token is rejected with 401. A nil
// verifier treats every caller as anonymous.
func Auth(verifier tokenVerifier, logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			if token == "" || verifier == nil {
				next.ServeHTTP(w, r)
				return
			}

			id, err := verifier.Verify(token)
			if err != nil {
				logger.DebugContext(r.Context(), "bearer token rejected", slog.String("error", err.Error()))
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			if id.Anonymous() {
				next.ServeHTTP(w, r)
				return
			}

			ctx := ctxutil.WithUserID(r.Context(), id.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func extractBearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) < 7 || !strings.EqualFold(h[:7], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}
