package middleware

import (
	"context"
	"net/http"

	"github.com/heartmarshall/learnflow-backend/pkg/ctxutil"
)

// requestInfo lets inner middleware report identifiers back to Logger.
type requestInfo struct {
	clientIP string
	userID   string
}

type requestInfoKey struct{}

func withRequestInfo(ctx context.Context, info *requestInfo) context.Context {
	return context.WithValue(ctx, requestInfoKey{}, info)
}

// Identify copies the resolved caller identifiers into the request log
// entry. Place it after ClientIP and Auth.
func Identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if info, ok := r.Context().Value(requestInfoKey{}).(*requestInfo); ok {
			info.clientIP = ctxutil.ClientIPFromCtx(r.Context())
			if id, ok := ctxutil.UserIDFromCtx(r.Context()); ok {
				info.userID = id.String()
			}
		}
		next.ServeHTTP(w, r)
	})
}
