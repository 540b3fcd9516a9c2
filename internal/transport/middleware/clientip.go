package middleware

import (
	"net"
	"net/http"
	"regexp"
	"strings"

	"github.com/heartmarshall/learnflow-backend/pkg/ctxutil"
)

var deviceIDPattern = regexp.MustCompile(`^[A-Za-z0-9._:-]{1,128}$`)

// ClientIP stores the caller's IP and device id in the context. Forwarding
// headers are honoured only when trustProxy is set. A malformed X-Device-Id
// is ignored and the IP is used as the device scope instead.
func ClientIP(trustProxy bool) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := ctxutil.WithClientIP(r.Context(), clientIP(r, trustProxy))
			if id := strings.TrimSpace(r.Header.Get("X-Device-Id")); deviceIDPattern.MatchString(id) {
				ctx = ctxutil.WithDeviceID(ctx, id)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func clientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
				return ip.String()
			}
		}
		if ip := net.ParseIP(strings.TrimSpace(r.Header.Get("X-Real-IP"))); ip != nil {
			return ip.String()
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
