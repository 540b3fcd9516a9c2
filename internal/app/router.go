package app

import (
	"log/slog"
	"net/http"

	"github.com/heartmarshall/learnflow-backend/internal/auth"
	"github.com/heartmarshall/learnflow-backend/internal/config"
	"github.com/heartmarshall/learnflow-backend/internal/quota"
	"github.com/heartmarshall/learnflow-backend/internal/transport/middleware"
	"github.com/heartmarshall/learnflow-backend/internal/transport/rest"
)

// routes groups the HTTP handlers served by the router.
type routes struct {
	health *rest.HealthHandler
	chat   *rest.ChatHandler
	quota  *rest.QuotaHandler
}

// newRouter mounts the API. Only the chat endpoint is rate limited per IP.
// A nil verifier treats every caller as anonymous.
func newRouter(
	cfg *config.Config,
	h routes,
	verifier *auth.Verifier,
	limiter *quota.WindowLimiter,
	logger *slog.Logger,
) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /live", h.health.Live)
	mux.HandleFunc("GET /ready", h.health.Ready)
	mux.HandleFunc("GET /health", h.health.Health)

	mux.Handle("POST /api/ai-chat",
		middleware.Wrap(http.HandlerFunc(h.chat.Chat), middleware.RateLimit(limiter, logger)))
	mux.HandleFunc("GET /api/quota", h.quota.Get)

	return middleware.Chain(
		middleware.RequestID(),
		middleware.Recovery(logger),
		middleware.Logger(logger),
		middleware.CORS(cfg.CORS),
		middleware.ClientIP(cfg.Server.TrustProxy),
		middleware.When(verifier != nil, middleware.Auth(verifier, logger)),
		middleware.Identify,
	)(mux)
}
