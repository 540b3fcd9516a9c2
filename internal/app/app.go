package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/heartmarshall/learnflow-backend/internal/adapter/postgres"
	pgquota "github.com/heartmarshall/learnflow-backend/internal/adapter/postgres/quota"
	"github.com/heartmarshall/learnflow-backend/internal/adapter/provider/linkfetch"
	"github.com/heartmarshall/learnflow-backend/internal/adapter/provider/offline"
	"github.com/heartmarshall/learnflow-backend/internal/adapter/provider/websearch"
	"github.com/heartmarshall/learnflow-backend/internal/auth"
	"github.com/heartmarshall/learnflow-backend/internal/config"
	"github.com/heartmarshall/learnflow-backend/internal/quota"
	"github.com/heartmarshall/learnflow-backend/internal/sanitize"
	"github.com/heartmarshall/learnflow-backend/internal/service/mediator"
	"github.com/heartmarshall/learnflow-backend/internal/service/search"
	"github.com/heartmarshall/learnflow-backend/internal/service/videos"
	"github.com/heartmarshall/learnflow-backend/internal/transport/rest"
	"github.com/heartmarshall/learnflow-backend/migrations"
)

// Run is the application entry point. It loads configuration, wires the
// quota store, providers and handlers, and serves HTTP until ctx is done.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
		slog.String("quota_store", cfg.Quota.Store),
		slog.String("ai_provider", cfg.AI.EffectiveProvider()),
	)

	a, err := build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.close()

	srv := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:           a.handler,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	if a.purger != nil {
		a.purger.Start()
	}

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case serveErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown", slog.String("error", err.Error()))
	}
	if a.purger != nil {
		a.purger.Stop(shutdownCtx)
	}

	if serveErr != nil {
		return fmt.Errorf("http server: %w", serveErr)
	}
	logger.Info("server stopped")
	return nil
}

// quotaStore is a quota.Store that can also answer readiness probes.
type quotaStore interface {
	quota.Store
	Ping(ctx context.Context) error
}

// application holds the wired components of a running server.
type application struct {
	handler  http.Handler
	purger   *quota.Purger
	provider string
	closers  []func()
}

func (a *application) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// build wires every component from cfg. The caller owns a.close.
func build(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	a := &application{}

	defaultLoc, err := time.LoadLocation(cfg.Quota.DefaultTimezone)
	if err != nil {
		return nil, fmt.Errorf("load default timezone: %w", err)
	}

	// --- Quota store ---
	store, closeStore, err := newQuotaStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, closeStore)

	keys := quota.NewScopeHasher(cfg.Quota.KeySalt)
	limiter := quota.NewWindowLimiter(store, keys, cfg.Quota.RateLimit, cfg.Quota.RateWindow, logger)
	daily := quota.NewDailyTracker(store, keys, cfg.Quota.DailyLimit, logger)

	if cfg.Quota.PurgeSchedule != "" {
		a.purger, err = quota.NewPurger(store, cfg.Quota.PurgeSchedule, logger)
		if err != nil {
			a.close()
			return nil, err
		}
	}

	// --- Completion provider ---
	ai, err := newCompleter(cfg.AI, logger)
	if err != nil {
		a.close()
		return nil, err
	}
	a.provider = ai.Name()

	// --- Mediator ---
	svc := mediator.NewService(logger, daily, sanitize.New(cfg.Sanitize), ai, mediator.Options{
		Params:          generationParams(cfg.AI),
		LinkTimeout:     cfg.LinkFetch.Timeout,
		FallbackOnError: cfg.AI.FallbackOnError,
	})
	if cfg.Search.Endpoint != "" {
		client := websearch.NewClient(cfg.Search.Endpoint, cfg.Search.APIKey, cfg.Search.Timeout, logger)
		svc.SetSearch(search.NewService(logger, client, cfg.Search.CacheSize, cfg.Search.CacheTTL))
	}
	if cfg.LinkFetch.Enabled {
		svc.SetLinkFetcher(linkfetch.NewFetcher(cfg.LinkFetch.Timeout, cfg.LinkFetch.MaxBytes, logger))
	}
	svc.SetVideos(videos.Default())
	svc.SetFallback(offline.New())

	// --- Auth ---
	var verifier *auth.Verifier
	if cfg.Auth.Enabled() {
		verifier = auth.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.JWTAudience, cfg.Auth.ClockSkew)
	}

	// --- HTTP ---
	h := routes{
		health: rest.NewHealthHandler(BuildVersion(),
			map[string]string{"provider": a.provider, "quota_store": cfg.Quota.Store},
			rest.Component{Name: "quota_store", Pinger: store},
		),
		chat:  rest.NewChatHandler(svc, logger, cfg.Server.MaxBodyBytes, defaultLoc),
		quota: rest.NewQuotaHandler(daily, logger, defaultLoc),
	}
	a.handler = newRouter(cfg, h, verifier, limiter, logger)

	return a, nil
}

func newQuotaStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (quotaStore, func(), error) {
	if cfg.Quota.Store != config.StorePostgres {
		return quota.NewMemoryStore(), func() {}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}

	if cfg.Database.AutoMigrate {
		n, err := postgres.Migrate(ctx, pool, migrations.FS)
		if err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		logger.Info("migrations applied", slog.Int("count", n))
	}

	return pgquota.New(pool), pool.Close, nil
}
