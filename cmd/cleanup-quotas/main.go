// Command cleanup-quotas deletes quota records whose window has already
// ended. It is meant for deployments that run several server replicas
// against PostgreSQL and disable the in-process purge schedule.
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/heartmarshall/learnflow-backend/internal/adapter/postgres"
	pgquota "github.com/heartmarshall/learnflow-backend/internal/adapter/postgres/quota"
	"github.com/heartmarshall/learnflow-backend/internal/app"
	"github.com/heartmarshall/learnflow-backend/internal/config"
	"github.com/heartmarshall/learnflow-backend/internal/quota"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)

	if cfg.Quota.Store != config.StorePostgres {
		logger.Info("quota store is not postgres, nothing to clean", slog.String("store", cfg.Quota.Store))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	threshold := time.Now().Add(-quota.Retention)

	deleted, err := pgquota.New(pool).DeleteStale(ctx, threshold)
	if err != nil {
		logger.Error("quota cleanup failed",
			slog.String("error", err.Error()),
			slog.Time("threshold", threshold),
		)
		pool.Close()
		os.Exit(1)
	}

	logger.Info("quota cleanup completed",
		slog.Int("deleted", deleted),
		slog.Time("threshold", threshold),
	)
}
