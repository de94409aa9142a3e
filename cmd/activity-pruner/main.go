package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hackgods/hospital-portal/internal/activity"
	"github.com/hackgods/hospital-portal/internal/config"
	"github.com/hackgods/hospital-portal/internal/db"
	"github.com/hackgods/hospital-portal/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		_, _ = os.Stderr.WriteString("config load error: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		_, _ = os.Stderr.WriteString("logger init error: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if !cfg.ActivityEnabled() {
		logger.Fatal("POSTGRES_DSN is required")
	}

	logger.Info("activity pruner starting up",
		zap.String("env", cfg.Env),
		zap.Duration("interval", cfg.WorkerInterval),
		zap.Duration("retention", cfg.Retention),
	)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		logger.Fatal("postgres connection error", zap.Error(err))
	}
	defer pgPool.Close()
	logger.Info("connected to Postgres")

	recorder := activity.NewPgRecorder(pgPool, logger)
	if err := recorder.EnsureSchema(rootCtx); err != nil {
		logger.Fatal("activity schema error", zap.Error(err))
	}

	// Run once at startup
	runOnce(rootCtx, logger, recorder, cfg.Retention)

	ticker := time.NewTicker(cfg.WorkerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rootCtx.Done():
			logger.Info("shutdown signal received, stopping activity pruner")
			return
		case <-ticker.C:
			runOnce(rootCtx, logger, recorder, cfg.Retention)
		}
	}
}

func runOnce(ctx context.Context, logger *zap.Logger, recorder *activity.PgRecorder, retention time.Duration) {
	start := time.Now()
	n, err := recorder.Prune(ctx, retention)
	if err != nil {
		logger.Error("prune run error", zap.Error(err))
		return
	}
	logger.Info("prune run complete", zap.Int64("deleted", n), zap.Duration("took", time.Since(start)))
}
