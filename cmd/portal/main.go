package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/hackgods/hospital-portal/internal/activity"
	"github.com/hackgods/hospital-portal/internal/api"
	"github.com/hackgods/hospital-portal/internal/config"
	"github.com/hackgods/hospital-portal/internal/db"
	"github.com/hackgods/hospital-portal/internal/flow"
	"github.com/hackgods/hospital-portal/internal/gateway"
	"github.com/hackgods/hospital-portal/internal/logging"
	"github.com/hackgods/hospital-portal/internal/metrics"
	redisclient "github.com/hackgods/hospital-portal/internal/redis"
	"github.com/hackgods/hospital-portal/internal/session"
	"github.com/hackgods/hospital-portal/internal/view"
)

var version = "dev"

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

	logger.Info("portal starting up",
		zap.String("env", cfg.Env),
		zap.String("http_port", cfg.HTTPPort),
		zap.String("backend_url", cfg.BackendURL),
		zap.String("session_store", cfg.SessionStore),
	)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		rdb    *redis.Client
		store  session.Store
		locker redisclient.Locker
	)
	if cfg.SessionStore == "redis" {
		rdb, err = redisclient.NewRedisClient(rootCtx, cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
		if err != nil {
			logger.Fatal("redis connection error", zap.Error(err))
		}
		defer func() {
			if err := rdb.Close(); err != nil {
				logger.Warn("error closing redis", zap.Error(err))
			}
		}()
		logger.Info("connected to Redis", zap.String("addr", cfg.RedisAddr))
		store = session.NewRedisStore(rdb, cfg.SessionTTL)
		locker = redisclient.NewRedisKeyLocker(rdb, cfg.LockTTL)
	} else {
		store = session.NewMemoryStore()
	}

	var (
		pgPool   *pgxpool.Pool
		recorder activity.Recorder = activity.Nop{}
	)
	if cfg.ActivityEnabled() {
		pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
		pgPool, err = db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
		cancelPg()
		if err != nil {
			logger.Fatal("postgres connection error", zap.Error(err))
		}
		defer pgPool.Close()

		pg := activity.NewPgRecorder(pgPool, logger.Named("activity"))
		if err := pg.EnsureSchema(rootCtx); err != nil {
			logger.Fatal("activity schema error", zap.Error(err))
		}
		recorder = pg
		logger.Info("activity log enabled")
	}

	gm := metrics.NewGatewayMetrics(prometheus.DefaultRegisterer)
	gw := gateway.NewClient(cfg.BackendURL,
		gateway.WithTimeout(cfg.BackendTimeout),
		gateway.WithLogger(logger.Named("gateway")),
		gateway.WithMetrics(gm),
	)

	renderer, err := view.NewRenderer()
	if err != nil {
		logger.Fatal("template error", zap.Error(err))
	}

	flows := flow.NewService(flow.Deps{
		Appointments:  gw.Appointments,
		Prescriptions: gw.Prescriptions,
		Doctors:       gw.Doctors,
		Patients:      gw.Patients,
		Admin:         gw.Admin,
		Locker:        locker,
		Recorder:      recorder,
		Location:      cfg.Location,
		UpdateShift:   cfg.UpdateShift,
		Logger:        logger.Named("flow"),
	})

	handler := api.NewRouter(api.RouterConfig{
		Gateway:      gw,
		Flows:        flows,
		Sessions:     session.NewManager(store, cfg.SessionCookie, cfg.SessionTTL, cfg.Env == "production"),
		Renderer:     renderer,
		Sequencer:    gateway.NewSequencer(),
		Recorder:     recorder,
		Metrics:      gm,
		Gatherer:     prometheus.DefaultGatherer,
		LoginLimiter: api.NewRateLimiter(cfg.LoginRate, cfg.LoginBurst),
		Location:     cfg.Location,
		Logger:       logger,
		PgPool:       pgPool,
		Redis:        rdb,
		Env:          cfg.Env,
		Version:      version,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", zap.Error(err))
			stop()
		}
	}()

	<-rootCtx.Done()
	logger.Info("shutting down portal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
