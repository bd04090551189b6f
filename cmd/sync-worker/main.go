package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	override "github.com/tableloop/menusync-backend/internal/overrides"
	syncsvc "github.com/tableloop/menusync-backend/internal/sync"
	synclink "github.com/tableloop/menusync-backend/internal/synclinks"
	version "github.com/tableloop/menusync-backend/internal/versions"
	"github.com/tableloop/menusync-backend/pkg/config"
	"github.com/tableloop/menusync-backend/pkg/db"
	"github.com/tableloop/menusync-backend/pkg/logger"
	"github.com/tableloop/menusync-backend/pkg/metrics"
	"github.com/tableloop/menusync-backend/pkg/migrate"
	"github.com/tableloop/menusync-backend/pkg/outbox"
	"github.com/tableloop/menusync-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "sync-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "sync-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	conn := dbClient.DB()
	linkRepo := synclink.NewRepository(conn)
	versionRepo := version.NewRepository(conn)
	overrideRepo := override.NewRepository(conn)
	outboxSvc := outbox.NewService(outbox.NewRepository(conn), logg)

	lockFactory := func(linkID uuid.UUID) (syncsvc.Lock, error) {
		key := redisClient.LockKey("sync", linkID.String())
		return syncsvc.NewRedisLock(redisClient, key, cfg.Sync.BranchLockTTL)
	}

	syncService, err := syncsvc.NewService(
		syncsvc.NewRepository(conn),
		dbClient,
		linkRepo,
		versionRepo,
		overrideRepo,
		outboxSvc,
		lockFactory,
		logg,
		metrics.NewSyncMetrics(prometheus.DefaultRegisterer),
		syncsvc.Config{BulkWorkers: cfg.Sync.BulkWorkers},
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create sync service", err)
		os.Exit(1)
	}

	workerLock, err := syncsvc.NewRedisLock(
		redisClient,
		redisClient.LockKey("autosync", cfg.App.Env),
		cfg.AutoSync.LockTTL,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create worker lock", err)
		os.Exit(1)
	}

	service, err := NewService(ServiceParams{
		Config:  cfg,
		Logger:  logg,
		Links:   linkRepo,
		Syncer:  syncService,
		Lock:    workerLock,
		Metrics: metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create sync worker", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": "sync-worker",
	})
	logg.Info(ctx, "starting sync worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "sync worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "sync worker shutting down gracefully")
}
