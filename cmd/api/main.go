package main

import (
	"context"
	"net/http"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/tableloop/menusync-backend/api/routes"
	catalog "github.com/tableloop/menusync-backend/internal/catalogs"
	"github.com/tableloop/menusync-backend/internal/dashboard"
	menu "github.com/tableloop/menusync-backend/internal/menus"
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
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
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

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	syncMetrics := metrics.NewSyncMetrics(registry)

	conn := dbClient.DB()
	outboxSvc := outbox.NewService(outbox.NewRepository(conn), logg)

	versionRepo := version.NewRepository(conn)
	versionService, err := version.NewService(versionRepo, dbClient, outboxSvc)
	if err != nil {
		logg.Error(context.Background(), "failed to create version service", err)
		os.Exit(1)
	}

	catalogService, err := catalog.NewService(catalog.NewRepository(conn), dbClient, versionService)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	linkRepo := synclink.NewRepository(conn)
	overrideRepo := override.NewRepository(conn)

	linkService, err := synclink.NewService(linkRepo, dbClient, versionRepo, overrideRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create sync link service", err)
		os.Exit(1)
	}

	overrideService, err := override.NewService(overrideRepo, dbClient, linkRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create override service", err)
		os.Exit(1)
	}

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
		syncMetrics,
		syncsvc.Config{BulkWorkers: cfg.Sync.BulkWorkers},
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create sync service", err)
		os.Exit(1)
	}

	menuService, err := menu.NewService(menu.NewRepository(conn), overrideRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create menu service", err)
		os.Exit(1)
	}

	dashboardService, err := dashboard.NewService(dashboard.NewRepository(conn))
	if err != nil {
		logg.Error(context.Background(), "failed to create dashboard service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			registry,
			catalogService,
			versionService,
			linkService,
			overrideService,
			syncService,
			menuService,
			dashboardService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
