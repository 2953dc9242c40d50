package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/gsatlink/pos-backend/api/controllers"
	"github.com/gsatlink/pos-backend/api/routes"
	"github.com/gsatlink/pos-backend/internal/basket"
	"github.com/gsatlink/pos-backend/internal/catalog"
	"github.com/gsatlink/pos-backend/internal/gsat"
	"github.com/gsatlink/pos-backend/internal/scan"
	"github.com/gsatlink/pos-backend/pkg/config"
	"github.com/gsatlink/pos-backend/pkg/db"
	"github.com/gsatlink/pos-backend/pkg/logger"
	"github.com/gsatlink/pos-backend/pkg/metrics"
	"github.com/gsatlink/pos-backend/pkg/migrate"
	"github.com/gsatlink/pos-backend/pkg/redis"
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

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
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
	pipelineMetrics := metrics.NewPipelineMetrics(registry)

	catalogService, err := catalog.NewService(catalog.NewRepository(dbClient.DB()), redisClient, cfg.Catalog.SnapshotTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	salesRepo := basket.NewRepository(dbClient.DB())
	sessions := basket.NewManager(cfg.Basket.SessionTTL)
	basketService, err := basket.NewService(catalogService, sessions, salesRepo, dbClient, basket.NewLogCue(logg), pipelineMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create basket service", err)
		os.Exit(1)
	}

	gsatService, err := gsat.NewService(gsat.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create gsat service", err)
		os.Exit(1)
	}

	scanStream := scan.NewStream(cfg.Scan.StreamBuffer)
	pipeline := basket.NewPipeline(scanStream, basketService, logg, pipelineMetrics)

	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go pipeline.Run(runCtx)

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
		Handler: routes.NewRouter(routes.Deps{
			Config: cfg,
			Logger: logg,
			Checks: map[string]controllers.HealthCheck{
				"database": dbClient.Ping,
				"redis":    redisClient.Ping,
			},
			IdempStore: redisClient,
			Registry:   registry,
			CatalogSvc: catalogService,
			BasketSvc:  basketService,
			SalesRepo:  salesRepo,
			GSATSvc:    gsatService,
			ScanStream: scanStream,
		}),
	}

	go func() {
		<-runCtx.Done()
		scanStream.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "server shutdown failed", err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
