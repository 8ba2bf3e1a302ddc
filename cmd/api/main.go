package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/bufferstock-backend/api/routes"
	"github.com/angelmondragon/bufferstock-backend/internal/auth"
	"github.com/angelmondragon/bufferstock-backend/internal/catalog"
	"github.com/angelmondragon/bufferstock-backend/internal/inventory"
	"github.com/angelmondragon/bufferstock-backend/internal/ledger"
	"github.com/angelmondragon/bufferstock-backend/internal/reports"
	"github.com/angelmondragon/bufferstock-backend/internal/stock"
	"github.com/angelmondragon/bufferstock-backend/pkg/config"
	"github.com/angelmondragon/bufferstock-backend/pkg/db"
	"github.com/angelmondragon/bufferstock-backend/pkg/logger"
	"github.com/angelmondragon/bufferstock-backend/pkg/metrics"
	"github.com/angelmondragon/bufferstock-backend/pkg/migrate"
	"github.com/angelmondragon/bufferstock-backend/pkg/redis"
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

	partsRepo := inventory.NewRepository(dbClient.DB())
	movementsRepo := ledger.NewRepository(dbClient.DB())

	authService, err := auth.NewService(auth.ServiceParams{
		Operators: cfg.Operators,
		JWT:       cfg.JWT,
		Logger:    logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	catalogService, err := catalog.NewService(dbClient, partsRepo, movementsRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	if cfg.FeatureFlags.SeedDemo && cfg.App.IsDev() {
		created, err := catalogService.Seed(context.Background(), catalog.DemoParts)
		if err != nil {
			logg.Error(context.Background(), "failed to seed demo catalog", err)
			os.Exit(1)
		}
		ctx := logg.WithField(context.Background(), "parts_created", created)
		logg.Info(ctx, "demo catalog seeded")
	}

	stockMetrics := metrics.NewStockMetrics(prometheus.DefaultRegisterer)
	stockService, err := stock.NewService(dbClient, partsRepo, movementsRepo, cfg.Stock, stockMetrics, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create stock service", err)
		os.Exit(1)
	}

	ledgerService, err := ledger.NewService(movementsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create ledger service", err)
		os.Exit(1)
	}

	reportsService, err := reports.NewService(partsRepo, movementsRepo, cfg.Reports)
	if err != nil {
		logg.Error(context.Background(), "failed to create reports service", err)
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
			authService,
			catalogService,
			stockService,
			ledgerService,
			reportsService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
