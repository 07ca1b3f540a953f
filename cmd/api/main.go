package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/axeyQ/restropos-backend/api/routes"
	"github.com/axeyQ/restropos-backend/internal/invoices"
	"github.com/axeyQ/restropos-backend/internal/kots"
	"github.com/axeyQ/restropos-backend/internal/orders"
	"github.com/axeyQ/restropos-backend/internal/sequence"
	"github.com/axeyQ/restropos-backend/pkg/config"
	"github.com/axeyQ/restropos-backend/pkg/db"
	"github.com/axeyQ/restropos-backend/pkg/logger"
	"github.com/axeyQ/restropos-backend/pkg/metrics"
	"github.com/axeyQ/restropos-backend/pkg/migrate"
	"github.com/axeyQ/restropos-backend/pkg/redis"
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
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	engineMetrics := metrics.NewEngineMetrics(registry)

	taxRules, err := cfg.Tax.Rules()
	if err != nil {
		logg.Error(context.Background(), "failed to parse tax rules", err)
		os.Exit(1)
	}

	numbers := sequence.New(dbClient.DB())
	ordersRepo := orders.NewRepository(dbClient.DB())
	kotsRepo := kots.NewRepository(dbClient.DB())
	invoicesRepo := invoices.NewRepository(dbClient.DB())

	ordersSvc, err := orders.NewService(ordersRepo, dbClient, numbers, taxRules, engineMetrics, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create order service", err)
		os.Exit(1)
	}
	kotsSvc, err := kots.NewService(kotsRepo, ordersRepo, dbClient, numbers, engineMetrics, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create kot service", err)
		os.Exit(1)
	}
	invoicesSvc, err := invoices.NewService(invoicesRepo, ordersRepo, dbClient, numbers, cfg.Restaurant.Details(), engineMetrics, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create invoice service", err)
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
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, registry, ordersSvc, kotsSvc, invoicesSvc),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
