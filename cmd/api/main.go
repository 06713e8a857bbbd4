package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cko-commerce/webhook-service/api/routes"
	"github.com/cko-commerce/webhook-service/internal/orders"
	"github.com/cko-commerce/webhook-service/internal/reconcile"
	"github.com/cko-commerce/webhook-service/internal/webhookqueue"
	"github.com/cko-commerce/webhook-service/pkg/checkoutcom"
	"github.com/cko-commerce/webhook-service/pkg/config"
	"github.com/cko-commerce/webhook-service/pkg/db"
	"github.com/cko-commerce/webhook-service/pkg/logger"
	"github.com/cko-commerce/webhook-service/pkg/metrics"
	"github.com/cko-commerce/webhook-service/pkg/migrate"
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

	gatewayClient, err := checkoutcom.NewClient(context.Background(), cfg.Checkout, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create gateway client", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	webhookMetrics := metrics.NewWebhookMetrics(registry)

	ordersRepo := orders.NewRepository(dbClient.DB())
	queueRepo := webhookqueue.NewRepository(dbClient.DB())

	reconciler := reconcile.NewService(ordersRepo, dbClient, gatewayClient, cfg.Statuses, logg)
	drainer := webhookqueue.NewDrainer(queueRepo, reconciler, webhookMetrics, logg)
	ordersService := orders.NewService(ordersRepo, drainer, logg)

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
			ordersService,
			reconciler,
			queueRepo,
			webhookMetrics,
			promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
