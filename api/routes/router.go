package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cko-commerce/webhook-service/api/controllers"
	ordercontrollers "github.com/cko-commerce/webhook-service/api/controllers/orders"
	webhookcontrollers "github.com/cko-commerce/webhook-service/api/controllers/webhooks"
	"github.com/cko-commerce/webhook-service/api/middleware"
	"github.com/cko-commerce/webhook-service/internal/orders"
	"github.com/cko-commerce/webhook-service/pkg/config"
	"github.com/cko-commerce/webhook-service/pkg/logger"
	"github.com/cko-commerce/webhook-service/pkg/metrics"
)

type dbPinger interface {
	Ping(ctx context.Context) error
}

// NewRouter assembles the HTTP surface: gateway webhook ingestion, the
// orders API, health probes, and optionally the metrics endpoint.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	db dbPinger,
	ordersService orders.Service,
	reconciler webhookcontrollers.ReconcileService,
	queue webhookcontrollers.WebhookQueue,
	webhookMetrics *metrics.WebhookMetrics,
	metricsHandler http.Handler,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, db))
	})

	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/webhooks/checkout", webhookcontrollers.CheckoutWebhook(reconciler, queue, &cfg.Checkout, webhookMetrics, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", ordercontrollers.Create(ordersService, logg))
			r.Get("/{orderID}", ordercontrollers.Get(ordersService, logg))
			r.Post("/{orderID}/payment", ordercontrollers.AttachPayment(ordersService, logg))
		})
	})

	return r
}
