package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/axeyQ/restropos-backend/api/controllers"
	"github.com/axeyQ/restropos-backend/api/middleware"
	"github.com/axeyQ/restropos-backend/internal/invoices"
	"github.com/axeyQ/restropos-backend/internal/kots"
	"github.com/axeyQ/restropos-backend/internal/orders"
	"github.com/axeyQ/restropos-backend/pkg/config"
	"github.com/axeyQ/restropos-backend/pkg/db"
	"github.com/axeyQ/restropos-backend/pkg/logger"
	pkgredis "github.com/axeyQ/restropos-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *pkgredis.Client,
	registry *prometheus.Registry,
	ordersSvc orders.Service,
	kotsSvc kots.Service,
	invoicesSvc invoices.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Actor(),
	)

	var cache pkgredis.Pinger
	var store pkgredis.IdempotencyStore
	if redisClient != nil {
		cache = redisClient
		store = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbP, cache, logg))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Idempotency(store, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.OrderCreate(ordersSvc, logg))
			r.Get("/", controllers.OrderList(ordersSvc, logg))
			r.Route("/{orderId}", func(r chi.Router) {
				r.Get("/", controllers.OrderDetail(ordersSvc, logg))
				r.Patch("/", controllers.OrderUpdate(ordersSvc, logg))
				r.Post("/status", controllers.OrderStatus(ordersSvc, logg))
				r.Post("/payments", controllers.OrderPayment(ordersSvc, logg))
				r.Post("/invoice", controllers.InvoiceCreate(invoicesSvc, logg))
				r.Get("/invoice", controllers.InvoiceByOrder(invoicesSvc, logg))
			})
		})

		r.Route("/kots", func(r chi.Router) {
			r.Post("/", controllers.KOTCreate(kotsSvc, logg))
			r.Get("/", controllers.KOTList(kotsSvc, logg))
			r.Route("/{kotId}", func(r chi.Router) {
				r.Get("/", controllers.KOTDetail(kotsSvc, logg))
				r.Post("/status", controllers.KOTStatus(kotsSvc, logg))
				r.Post("/print", controllers.KOTPrint(kotsSvc, logg))
			})
		})

		r.Route("/invoices", func(r chi.Router) {
			r.Get("/", controllers.InvoiceList(invoicesSvc, logg))
			r.Route("/{invoiceId}", func(r chi.Router) {
				r.Get("/", controllers.InvoiceDetail(invoicesSvc, logg))
				r.Post("/print", controllers.InvoicePrint(invoicesSvc, logg))
				r.Post("/email", controllers.InvoiceEmail(invoicesSvc, logg))
			})
		})
	})

	return r
}
