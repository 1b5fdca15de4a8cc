package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iho/goinvoice/internal/adapter/http/handler"
	"github.com/iho/goinvoice/internal/adapter/http/middleware"
	"github.com/iho/goinvoice/internal/infrastructure/auth"
	"github.com/iho/goinvoice/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	InvoiceHandler     *handler.InvoiceHandler
	InstallmentHandler *handler.InstallmentHandler
	PaymentHandler     *handler.PaymentHandler
	HealthHandler      *handler.HealthHandler
	IdempotencyStore   usecase.IdempotencyStore
	RateLimiter        *middleware.RateLimiter
	JWTManager         *auth.JWTManager
	Logging            *middleware.LoggingMiddleware
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recovery)
	r.Use(middleware.Metrics)

	if cfg.Logging != nil {
		r.Use(cfg.Logging.Wrap)
	}

	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health and metrics endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.JWTManager != nil {
			r.Use(middleware.AuthMiddleware(cfg.JWTManager))
		}

		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Invoices
		r.Route("/invoices", func(r chi.Router) {
			r.Post("/", cfg.InvoiceHandler.Create)
			r.Get("/", cfg.InvoiceHandler.List)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", cfg.InvoiceHandler.Get)
				r.Patch("/", cfg.InvoiceHandler.Update)
				r.Delete("/", cfg.InvoiceHandler.Delete)
				r.Get("/summary", cfg.InvoiceHandler.GetSummary)
				r.Post("/archive", cfg.InvoiceHandler.Archive)
				r.Post("/unarchive", cfg.InvoiceHandler.Unarchive)

				// Installments
				r.Route("/installments", func(r chi.Router) {
					r.Post("/", cfg.InstallmentHandler.Add)

					r.Route("/{installmentID}", func(r chi.Router) {
						r.Get("/", cfg.InstallmentHandler.Get)
						r.Patch("/", cfg.InstallmentHandler.Update)
						r.Delete("/", cfg.InstallmentHandler.Remove)

						// Payments
						r.Route("/payments", func(r chi.Router) {
							r.Post("/", cfg.PaymentHandler.Record)
							r.Patch("/{paymentID}", cfg.PaymentHandler.Update)
							r.Delete("/{paymentID}", cfg.PaymentHandler.Remove)
						})
					})
				})
			})
		})
	})

	return r
}
