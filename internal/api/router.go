package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/ndewijer/mf-folio-backend/internal/api/handlers"
	custommiddleware "github.com/ndewijer/mf-folio-backend/internal/api/middleware"
	"github.com/ndewijer/mf-folio-backend/internal/config"
	"github.com/ndewijer/mf-folio-backend/internal/metrics"
	"github.com/ndewijer/mf-folio-backend/internal/service"
)

// Services bundles what the router hands to its handlers.
// Sync may be nil when no local holding store is configured.
type Services struct {
	System    *service.SystemService
	Portfolio *service.PortfolioService
	Sync      *service.SyncService
}

// NewRouter creates and configures the HTTP router.
// gatherer backs GET /metrics; m receives the request metrics.
func NewRouter(
	svc Services,
	cfg *config.Config,
	logger zerolog.Logger,
	m *metrics.Metrics,
	gatherer prometheus.Gatherer,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.RequestLogger(logger, m))
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(svc.System)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		r.Route("/portfolio", func(r chi.Router) {
			portfolioHandler := handlers.NewPortfolioHandler(svc.Portfolio, svc.Sync)
			r.Post("/summary", portfolioHandler.Summarize)

			r.Route("/{userId}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUserIDMiddleware)
				r.Get("/summary", portfolioHandler.Summary)
				r.Get("/holdings", portfolioHandler.Holdings)
				r.Get("/sync", portfolioHandler.SyncStatus)
				r.Post("/sync", portfolioHandler.Sync)
			})
		})
	})

	return r
}
