package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/dialhub/callqueue/internal/api/handler"
	apimw "github.com/dialhub/callqueue/internal/api/middleware"
	"github.com/dialhub/callqueue/internal/metrics"
	"github.com/dialhub/callqueue/internal/ratelimiter"
	"github.com/dialhub/callqueue/internal/service"
)

// NewRouter wires the chi router, attaches all middleware, and registers
// every route. It is the single source of truth for the HTTP surface area.
func NewRouter(
	queueSvc *service.QueueService,
	validationSvc *service.ValidationService,
	limiter *ratelimiter.AgentLimiters,
	m *metrics.Metrics,
	reg prometheus.Gatherer,
	db handler.Pinger,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// --- global middleware (applied to every route) ---
	r.Use(chimw.Recoverer)          // recover panics, return 500
	r.Use(chimw.RealIP)             // trust X-Forwarded-For / X-Real-IP
	r.Use(chimw.RequestSize(1<<20)) // 1 MB max request body
	r.Use(apimw.CorrelationID)      // X-Correlation-ID inject / echo
	r.Use(apimw.RequestLogger(logger))

	// --- handler instances ---
	qh := handler.NewQueueHandler(queueSvc, limiter, m, logger)
	vh := handler.NewValidationHandler(validationSvc, logger)
	hh := handler.NewHealthHandler(db)

	// --- routes ---
	r.Get("/health", hh.Health)
	r.Get("/ready", hh.Ready)

	// Raw Prometheus scrape endpoint (for Prometheus server / Grafana)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/queue", func(r chi.Router) {
			r.Post("/populate", qh.Populate)
			r.Post("/pull", qh.Pull)
			r.Get("/", qh.List)
			r.Get("/stats", qh.Stats)
			r.Delete("/completed", qh.ClearCompleted)

			r.Route("/entries/{id}", func(r chi.Router) {
				r.Post("/progress", qh.MarkInProgress)
				r.Post("/complete", qh.MarkCompleted)
				r.Post("/remove", qh.Remove)
				r.Post("/release", qh.Release)
				r.Post("/boost", qh.Boost)
			})
		})

		r.Post("/validation-jobs", vh.Start)
		r.Get("/validation-jobs/{id}", vh.Get)
	})

	return r
}
