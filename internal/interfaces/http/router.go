package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/turtacn/patent2rag/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/patent2rag/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/patent2rag/internal/interfaces/http/handlers"
	"github.com/turtacn/patent2rag/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handler and middleware dependencies of the
// route tree. Nil members leave their routes unmounted.
type RouterConfig struct {
	ConvertHandler *handlers.ConvertHandler
	HealthHandler  *handlers.HealthHandler

	// RateLimiter guards /api/v1 when set.
	RateLimiter middleware.RateLimiter

	Logger           logging.Logger
	Metrics          *prometheus.Metrics
	MetricsCollector prometheus.MetricsCollector
}

// NewRouter builds the HTTP route tree.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLogging(cfg.Logger, cfg.Metrics, middleware.DefaultLoggingConfig()))

	if cfg.HealthHandler != nil {
		r.Get("/healthz", cfg.HealthHandler.Liveness)
		r.Get("/readyz", cfg.HealthHandler.Readiness)
	}
	if cfg.MetricsCollector != nil {
		r.Handle("/metrics", cfg.MetricsCollector.Handler())
	}

	r.Route("/api/v1", func(api chi.Router) {
		if cfg.RateLimiter != nil {
			api.Use(middleware.RateLimit(cfg.RateLimiter, nil))
		}
		registerConvertRoutes(api, cfg.ConvertHandler)
	})

	return r
}

func registerConvertRoutes(r chi.Router, h *handlers.ConvertHandler) {
	if h == nil {
		return
	}
	r.Route("/convert", func(cr chi.Router) {
		cr.Post("/", h.Convert)
		cr.Post("/jsonl", h.ConvertJSONL)
	})
}

//Personal.AI order the ending
