package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/yourusername/courtside/internal/config"
	"github.com/yourusername/courtside/internal/metrics"
)

// NewRouter wires middleware, scan routes, probes and the metrics endpoint
func NewRouter(handler *Handler, cfg *config.Config) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(time.Duration(cfg.Server.RequestTimeoutSeconds) * time.Second))

	origins := cfg.Server.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Route("/api/wnba/prop-scanner", func(r chi.Router) {
		r.Get("/scan-all", handler.ScanAll)
		r.Get("/player/{id}", handler.ScanPlayer)
		r.Get("/game/{id}", handler.ScanGame)
		r.Get("/live", handler.Live)
	})

	r.Get("/healthz", handler.Healthz)
	r.Get("/readyz", handler.Readyz)

	if cfg.Metrics.Enabled {
		r.Handle(cfg.Metrics.Path, metrics.Handler())
	}

	return r
}
