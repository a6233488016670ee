package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultRateLimit is the per-IP request budget per minute.
const DefaultRateLimit = 60

// NewRouter builds and returns the Chi router with all routes configured.
// Rate limiting is applied globally per IP; a non-positive limit uses
// DefaultRateLimit.
func NewRouter(handlers *Handlers, rateLimit int, db, redis pinger, gatherer prometheus.Gatherer, log *slog.Logger) *chi.Mux {
	if rateLimit <= 0 {
		rateLimit = DefaultRateLimit
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(RequestLogger(log, handlers.metrics))
	r.Use(middleware.Recoverer)
	r.Use(httprate.LimitByIP(rateLimit, time.Minute))

	r.Get("/api/v1/health", HealthHandlerFunc(db, redis, log))
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/v1/locations", func(r chi.Router) {
		r.Get("/", handlers.ListLocations)
		r.Get("/best", handlers.BestLocation)
		r.Get("/{id}", handlers.GetLocation)
		r.Post("/{id}/ratings", handlers.RateLocation)
		r.Get("/{id}/events", handlers.LocationEvents)
	})

	r.Route("/api/v1/events", func(r chi.Router) {
		r.Get("/", handlers.ListEvents)
		r.Post("/", handlers.CreateEvent)
		r.Post("/{id}/checkin", handlers.CheckIn)
		r.Post("/{id}/ratings", handlers.RateEvent)
	})

	return r
}

// Ensure chi.Mux implements http.Handler.
var _ http.Handler = (*chi.Mux)(nil)
