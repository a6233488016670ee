package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/neexbeast/spotfinder/internal/metrics"
	"github.com/neexbeast/spotfinder/internal/spot"
)

const maxBodyBytes = 1 << 20

// Handlers holds the dependencies for all HTTP handlers.
type Handlers struct {
	repo    SpotRepo
	cache   SpotCache
	metrics *metrics.Metrics
	log     *slog.Logger
}

// NewHandlers constructs Handlers with all required dependencies.
func NewHandlers(repo SpotRepo, cache SpotCache, m *metrics.Metrics, log *slog.Logger) *Handlers {
	return &Handlers{
		repo:    repo,
		cache:   cache,
		metrics: m,
		log:     log,
	}
}

// writeJSON encodes v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeInternal(w http.ResponseWriter) {
	writeError(w, http.StatusInternalServerError, "internal server error")
}

// decodeJSON reads a size-limited JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: malformed JSON body", spot.ErrInvalid)
	}
	return nil
}

// writeValidation maps a validation failure to 400 and anything else to 500.
func (h *Handlers) writeValidation(w http.ResponseWriter, err error) {
	if errors.Is(err, spot.ErrInvalid) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.log.Error("unexpected validation error", "err", err)
	writeInternal(w)
}

// loadLocations serves the location listing from cache, falling back to the
// database and repopulating the cache.
func (h *Handlers) loadLocations(ctx context.Context) ([]spot.Location, error) {
	cached, err := h.cache.GetLocations(ctx)
	if err != nil {
		h.log.Error("cache get locations failed", "err", err)
	}
	if cached != nil {
		return cached, nil
	}

	locations, err := h.repo.ListLocations(ctx)
	if err != nil {
		return nil, err
	}

	if err := h.cache.SetLocations(ctx, locations); err != nil {
		h.log.Warn("cache set locations failed after db hit", "err", err)
	}
	return locations, nil
}

// loadEvents is loadLocations for the events at locationID ("" for all).
func (h *Handlers) loadEvents(ctx context.Context, locationID string) ([]spot.Event, error) {
	cached, err := h.cache.GetEvents(ctx, locationID)
	if err != nil {
		h.log.Error("cache get events failed", "location_id", locationID, "err", err)
	}
	if cached != nil {
		return cached, nil
	}

	events, err := h.repo.ListEvents(ctx, locationID)
	if err != nil {
		return nil, err
	}

	if err := h.cache.SetEvents(ctx, locationID, events); err != nil {
		h.log.Warn("cache set events failed after db hit", "location_id", locationID, "err", err)
	}
	return events, nil
}

type pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandlerFunc returns an http.HandlerFunc that checks db and redis connectivity.
// It responds 200 when both answer and 503 otherwise.
func HealthHandlerFunc(db, redis pinger, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		status := http.StatusOK
		overall := "ok"
		dbStatus := "ok"
		redisStatus := "ok"

		if err := db.Ping(ctx); err != nil {
			log.Error("health check: db ping failed", "err", err)
			dbStatus = "error"
		}
		if err := redis.Ping(ctx); err != nil {
			log.Error("health check: redis ping failed", "err", err)
			redisStatus = "error"
		}
		if dbStatus != "ok" || redisStatus != "ok" {
			status = http.StatusServiceUnavailable
			overall = "degraded"
		}

		writeJSON(w, status, map[string]string{
			"status": overall,
			"db":     dbStatus,
			"redis":  redisStatus,
		})
	}
}
