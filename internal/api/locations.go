package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/neexbeast/spotfinder/internal/metrics"
	"github.com/neexbeast/spotfinder/internal/ranking"
	"github.com/neexbeast/spotfinder/internal/spot"
)

// RankedLocation is a location in a ranked listing.
type RankedLocation struct {
	spot.Location
	DistanceMeters *float64 `json:"distance_meters,omitempty"`
}

// LocationList is the response body of GET /api/v1/locations.
type LocationList struct {
	Sort      ranking.Mode     `json:"sort"`
	Count     int              `json:"count"`
	Locations []RankedLocation `json:"locations"`
}

// BestLocation is the response body of GET /api/v1/locations/best.
type BestLocation struct {
	spot.Location
	Score float64 `json:"score"`
}

// LocationEvents is the response body of GET /api/v1/locations/{id}/events.
type LocationEvents struct {
	Location spot.Location `json:"location"`
	Sort     ranking.Mode  `json:"sort"`
	Events   []RankedEvent `json:"events"`
}

func defaultLocationMode(hasRef bool) ranking.Mode {
	if hasRef {
		return ranking.ByDistance
	}
	return ranking.ByCrowdedness
}

func rankedLocations(locations []spot.Location, q listQuery) ([]RankedLocation, error) {
	spots := make([]ranking.Spot, len(locations))
	for i, l := range locations {
		spots[i] = l.Rankable()
	}

	ranked, err := q.rank(spots)
	if err != nil {
		return nil, err
	}

	byID := spot.ByID(locations)
	out := make([]RankedLocation, len(ranked))
	for i, r := range ranked {
		out[i] = RankedLocation{Location: byID[r.ID], DistanceMeters: r.DistanceMeters}
	}
	return out, nil
}

// ListLocations handles GET /api/v1/locations.
func (h *Handlers) ListLocations(w http.ResponseWriter, r *http.Request) {
	q, err := parseListQuery(r, defaultLocationMode)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	locations, err := h.loadLocations(r.Context())
	if err != nil {
		h.log.Error("list locations failed", "err", err)
		writeInternal(w)
		return
	}

	ranked, err := rankedLocations(spot.Search(locations, q.search), q)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, LocationList{Sort: q.mode, Count: len(ranked), Locations: ranked})
}

// BestLocation handles GET /api/v1/locations/best.
func (h *Handlers) BestLocation(w http.ResponseWriter, r *http.Request) {
	locations, err := h.loadLocations(r.Context())
	if err != nil {
		h.log.Error("list locations failed", "err", err)
		writeInternal(w)
		return
	}

	candidates := spot.Search(locations, r.URL.Query().Get("q"))
	spots := make([]ranking.Spot, len(candidates))
	for i, l := range candidates {
		spots[i] = l.Rankable()
	}

	best, err := ranking.SelectBestSpot(spots)
	if errors.Is(err, ranking.ErrEmptyInput) {
		writeError(w, http.StatusNotFound, "no locations available")
		return
	}
	if err != nil {
		h.log.Error("select best spot failed", "err", err)
		writeInternal(w)
		return
	}

	writeJSON(w, http.StatusOK, BestLocation{
		Location: spot.ByID(candidates)[best.ID],
		Score:    ranking.Score(best),
	})
}

// GetLocation handles GET /api/v1/locations/{id}.
func (h *Handlers) GetLocation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	loc, err := h.repo.GetLocation(r.Context(), id)
	if err != nil {
		h.log.Error("db get location failed", "id", id, "err", err)
		writeInternal(w)
		return
	}
	if loc == nil {
		writeError(w, http.StatusNotFound, "location not found")
		return
	}

	writeJSON(w, http.StatusOK, loc)
}

// RateLocation handles POST /api/v1/locations/{id}/ratings.
func (h *Handlers) RateLocation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var rating spot.Rating
	if err := decodeJSON(w, r, &rating); err != nil {
		h.writeValidation(w, err)
		return
	}
	if err := rating.ValidateForLocation(); err != nil {
		h.writeValidation(w, err)
		return
	}

	loc, err := h.repo.GetLocation(r.Context(), id)
	if err != nil {
		h.log.Error("db get location failed", "id", id, "err", err)
		writeInternal(w)
		return
	}
	if loc == nil {
		writeError(w, http.StatusNotFound, "location not found")
		return
	}

	if err := h.repo.AddLocationRating(r.Context(), id, rating); err != nil {
		h.log.Error("add location rating failed", "id", id, "err", err)
		writeInternal(w)
		return
	}
	h.metrics.Ratings.WithLabelValues(metrics.TargetLocation).Inc()

	if err := h.cache.InvalidateLocations(r.Context()); err != nil {
		h.log.Warn("cache invalidate locations failed", "err", err)
	}

	writeJSON(w, http.StatusCreated, map[string]string{"status": "recorded"})
}

// LocationEvents handles GET /api/v1/locations/{id}/events. The location and
// its events are loaded concurrently.
func (h *Handlers) LocationEvents(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	q, err := parseListQuery(r, defaultEventMode)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var (
		loc    *spot.Location
		events []spot.Event
	)

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		loc, err = h.repo.GetLocation(ctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		events, err = h.loadEvents(ctx, id)
		return err
	})

	if err := g.Wait(); err != nil {
		h.log.Error("load location events failed", "id", id, "err", err)
		writeInternal(w)
		return
	}
	if loc == nil {
		writeError(w, http.StatusNotFound, "location not found")
		return
	}

	ranked, err := rankedEvents(events, q)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, LocationEvents{Location: *loc, Sort: q.mode, Events: ranked})
}
