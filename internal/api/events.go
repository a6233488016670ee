package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/neexbeast/spotfinder/internal/geo"
	"github.com/neexbeast/spotfinder/internal/metrics"
	"github.com/neexbeast/spotfinder/internal/ranking"
	"github.com/neexbeast/spotfinder/internal/spot"
)

// RankedEvent is an event in a ranked listing.
type RankedEvent struct {
	spot.Event
	DistanceMeters *float64 `json:"distance_meters,omitempty"`
}

// EventList is the response body of GET /api/v1/events.
type EventList struct {
	Sort   ranking.Mode  `json:"sort"`
	Count  int           `json:"count"`
	Events []RankedEvent `json:"events"`
}

// CheckInResult is the response body of a check-in attempt, accepted or not.
type CheckInResult struct {
	CheckedIn      bool    `json:"checked_in"`
	DistanceMeters float64 `json:"distance_meters"`
	RadiusMeters   float64 `json:"radius_meters"`
	Error          string  `json:"error,omitempty"`
}

func defaultEventMode(bool) ranking.Mode {
	return ranking.ByPopularity
}

func rankedEvents(events []spot.Event, q listQuery) ([]RankedEvent, error) {
	spots := make([]ranking.Spot, len(events))
	byID := make(map[string]spot.Event, len(events))
	for i, e := range events {
		spots[i] = e.Rankable()
		byID[e.ID] = e
	}

	ranked, err := q.rank(spots)
	if err != nil {
		return nil, err
	}

	out := make([]RankedEvent, len(ranked))
	for i, r := range ranked {
		out[i] = RankedEvent{Event: byID[r.ID], DistanceMeters: r.DistanceMeters}
	}
	return out, nil
}

// ListEvents handles GET /api/v1/events.
func (h *Handlers) ListEvents(w http.ResponseWriter, r *http.Request) {
	q, err := parseListQuery(r, defaultEventMode)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	events, err := h.loadEvents(r.Context(), "")
	if err != nil {
		h.log.Error("list events failed", "err", err)
		writeInternal(w)
		return
	}

	ranked, err := rankedEvents(events, q)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, EventList{Sort: q.mode, Count: len(ranked), Events: ranked})
}

// CreateEvent handles POST /api/v1/events.
func (h *Handlers) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var ne spot.NewEvent
	if err := decodeJSON(w, r, &ne); err != nil {
		h.writeValidation(w, err)
		return
	}
	if err := ne.Validate(); err != nil {
		h.writeValidation(w, err)
		return
	}

	loc, err := h.repo.GetLocation(r.Context(), ne.LocationID)
	if err != nil {
		h.log.Error("db get location failed", "id", ne.LocationID, "err", err)
		writeInternal(w)
		return
	}
	if loc == nil {
		writeError(w, http.StatusNotFound, "location not found")
		return
	}

	event, err := h.repo.CreateEvent(r.Context(), ne, *loc)
	if err != nil {
		h.log.Error("create event failed", "location_id", loc.ID, "err", err)
		writeInternal(w)
		return
	}
	h.metrics.EventsCreated.Inc()

	if err := h.cache.InvalidateEvents(r.Context(), loc.ID); err != nil {
		h.log.Warn("cache invalidate events failed", "location_id", loc.ID, "err", err)
	}

	h.log.Info("event created", "event_id", event.ID, "location_id", loc.ID)
	writeJSON(w, http.StatusCreated, event)
}

// CheckIn handles POST /api/v1/events/{id}/checkin. The caller must be within
// geo.CheckInRadiusMeters of the event.
func (h *Handlers) CheckIn(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req spot.CheckIn
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeValidation(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		h.writeValidation(w, err)
		return
	}

	event, err := h.repo.GetEvent(r.Context(), id)
	if err != nil {
		h.log.Error("db get event failed", "id", id, "err", err)
		writeInternal(w)
		return
	}
	if event == nil {
		writeError(w, http.StatusNotFound, "event not found")
		return
	}

	target := event.Position()
	if target == nil {
		writeError(w, http.StatusUnprocessableEntity, "event has no location coordinates")
		return
	}

	fence := geo.CheckGeofence(req.Position(), *target)
	if !fence.Allowed {
		h.metrics.CheckIns.WithLabelValues(metrics.OutcomeTooFar).Inc()
		writeJSON(w, http.StatusForbidden, CheckInResult{
			DistanceMeters: fence.DistanceMeters,
			RadiusMeters:   geo.CheckInRadiusMeters,
			Error:          fmt.Sprintf("you must be within %.0f m of the event to check in", geo.CheckInRadiusMeters),
		})
		return
	}

	inserted, err := h.repo.AddCheckIn(r.Context(), id, req.UserID)
	if err != nil {
		h.log.Error("add check-in failed", "id", id, "err", err)
		writeInternal(w)
		return
	}
	if !inserted {
		h.metrics.CheckIns.WithLabelValues(metrics.OutcomeDuplicate).Inc()
		writeJSON(w, http.StatusConflict, CheckInResult{
			CheckedIn:      true,
			DistanceMeters: fence.DistanceMeters,
			RadiusMeters:   geo.CheckInRadiusMeters,
			Error:          "already checked in",
		})
		return
	}
	h.metrics.CheckIns.WithLabelValues(metrics.OutcomeAccepted).Inc()

	if err := h.cache.InvalidateEvents(r.Context(), event.LocationID); err != nil {
		h.log.Warn("cache invalidate events failed", "location_id", event.LocationID, "err", err)
	}

	writeJSON(w, http.StatusOK, CheckInResult{
		CheckedIn:      true,
		DistanceMeters: fence.DistanceMeters,
		RadiusMeters:   geo.CheckInRadiusMeters,
	})
}

// RateEvent handles POST /api/v1/events/{id}/ratings.
func (h *Handlers) RateEvent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var rating spot.Rating
	if err := decodeJSON(w, r, &rating); err != nil {
		h.writeValidation(w, err)
		return
	}
	if err := rating.Validate(); err != nil {
		h.writeValidation(w, err)
		return
	}

	event, err := h.repo.GetEvent(r.Context(), id)
	if err != nil {
		h.log.Error("db get event failed", "id", id, "err", err)
		writeInternal(w)
		return
	}
	if event == nil {
		writeError(w, http.StatusNotFound, "event not found")
		return
	}

	if err := h.repo.AddEventRating(r.Context(), id, rating); err != nil {
		h.log.Error("add event rating failed", "id", id, "err", err)
		writeInternal(w)
		return
	}
	h.metrics.Ratings.WithLabelValues(metrics.TargetEvent).Inc()

	if err := h.cache.InvalidateEvents(r.Context(), event.LocationID); err != nil {
		h.log.Warn("cache invalidate events failed", "location_id", event.LocationID, "err", err)
	}

	writeJSON(w, http.StatusCreated, map[string]string{"status": "recorded"})
}
