package spot

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/neexbeast/spotfinder/internal/geo"
	"github.com/neexbeast/spotfinder/internal/ranking"
)

// ErrInvalid marks a request payload that failed validation.
var ErrInvalid = errors.New("invalid input")

// Kind tells the UI how to present a location. It plays no part in ranking.
type Kind string

const (
	KindStudy  Kind = "study"
	KindDining Kind = "dining"
)

// Location is a study or dining spot on campus.
type Location struct {
	ID               string                `json:"id"`
	Name             string                `json:"name"`
	Building         string                `json:"building,omitempty"`
	Floor            string                `json:"floor,omitempty"`
	Address          string                `json:"address,omitempty"`
	Kind             Kind                  `json:"kind"`
	Latitude         *float64              `json:"latitude,omitempty"`
	Longitude        *float64              `json:"longitude,omitempty"`
	OccupancyPercent *float64              `json:"occupancy_percent,omitempty"`
	NoiseLevel       ranking.NoiseCategory `json:"noise_level,omitempty"`
	AvailableSeats   *int                  `json:"available_seats,omitempty"`
	AvgCrowdedness   *float64              `json:"avg_crowdedness,omitempty"`
	AvgNoise         *float64              `json:"avg_noise,omitempty"`
	RatingCount      int                   `json:"rating_count"`
	UpdatedAt        time.Time             `json:"updated_at"`
}

// Validate checks the static attributes written by UpsertLocation.
func (l Location) Validate() error {
	switch {
	case strings.TrimSpace(l.ID) == "":
		return fmt.Errorf("%w: location id is required", ErrInvalid)
	case strings.TrimSpace(l.Name) == "":
		return fmt.Errorf("%w: location %s has no name", ErrInvalid, l.ID)
	case l.Kind != KindStudy && l.Kind != KindDining:
		return fmt.Errorf("%w: location %s has unknown kind %q", ErrInvalid, l.ID, l.Kind)
	case !l.NoiseLevel.Valid():
		return fmt.Errorf("%w: location %s has unknown noise level %q", ErrInvalid, l.ID, l.NoiseLevel)
	case (l.Latitude == nil) != (l.Longitude == nil):
		return fmt.Errorf("%w: location %s needs both latitude and longitude", ErrInvalid, l.ID)
	case l.OccupancyPercent != nil && (*l.OccupancyPercent < 0 || *l.OccupancyPercent > 100):
		return fmt.Errorf("%w: location %s occupancy must be between 0 and 100", ErrInvalid, l.ID)
	case l.AvailableSeats != nil && *l.AvailableSeats < 0:
		return fmt.Errorf("%w: location %s has negative available seats", ErrInvalid, l.ID)
	}
	return nil
}

// Position returns the location's coordinates, or nil when either is unknown.
func (l Location) Position() *geo.Point {
	return position(l.Latitude, l.Longitude)
}

// Rankable converts the location for the ranking engine.
func (l Location) Rankable() ranking.Spot {
	return ranking.Spot{
		ID:                l.ID,
		Position:          l.Position(),
		OccupancyPercent:  l.OccupancyPercent,
		NoiseCategory:     l.NoiseLevel,
		CrowdednessRating: l.AvgCrowdedness,
		NoiseRating:       l.AvgNoise,
	}
}

// Event is a user-created happening at a location.
type Event struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	LocationID     string    `json:"location_id"`
	LocationName   string    `json:"location_name"`
	Latitude       *float64  `json:"latitude,omitempty"`
	Longitude      *float64  `json:"longitude,omitempty"`
	CheckInCount   int       `json:"check_in_count"`
	AvgRating      *float64  `json:"avg_rating,omitempty"`
	AvgCrowdedness *float64  `json:"avg_crowdedness,omitempty"`
	AvgNoise       *float64  `json:"avg_noise,omitempty"`
	AvgFun         *float64  `json:"avg_fun,omitempty"`
	RatingCount    int       `json:"rating_count"`
	CreatedAt      time.Time `json:"created_at"`
}

// Position returns the event's coordinates, or nil when either is unknown.
func (e Event) Position() *geo.Point {
	return position(e.Latitude, e.Longitude)
}

// Rankable converts the event for the ranking engine. Check-ins count as
// popularity.
func (e Event) Rankable() ranking.Spot {
	popularity := e.CheckInCount
	return ranking.Spot{
		ID:                e.ID,
		Position:          e.Position(),
		CrowdednessRating: e.AvgCrowdedness,
		NoiseRating:       e.AvgNoise,
		Popularity:        &popularity,
	}
}

func position(lat, lng *float64) *geo.Point {
	if lat == nil || lng == nil {
		return nil
	}
	return &geo.Point{Latitude: *lat, Longitude: *lng}
}

// NewEvent is the payload for creating an event.
type NewEvent struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	LocationID  string `json:"location_id"`
}

// Validate trims the fields in place and checks that none are empty.
func (e *NewEvent) Validate() error {
	e.Name = strings.TrimSpace(e.Name)
	e.Description = strings.TrimSpace(e.Description)
	e.LocationID = strings.TrimSpace(e.LocationID)

	switch {
	case e.Name == "":
		return fmt.Errorf("%w: name is required", ErrInvalid)
	case e.Description == "":
		return fmt.Errorf("%w: description is required", ErrInvalid)
	case e.LocationID == "":
		return fmt.Errorf("%w: location_id is required", ErrInvalid)
	}
	return nil
}

const (
	minRating = 1
	maxRating = 10
)

// Rating is a single user submission. Unset fields were skipped by the user.
type Rating struct {
	Overall     *int `json:"overall,omitempty"`
	Crowdedness *int `json:"crowdedness,omitempty"`
	Noise       *int `json:"noise,omitempty"`
	Fun         *int `json:"fun,omitempty"`
}

// Validate checks that at least one value is set and all values are in range.
func (r Rating) Validate() error {
	fields := []struct {
		name string
		v    *int
	}{
		{"overall", r.Overall},
		{"crowdedness", r.Crowdedness},
		{"noise", r.Noise},
		{"fun", r.Fun},
	}

	set := 0
	for _, fl := range fields {
		if fl.v == nil {
			continue
		}
		if *fl.v < minRating || *fl.v > maxRating {
			return fmt.Errorf("%w: %s must be between %d and %d", ErrInvalid, fl.name, minRating, maxRating)
		}
		set++
	}
	if set == 0 {
		return fmt.Errorf("%w: at least one rating is required", ErrInvalid)
	}
	return nil
}

// ValidateForLocation applies Validate and rejects event-only fields.
func (r Rating) ValidateForLocation() error {
	if r.Overall != nil || r.Fun != nil {
		return fmt.Errorf("%w: locations accept crowdedness and noise ratings only", ErrInvalid)
	}
	return r.Validate()
}

// CheckIn is a request to check into an event from the user's current position.
type CheckIn struct {
	UserID    string   `json:"user_id"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// Validate requires a user and a full position.
func (c *CheckIn) Validate() error {
	c.UserID = strings.TrimSpace(c.UserID)
	if c.UserID == "" {
		return fmt.Errorf("%w: user_id is required", ErrInvalid)
	}
	if c.Latitude == nil || c.Longitude == nil {
		return fmt.Errorf("%w: latitude and longitude are required", ErrInvalid)
	}
	return nil
}

// Position returns the caller's position. Call Validate first.
func (c CheckIn) Position() geo.Point {
	return geo.Point{Latitude: *c.Latitude, Longitude: *c.Longitude}
}
