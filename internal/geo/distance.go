// Package geo holds the great-circle distance used for proximity sorting and
// the event check-in geofence.
package geo

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const earthRadiusMeters = 6371000.0

// CheckInRadiusMeters is the maximum distance between a user and an event for a
// check-in to be accepted.
const CheckInRadiusMeters = 150.0

// ErrInvalidPoint is returned when coordinates cannot be parsed.
var ErrInvalidPoint = errors.New("invalid coordinates")

// Point is a position on the Earth's surface in decimal degrees.
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// DistanceMeters returns the haversine distance between a and b in meters.
// Out-of-range input is not rejected.
func DistanceMeters(a, b Point) float64 {
	dLat := degreesToRadians(b.Latitude - a.Latitude)
	dLng := degreesToRadians(b.Longitude - a.Longitude)

	rLat1 := degreesToRadians(a.Latitude)
	rLat2 := degreesToRadians(b.Latitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	// Rounding can push h just outside [0, 1] near antipodal points.
	h = math.Min(1, math.Max(0, h))
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusMeters * c
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// Geofence is the outcome of a check-in distance test.
type Geofence struct {
	DistanceMeters float64 `json:"distance_meters"`
	Allowed        bool    `json:"allowed"`
}

// WithinCheckInRadius reports whether a measured distance passes the check-in rule.
func WithinCheckInRadius(distanceMeters float64) bool {
	return distanceMeters <= CheckInRadiusMeters
}

// CheckGeofence measures the distance from user to target and applies the
// check-in rule.
func CheckGeofence(user, target Point) Geofence {
	d := DistanceMeters(user, target)
	return Geofence{DistanceMeters: d, Allowed: WithinCheckInRadius(d)}
}

// ParsePoint builds an optional point from raw latitude/longitude strings.
// Both empty yields nil, nil.
func ParsePoint(lat, lng string) (*Point, error) {
	lat, lng = strings.TrimSpace(lat), strings.TrimSpace(lng)
	if lat == "" && lng == "" {
		return nil, nil
	}
	if lat == "" || lng == "" {
		return nil, fmt.Errorf("%w: both lat and lng are required", ErrInvalidPoint)
	}

	la, err := strconv.ParseFloat(lat, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: lat %q", ErrInvalidPoint, lat)
	}
	ln, err := strconv.ParseFloat(lng, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: lng %q", ErrInvalidPoint, lng)
	}
	if math.IsNaN(la) || math.IsNaN(ln) || math.IsInf(la, 0) || math.IsInf(ln, 0) {
		return nil, fmt.Errorf("%w: non-finite value", ErrInvalidPoint)
	}

	return &Point{Latitude: la, Longitude: ln}, nil
}
