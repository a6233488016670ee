// Package ranking orders locations and events by proximity, crowdedness, noise
// or popularity, and picks the single best study spot.
//
// All functions are pure: they never mutate their input and are safe for
// concurrent use.
package ranking

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/neexbeast/spotfinder/internal/geo"
)

// ErrEmptyInput is returned by SelectBestSpot when there are no candidates.
var ErrEmptyInput = errors.New("no spots to choose from")

// ErrUnknownMode is returned by ParseMode for an unrecognised sort key.
var ErrUnknownMode = errors.New("unknown sort mode")

// NoiseCategory is the static noise level of a location. The zero value means
// the category is unknown.
type NoiseCategory string

const (
	NoiseSilent   NoiseCategory = "silent"
	NoiseQuiet    NoiseCategory = "quiet"
	NoiseModerate NoiseCategory = "moderate"
	NoiseLoud     NoiseCategory = "loud"
)

// Valid reports whether c is one of the known categories or empty.
func (c NoiseCategory) Valid() bool {
	switch c {
	case "", NoiseSilent, NoiseQuiet, NoiseModerate, NoiseLoud:
		return true
	}
	return false
}

// Spot is the shape shared by locations and events for ranking purposes.
// Nil pointers mark attributes that are not known.
type Spot struct {
	ID                string
	Position          *geo.Point
	OccupancyPercent  *float64
	NoiseCategory     NoiseCategory
	CrowdednessRating *float64
	NoiseRating       *float64
	Popularity        *int
}

// Ranked is a spot together with its distance from the reference point.
// DistanceMeters is nil when either side has no position.
type Ranked struct {
	Spot
	DistanceMeters *float64
}

// Mode selects the ordering applied by Rank.
type Mode string

const (
	ByDistance    Mode = "distance"
	ByCrowdedness Mode = "crowdedness"
	ByNoise       Mode = "noise"
	ByPopularity  Mode = "popularity"
)

// ParseMode converts a query-string value into a Mode. An empty value yields
// def.
func ParseMode(s string, def Mode) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return def, nil
	case ByDistance, ByCrowdedness, ByNoise, ByPopularity:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// crowdedness and noise fall back to 0 when unrated, so unrated spots sort
// together with the least crowded / quietest ones.
func (s Spot) crowdedness() float64 {
	if s.CrowdednessRating == nil {
		return 0
	}
	return *s.CrowdednessRating
}

func (s Spot) noise() float64 {
	if s.NoiseRating == nil {
		return 0
	}
	return *s.NoiseRating
}

func (s Spot) popularity() int {
	if s.Popularity == nil {
		return 0
	}
	return *s.Popularity
}

// WithDistances pairs each spot with its distance from ref, keeping input order.
// A nil ref leaves every distance undefined.
func WithDistances(spots []Spot, ref *geo.Point) []Ranked {
	out := make([]Ranked, len(spots))
	for i, s := range spots {
		out[i] = Ranked{Spot: s}
		if ref != nil && s.Position != nil {
			d := geo.DistanceMeters(*ref, *s.Position)
			out[i].DistanceMeters = &d
		}
	}
	return out
}

// RankByDistance orders spots nearest first. Spots without a distance keep their
// relative order after all spots that have one.
func RankByDistance(spots []Spot, ref *geo.Point) []Ranked {
	out := WithDistances(spots, ref)
	slices.SortStableFunc(out, compareDistance)
	return out
}

// RankByCrowdedness orders spots least crowded first.
func RankByCrowdedness(spots []Spot) []Spot {
	return sortedBy(spots, func(a, b Spot) int { return cmp.Compare(a.crowdedness(), b.crowdedness()) })
}

// RankByNoise orders spots quietest first.
func RankByNoise(spots []Spot) []Spot {
	return sortedBy(spots, func(a, b Spot) int { return cmp.Compare(a.noise(), b.noise()) })
}

// RankByPopularity orders spots by descending check-in count.
func RankByPopularity(spots []Spot) []Spot {
	return sortedBy(spots, func(a, b Spot) int { return cmp.Compare(b.popularity(), a.popularity()) })
}

// Rank attaches distances from ref and orders by mode. Modes other than
// ByDistance use the same keys as the RankBy functions.
func Rank(mode Mode, spots []Spot, ref *geo.Point) []Ranked {
	out := WithDistances(spots, ref)

	var compare func(a, b Ranked) int
	switch mode {
	case ByDistance:
		compare = compareDistance
	case ByCrowdedness:
		compare = func(a, b Ranked) int { return cmp.Compare(a.crowdedness(), b.crowdedness()) }
	case ByNoise:
		compare = func(a, b Ranked) int { return cmp.Compare(a.noise(), b.noise()) }
	case ByPopularity:
		compare = func(a, b Ranked) int { return cmp.Compare(b.popularity(), a.popularity()) }
	default:
		return out
	}

	slices.SortStableFunc(out, compare)
	return out
}

func compareDistance(a, b Ranked) int {
	switch {
	case a.DistanceMeters == nil && b.DistanceMeters == nil:
		return 0
	case a.DistanceMeters == nil:
		return 1
	case b.DistanceMeters == nil:
		return -1
	}
	return cmp.Compare(*a.DistanceMeters, *b.DistanceMeters)
}

func sortedBy(spots []Spot, compare func(a, b Spot) int) []Spot {
	out := slices.Clone(spots)
	if out == nil {
		out = []Spot{}
	}
	slices.SortStableFunc(out, compare)
	return out
}
