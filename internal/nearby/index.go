// Package nearby answers "which spots are within r meters of here" with an
// R-tree prefilter and an exact haversine check.
package nearby

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/dhconnelly/rtreego"

	"github.com/neexbeast/spotfinder/internal/geo"
	"github.com/neexbeast/spotfinder/internal/ranking"
)

const (
	dimensions  = 2
	minChildren = 4
	maxChildren = 16

	// pointTolerance is the half-size in degrees of the box stored per spot.
	pointTolerance = 1e-7

	metersPerDegreeLat = 111195.0
)

// ErrInvalidRadius is returned for a radius that is not a positive finite number.
var ErrInvalidRadius = errors.New("radius must be a positive number of meters")

type entry struct {
	id   string
	pos  geo.Point
	rect *rtreego.Rect
}

func (e *entry) Bounds() *rtreego.Rect {
	return e.rect
}

// Index is an immutable spatial index over spots that have a position.
type Index struct {
	tree  *rtreego.Rtree
	order map[string]int
}

// NewIndex indexes every spot with a position. Spots without one are skipped.
func NewIndex(spots []ranking.Spot) *Index {
	tree := rtreego.NewTree(dimensions, minChildren, maxChildren)
	order := make(map[string]int, len(spots))

	for i, s := range spots {
		if s.Position == nil {
			continue
		}
		p := rtreego.Point{s.Position.Latitude, s.Position.Longitude}
		tree.Insert(&entry{id: s.ID, pos: *s.Position, rect: p.ToRect(pointTolerance)})
		order[s.ID] = i
	}

	return &Index{tree: tree, order: order}
}

// Size returns the number of indexed spots.
func (x *Index) Size() int {
	return x.tree.Size()
}

// Within returns the ids of spots at most radiusMeters from center, in the
// order they were given to NewIndex.
func (x *Index) Within(center geo.Point, radiusMeters float64) ([]string, error) {
	if radiusMeters <= 0 || math.IsNaN(radiusMeters) || math.IsInf(radiusMeters, 0) {
		return nil, ErrInvalidRadius
	}

	dLat := radiusMeters / metersPerDegreeLat
	dLng := 360.0
	if c := math.Cos(center.Latitude * math.Pi / 180); c > 0.01 {
		dLng = dLat / c
	}

	seen := make(map[string]bool)
	var ids []string
	for _, span := range longitudeSpans(center.Longitude, dLng) {
		box, err := rtreego.NewRect(
			rtreego.Point{center.Latitude - dLat, span[0]},
			[]float64{2 * dLat, span[1] - span[0]},
		)
		if err != nil {
			return nil, fmt.Errorf("building search box: %w", err)
		}

		for _, obj := range x.tree.SearchIntersect(box) {
			e, ok := obj.(*entry)
			if !ok || seen[e.id] {
				continue
			}
			if geo.DistanceMeters(center, e.pos) <= radiusMeters {
				seen[e.id] = true
				ids = append(ids, e.id)
			}
		}
	}

	slices.SortFunc(ids, func(a, b string) int { return x.order[a] - x.order[b] })
	return ids, nil
}

// longitudeSpans splits [lng-d, lng+d] into at most two ranges inside
// [-180, 180], wrapping across the antimeridian.
func longitudeSpans(lng, d float64) [][2]float64 {
	lo, hi := lng-d, lng+d
	switch {
	case d >= 180:
		return [][2]float64{{-180, 180}}
	case lo < -180:
		return [][2]float64{{lo + 360, 180}, {-180, hi}}
	case hi > 180:
		return [][2]float64{{lo, 180}, {-180, hi - 360}}
	default:
		return [][2]float64{{lo, hi}}
	}
}

// Filter keeps the spots within radiusMeters of center, preserving input order.
func Filter(spots []ranking.Spot, center geo.Point, radiusMeters float64) ([]ranking.Spot, error) {
	ids, err := NewIndex(spots).Within(center, radiusMeters)
	if err != nil {
		return nil, err
	}

	keep := make(map[string]bool, len(ids))
	for _, id := range ids {
		keep[id] = true
	}

	out := make([]ranking.Spot, 0, len(ids))
	for _, s := range spots {
		if keep[s.ID] {
			out = append(out, s)
		}
	}
	return out, nil
}
