package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/neexbeast/spotfinder/internal/geo"
	"github.com/neexbeast/spotfinder/internal/nearby"
	"github.com/neexbeast/spotfinder/internal/ranking"
)

var errBadQuery = errors.New("invalid query")

// listQuery is the common shape of the ranked listing endpoints.
type listQuery struct {
	mode   ranking.Mode
	ref    *geo.Point
	radius *float64
	search string
}

// parseListQuery reads sort, lat, lng, radius and q. When sort is absent the
// mode comes from def, which is told whether a reference point was given.
func parseListQuery(r *http.Request, def func(hasRef bool) ranking.Mode) (listQuery, error) {
	v := r.URL.Query()

	ref, err := geo.ParsePoint(v.Get("lat"), v.Get("lng"))
	if err != nil {
		return listQuery{}, fmt.Errorf("%w: %w", errBadQuery, err)
	}

	mode, err := ranking.ParseMode(v.Get("sort"), def(ref != nil))
	if err != nil {
		return listQuery{}, fmt.Errorf("%w: %w", errBadQuery, err)
	}

	q := listQuery{mode: mode, ref: ref, search: strings.TrimSpace(v.Get("q"))}

	if raw := strings.TrimSpace(v.Get("radius")); raw != "" {
		if ref == nil {
			return listQuery{}, fmt.Errorf("%w: radius requires lat and lng", errBadQuery)
		}
		radius, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return listQuery{}, fmt.Errorf("%w: radius must be a number", errBadQuery)
		}
		q.radius = &radius
	}

	return q, nil
}

// rank applies the optional radius filter and orders spots by the query mode.
func (q listQuery) rank(spots []ranking.Spot) ([]ranking.Ranked, error) {
	if q.radius != nil {
		within, err := nearby.Filter(spots, *q.ref, *q.radius)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", errBadQuery, err)
		}
		spots = within
	}
	return ranking.Rank(q.mode, spots, q.ref), nil
}
