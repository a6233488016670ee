// Package spot defines the location and event records served by the API and
// their conversion to the ranking engine's shape.
package spot

import "strings"

// Search keeps locations whose name or building contains query, ignoring case.
func Search(locations []Location, query string) []Location {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return locations
	}

	out := make([]Location, 0, len(locations))
	for _, l := range locations {
		if strings.Contains(strings.ToLower(l.Name), q) || strings.Contains(strings.ToLower(l.Building), q) {
			out = append(out, l)
		}
	}
	return out
}

// ByID indexes locations by id.
func ByID(locations []Location) map[string]Location {
	m := make(map[string]Location, len(locations))
	for _, l := range locations {
		m[l.ID] = l
	}
	return m
}
