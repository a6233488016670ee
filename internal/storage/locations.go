package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/neexbeast/spotfinder/internal/ranking"
	"github.com/neexbeast/spotfinder/internal/spot"
)

const selectLocations = `
	SELECT l.id, l.name, l.building, l.floor, l.address, l.kind,
	       l.latitude, l.longitude, l.occupancy_percent, l.noise_level, l.available_seats,
	       AVG(r.crowdedness)::float8, AVG(r.noise)::float8, COUNT(r.id), l.updated_at
	FROM locations l
	LEFT JOIN location_ratings r ON r.location_id = l.id
`

func scanLocation(row pgx.Row) (spot.Location, error) {
	var l spot.Location
	var kind, noise string

	err := row.Scan(
		&l.ID,
		&l.Name,
		&l.Building,
		&l.Floor,
		&l.Address,
		&kind,
		&l.Latitude,
		&l.Longitude,
		&l.OccupancyPercent,
		&noise,
		&l.AvailableSeats,
		&l.AvgCrowdedness,
		&l.AvgNoise,
		&l.RatingCount,
		&l.UpdatedAt,
	)
	if err != nil {
		return spot.Location{}, err
	}

	l.Kind = spot.Kind(kind)
	l.NoiseLevel = ranking.NoiseCategory(noise)
	return l, nil
}

// ListLocations returns every location with its rating averages.
func (r *Repository) ListLocations(ctx context.Context) ([]spot.Location, error) {
	const q = selectLocations + `
	GROUP BY l.id
	ORDER BY l.created_at, l.id
	`

	rows, err := r.q.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("querying locations: %w", err)
	}
	defer rows.Close()

	locations := []spot.Location{}
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning location row: %w", err)
		}
		locations = append(locations, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating location rows: %w", err)
	}

	return locations, nil
}

// GetLocation retrieves a location by id.
// Returns nil, nil when the location does not exist.
func (r *Repository) GetLocation(ctx context.Context, id string) (*spot.Location, error) {
	const q = selectLocations + `
	WHERE l.id = $1
	GROUP BY l.id
	`

	l, err := scanLocation(r.q.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying location %s: %w", id, err)
	}

	return &l, nil
}

// UpsertLocation inserts or updates the static attributes of a location.
func (r *Repository) UpsertLocation(ctx context.Context, l spot.Location) error {
	const q = `
		INSERT INTO locations (id, name, building, floor, address, kind, latitude, longitude,
		                       occupancy_percent, noise_level, available_seats, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
		ON CONFLICT (id) DO UPDATE
		SET name              = EXCLUDED.name,
		    building          = EXCLUDED.building,
		    floor             = EXCLUDED.floor,
		    address           = EXCLUDED.address,
		    kind              = EXCLUDED.kind,
		    latitude          = EXCLUDED.latitude,
		    longitude         = EXCLUDED.longitude,
		    occupancy_percent = EXCLUDED.occupancy_percent,
		    noise_level       = EXCLUDED.noise_level,
		    available_seats   = EXCLUDED.available_seats,
		    updated_at        = EXCLUDED.updated_at
	`

	_, err := r.q.Exec(ctx, q,
		l.ID, l.Name, l.Building, l.Floor, l.Address, string(l.Kind),
		l.Latitude, l.Longitude, l.OccupancyPercent, string(l.NoiseLevel), l.AvailableSeats,
	)
	if err != nil {
		return fmt.Errorf("upserting location %s: %w", l.ID, err)
	}

	return nil
}

// AddLocationRating stores one crowdedness/noise submission for a location.
func (r *Repository) AddLocationRating(ctx context.Context, locationID string, rating spot.Rating) error {
	const q = `
		INSERT INTO location_ratings (location_id, crowdedness, noise)
		VALUES ($1, $2, $3)
	`

	if _, err := r.q.Exec(ctx, q, locationID, rating.Crowdedness, rating.Noise); err != nil {
		return fmt.Errorf("inserting rating for location %s: %w", locationID, err)
	}

	return nil
}
