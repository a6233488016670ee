package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/neexbeast/spotfinder/internal/spot"
)

const selectEvents = `
	SELECT e.id::text, e.name, e.description, e.location_id, l.name,
	       e.latitude, e.longitude,
	       (SELECT COUNT(*) FROM event_checkins c WHERE c.event_id = e.id),
	       AVG(r.overall)::float8, AVG(r.crowdedness)::float8, AVG(r.noise)::float8, AVG(r.fun)::float8,
	       COUNT(r.id), e.created_at
	FROM events e
	JOIN locations l ON l.id = e.location_id
	LEFT JOIN event_ratings r ON r.event_id = e.id
`

func scanEvent(row pgx.Row) (spot.Event, error) {
	var e spot.Event
	err := row.Scan(
		&e.ID,
		&e.Name,
		&e.Description,
		&e.LocationID,
		&e.LocationName,
		&e.Latitude,
		&e.Longitude,
		&e.CheckInCount,
		&e.AvgRating,
		&e.AvgCrowdedness,
		&e.AvgNoise,
		&e.AvgFun,
		&e.RatingCount,
		&e.CreatedAt,
	)
	return e, err
}

// ListEvents returns events newest first. An empty locationID lists events at
// every location.
func (r *Repository) ListEvents(ctx context.Context, locationID string) ([]spot.Event, error) {
	const q = selectEvents + `
	WHERE ($1 = '' OR e.location_id = $1)
	GROUP BY e.id, l.name
	ORDER BY e.created_at DESC
	`

	rows, err := r.q.Query(ctx, q, locationID)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer rows.Close()

	events := []spot.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning event row: %w", err)
		}
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating event rows: %w", err)
	}

	return events, nil
}

// GetEvent retrieves an event by id.
// Returns nil, nil when the event does not exist.
func (r *Repository) GetEvent(ctx context.Context, id string) (*spot.Event, error) {
	const q = selectEvents + `
	WHERE e.id::text = $1
	GROUP BY e.id, l.name
	`

	e, err := scanEvent(r.q.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying event %s: %w", id, err)
	}

	return &e, nil
}

// CreateEvent inserts an event at loc, copying the location's coordinates.
func (r *Repository) CreateEvent(ctx context.Context, ne spot.NewEvent, loc spot.Location) (*spot.Event, error) {
	const q = `
		INSERT INTO events (name, description, location_id, latitude, longitude)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id::text, created_at
	`

	e := spot.Event{
		Name:         ne.Name,
		Description:  ne.Description,
		LocationID:   loc.ID,
		LocationName: loc.Name,
		Latitude:     loc.Latitude,
		Longitude:    loc.Longitude,
	}

	err := r.q.QueryRow(ctx, q, e.Name, e.Description, e.LocationID, e.Latitude, e.Longitude).
		Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("inserting event at location %s: %w", loc.ID, err)
	}

	return &e, nil
}

// AddCheckIn records that userID checked into eventID. It reports false when
// the user had already checked in.
func (r *Repository) AddCheckIn(ctx context.Context, eventID, userID string) (bool, error) {
	const q = `
		INSERT INTO event_checkins (event_id, user_id)
		VALUES ($1::uuid, $2)
		ON CONFLICT (event_id, user_id) DO NOTHING
	`

	tag, err := r.q.Exec(ctx, q, eventID, userID)
	if err != nil {
		return false, fmt.Errorf("inserting check-in for event %s: %w", eventID, err)
	}

	return tag.RowsAffected() == 1, nil
}

// AddEventRating stores one rating submission for an event.
func (r *Repository) AddEventRating(ctx context.Context, eventID string, rating spot.Rating) error {
	const q = `
		INSERT INTO event_ratings (event_id, overall, crowdedness, noise, fun)
		VALUES ($1::uuid, $2, $3, $4, $5)
	`

	if _, err := r.q.Exec(ctx, q, eventID, rating.Overall, rating.Crowdedness, rating.Noise, rating.Fun); err != nil {
		return fmt.Errorf("inserting rating for event %s: %w", eventID, err)
	}

	return nil
}
