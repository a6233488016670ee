package api

import (
	"context"

	"github.com/neexbeast/spotfinder/internal/spot"
)

// SpotRepo defines the storage operations needed by handlers.
type SpotRepo interface {
	ListLocations(ctx context.Context) ([]spot.Location, error)
	GetLocation(ctx context.Context, id string) (*spot.Location, error)
	AddLocationRating(ctx context.Context, locationID string, rating spot.Rating) error
	ListEvents(ctx context.Context, locationID string) ([]spot.Event, error)
	GetEvent(ctx context.Context, id string) (*spot.Event, error)
	CreateEvent(ctx context.Context, ne spot.NewEvent, loc spot.Location) (*spot.Event, error)
	AddCheckIn(ctx context.Context, eventID, userID string) (bool, error)
	AddEventRating(ctx context.Context, eventID string, rating spot.Rating) error
}

// SpotCache defines the cache operations needed by handlers.
type SpotCache interface {
	GetLocations(ctx context.Context) ([]spot.Location, error)
	SetLocations(ctx context.Context, locations []spot.Location) error
	GetEvents(ctx context.Context, locationID string) ([]spot.Event, error)
	SetEvents(ctx context.Context, locationID string, events []spot.Event) error
	InvalidateLocations(ctx context.Context) error
	InvalidateEvents(ctx context.Context, locationID string) error
}
