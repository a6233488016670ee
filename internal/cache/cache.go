package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/neexbeast/spotfinder/internal/spot"
)

// DefaultTTL keeps listings fresh enough for ratings to show up quickly.
const DefaultTTL = 30 * time.Second

const (
	locationsKey   = "spots:locations"
	allEventsScope = "all"
)

// Cache wraps a Redis client and stores JSON snapshots of location and event listings.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache constructs a Cache. A non-positive ttl falls back to DefaultTTL.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{client: client, ttl: ttl}
}

// eventsKey returns the Redis key for the events at locationID ("" for all).
// Location ids are case-sensitive and keep their case in the key.
func eventsKey(locationID string) string {
	id := strings.TrimSpace(locationID)
	if id == "" {
		return "spots:events:" + allEventsScope
	}
	return "spots:events:loc:" + id
}

// getJSON reports whether key existed and decoded into dst.
func (c *Cache) getJSON(ctx context.Context, key string, dst any) (bool, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("cache get %s: %w", key, err)
	}

	if err := json.Unmarshal(val, dst); err != nil {
		return false, fmt.Errorf("unmarshaling cached %s: %w", key, err)
	}
	return true, nil
}

func (c *Cache) setJSON(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", key, err)
	}

	if err := c.client.Set(ctx, key, b, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

// GetLocations returns the cached location listing.
// Returns nil, nil on a cache miss (not an error).
func (c *Cache) GetLocations(ctx context.Context) ([]spot.Location, error) {
	locations := []spot.Location{}
	ok, err := c.getJSON(ctx, locationsKey, &locations)
	if err != nil || !ok {
		return nil, err
	}
	return locations, nil
}

// SetLocations stores the location listing. A nil slice is not cached.
func (c *Cache) SetLocations(ctx context.Context, locations []spot.Location) error {
	if locations == nil {
		return nil
	}
	return c.setJSON(ctx, locationsKey, locations)
}

// GetEvents returns the cached events at locationID ("" for all events).
// Returns nil, nil on a cache miss.
func (c *Cache) GetEvents(ctx context.Context, locationID string) ([]spot.Event, error) {
	events := []spot.Event{}
	ok, err := c.getJSON(ctx, eventsKey(locationID), &events)
	if err != nil || !ok {
		return nil, err
	}
	return events, nil
}

// SetEvents stores the events at locationID. A nil slice is not cached.
func (c *Cache) SetEvents(ctx context.Context, locationID string, events []spot.Event) error {
	if events == nil {
		return nil
	}
	return c.setJSON(ctx, eventsKey(locationID), events)
}

// InvalidateLocations drops the location listing.
func (c *Cache) InvalidateLocations(ctx context.Context) error {
	if err := c.client.Del(ctx, locationsKey).Err(); err != nil {
		return fmt.Errorf("cache delete %s: %w", locationsKey, err)
	}
	return nil
}

// InvalidateEvents drops the events cached for locationID and the all-events listing.
func (c *Cache) InvalidateEvents(ctx context.Context, locationID string) error {
	keys := []string{eventsKey("")}
	if strings.TrimSpace(locationID) != "" {
		keys = append(keys, eventsKey(locationID))
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cache delete events for %q: %w", locationID, err)
	}
	return nil
}
