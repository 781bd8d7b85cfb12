package cache

import (
	"context"
	"sync"
	"time"

	"github.com/mkarlsven/weather-console/internal/models"
)

// Cache stores suggestion lists keyed by normalized query prefix. Keystroke
// bursts repeat the same prefixes, so a short TTL saves most geocoding round
// trips without ever outliving the session. Weather snapshots are deliberately
// not cached: unit toggle and retry must reach upstream every time.
type Cache interface {
	Get(ctx context.Context, key string) ([]models.Suggestion, bool, error)
	Set(ctx context.Context, key string, value []models.Suggestion, ttl time.Duration) error
}

// InMemory implements Cache with a mutex-guarded map and TTL expiration.
// Expired entries are removed on access.
type InMemory struct {
	mu   sync.Mutex
	data map[string]entry
}

type entry struct {
	value     []models.Suggestion
	expiresAt time.Time
}

// NewInMemory returns an empty in-memory suggestion cache.
func NewInMemory() *InMemory {
	return &InMemory{data: make(map[string]entry)}
}

// Get returns the cached list for key if present and not expired.
// (data, true, nil) on hit, (nil, false, nil) on miss or expiration.
func (c *InMemory) Get(ctx context.Context, key string) ([]models.Suggestion, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.data[key]
	if !ok {
		return nil, false, nil
	}
	if time.Now().After(e.expiresAt) {
		delete(c.data, key)
		return nil, false, nil
	}
	return e.value, true, nil
}

// Set stores the list under key for ttl. An empty list is a valid value:
// caching "no results" suppresses refetching hopeless prefixes.
func (c *InMemory) Set(ctx context.Context, key string, value []models.Suggestion, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = entry{value: value, expiresAt: time.Now().Add(ttl)}
	return nil
}
