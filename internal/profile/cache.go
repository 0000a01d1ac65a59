// ABOUTME: In-memory profile cache mirrored onto durable storage
// ABOUTME: A single mutex covers every read and the write-through to SQLite
package profile

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/harper/trigrambot/internal/logging"
	"github.com/harper/trigrambot/internal/models"
)

// Store is the durable side of the cache
type Store interface {
	LoadAll(ctx context.Context) (map[string]models.Profile, error)
	InsertIfAbsent(ctx context.Context, p models.Profile) (models.Profile, error)
	Update(ctx context.Context, p models.Profile) error
}

// Cache holds every known profile in memory. Callers never observe the map
// and the durable table disagree: writes reach storage before the lock is released.
type Cache struct {
	store        Store
	defaultTable string
	log          *log.Logger

	mu       sync.Mutex
	profiles map[string]models.Profile
}

// New loads all stored profiles once and returns the cache
func New(ctx context.Context, store Store, defaultTable string, logger *log.Logger) (*Cache, error) {
	all, err := store.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading profiles: %w", err)
	}
	c := &Cache{
		store:        store,
		defaultTable: defaultTable,
		log:          logging.Component(logger, "profile"),
		profiles:     all,
	}
	c.log.Debug("profiles loaded", "count", len(all))
	return c, nil
}

// GetOrCreate returns the cached profile for userID, creating and persisting
// the default profile on first contact.
func (c *Cache) GetOrCreate(ctx context.Context, userID string) (models.Profile, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if p, ok := c.profiles[userID]; ok {
		return p, nil
	}

	stored, err := c.store.InsertIfAbsent(ctx, models.NewProfile(userID, c.defaultTable))
	if err != nil {
		return models.Profile{}, fmt.Errorf("creating profile %s: %w", userID, err)
	}
	c.profiles[userID] = stored
	c.log.Info("new profile", "user", userID, "table", stored.ActiveTable)
	return stored, nil
}

// Get returns the cached profile without creating one
func (c *Cache) Get(userID string) (models.Profile, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.profiles[userID]
	return p, ok
}

// Update replaces the profile for p.UserID in memory and in storage.
// Unknown ids are ignored and report false.
func (c *Cache) Update(ctx context.Context, p models.Profile) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.profiles[p.UserID]; !ok {
		return false, nil
	}
	if err := c.store.Update(ctx, p); err != nil {
		return false, fmt.Errorf("updating profile %s: %w", p.UserID, err)
	}
	c.profiles[p.UserID] = p
	return true, nil
}

// Len returns how many profiles are cached
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.profiles)
}
