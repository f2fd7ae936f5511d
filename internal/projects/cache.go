package projects

import (
	"sync"
	"time"

	"github.com/ppiankov/profilespectre/internal/models"
)

// cacheEntry is a registry snapshot with expiration
type cacheEntry struct {
	projects  []models.Project
	expiresAt time.Time
}

// Cache holds the last fetched project registry for ttl.
type Cache struct {
	mu    sync.RWMutex
	entry *cacheEntry
	ttl   time.Duration
	now   func() time.Time
}

// NewCache creates a new cache with given TTL
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		ttl: ttl,
		now: time.Now,
	}
}

// Get returns the cached registry, or false when empty or expired.
func (c *Cache) Get() ([]models.Project, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.entry == nil {
		return nil, false
	}
	if c.now().After(c.entry.expiresAt) {
		return nil, false
	}
	return c.entry.projects, true
}

// Set stores a registry snapshot.
func (c *Cache) Set(projects []models.Project) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entry = &cacheEntry{
		projects:  projects,
		expiresAt: c.now().Add(c.ttl),
	}
}
