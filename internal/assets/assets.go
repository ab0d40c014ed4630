// Package assets builds core models on demand and caches them by recipe.
package assets

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/boneblend/internal/config"
	"github.com/Faultbox/boneblend/internal/engine/rig"
	"github.com/Faultbox/boneblend/internal/logger"
)

// Manager hands out procedural rigs, building each distinct recipe once.
// Returned rigs are shared: callers that compress or scale one must not
// do so while other goroutines use it.
type Manager struct {
	cache *Cache
	mu    sync.Mutex // Serialises builds so a recipe is built only once
}

// NewManager creates a new asset manager.
func NewManager() *Manager {
	return &Manager{
		cache: NewCache(),
	}
}

// recipeKey identifies a rig configuration.
func recipeKey(cfg config.RigConfig) string {
	return fmt.Sprintf("rig/%d/%g/%d/%g/%d", cfg.Bones, cfg.BoneLength, cfg.Keyframes, cfg.Duration, cfg.RingSegments)
}

// Rig returns the rig for cfg, building it on first use.
func (m *Manager) Rig(cfg config.RigConfig) (*rig.Rig, error) {
	key := recipeKey(cfg)
	if r, ok := m.cache.Get(key); ok {
		return r, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Another caller may have built it while we waited
	if r, ok := m.cache.Peek(key); ok {
		return r, nil
	}

	r, err := rig.Build(cfg)
	if err != nil {
		return nil, fmt.Errorf("building %s: %w", key, err)
	}
	m.cache.Set(key, r)
	logger.Debug("rig cached", zap.String("key", key))
	return r, nil
}

// Close drops every cached rig.
func (m *Manager) Close() {
	m.cache.Clear()
}

// Stats returns cache statistics.
func (m *Manager) Stats() (hits, misses int) {
	return m.cache.Stats()
}

// Cache is a simple in-memory cache of built rigs.
type Cache struct {
	data map[string]*rig.Rig
	mu   sync.RWMutex

	// Stats
	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string]*rig.Rig),
	}
}

// Get retrieves an item from cache, counting the hit or miss.
func (c *Cache) Get(key string) (*rig.Rig, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	r, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return r, ok
}

// Peek retrieves an item without touching the statistics.
func (c *Cache) Peek(key string) (*rig.Rig, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.data[key]
	return r, ok
}

// Set stores an item in cache.
func (c *Cache) Set(key string, r *rig.Rig) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = r
}

// Len returns the number of cached items.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

// Clear clears the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string]*rig.Rig)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}
