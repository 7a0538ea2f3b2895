package fetch

import (
	"encoding/json"
	"sync"
	"time"
)

type entry struct {
	data      json.RawMessage
	expiresAt time.Time // zero means no expiry
	timer     *time.Timer
}

// Cache is a process-wide response cache keyed by string. It has no size
// bound and no eviction beyond the optional per-entry expiry timer; it serves
// small read-mostly dashboards, not general-purpose caching.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	nowTime func() time.Time
}

// NewCache creates an empty Cache.
func NewCache() *Cache {
	return &Cache{
		entries: make(map[string]entry),
		nowTime: time.Now,
	}
}

// Get returns the cached payload for key, if present and not expired.
func (c *Cache) Get(key string) (json.RawMessage, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if !e.expiresAt.IsZero() && e.expiresAt.Before(c.nowTime()) {
		return nil, false
	}
	return e.data, true
}

// Put stores the payload under key, replacing any previous entry. A positive
// ttl schedules the entry's removal.
func (c *Cache) Put(key string, data json.RawMessage, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if prev, ok := c.entries[key]; ok && prev.timer != nil {
		prev.timer.Stop()
	}

	e := entry{data: data}
	if ttl > 0 {
		e.expiresAt = c.nowTime().Add(ttl)
		e.timer = time.AfterFunc(ttl, func() {
			c.Delete(key)
		})
	}
	c.entries[key] = e
}

// Delete evicts the entry for key. Deleting an absent key is a no-op.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok && e.timer != nil {
		e.timer.Stop()
	}
	delete(c.entries, key)
}

// Len returns the number of live entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
