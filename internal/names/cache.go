package names

import (
	"sync"

	"chatnotify/internal/domain"
)

// Cache maps user ids to display names. Entries are written opportunistically
// by UI collaborators, last write wins, and live until the session is torn
// down on logout.
type Cache struct {
	mu    sync.Mutex
	byID  map[int64]string
}

func New() *Cache {
	return &Cache{byID: make(map[int64]string)}
}

// Set records a display name. Empty names are ignored rather than shadowing
// a previously known one.
func (c *Cache) Set(userID int64, name string) {
	if userID <= 0 || name == "" {
		return
	}
	c.mu.Lock()
	c.byID[userID] = name
	c.mu.Unlock()
}

// Resolve returns the cached display name, or the placeholder for unknown
// senders.
func (c *Cache) Resolve(userID int64) string {
	c.mu.Lock()
	name, ok := c.byID[userID]
	c.mu.Unlock()
	if !ok {
		return domain.FallbackName(userID)
	}
	return name
}

// Clear drops every entry. Called on logout and session teardown.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.byID = make(map[int64]string)
	c.mu.Unlock()
}
