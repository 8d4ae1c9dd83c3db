package catalog

import (
	"os"
	"sync"
	"time"

	"coursebot/internal/clock"
)

// ExistenceChecker reports whether a file is present
type ExistenceChecker interface {
	Exists(path string) bool
}

// StatChecker checks the filesystem on every call
type StatChecker struct{}

// Exists stats the path and requires a regular file
func (StatChecker) Exists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

type existenceEntry struct {
	exists    bool
	checkedAt time.Time
}

// CachedChecker remembers results of another checker for a TTL
type CachedChecker struct {
	next  ExistenceChecker
	ttl   time.Duration
	clock clock.Clock

	mu      sync.Mutex
	entries map[string]existenceEntry
}

// NewCachedChecker wraps next with a TTL cache
func NewCachedChecker(next ExistenceChecker, ttl time.Duration, clk clock.Clock) *CachedChecker {
	return &CachedChecker{
		next:    next,
		ttl:     ttl,
		clock:   clk,
		entries: make(map[string]existenceEntry),
	}
}

// Exists returns a cached result younger than the TTL or checks again
func (c *CachedChecker) Exists(path string) bool {
	now := c.clock.Now()

	c.mu.Lock()
	entry, ok := c.entries[path]
	c.mu.Unlock()

	if ok && now.Sub(entry.checkedAt) < c.ttl {
		return entry.exists
	}

	exists := c.next.Exists(path)

	c.mu.Lock()
	c.entries[path] = existenceEntry{exists: exists, checkedAt: now}
	c.mu.Unlock()

	return exists
}

// Purge drops every cached result
func (c *CachedChecker) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]existenceEntry)
}
