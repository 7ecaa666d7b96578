package matchcache

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

var _ Cache = (*MemoryCache)(nil)

// MemoryCache is an in-memory implementation of Cache.
// Suitable for testing and single-process deployments.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	closed  atomic.Bool

	cleanupTicker *time.Ticker
	done          chan struct{}
}

type memoryEntry struct {
	value   []byte
	expires time.Time
}

// MemoryConfig configures the in-memory cache.
type MemoryConfig struct {
	// TTL is how long entries live. Zero means entries never expire.
	TTL time.Duration
}

// NewMemoryCache creates a new in-memory result cache.
func NewMemoryCache(cfg MemoryConfig) *MemoryCache {
	c := &MemoryCache{
		entries:       make(map[string]memoryEntry),
		ttl:           cfg.TTL,
		cleanupTicker: time.NewTicker(time.Second),
		done:          make(chan struct{}),
	}
	go c.cleanupLoop()
	return c
}

func (c *MemoryCache) cleanupLoop() {
	for {
		select {
		case <-c.cleanupTicker.C:
			c.cleanupExpired()
		case <-c.done:
			return
		}
	}
}

func (c *MemoryCache) cleanupExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, e := range c.entries {
		if !e.expires.IsZero() && now.After(e.expires) {
			delete(c.entries, key)
		}
	}
}

// Get returns the cached value for a key, if present and unexpired.
func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if c.closed.Load() || ctx.Err() != nil {
		return nil, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if !e.expires.IsZero() && time.Now().After(e.expires) {
		return nil, false
	}

	val := make([]byte, len(e.value))
	copy(val, e.value)
	return val, true
}

// Set stores a value under a key with the configured TTL.
func (c *MemoryCache) Set(ctx context.Context, key string, value []byte) {
	if c.closed.Load() || ctx.Err() != nil {
		return
	}

	val := make([]byte, len(value))
	copy(val, value)

	var expires time.Time
	if c.ttl > 0 {
		expires = time.Now().Add(c.ttl)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = memoryEntry{value: val, expires: expires}
}

// Invalidate removes every compatibility entry whose key references the
// agent ID.
func (c *MemoryCache) Invalidate(ctx context.Context, agentID string) {
	if c.closed.Load() || agentID == "" || ctx.Err() != nil {
		return
	}

	prefix := Key(CompatPrefix) + ":"

	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) && strings.Contains(key, agentID) {
			delete(c.entries, key)
		}
	}
}

// Close stops the cleanup goroutine and drops all entries.
func (c *MemoryCache) Close() error {
	if c.closed.Swap(true) {
		return nil
	}

	close(c.done)
	c.cleanupTicker.Stop()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = nil
	return nil
}

// Len reports the number of live entries. Intended for tests.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := time.Now()
	n := 0
	for _, e := range c.entries {
		if e.expires.IsZero() || now.Before(e.expires) {
			n++
		}
	}
	return n
}
