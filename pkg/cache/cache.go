package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

type item struct {
	value     interface{}
	expiresAt time.Time
}

func (it *item) expired() bool {
	return time.Now().After(it.expiresAt)
}

// Cache is a thread-safe in-memory cache with TTL support
type Cache struct {
	items           map[string]*item
	mu              sync.RWMutex
	defaultTTL      time.Duration
	cleanupInterval time.Duration
	stopCleanup     chan struct{}
	stopOnce        sync.Once
}

// New creates a new cache with default TTL
func New(defaultTTL time.Duration) *Cache {
	c := &Cache{
		items:           make(map[string]*item),
		defaultTTL:      defaultTTL,
		cleanupInterval: defaultTTL / 2,
		stopCleanup:     make(chan struct{}),
	}
	go c.cleanup()
	return c
}

// Get retrieves a value from cache
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	it, exists := c.items[key]
	if !exists || it.expired() {
		return nil, false
	}
	return it.value, true
}

// Set stores a value in cache with default TTL
func (c *Cache) Set(key string, value interface{}) {
	c.SetWithTTL(key, value, c.defaultTTL)
}

// SetWithTTL stores a value in cache with custom TTL
func (c *Cache) SetWithTTL(key string, value interface{}, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = &item{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}
}

// Delete removes a key from cache
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

// Invalidate removes expired items, or all keys with the given prefix
func (c *Cache) Invalidate(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if prefix == "" {
		for key, it := range c.items {
			if it.expired() {
				delete(c.items, key)
			}
		}
		return
	}

	for key := range c.items {
		if strings.HasPrefix(key, prefix) {
			delete(c.items, key)
		}
	}
}

// GetOrSet retrieves from cache or calls fallback and caches its result
func (c *Cache) GetOrSet(ctx context.Context, key string, fallback func(context.Context) (interface{}, error)) (interface{}, error) {
	if value, found := c.Get(key); found {
		return value, nil
	}

	value, err := fallback(ctx)
	if err != nil {
		return nil, err
	}

	c.Set(key, value)
	return value, nil
}

// Size returns the number of live items in cache
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	n := 0
	for _, it := range c.items {
		if !it.expired() {
			n++
		}
	}
	return n
}

func (c *Cache) cleanup() {
	ticker := time.NewTicker(c.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.Invalidate("")
		case <-c.stopCleanup:
			return
		}
	}
}

// Stop stops the cleanup goroutine
func (c *Cache) Stop() {
	c.stopOnce.Do(func() { close(c.stopCleanup) })
}
