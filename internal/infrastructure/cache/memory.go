package cache

import (
	"context"
	"sync"
	"time"

	"github.com/pantry/backend/internal/domain"
)

// cacheItem represents a single product in the cache with optional expiration
type cacheItem struct {
	Value      domain.ProductDescriptor
	Expiration time.Time // zero means never
	insertedAt uint64
}

// MemoryConfig bounds the in-memory cache. Zero values mean unbounded and never expiring.
type MemoryConfig struct {
	TTL        time.Duration
	MaxEntries int
}

// MemoryCache is a thread-safe in-process product cache.
// With a zero config every barcode is written once and kept for the lifetime of the process.
type MemoryCache struct {
	data       map[string]cacheItem
	mutex      sync.RWMutex
	ttl        time.Duration
	maxEntries int
	sequence   uint64
	stop       chan struct{}
	stopOnce   sync.Once
}

// NewMemoryCache creates a new in-memory product cache
func NewMemoryCache(config MemoryConfig) *MemoryCache {
	cache := &MemoryCache{
		data:       make(map[string]cacheItem),
		ttl:        config.TTL,
		maxEntries: config.MaxEntries,
		stop:       make(chan struct{}),
	}

	// Expiring entries are swept every 10 minutes; unbounded caches need no sweeper
	if config.TTL > 0 {
		go cache.cleanupExpired(10 * time.Minute)
	}

	return cache
}

// Get retrieves a product from the cache
func (c *MemoryCache) Get(ctx context.Context, barcode string) (*domain.ProductDescriptor, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	item, exists := c.data[barcode]
	if !exists || item.expired(time.Now()) {
		return nil, domain.ErrCacheMiss
	}

	value := item.Value
	return &value, nil
}

// Set stores a product. The cache keeps its own copy of the descriptor.
func (c *MemoryCache) Set(ctx context.Context, barcode string, descriptor *domain.ProductDescriptor) error {
	if descriptor == nil {
		return nil
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if _, exists := c.data[barcode]; !exists && c.maxEntries > 0 && len(c.data) >= c.maxEntries {
		c.evictOldest()
	}

	c.sequence++
	item := cacheItem{Value: *descriptor, insertedAt: c.sequence}
	if c.ttl > 0 {
		item.Expiration = time.Now().Add(c.ttl)
	}
	c.data[barcode] = item

	return nil
}

// Delete removes a barcode from the cache
func (c *MemoryCache) Delete(ctx context.Context, barcode string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.data, barcode)
	return nil
}

// evictOldest drops the earliest inserted entry. Caller holds the write lock.
func (c *MemoryCache) evictOldest() {
	var oldestKey string
	var oldest uint64
	for key, item := range c.data {
		if oldestKey == "" || item.insertedAt < oldest {
			oldestKey = key
			oldest = item.insertedAt
		}
	}
	delete(c.data, oldestKey)
}

func (i cacheItem) expired(now time.Time) bool {
	return !i.Expiration.IsZero() && now.After(i.Expiration)
}

// cleanupExpired removes expired entries from the cache periodically
func (c *MemoryCache) cleanupExpired(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.mutex.Lock()
			now := time.Now()
			for key, item := range c.data {
				if item.expired(now) {
					delete(c.data, key)
				}
			}
			c.mutex.Unlock()
		}
	}
}

// Size returns the current number of items in the cache (for debugging/monitoring)
func (c *MemoryCache) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.data)
}

// Clear removes all items from the cache
func (c *MemoryCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.data = make(map[string]cacheItem)
}

// Close stops the expiry sweeper
func (c *MemoryCache) Close() error {
	c.stopOnce.Do(func() { close(c.stop) })
	return nil
}
