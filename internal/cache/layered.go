package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/ppiankov/groundcheck/internal/model"
)

// LayeredCache keeps responses in process memory (go-cache) with an optional
// JSON disk layer behind it that survives restarts.
type LayeredCache struct {
	memory    *gocache.Cache
	disk      *DiskCache
	memoryTTL time.Duration
}

// NewLayeredCache creates a cache with a memory layer and, when diskDir is
// set, a disk layer behind it
func NewLayeredCache(memoryTTL time.Duration, diskDir string, diskTTL time.Duration) *LayeredCache {
	c := &LayeredCache{
		memory:    gocache.New(memoryTTL, 10*time.Minute),
		memoryTTL: memoryTTL,
	}
	if diskDir != "" {
		c.disk = NewDiskCache(diskDir, diskTTL)
	}
	return c
}

// FromConfig builds the cache described by cfg, or nil when caching is off
func FromConfig(cfg model.CacheConfig) Cache {
	if !cfg.Enabled {
		return nil
	}
	return NewLayeredCache(cfg.MemoryTTL, cfg.DiskDir, cfg.DiskTTL)
}

func (c *LayeredCache) Get(key string) ([]byte, bool) {
	if val, found := c.memory.Get(key); found {
		data, ok := val.([]byte)
		return data, ok
	}
	if c.disk == nil {
		return nil, false
	}

	if val, found := c.disk.Get(key); found {
		// Promote
		c.memory.Set(key, val, c.memoryTTL)
		return val, true
	}
	return nil, false
}

// Set writes through to every layer. A ttl of 0 uses the memory default;
// the disk layer keeps its own TTL.
func (c *LayeredCache) Set(key string, value []byte, ttl time.Duration) error {
	c.memory.Set(key, value, ttl)
	if c.disk == nil {
		return nil
	}
	return c.disk.Set(key, value, 0)
}

func (c *LayeredCache) Delete(key string) error {
	c.memory.Delete(key)
	if c.disk == nil {
		return nil
	}
	return c.disk.Delete(key)
}

func (c *LayeredCache) Clear() error {
	c.memory.Flush()
	if c.disk == nil {
		return nil
	}
	return c.disk.Clear()
}
