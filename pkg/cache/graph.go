package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/l3aro/go-sdg/pkg/sdg"
)

// ContentKey hashes source content together with the settings that change
// the graph built from it, so a changed file or option misses the cache.
func ContentKey(src []byte, settings ...string) string {
	h := sha256.New()
	h.Write(src)
	for _, s := range settings {
		h.Write([]byte{0})
		h.Write([]byte(s))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Stats reports cache usage.
type Stats struct {
	Length    int   `json:"length"`
	HitCount  int64 `json:"hit_count"`
	MissCount int64 `json:"miss_count"`
}

// GraphCache stores built graphs by content key and optionally persists
// them to a file.
type GraphCache struct {
	lru  *LRUCache
	path string

	mu        sync.Mutex
	hitCount  int64
	missCount int64
	dirty     bool
}

// NewGraphCache returns an in-memory cache holding up to size graphs.
func NewGraphCache(size int) *GraphCache {
	return &GraphCache{lru: New(Options{MaxSize: size})}
}

// Open returns a cache backed by the file at path, loading what is there.
func Open(path string, size int) (*GraphCache, error) {
	c := NewGraphCache(size)
	c.path = path
	if err := LoadFromFile(c.lru, path); err != nil {
		return nil, err
	}
	return c, nil
}

// Lookup rebuilds the graph stored under key. Reaching-definition sets are
// not cached; the returned graph has every edge, including data edges.
func (c *GraphCache) Lookup(key string) (*sdg.Graph, error) {
	e, ok := c.lru.Get(key)
	c.mu.Lock()
	if ok {
		c.hitCount++
	} else {
		c.missCount++
	}
	c.mu.Unlock()
	if !ok {
		return nil, ErrNotFound
	}

	g, err := sdg.FromSnapshot(e.Snapshot)
	if err != nil {
		c.lru.Delete(key)
		return nil, fmt.Errorf("restoring cached graph for %s: %w", e.Name, err)
	}
	return g, nil
}

// Store caches g under key.
func (c *GraphCache) Store(key, name string, g *sdg.Graph) {
	c.lru.Set(key, name, g.Snapshot())
	c.mu.Lock()
	c.dirty = true
	c.mu.Unlock()
}

// Len returns the number of cached graphs.
func (c *GraphCache) Len() int {
	return c.lru.Len()
}

// Stats returns the current usage counters.
func (c *GraphCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{Length: c.lru.Len(), HitCount: c.hitCount, MissCount: c.missCount}
}

// Flush writes the cache to its file if it changed since it was opened.
// In-memory caches have nothing to flush.
func (c *GraphCache) Flush() error {
	c.mu.Lock()
	dirty := c.dirty
	c.dirty = false
	c.mu.Unlock()

	if c.path == "" || !dirty {
		return nil
	}
	return PersistToFile(c.lru, c.path)
}
