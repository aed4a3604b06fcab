// Package cache keeps built dependence graphs in an LRU cache keyed by the
// content hash of their source, with msgpack persistence on disk.
package cache

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/l3aro/go-sdg/pkg/sdg"
)

// ErrNotFound is returned when a key is not in the cache.
var ErrNotFound = errors.New("cache: entry not found")

// formatVersion is written ahead of the entries; files of another version
// are ignored on load.
const formatVersion = 1

// Entry is one cached graph with metadata.
type Entry struct {
	Key        string        `msgpack:"key"`
	Name       string        `msgpack:"name"` // File the graph was built from
	Snapshot   *sdg.Snapshot `msgpack:"snapshot"`
	AccessedAt time.Time     `msgpack:"accessed_at"`
	CreatedAt  time.Time     `msgpack:"created_at"`
	Size       int           `msgpack:"size"` // Vertices plus edges
}

// LRUCache is an in-memory LRU cache of graph snapshots.
type LRUCache struct {
	mu      sync.RWMutex
	items   map[string]*listItem
	lru     *list // doubly-linked list (most recent at front)
	maxSize int
	onEvict func(key string, e Entry)
}

// listItem is an item in the doubly-linked list.
type listItem struct {
	Entry
	prev *listItem
	next *listItem
}

// list represents a doubly-linked list.
type list struct {
	head *listItem // most recently accessed
	tail *listItem // least recently accessed
	len  int
}

func (l *list) unlink(item *listItem) {
	if item.prev != nil {
		item.prev.next = item.next
	} else {
		l.head = item.next
	}
	if item.next != nil {
		item.next.prev = item.prev
	} else {
		l.tail = item.prev
	}
	item.prev, item.next = nil, nil
	l.len--
}

func (l *list) pushFront(item *listItem) {
	item.next = l.head
	item.prev = nil
	if l.head != nil {
		l.head.prev = item
	}
	l.head = item
	if l.tail == nil {
		l.tail = item
	}
	l.len++
}

func (l *list) moveToFront(item *listItem) {
	if item == l.head {
		return
	}
	l.unlink(item)
	l.pushFront(item)
}

// removeBack removes and returns the least recently used item.
func (l *list) removeBack() *listItem {
	item := l.tail
	if item != nil {
		l.unlink(item)
	}
	return item
}

// Options configures the LRU cache.
type Options struct {
	// MaxSize is the maximum number of graphs. 0 means unlimited.
	MaxSize int

	// OnEvict is called when an entry is evicted or deleted.
	OnEvict func(key string, e Entry)
}

// New creates an LRU cache with the given options.
func New(opts Options) *LRUCache {
	return &LRUCache{
		items:   make(map[string]*listItem),
		lru:     &list{},
		maxSize: opts.MaxSize,
		onEvict: opts.OnEvict,
	}
}

// Get returns the entry stored under key and marks it most recently used.
func (c *LRUCache) Get(key string) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, found := c.items[key]
	if !found {
		return Entry{}, false
	}
	item.AccessedAt = time.Now()
	c.lru.moveToFront(item)
	return item.Entry, true
}

// Set stores the snapshot of a graph built from name under key.
func (c *LRUCache) Set(key, name string, s *sdg.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	if item, exists := c.items[key]; exists {
		item.Name = name
		item.Snapshot = s
		item.Size = snapshotSize(s)
		item.AccessedAt = now
		c.lru.moveToFront(item)
		return
	}

	item := &listItem{Entry: Entry{
		Key:        key,
		Name:       name,
		Snapshot:   s,
		AccessedAt: now,
		CreatedAt:  now,
		Size:       snapshotSize(s),
	}}
	c.items[key] = item
	c.lru.pushFront(item)
	c.evictIfNeeded()
}

// Delete removes key from the cache.
func (c *LRUCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, found := c.items[key]
	if !found {
		return
	}
	c.lru.unlink(item)
	delete(c.items, key)
	if c.onEvict != nil {
		c.onEvict(key, item.Entry)
	}
}

// Clear removes all entries.
func (c *LRUCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*listItem)
	c.lru = &list{}
}

// Len returns the number of entries.
func (c *LRUCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Keys returns the keys from most to least recently used.
func (c *LRUCache) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]string, 0, len(c.items))
	for item := c.lru.head; item != nil; item = item.next {
		keys = append(keys, item.Key)
	}
	return keys
}

func (c *LRUCache) evictIfNeeded() {
	for c.maxSize > 0 && c.lru.len > c.maxSize {
		item := c.lru.removeBack()
		if item == nil {
			break
		}
		delete(c.items, item.Key)
		if c.onEvict != nil {
			c.onEvict(item.Key, item.Entry)
		}
	}
}

func snapshotSize(s *sdg.Snapshot) int {
	if s == nil {
		return 0
	}
	return len(s.Vertices) + len(s.Edges)
}

// cacheData is the on-disk layout.
type cacheData struct {
	Version int     `msgpack:"version"`
	Entries []Entry `msgpack:"entries"` // Most recently used first
}

// Save writes the cache to w using msgpack.
func (c *LRUCache) Save(w io.Writer) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	data := cacheData{Version: formatVersion, Entries: make([]Entry, 0, len(c.items))}
	for item := c.lru.head; item != nil; item = item.next {
		data.Entries = append(data.Entries, item.Entry)
	}
	return msgpack.NewEncoder(w).Encode(&data)
}

// Load replaces the cache contents with entries read from r. Entries beyond
// MaxSize are dropped, least recently used first.
func (c *LRUCache) Load(r io.Reader) error {
	var data cacheData
	if err := msgpack.NewDecoder(r).Decode(&data); err != nil {
		return fmt.Errorf("failed to decode cache: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*listItem)
	c.lru = &list{}
	if data.Version != formatVersion {
		return nil
	}
	for i := len(data.Entries) - 1; i >= 0; i-- {
		entry := data.Entries[i]
		item := &listItem{Entry: entry}
		c.items[entry.Key] = item
		c.lru.pushFront(item)
	}
	c.evictIfNeeded()
	return nil
}

// PersistToFile saves the cache to path, creating its directory. The file
// is replaced atomically.
func PersistToFile(c *LRUCache, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".cache-*")
	if err != nil {
		return fmt.Errorf("failed to create cache file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := c.Save(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}

// LoadFromFile loads the cache from path. A missing file is not an error.
func LoadFromFile(c *LRUCache, path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to open cache file: %w", err)
	}
	defer f.Close()

	return c.Load(f)
}
