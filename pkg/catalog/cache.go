package catalog

import (
	"container/list"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// DocumentCache is an LRU cache for rendered catalog pages. Rendering a
// page walks the link graph, so the API layer caches the output and the
// catalog invalidates on every manifest put.
type DocumentCache struct {
	capacity int
	ttl      time.Duration
	mu       sync.RWMutex
	cache    map[string]*cacheEntry
	lru      *list.List
	hits     uint64
	misses   uint64
}

// cacheEntry represents one cached rendered page
type cacheEntry struct {
	key       string
	document  []byte
	timestamp time.Time
	element   *list.Element
}

// NewDocumentCache creates a new document cache
func NewDocumentCache(capacity int, ttl time.Duration) *DocumentCache {
	return &DocumentCache{
		capacity: capacity,
		ttl:      ttl,
		cache:    make(map[string]*cacheEntry),
		lru:      list.New(),
	}
}

// Get retrieves a cached rendered page for a record kind and ID.
func (dc *DocumentCache) Get(kind, id string) ([]byte, bool) {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	key := dc.generateKey(kind, id)
	entry, exists := dc.cache[key]

	if !exists {
		dc.misses++
		return nil, false
	}

	if time.Since(entry.timestamp) > dc.ttl {
		dc.removeLocked(key)
		dc.misses++
		return nil, false
	}

	dc.lru.MoveToFront(entry.element)
	dc.hits++

	return entry.document, true
}

// Put stores a rendered page in the cache.
func (dc *DocumentCache) Put(kind, id string, document []byte) {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	key := dc.generateKey(kind, id)

	if entry, exists := dc.cache[key]; exists {
		entry.document = document
		entry.timestamp = time.Now()
		dc.lru.MoveToFront(entry.element)
		return
	}

	entry := &cacheEntry{
		key:       key,
		document:  document,
		timestamp: time.Now(),
	}

	entry.element = dc.lru.PushFront(entry)
	dc.cache[key] = entry

	// Evict the least recently used entry when over capacity.
	if dc.lru.Len() > dc.capacity {
		oldest := dc.lru.Back()
		if oldest != nil {
			oldestEntry := oldest.Value.(*cacheEntry)
			dc.removeLocked(oldestEntry.key)
		}
	}
}

// removeLocked removes an entry from the cache (must hold lock)
func (dc *DocumentCache) removeLocked(key string) {
	if entry, exists := dc.cache[key]; exists {
		dc.lru.Remove(entry.element)
		delete(dc.cache, key)
	}
}

// Clear clears all cache entries. Called after any manifest mutation since
// a put can change the rendered form of linked pages as well.
func (dc *DocumentCache) Clear() {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	dc.cache = make(map[string]*cacheEntry)
	dc.lru = list.New()
}

// Size returns the current cache size
func (dc *DocumentCache) Size() int {
	dc.mu.RLock()
	defer dc.mu.RUnlock()
	return len(dc.cache)
}

// Stats returns cache statistics
func (dc *DocumentCache) Stats() CacheStats {
	dc.mu.RLock()
	defer dc.mu.RUnlock()

	expired := 0
	for _, entry := range dc.cache {
		if time.Since(entry.timestamp) > dc.ttl {
			expired++
		}
	}

	return CacheStats{
		Size:     len(dc.cache),
		Capacity: dc.capacity,
		Expired:  expired,
		Hits:     dc.hits,
		Misses:   dc.misses,
	}
}

// HitRate returns the cache hit rate as a percentage.
func (dc *DocumentCache) HitRate() float64 {
	dc.mu.RLock()
	defer dc.mu.RUnlock()

	total := dc.hits + dc.misses
	if total == 0 {
		return 0.0
	}

	return float64(dc.hits) / float64(total) * 100.0
}

// CacheStats contains cache statistics
type CacheStats struct {
	Size     int
	Capacity int
	Expired  int
	Hits     uint64
	Misses   uint64
}

// generateKey generates a deterministic cache key for a record.
func (dc *DocumentCache) generateKey(kind, id string) string {
	data, _ := json.Marshal(map[string]interface{}{
		"kind": kind,
		"id":   id,
	})

	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash)
}
