// Package cache provides caching utilities for database prepared statements.
package cache

import (
	"database/sql"
	"sync"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	// DefaultStmtCacheCapacity is the default maximum number of cached prepared statements.
	DefaultStmtCacheCapacity = 1000
)

// StmtCache stores prepared statements keyed by SQL text with LRU eviction.
// Statements removed from the cache are closed. Safe for concurrent use.
type StmtCache struct {
	capacity int
	lru      *lru.Cache[string, *sql.Stmt]

	// mu guards compound peek-then-add operations; the LRU itself is
	// internally synchronized.
	mu sync.Mutex

	// Metrics using atomic for lock-free access.
	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// NewStmtCache creates a new prepared statement cache with default capacity.
func NewStmtCache() *StmtCache {
	return NewStmtCacheWithCapacity(DefaultStmtCacheCapacity)
}

// NewStmtCacheWithCapacity creates a new prepared statement cache with specified capacity.
func NewStmtCacheWithCapacity(capacity int) *StmtCache {
	if capacity <= 0 {
		capacity = DefaultStmtCacheCapacity
	}

	sc := &StmtCache{capacity: capacity}
	// NewWithEvict only fails for non-positive sizes, normalized above.
	sc.lru, _ = lru.NewWithEvict(capacity, func(_ string, stmt *sql.Stmt) {
		_ = stmt.Close() // Best effort close.
		sc.evictions.Add(1)
	})
	return sc
}

// Get retrieves a prepared statement from cache by SQL query string.
// Returns the statement and true if found, nil and false otherwise.
// Accessing a statement marks it as most recently used.
func (sc *StmtCache) Get(key string) (*sql.Stmt, bool) {
	stmt, ok := sc.lru.Get(key)
	if !ok {
		sc.misses.Add(1)
		return nil, false
	}
	sc.hits.Add(1)
	return stmt, true
}

// Set stores a prepared statement in cache with SQL query string as key.
// Replacing an existing entry closes the statement it replaces; filling the
// cache past capacity closes the least recently used statement.
func (sc *StmtCache) Set(key string, stmt *sql.Stmt) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if old, ok := sc.lru.Peek(key); ok && old != stmt {
		_ = old.Close() // Best effort close.
	}
	sc.lru.Add(key, stmt)
}

// Clear closes and removes all cached prepared statements.
func (sc *StmtCache) Clear() {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.lru.Purge()
}

// Len returns the current number of cached statements.
func (sc *StmtCache) Len() int {
	return sc.lru.Len()
}

// Stats holds cache performance metrics.
type Stats struct {
	Size      int     // Current number of cached statements.
	Capacity  int     // Maximum capacity.
	Hits      uint64  // Number of successful cache lookups.
	Misses    uint64  // Number of cache misses.
	Evictions uint64  // Number of statements the cache has closed.
	HitRate   float64 // Cache hit rate (hits / total requests).
}

// Stats returns cache statistics.
func (sc *StmtCache) Stats() Stats {
	hits := sc.hits.Load()
	misses := sc.misses.Load()

	total := hits + misses
	hitRate := 0.0
	if total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	return Stats{
		Size:      sc.lru.Len(),
		Capacity:  sc.capacity,
		Hits:      hits,
		Misses:    misses,
		Evictions: sc.evictions.Load(),
		HitRate:   hitRate,
	}
}
