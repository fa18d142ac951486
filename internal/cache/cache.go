// Package cache provides the in-memory search result cache.
//
// Entries are keyed by the normalized query and the requested limit. An entry
// older than the TTL is reported as absent but is not removed; the next
// successful search for the same key overwrites it. Total size is bounded by
// an LRU so the map cannot grow without limit.
package cache

import (
	"strconv"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/helixir/paper-search-service/internal/domain"
)

const (
	// DefaultTTL is how long a stored result is served.
	DefaultTTL = time.Hour

	// DefaultMaxEntries is the number of distinct query/limit pairs retained.
	DefaultMaxEntries = 10000

	keySeparator = "_"
)

// entry is a stored result and the time it was captured.
type entry struct {
	result     *domain.SearchResult
	capturedAt time.Time
}

// Cache stores successful search results. It is safe for concurrent use.
type Cache struct {
	store *lru.Cache[string, entry]
	ttl   time.Duration
	now   func() time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithTTL sets the freshness window. Non-positive values are ignored.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// New creates a cache holding at most maxEntries results.
// A non-positive maxEntries uses DefaultMaxEntries.
func New(maxEntries int, opts ...Option) *Cache {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	// lru.New only fails for non-positive sizes.
	store, _ := lru.New[string, entry](maxEntries)

	c := &Cache{
		store: store,
		ttl:   DefaultTTL,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Key derives the cache key for a query and limit. Queries differing only in
// case or surrounding whitespace share a key.
func Key(query string, limit int) string {
	return strings.ToLower(strings.TrimSpace(query)) + keySeparator + strconv.Itoa(limit)
}

// Get returns a copy of the stored result when one exists and is fresh.
func (c *Cache) Get(query string, limit int) (*domain.SearchResult, bool) {
	e, ok := c.store.Get(Key(query, limit))
	if !ok {
		return nil, false
	}
	if c.now().Sub(e.capturedAt) >= c.ttl {
		return nil, false
	}
	return e.result.Clone(), true
}

// Put stores result under the key for query and limit, replacing any
// previous entry.
func (c *Cache) Put(query string, limit int, result *domain.SearchResult) {
	if result == nil {
		return
	}
	c.store.Add(Key(query, limit), entry{
		result:     result.Clone(),
		capturedAt: c.now(),
	})
}

// TTL returns the configured freshness window.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}
