package memory

import (
	"context"
	"sync"
	"time"

	"github.com/verleihernix/math-visualizer/pkg/domain"
)

// DefaultMaxEntries bounds the cache when no limit is configured.
const DefaultMaxEntries = 256

type item struct {
	data    []byte
	expires time.Time // zero means no expiry
}

// Cache implements ports.RenderCache in memory with FIFO eviction.
// Safe for concurrent use.
type Cache struct {
	mu    sync.Mutex
	items map[string]item
	order []string // insertion order, oldest first

	max int
	ttl time.Duration
	now func() time.Time
}

type Option func(*Cache)

// WithMaxEntries sets how many images are kept before the oldest is evicted.
func WithMaxEntries(n int) Option {
	return func(c *Cache) {
		if n > 0 {
			c.max = n
		}
	}
}

// WithTTL sets the default expiration used when Set is called with ttl 0.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		c.ttl = ttl
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

// New creates an empty in-memory render cache.
func New(opts ...Option) *Cache {
	c := &Cache{
		items: make(map[string]item),
		max:   DefaultMaxEntries,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns a copy of the bytes stored under key.
func (c *Cache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	it, ok := c.items[key]
	if !ok {
		return nil, domain.ErrCacheMiss
	}
	if !it.expires.IsZero() && !c.now().Before(it.expires) {
		c.drop(key)
		return nil, domain.ErrCacheMiss
	}
	return append([]byte(nil), it.data...), nil
}

// Set stores a copy of data under key, evicting the oldest entries when full.
func (c *Cache) Set(_ context.Context, key string, data []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.ttl
	}
	it := item{data: append([]byte(nil), data...)}
	if ttl > 0 {
		it.expires = c.now().Add(ttl)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.items[key]; exists {
		c.drop(key)
	}
	for len(c.order) >= c.max {
		c.drop(c.order[0])
	}
	c.items[key] = it
	c.order = append(c.order, key)
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *Cache) drop(key string) {
	delete(c.items, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}
