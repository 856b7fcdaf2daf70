package lookup

import (
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/pkg/errors"
)

// Cache keeps successful lookups in memory.
type Cache struct {
	cache *ristretto.Cache
	ttl   time.Duration
}

// NewCache creates a cache whose entries expire after ttl.
func NewCache(ttl time.Duration) (*Cache, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10000,
		MaxCost:     1 << 20,
		BufferItems: 64,
	})
	if err != nil {
		return nil, errors.Wrap(err, "unable to create cache")
	}

	return &Cache{cache: cache, ttl: ttl}, nil
}

func (c *Cache) get(key string) (any, bool) {
	if c == nil {
		return nil, false
	}

	return c.cache.Get(key)
}

func (c *Cache) set(key string, value any) {
	if c == nil {
		return
	}
	c.cache.SetWithTTL(key, value, 1, c.ttl)
	c.cache.Wait()
}

// Close stops the cache goroutines.
func (c *Cache) Close() {
	if c == nil {
		return
	}
	c.cache.Close()
}
