package model

import (
	"crypto/sha256"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/solo-io/graphql-console/common/metrics"
)

const defaultCacheSize = 128

// Cache memoizes Parse on the SHA-256 of the schema text so a schema is parsed once per
// content change, however often it is fetched.
type Cache struct {
	entries *lru.Cache[[sha256.Size]byte, *Model]
}

// NewCache returns a cache holding at most size models, evicting the least recently used.
func NewCache(size int) *Cache {
	if size <= 0 {
		size = defaultCacheSize
	}
	entries, _ := lru.New[[sha256.Size]byte, *Model](size) //nolint:errcheck // size is positive
	return &Cache{entries: entries}
}

func (c *Cache) Get(sdl string) (*Model, error) {
	key := sha256.Sum256([]byte(sdl))

	if m, ok := c.entries.Get(key); ok {
		metrics.SchemaCacheLookups.WithLabelValues("model", "hit").Inc()
		return m, nil
	}

	metrics.SchemaCacheLookups.WithLabelValues("model", "miss").Inc()
	m, err := Parse(sdl)
	if err != nil {
		return nil, err
	}

	// concurrent misses on the same schema keep the first parsed model
	if prev, ok, _ := c.entries.PeekOrAdd(key, m); ok {
		return prev, nil
	}
	return m, nil
}

func (c *Cache) Len() int {
	return c.entries.Len()
}
