package explorer

import (
	"crypto/sha256"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/solo-io/graphql-console/common/metrics"
)

const defaultMockCacheSize = 64

// MockCache memoizes BuildMockSchema on the SHA-256 of the schema text. Failed builds are not
// cached.
type MockCache struct {
	entries *lru.Cache[[sha256.Size]byte, *MockSchema]
}

func NewMockCache(size int) *MockCache {
	if size <= 0 {
		size = defaultMockCacheSize
	}
	entries, _ := lru.New[[sha256.Size]byte, *MockSchema](size) //nolint:errcheck // size is positive
	return &MockCache{entries: entries}
}

func (c *MockCache) Get(sdl string) (*MockSchema, error) {
	key := sha256.Sum256([]byte(sdl))

	if m, ok := c.entries.Get(key); ok {
		metrics.SchemaCacheLookups.WithLabelValues("mock", "hit").Inc()
		return m, nil
	}

	metrics.SchemaCacheLookups.WithLabelValues("mock", "miss").Inc()
	m, err := BuildMockSchema(sdl)
	if err != nil {
		return nil, err
	}
	if prev, ok, _ := c.entries.PeekOrAdd(key, m); ok {
		return prev, nil
	}
	return m, nil
}

func (c *MockCache) Len() int {
	return c.entries.Len()
}
