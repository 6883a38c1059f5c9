package dataset

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/couchcryptid/collision-dashboard/internal/cache"
	"github.com/couchcryptid/collision-dashboard/internal/observability"
)

// Source produces a dataset for a row-count limit.
type Source interface {
	Load(ctx context.Context, maxRows int) (*Dataset, error)
}

// Cache memoizes datasets by row count. It is constructed once at startup and
// shared by every panel; the input is static so entries never go stale.
type Cache struct {
	source  Source
	lru     *cache.LRU[int, *Dataset]
	metrics *observability.Metrics

	// pinned is the startup dataset. It lives outside the LRU and is never evicted.
	pinned atomic.Pointer[Dataset]

	// loadMu serializes misses so concurrent requests for a cold row count
	// trigger a single load.
	loadMu sync.Mutex
}

// NewCache creates a cache holding up to size datasets.
func NewCache(source Source, size int, metrics *observability.Metrics) *Cache {
	return &Cache{
		source:  source,
		lru:     cache.New[int, *Dataset](size),
		metrics: metrics,
	}
}

// Preload loads the dataset for maxRows and pins it, so later requests for
// that row count never reload the file however many other row counts are
// cached.
func (c *Cache) Preload(ctx context.Context, maxRows int) (*Dataset, error) {
	c.loadMu.Lock()
	defer c.loadMu.Unlock()

	ds, err := c.source.Load(ctx, maxRows)
	if err != nil {
		return nil, err
	}
	c.pinned.Store(ds)
	return ds, nil
}

// Get returns the dataset for maxRows, loading it on first use.
func (c *Cache) Get(ctx context.Context, maxRows int) (*Dataset, error) {
	if ds := c.pinned.Load(); ds != nil && ds.MaxRows == maxRows {
		c.metrics.DatasetCache.WithLabelValues("hit").Inc()
		return ds, nil
	}
	if ds, ok := c.lru.Get(maxRows); ok {
		c.metrics.DatasetCache.WithLabelValues("hit").Inc()
		return ds, nil
	}

	c.loadMu.Lock()
	defer c.loadMu.Unlock()

	if ds, ok := c.lru.Get(maxRows); ok {
		c.metrics.DatasetCache.WithLabelValues("hit").Inc()
		return ds, nil
	}
	c.metrics.DatasetCache.WithLabelValues("miss").Inc()

	ds, err := c.source.Load(ctx, maxRows)
	if err != nil {
		return nil, err
	}
	c.lru.Put(maxRows, ds)
	return ds, nil
}

// CheckReadiness reports ready once at least one dataset has been loaded.
func (c *Cache) CheckReadiness(_ context.Context) error {
	if c.pinned.Load() == nil && c.lru.Len() == 0 {
		return errors.New("dataset has not been loaded yet")
	}
	return nil
}
