package memory

import (
	"context"
	"sync"
	"time"

	"tripdesk/internal/domain/catalog"
)

// CatalogCache is the in-process fallback for deployments without Redis.
type CatalogCache struct {
	mu    sync.Mutex
	ttl   time.Duration
	items map[string]catalogEntry
	now   func() time.Time
}

type catalogEntry struct {
	cat    *catalog.RateCatalog
	expiry time.Time
}

func NewCatalogCache(ttl time.Duration) *CatalogCache {
	return &CatalogCache{ttl: ttl, items: make(map[string]catalogEntry), now: time.Now}
}

func (c *CatalogCache) Put(ctx context.Context, key string, cat *catalog.RateCatalog) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = catalogEntry{cat: cat, expiry: c.now().Add(c.ttl)}
	return nil
}

func (c *CatalogCache) Get(ctx context.Context, key string) (*catalog.RateCatalog, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.items[key]
	if !ok {
		return nil, false, nil
	}
	if c.now().After(entry.expiry) {
		delete(c.items, key)
		return nil, false, nil
	}
	return entry.cat, true, nil
}

var _ catalog.Cache = (*CatalogCache)(nil)
