package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"tripdesk/internal/domain/catalog"
)

// CatalogCache stores normalized rate catalogs in Redis with a short TTL.
type CatalogCache struct {
	rdb    *goredis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewCatalogCache(addr, password string, ttl time.Duration, logger *slog.Logger) *CatalogCache {
	rdb := goredis.NewClient(&goredis.Options{Addr: addr, Password: password})
	return &CatalogCache{rdb: rdb, ttl: ttl, logger: logger}
}

func (c *CatalogCache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *CatalogCache) Put(ctx context.Context, key string, cat *catalog.RateCatalog) error {
	payload, err := json.Marshal(cat)
	if err != nil {
		return fmt.Errorf("redis: encode catalog: %w", err)
	}
	return c.rdb.Set(ctx, c.key(key), payload, c.ttl).Err()
}

func (c *CatalogCache) Get(ctx context.Context, key string) (*catalog.RateCatalog, bool, error) {
	raw, err := c.rdb.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var cat catalog.RateCatalog
	if err := json.Unmarshal(raw, &cat); err != nil {
		// stale or corrupt entry: treat as a miss, not a failure
		if c.logger != nil {
			c.logger.Warn("dropping undecodable catalog cache entry", "key", key, "error", err)
		}
		_ = c.rdb.Del(ctx, c.key(key)).Err()
		return nil, false, nil
	}
	return &cat, true, nil
}

func (c *CatalogCache) Close() error {
	return c.rdb.Close()
}

func (c *CatalogCache) key(key string) string {
	return "catalog:" + key
}

var _ catalog.Cache = (*CatalogCache)(nil)
