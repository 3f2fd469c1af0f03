// Package cache provides caching implementations for usecase interfaces.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"stock_ingest/internal/feature/prices/domain/entity"
	"stock_ingest/internal/feature/prices/usecase"
)

// CachingPriceFetcher decorates a PriceFetcher with Redis caching.
// A published close does not change, so a hit skips the upstream call.
type CachingPriceFetcher struct {
	inner     usecase.PriceFetcher
	rdb       *redis.Client
	ttl       func() time.Duration
	namespace string
}

var _ usecase.PriceFetcher = (*CachingPriceFetcher)(nil)

// defaultTTL is used when ttl is nil or returns a non-positive duration.
const defaultTTL = 12 * time.Hour

// NewCachingPriceFetcher decorates a PriceFetcher with Redis caching.
// ttl is evaluated on every cache write, so an expiry tied to the clock
// (see TimeUntilNextClose) stays correct in a long-running process.
// If ttl is nil, entries live 12 hours. If namespace is empty, it uses "twse".
func NewCachingPriceFetcher(rdb *redis.Client, ttl func() time.Duration, inner usecase.PriceFetcher, namespace string) *CachingPriceFetcher {
	if namespace == "" {
		namespace = "twse"
	}
	return &CachingPriceFetcher{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// FetchClose returns the cached record when present, otherwise delegates and caches the result.
func (c *CachingPriceFetcher) FetchClose(ctx context.Context, stockID string, date time.Time) (entity.PriceRecord, error) {
	if c.rdb == nil {
		return c.inner.FetchClose(ctx, stockID, date)
	}

	key := c.cacheKey(stockID, date)

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out entity.PriceRecord
		if err := json.Unmarshal(b, &out); err == nil {
			return out, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	} else if err != nil && err != redis.Nil {
		slog.Debug("price cache unavailable", "key", key, "error", err)
	}

	// 2) Fallback to upstream; errors are never cached
	out, err := c.inner.FetchClose(ctx, stockID, date)
	if err != nil {
		return entity.PriceRecord{}, err
	}

	// 3) Store in cache (best effort)
	if b, err := json.Marshal(out); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.expiry()).Err()
	}
	return out, nil
}

// expiry returns the TTL for an entry written now.
func (c *CachingPriceFetcher) expiry() time.Duration {
	if c.ttl == nil {
		return defaultTTL
	}
	if d := c.ttl(); d > 0 {
		return d
	}
	return defaultTTL
}

// cacheKey generates "<namespace>:<stockID>:<YYYYMMDD>".
func (c *CachingPriceFetcher) cacheKey(stockID string, date time.Time) string {
	return fmt.Sprintf("%s:%s:%s", c.namespace, safe(stockID), date.Format("20060102"))
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
