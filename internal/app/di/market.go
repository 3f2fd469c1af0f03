// Package di provides dependency injection factories for creating application components.
package di

import (
	"github.com/redis/go-redis/v9"

	"stock_ingest/internal/feature/prices/adapters/twse"
	"stock_ingest/internal/feature/prices/usecase"
	"stock_ingest/internal/platform/cache"
	infrahttp "stock_ingest/internal/platform/http"
	"stock_ingest/internal/shared/ratelimiter"
)

// NewMarket creates a TWSEMarket with a tuned HTTP client. When rdb is non-nil the
// market is wrapped with a Redis cache that expires at the next publication time.
func NewMarket(cfg twse.Config, rdb *redis.Client) usecase.PriceFetcher {
	httpClient := infrahttp.NewHTTPClient(cfg.Timeout, "")
	market := twse.NewTWSEMarket(cfg, httpClient)
	if rdb == nil {
		return market
	}
	return cache.NewCachingPriceFetcher(rdb, cache.TimeUntilNextClose, market, "twse")
}

// NewRateLimiter spaces TWSE calls by cfg.MinInterval.
func NewRateLimiter(cfg twse.Config) *ratelimiter.RateLimiter {
	return ratelimiter.NewRateLimiter(cfg.MinInterval, 1)
}
