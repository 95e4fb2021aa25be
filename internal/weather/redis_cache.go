package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/skycast-dev/skycast/internal/weather/types"
)

// CachingFetcher decorates another Fetcher with a Redis cache.
type CachingFetcher struct {
	inner  Fetcher
	redis  *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachingFetcher returns a Fetcher that first looks in Redis, falling back
// to inner on cache-miss. Cache failures are logged and never surfaced; the
// inner fetcher always has the final word.
func NewCachingFetcher(inner Fetcher, rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *CachingFetcher {
	return &CachingFetcher{inner: inner, redis: rdb, ttl: ttl, logger: logger}
}

func (c *CachingFetcher) FetchCurrent(ctx context.Context, loc types.Location) (types.Report, error) {
	key := "weather:current:" + loc.Key()

	var cached types.Report
	if c.lookup(ctx, key, &cached) {
		return cached, nil
	}

	report, err := c.inner.FetchCurrent(ctx, loc)
	if err != nil {
		return report, err
	}
	c.store(ctx, key, report)
	return report, nil
}

func (c *CachingFetcher) FetchForecast(ctx context.Context, loc types.Location, days int) (types.Forecast, error) {
	key := fmt.Sprintf("weather:forecast:%d:%s", days, loc.Key())

	var cached types.Forecast
	if c.lookup(ctx, key, &cached) {
		return cached, nil
	}

	forecast, err := c.inner.FetchForecast(ctx, loc, days)
	if err != nil {
		return forecast, err
	}
	c.store(ctx, key, forecast)
	return forecast, nil
}

// lookup reports whether key held a cached value and decoded it into dst.
func (c *CachingFetcher) lookup(ctx context.Context, key string, dst any) bool {
	raw, err := c.redis.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("redis GET failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if uerr := json.Unmarshal([]byte(raw), dst); uerr != nil {
		c.logger.Warn("cache unmarshal failed", zap.String("key", key), zap.Error(uerr))
		return false
	}
	c.logger.Debug("cache hit", zap.String("key", key))
	return true
}

// store writes value under key with the configured TTL; failures are logged only.
func (c *CachingFetcher) store(ctx context.Context, key string, value any) {
	blob, merr := json.Marshal(value)
	if merr != nil {
		c.logger.Warn("json marshal failed", zap.String("key", key), zap.Error(merr))
		return
	}
	if serr := c.redis.Set(ctx, key, blob, c.ttl).Err(); serr != nil {
		c.logger.Warn("redis SET failed", zap.String("key", key), zap.Error(serr))
	}
}
