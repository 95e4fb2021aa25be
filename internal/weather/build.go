package weather

import (
	"context"
	"fmt"

	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/skycast-dev/skycast/internal/config"
	"github.com/skycast-dev/skycast/internal/weather/station"
)

// Build constructs the Fetcher used by the server:
// 1) The simulated weather station as the report source
// 2) Decorated with a Redis cache when REDIS_ADDR is configured
func Build(cfg *config.Config, logger *zap.Logger) (Fetcher, error) {
	base := station.New()

	if cfg.RedisAddr == "" {
		logger.Info("redis not configured, serving reports uncached")
		return base, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	logger.Info("report cache enabled",
		zap.String("addr", cfg.RedisAddr),
		zap.Duration("ttl", cfg.CacheTTL),
	)
	return NewCachingFetcher(base, rdb, cfg.CacheTTL, logger), nil
}
