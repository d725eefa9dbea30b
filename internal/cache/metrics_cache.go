package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/retailpulse/backend-go/internal/config"
	"github.com/retailpulse/backend-go/internal/domain"
)

const (
	storeMetricsKeyPrefix   = "retailpulse:store_metrics"
	storeMetricsScanBatches = 100
)

// MetricsCache caches computed store metrics. Keys carry the dataset version,
// so a reload naturally invalidates every prior entry without coordination.
type MetricsCache interface {
	GetStoreMetrics(ctx context.Context, version uint64, storeID, day string) (domain.StoreMetrics, bool, error)
	SetStoreMetrics(ctx context.Context, version uint64, storeID, day string, metrics domain.StoreMetrics) error
	InvalidateAll(ctx context.Context) error
}

type redisMetricsCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopMetricsCache struct{}

func NewMetricsCache(cfg config.CacheConfig) (MetricsCache, error) {
	if !cfg.Enabled {
		return &noopMetricsCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisMetricsCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func NewNoopMetricsCache() MetricsCache {
	return &noopMetricsCache{}
}

func (c *redisMetricsCache) GetStoreMetrics(ctx context.Context, version uint64, storeID, day string) (domain.StoreMetrics, bool, error) {
	var metrics domain.StoreMetrics

	payload, err := c.client.Get(ctx, buildStoreMetricsKey(version, storeID, day)).Bytes()
	if err == redis.Nil {
		return metrics, false, nil
	}
	if err != nil {
		return metrics, false, fmt.Errorf("redis get failed: %w", err)
	}

	if err := json.Unmarshal(payload, &metrics); err != nil {
		return metrics, false, fmt.Errorf("decode store metrics cache: %w", err)
	}

	return metrics, true, nil
}

func (c *redisMetricsCache) SetStoreMetrics(ctx context.Context, version uint64, storeID, day string, metrics domain.StoreMetrics) error {
	payload, err := json.Marshal(metrics)
	if err != nil {
		return fmt.Errorf("encode store metrics cache: %w", err)
	}

	if err := c.client.Set(ctx, buildStoreMetricsKey(version, storeID, day), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisMetricsCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, storeMetricsKeyPrefix, storeMetricsScanBatches)
}

func (n *noopMetricsCache) GetStoreMetrics(ctx context.Context, version uint64, storeID, day string) (domain.StoreMetrics, bool, error) {
	return domain.StoreMetrics{}, false, nil
}

func (n *noopMetricsCache) SetStoreMetrics(ctx context.Context, version uint64, storeID, day string, metrics domain.StoreMetrics) error {
	return nil
}

func (n *noopMetricsCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func buildStoreMetricsKey(version uint64, storeID, day string) string {
	return fmt.Sprintf("%s:v%d:%s:%s", storeMetricsKeyPrefix, version, storeID, day)
}
