package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"wattline/internal/models"
)

// ConsumptionCache keeps the latest per-sensor estimate in redis so dashboard
// polling does not recompute it on every request.
type ConsumptionCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewConsumptionCache returns redis-backed cache.
func NewConsumptionCache(client *redis.Client, ttl time.Duration) *ConsumptionCache {
	return &ConsumptionCache{client: client, ttl: ttl}
}

func (c *ConsumptionCache) key(sensorID int64) string {
	return fmt.Sprintf("consumption:latest:%d", sensorID)
}

// Save caches an estimate.
func (c *ConsumptionCache) Save(ctx context.Context, record *models.ConsumptionRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(record.SensorID), data, c.ttl).Err()
}

// Get returns the cached estimate, or redis.Nil when absent or expired.
func (c *ConsumptionCache) Get(ctx context.Context, sensorID int64) (*models.ConsumptionRecord, error) {
	result, err := c.client.Get(ctx, c.key(sensorID)).Result()
	if err != nil {
		return nil, err
	}
	var record models.ConsumptionRecord
	if err := json.Unmarshal([]byte(result), &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// Invalidate drops the cached estimate after new samples arrive.
func (c *ConsumptionCache) Invalidate(ctx context.Context, sensorID int64) error {
	return c.client.Del(ctx, c.key(sensorID)).Err()
}
