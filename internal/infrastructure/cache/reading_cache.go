package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"

	"rescue-coordination-system/internal/domain"
)

const (
	latestKeyPrefix  = "reading:latest:"
	historyKeyPrefix = "reading:history:"
	deviceIndexKey   = "reading:devices"
)

// RedisReadingCache зберігає телеметричні виміри в Redis: останній вимір на
// пристрій та ковзне вікно історії фіксованої ємності. Найстаріші записи
// витісняються обрізанням списку.
type RedisReadingCache struct {
	client   *redis.Client
	capacity int
}

// NewRedisReadingCache створює новий екземпляр RedisReadingCache
func NewRedisReadingCache(client *redis.Client, capacity int) *RedisReadingCache {
	return &RedisReadingCache{
		client:   client,
		capacity: capacity,
	}
}

// Append додає вимір до історії пристрою та оновлює проєкцію останнього виміру
func (c *RedisReadingCache) Append(ctx context.Context, reading *domain.SensorReading) error {
	data, err := json.Marshal(reading)
	if err != nil {
		return fmt.Errorf("failed to marshal reading: %w", err)
	}

	pipe := c.client.TxPipeline()
	pipe.Set(ctx, latestKeyPrefix+reading.DeviceID, data, 0)
	pipe.RPush(ctx, historyKeyPrefix+reading.DeviceID, data)
	pipe.LTrim(ctx, historyKeyPrefix+reading.DeviceID, int64(-c.capacity), -1)
	pipe.SAdd(ctx, deviceIndexKey, reading.DeviceID)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to cache reading for device %s: %w", reading.DeviceID, err)
	}
	return nil
}

// Latest повертає останній вимір пристрою
func (c *RedisReadingCache) Latest(ctx context.Context, deviceID string) (*domain.SensorReading, error) {
	data, err := c.client.Get(ctx, latestKeyPrefix+deviceID).Bytes()
	if err == redis.Nil {
		return nil, fmt.Errorf("%w: no readings for device %s", domain.ErrNotFound, deviceID)
	}
	if err != nil {
		return nil, err
	}

	var reading domain.SensorReading
	if err := json.Unmarshal(data, &reading); err != nil {
		return nil, fmt.Errorf("failed to unmarshal reading: %w", err)
	}
	return &reading, nil
}

// History повертає вікно історії вимірів пристрою від найстарішого до найновішого
func (c *RedisReadingCache) History(ctx context.Context, deviceID string) ([]*domain.SensorReading, error) {
	items, err := c.client.LRange(ctx, historyKeyPrefix+deviceID, 0, -1).Result()
	if err != nil {
		return nil, err
	}

	readings := make([]*domain.SensorReading, 0, len(items))
	for _, item := range items {
		var reading domain.SensorReading
		if err := json.Unmarshal([]byte(item), &reading); err != nil {
			return nil, fmt.Errorf("failed to unmarshal reading: %w", err)
		}
		readings = append(readings, &reading)
	}
	return readings, nil
}

// AllLatest повертає останні виміри всіх пристроїв, що колись звітували
func (c *RedisReadingCache) AllLatest(ctx context.Context) ([]*domain.SensorReading, error) {
	deviceIDs, err := c.client.SMembers(ctx, deviceIndexKey).Result()
	if err != nil {
		return nil, err
	}
	if len(deviceIDs) == 0 {
		return nil, nil
	}

	keys := make([]string, len(deviceIDs))
	for i, id := range deviceIDs {
		keys[i] = latestKeyPrefix + id
	}

	values, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	var readings []*domain.SensorReading
	for _, value := range values {
		raw, ok := value.(string)
		if !ok {
			continue
		}
		var reading domain.SensorReading
		if err := json.Unmarshal([]byte(raw), &reading); err != nil {
			return nil, fmt.Errorf("failed to unmarshal reading: %w", err)
		}
		readings = append(readings, &reading)
	}
	return readings, nil
}
