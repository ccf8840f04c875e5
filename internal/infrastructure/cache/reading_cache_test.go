package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rescue-coordination-system/internal/domain"
)

func newTestCache(t *testing.T, capacity int) *RedisReadingCache {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisReadingCache(client, capacity)
}

func reading(deviceID string, co2 float64) *domain.SensorReading {
	return &domain.SensorReading{
		DeviceID:   deviceID,
		CO2:        co2,
		ReceivedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
}

func TestAppendAndLatest(t *testing.T) {
	cache := newTestCache(t, 10)
	ctx := context.Background()

	require.NoError(t, cache.Append(ctx, reading("node-1", 400)))
	require.NoError(t, cache.Append(ctx, reading("node-1", 900)))

	latest, err := cache.Latest(ctx, "node-1")
	require.NoError(t, err)
	assert.Equal(t, 900.0, latest.CO2)
}

func TestLatest_NoReadings(t *testing.T) {
	cache := newTestCache(t, 10)

	_, err := cache.Latest(context.Background(), "node-unknown")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// Історія обмежена ємністю: найстаріші виміри витісняються
func TestHistory_RollingWindow(t *testing.T) {
	cache := newTestCache(t, 3)
	ctx := context.Background()

	for _, co2 := range []float64{100, 200, 300, 400, 500} {
		require.NoError(t, cache.Append(ctx, reading("node-1", co2)))
	}

	history, err := cache.History(ctx, "node-1")
	require.NoError(t, err)
	require.Len(t, history, 3)

	assert.Equal(t, 300.0, history[0].CO2)
	assert.Equal(t, 500.0, history[2].CO2)
}

func TestHistory_IsolatedPerDevice(t *testing.T) {
	cache := newTestCache(t, 10)
	ctx := context.Background()

	require.NoError(t, cache.Append(ctx, reading("node-1", 100)))
	require.NoError(t, cache.Append(ctx, reading("node-2", 200)))

	history, err := cache.History(ctx, "node-1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, 100.0, history[0].CO2)
}

func TestAllLatest(t *testing.T) {
	cache := newTestCache(t, 10)
	ctx := context.Background()

	require.NoError(t, cache.Append(ctx, reading("node-1", 100)))
	require.NoError(t, cache.Append(ctx, reading("node-1", 150)))
	require.NoError(t, cache.Append(ctx, reading("node-2", 200)))

	latest, err := cache.AllLatest(ctx)
	require.NoError(t, err)
	require.Len(t, latest, 2)

	byDevice := make(map[string]float64)
	for _, r := range latest {
		byDevice[r.DeviceID] = r.CO2
	}
	assert.Equal(t, 150.0, byDevice["node-1"])
	assert.Equal(t, 200.0, byDevice["node-2"])
}

func TestAllLatest_Empty(t *testing.T) {
	cache := newTestCache(t, 10)

	latest, err := cache.AllLatest(context.Background())
	require.NoError(t, err)
	assert.Empty(t, latest)
}
