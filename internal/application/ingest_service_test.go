package application

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"rescue-coordination-system/internal/domain"
	"rescue-coordination-system/pkg/classifier"
)

// memoryReadingCache — кеш вимірів у пам'яті для тестів
type memoryReadingCache struct {
	mu      sync.Mutex
	history map[string][]*domain.SensorReading
}

func newMemoryReadingCache() *memoryReadingCache {
	return &memoryReadingCache{history: make(map[string][]*domain.SensorReading)}
}

func (c *memoryReadingCache) Append(ctx context.Context, reading *domain.SensorReading) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.history[reading.DeviceID] = append(c.history[reading.DeviceID], reading)
	return nil
}

func (c *memoryReadingCache) Latest(ctx context.Context, deviceID string) (*domain.SensorReading, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	readings := c.history[deviceID]
	if len(readings) == 0 {
		return nil, domain.ErrNotFound
	}
	return readings[len(readings)-1], nil
}

func (c *memoryReadingCache) History(ctx context.Context, deviceID string) ([]*domain.SensorReading, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.history[deviceID], nil
}

func (c *memoryReadingCache) AllLatest(ctx context.Context) ([]*domain.SensorReading, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var latest []*domain.SensorReading
	for _, readings := range c.history {
		if len(readings) > 0 {
			latest = append(latest, readings[len(readings)-1])
		}
	}
	return latest, nil
}

func newIngestEnv(t *testing.T, thresholdValue float64) (*testEnv, *IngestService, *memoryReadingCache) {
	t.Helper()
	env := newTestEnv()
	readingCache := newMemoryReadingCache()
	threshold := classifier.NewThreshold(thresholdValue)
	ingest := NewIngestService(env.devices, env.alerts, threshold, readingCache, env.broadcaster, 20, zap.NewNop())
	return env, ingest, readingCache
}

func sensorMsg(deviceID string, co2 float64) *domain.SensorDataMessage {
	return &domain.SensorDataMessage{
		DeviceID:  deviceID,
		CO2:       co2,
		Latitude:  50.45,
		Longitude: 30.52,
		GPSFix:    1,
	}
}

func TestHandleSensorData_RegistersDeviceAndCaches(t *testing.T) {
	env, ingest, readingCache := newIngestEnv(t, 800)
	ctx := context.Background()

	require.NoError(t, ingest.HandleSensorData(ctx, sensorMsg("node-1", 500)))

	device, err := env.devices.GetByID(ctx, "node-1")
	require.NoError(t, err)
	assert.Equal(t, domain.DeviceStatusOnline, device.Status)

	history, err := readingCache.History(ctx, "node-1")
	require.NoError(t, err)
	assert.Len(t, history, 1)

	assert.Len(t, env.broadcaster.eventsOfType(domain.EventSensorData), 1)
}

// Серія показань над порогом дає рівно одну тривогу на екскурсію
func TestHandleSensorData_AlertDeduplication(t *testing.T) {
	env, ingest, _ := newIngestEnv(t, 800)
	ctx := context.Background()

	for _, co2 := range []float64{960, 1040, 1120} {
		require.NoError(t, ingest.HandleSensorData(ctx, sensorMsg("node-1", co2)))
	}

	alerts, err := env.alerts.List(ctx, map[string]interface{}{"device_id": "node-1"})
	require.NoError(t, err)
	assert.Len(t, alerts, 1)
}

// Падіння показань до порога знімає прапорець: нове перевищення дає нову тривогу
func TestHandleSensorData_AlertRearmsAfterDrop(t *testing.T) {
	env, ingest, _ := newIngestEnv(t, 800)
	ctx := context.Background()

	for _, co2 := range []float64{960, 720, 960} {
		require.NoError(t, ingest.HandleSensorData(ctx, sensorMsg("node-1", co2)))
	}

	alerts, err := env.alerts.List(ctx, map[string]interface{}{"device_id": "node-1"})
	require.NoError(t, err)
	assert.Len(t, alerts, 2)
}

// Прапорці де-дуплікації ведуться окремо для кожного пристрою
func TestHandleSensorData_PerDeviceFlags(t *testing.T) {
	env, ingest, _ := newIngestEnv(t, 800)
	ctx := context.Background()

	require.NoError(t, ingest.HandleSensorData(ctx, sensorMsg("node-1", 960)))
	require.NoError(t, ingest.HandleSensorData(ctx, sensorMsg("node-2", 960)))
	require.NoError(t, ingest.HandleSensorData(ctx, sensorMsg("node-1", 1000)))

	alerts, err := env.alerts.List(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, alerts, 2)
}

func TestHandleSensorData_SeverityFollowsProbability(t *testing.T) {
	env, ingest, _ := newIngestEnv(t, 800)
	ctx := context.Background()

	// 1300 > 1.5 * 800: висока ймовірність, критична тривога
	require.NoError(t, ingest.HandleSensorData(ctx, sensorMsg("node-1", 1300)))

	alerts, err := env.alerts.List(ctx, nil)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, domain.AlertSeverityCritical, alerts[0].Severity)
	assert.Equal(t, domain.AlertTypeThreshold, alerts[0].Type)
	require.NotNil(t, alerts[0].Location)
	assert.InDelta(t, 50.45, alerts[0].Location.Latitude, 0.001)
}

func TestHandleTelemetry_BatteryLowAlert(t *testing.T) {
	env, ingest, _ := newIngestEnv(t, 800)
	ctx := context.Background()

	battery := 15
	msg := &domain.DeviceTelemetryMessage{
		From:    "node-1",
		Subtype: domain.TelemetrySubtypeDevice,
		Battery: &battery,
	}
	require.NoError(t, ingest.HandleTelemetry(ctx, msg))

	device, err := env.devices.GetByID(ctx, "node-1")
	require.NoError(t, err)
	assert.Equal(t, domain.DeviceStatusWarning, device.Status)
	assert.Equal(t, 15, device.BatteryLevel)

	alerts, err := env.alerts.List(ctx, nil)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, domain.AlertTypeBatteryLow, alerts[0].Type)

	// Повторна телеметрія з низьким зарядом не дублює тривогу
	require.NoError(t, ingest.HandleTelemetry(ctx, msg))
	alerts, err = env.alerts.List(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, alerts, 1)
}

func TestHandleMeshMessage_Dispatch(t *testing.T) {
	env, ingest, _ := newIngestEnv(t, 800)
	ctx := context.Background()

	sensorPayload, _ := json.Marshal(map[string]interface{}{
		"type":      "sensor_data",
		"device_id": "node-1",
		"co2":       500.0,
	})
	require.NoError(t, ingest.HandleMeshMessage(ctx, sensorPayload))

	sosPayload, _ := json.Marshal(map[string]interface{}{
		"type":     "sos",
		"from":     "node-2",
		"latitude": 50.45,
	})
	require.NoError(t, ingest.HandleMeshMessage(ctx, sosPayload))

	alerts, err := env.alerts.List(ctx, map[string]interface{}{"device_id": "node-2"})
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, domain.AlertTypeSOS, alerts[0].Type)
	assert.Equal(t, domain.AlertSeverityCritical, alerts[0].Severity)
}

// Невідомі типи повідомлень відхиляються, а не пропускаються
func TestHandleMeshMessage_UnknownTypeRejected(t *testing.T) {
	_, ingest, _ := newIngestEnv(t, 800)
	ctx := context.Background()

	err := ingest.HandleMeshMessage(ctx, []byte(`{"type":"firmware_update"}`))
	assert.Error(t, err)
}

// Зміна порога діє для наступних показань одразу
func TestHandleSensorData_ThresholdSwap(t *testing.T) {
	env := newTestEnv()
	readingCache := newMemoryReadingCache()
	threshold := classifier.NewThreshold(800)
	ingest := NewIngestService(env.devices, env.alerts, threshold, readingCache, env.broadcaster, 20, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, ingest.HandleSensorData(ctx, sensorMsg("node-1", 700)))
	alerts, _ := env.alerts.List(ctx, nil)
	assert.Empty(t, alerts)

	threshold.Set(600)
	require.NoError(t, ingest.HandleSensorData(ctx, sensorMsg("node-1", 700)))
	alerts, _ = env.alerts.List(ctx, nil)
	assert.Len(t, alerts, 1)
}
