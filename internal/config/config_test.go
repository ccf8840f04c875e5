package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, 800.0, cfg.Sensor.CO2Threshold)
	assert.Equal(t, 50, cfg.Sensor.HistoryCapacity)
	assert.Equal(t, 20, cfg.Sensor.BatteryLowLevel)
	assert.Equal(t, 60*time.Second, cfg.Presence.SweepInterval)
	assert.Equal(t, 10*time.Minute, cfg.Presence.OfflineTimeout)
	assert.Equal(t, "mesh/sensor/#", cfg.MQTT.SensorTopic)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CO2_THRESHOLD", "1200.5")
	t.Setenv("PRESENCE_OFFLINE_TIMEOUT_SECONDS", "300")
	t.Setenv("HTTP_ADDR", ":9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 1200.5, cfg.Sensor.CO2Threshold)
	assert.Equal(t, 5*time.Minute, cfg.Presence.OfflineTimeout)
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
}

func TestLoad_InvalidNumber(t *testing.T) {
	t.Setenv("READING_HISTORY_CAPACITY", "not-a-number")

	_, err := Load()
	require.Error(t, err)
}
