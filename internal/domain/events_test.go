package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeMeshMessage_SensorData(t *testing.T) {
	payload := []byte(`{
		"type": "sensor_data",
		"device_id": "node-1",
		"node_num": 7,
		"co2": 950.5,
		"temperature": 18.2,
		"humidity": 64,
		"latitude": 50.45,
		"longitude": 30.52,
		"gps_fix": 1,
		"timestamp": 1756700000
	}`)

	msg, err := DecodeMeshMessage(payload)
	require.NoError(t, err)
	require.NotNil(t, msg.SensorData)
	assert.Nil(t, msg.Telemetry)
	assert.Nil(t, msg.SOS)

	assert.Equal(t, "node-1", msg.SensorData.SourceID())
	assert.Equal(t, 950.5, msg.SensorData.CO2)
	assert.Equal(t, 7, msg.SensorData.NodeNum)
	assert.False(t, msg.SensorData.Time().IsZero())
}

// Старі прошивки надсилають лише "from" без "device_id"
func TestDecodeMeshMessage_LegacySourceID(t *testing.T) {
	msg, err := DecodeMeshMessage([]byte(`{"type":"sensor_data","from":"!a1b2c3","co2":400}`))
	require.NoError(t, err)
	assert.Equal(t, "!a1b2c3", msg.SensorData.SourceID())
}

func TestDecodeMeshMessage_Telemetry(t *testing.T) {
	payload := []byte(`{
		"type": "telemetry",
		"from": "node-2",
		"subtype": "device",
		"battery": 42,
		"voltage": 3.7
	}`)

	msg, err := DecodeMeshMessage(payload)
	require.NoError(t, err)
	require.NotNil(t, msg.Telemetry)

	assert.Equal(t, "node-2", msg.Telemetry.SourceID())
	assert.Equal(t, TelemetrySubtypeDevice, msg.Telemetry.Subtype)
	require.NotNil(t, msg.Telemetry.Battery)
	assert.Equal(t, 42, *msg.Telemetry.Battery)
}

func TestDecodeMeshMessage_SOS(t *testing.T) {
	msg, err := DecodeMeshMessage([]byte(`{"type":"sos","from":"node-3","latitude":50.45,"longitude":30.52}`))
	require.NoError(t, err)
	require.NotNil(t, msg.SOS)
	assert.Equal(t, "node-3", msg.SOS.From)
}

func TestDecodeMeshMessage_Rejections(t *testing.T) {
	cases := map[string]string{
		"unknown type":          `{"type":"firmware_update"}`,
		"missing type":          `{"co2":900}`,
		"invalid json":          `{`,
		"sensor without source": `{"type":"sensor_data","co2":900}`,
		"telemetry bad subtype": `{"type":"telemetry","from":"node-1","subtype":"gps"}`,
		"sos without source":    `{"type":"sos","latitude":50.45}`,
	}

	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeMeshMessage([]byte(payload))
			assert.Error(t, err)
		})
	}
}

func TestSensorDataMessage_TimeUnsetClock(t *testing.T) {
	msg := &SensorDataMessage{Timestamp: 0}
	assert.True(t, msg.Time().IsZero())
}
