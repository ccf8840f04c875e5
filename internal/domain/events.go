package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Типи подій, що транслюються спостерігачам через канал реального часу
type EventType string

const (
	EventDeviceUpdate   EventType = "device_update"
	EventAlertNew       EventType = "alert_new"
	EventAlertUpdate    EventType = "alert_update"
	EventCampaignUpdate EventType = "campaign_update"
	EventSensorData     EventType = "sensor_data"
)

// Event представляє одну доменну подію для трансляції підписникам
type Event struct {
	Type      EventType   `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

// DeviceUpdatePayload описує зміну стану пристрою
type DeviceUpdatePayload struct {
	DeviceID     string       `json:"device_id"`
	Status       DeviceStatus `json:"status,omitempty"`
	BatteryLevel *int         `json:"battery_level,omitempty"`
	Location     *Location    `json:"location,omitempty"`
}

// AlertPayload переносить тривогу в події alert_new та alert_update
type AlertPayload struct {
	Alert *Alert `json:"alert"`
}

// CampaignPayload переносить кампанію в події campaign_update
type CampaignPayload struct {
	Campaign *Campaign `json:"campaign"`
}

// NewEvent створює подію з поточною міткою часу
func NewEvent(t EventType, payload interface{}) Event {
	return Event{Type: t, Payload: payload, Timestamp: time.Now()}
}

// Вхідна телеметрія з mesh-мережі. Повідомлення надходять вже декодованими
// з радіоканалу як JSON з дискримінантним полем "type".

// TelemetrySubtype розрізняє телеметрію пристрою та середовища
type TelemetrySubtype string

const (
	TelemetrySubtypeDevice      TelemetrySubtype = "device"
	TelemetrySubtypeEnvironment TelemetrySubtype = "environment"
)

// SensorDataMessage — телеметричний вимір сенсорів вузла
type SensorDataMessage struct {
	DeviceID    string  `json:"device_id"`
	From        string  `json:"from"`
	NodeNum     int     `json:"node_num"`
	CO2         float64 `json:"co2"`
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	GPSFix      int     `json:"gps_fix"`
	Timestamp   int64   `json:"timestamp"`
}

// SourceID повертає ідентифікатор вузла-відправника.
// Старі прошивки надсилають лише "from" без "device_id".
func (m *SensorDataMessage) SourceID() string {
	if m.DeviceID != "" {
		return m.DeviceID
	}
	return m.From
}

// Time повертає мітку часу виміру; нульове значення означає,
// що вузол ще не синхронізував годинник
func (m *SensorDataMessage) Time() time.Time {
	if m.Timestamp <= 0 {
		return time.Time{}
	}
	return time.Unix(m.Timestamp, 0)
}

// DeviceTelemetryMessage — службова телеметрія вузла (батарея, напруга, аптайм)
type DeviceTelemetryMessage struct {
	From        string           `json:"from"`
	NodeNum     int              `json:"node_num"`
	Subtype     TelemetrySubtype `json:"subtype"`
	Battery     *int             `json:"battery,omitempty"`
	Voltage     *float64         `json:"voltage,omitempty"`
	Uptime      *int64           `json:"uptime,omitempty"`
	Temperature *float64         `json:"temperature,omitempty"`
	Humidity    *float64         `json:"humidity,omitempty"`
	Pressure    *float64         `json:"pressure,omitempty"`
}

// SourceID повертає ідентифікатор вузла-відправника
func (m *DeviceTelemetryMessage) SourceID() string {
	return m.From
}

// SOSMessage — сигнал лиха, надісланий з вузла вручну
type SOSMessage struct {
	From      string  `json:"from"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Message   string  `json:"message,omitempty"`
}

// MeshMessage — теговане об'єднання вхідних повідомлень mesh-мережі.
// Рівно одне з полів відмінне від nil.
type MeshMessage struct {
	SensorData *SensorDataMessage
	Telemetry  *DeviceTelemetryMessage
	SOS        *SOSMessage
}

// DecodeMeshMessage розбирає вхідне повідомлення за дискримінантом "type".
// Невідомі типи відхиляються, а не пропускаються далі.
func DecodeMeshMessage(data []byte) (*MeshMessage, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("failed to decode mesh message: %w", err)
	}

	switch head.Type {
	case "sensor_data":
		var msg SensorDataMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("failed to decode sensor_data message: %w", err)
		}
		if msg.SourceID() == "" {
			return nil, fmt.Errorf("sensor_data message has no source id")
		}
		return &MeshMessage{SensorData: &msg}, nil

	case "telemetry":
		var msg DeviceTelemetryMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("failed to decode telemetry message: %w", err)
		}
		if msg.Subtype != TelemetrySubtypeDevice && msg.Subtype != TelemetrySubtypeEnvironment {
			return nil, fmt.Errorf("unknown telemetry subtype: %q", msg.Subtype)
		}
		return &MeshMessage{Telemetry: &msg}, nil

	case "sos":
		var msg SOSMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("failed to decode sos message: %w", err)
		}
		if msg.From == "" {
			return nil, fmt.Errorf("sos message has no source id")
		}
		return &MeshMessage{SOS: &msg}, nil

	default:
		return nil, fmt.Errorf("unknown mesh message type: %q", head.Type)
	}
}
