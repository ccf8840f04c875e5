package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"rescue-coordination-system/internal/domain"
	"rescue-coordination-system/internal/ports"
	"rescue-coordination-system/pkg/classifier"
)

// IngestService приймає повідомлення mesh-мережі, нормалізує їх у показання
// сенсорів, класифікує ймовірність наявності вцілілих та генерує порогові
// тривоги. Генерація рівнева з де-дуплікацією: поки показання пристрою
// тримаються вище порога, пристрій дає рівно одну тривогу; прапорець
// знімається, щойно показання опускаються до порога або нижче.
type IngestService struct {
	deviceService *DeviceService
	alertService  *AlertService
	threshold     *classifier.Threshold
	cache         ports.ReadingCache
	broadcaster   ports.EventBroadcaster
	logger        *zap.Logger

	batteryLowLevel int

	mu         sync.Mutex
	co2Flagged map[string]bool
	battFlags  map[string]bool
}

// NewIngestService створює новий екземпляр IngestService
func NewIngestService(
	deviceService *DeviceService,
	alertService *AlertService,
	threshold *classifier.Threshold,
	cache ports.ReadingCache,
	broadcaster ports.EventBroadcaster,
	batteryLowLevel int,
	logger *zap.Logger,
) *IngestService {
	return &IngestService{
		deviceService:   deviceService,
		alertService:    alertService,
		threshold:       threshold,
		cache:           cache,
		broadcaster:     broadcaster,
		batteryLowLevel: batteryLowLevel,
		logger:          logger,
		co2Flagged:      make(map[string]bool),
		battFlags:       make(map[string]bool),
	}
}

// HandleSensorData обробляє показання сенсорів вузла mesh-мережі
func (s *IngestService) HandleSensorData(ctx context.Context, msg *domain.SensorDataMessage) error {
	deviceID := msg.SourceID()
	now := time.Now()

	reading := &domain.SensorReading{
		DeviceID:    deviceID,
		NodeNum:     msg.NodeNum,
		CO2:         msg.CO2,
		Temperature: msg.Temperature,
		Humidity:    msg.Humidity,
		Location:    domain.Location{Latitude: msg.Latitude, Longitude: msg.Longitude},
		GPSFix:      msg.GPSFix,
		Timestamp:   msg.Time(),
		ReceivedAt:  now,
	}

	threshold := s.threshold.Value()
	probability := classifier.Classify(reading.CO2, threshold)

	device, err := s.deviceService.TouchFromReading(ctx, deviceID, reading)
	if err != nil {
		return fmt.Errorf("failed to upsert device %s: %w", deviceID, err)
	}

	if err := s.cache.Append(ctx, reading); err != nil {
		// Кеш показань не критичний для шляху тривог
		s.logger.Warn("Failed to cache sensor reading",
			zap.String("device_id", deviceID),
			zap.Error(err),
		)
	}

	if err := s.evaluateCO2(ctx, device, reading, threshold, probability); err != nil {
		return err
	}

	s.broadcaster.Broadcast(domain.NewEvent(domain.EventSensorData, map[string]interface{}{
		"reading":              reading,
		"survivor_probability": probability,
	}))
	return nil
}

// evaluateCO2 застосовує рівневу логіку порогових тривог до одного показання
func (s *IngestService) evaluateCO2(ctx context.Context, device *domain.Device, reading *domain.SensorReading, threshold float64, probability domain.SurvivorProbability) error {
	s.mu.Lock()
	exceeds := reading.CO2 > threshold && threshold > 0
	shouldAlert := exceeds && !s.co2Flagged[reading.DeviceID]
	if exceeds {
		s.co2Flagged[reading.DeviceID] = true
	} else {
		delete(s.co2Flagged, reading.DeviceID)
	}
	s.mu.Unlock()

	if !shouldAlert {
		return nil
	}

	severity := classifier.SeverityFor(probability)
	loc := reading.Location

	alert := &domain.Alert{
		DeviceID: reading.DeviceID,
		Type:     domain.AlertTypeThreshold,
		Severity: severity,
		Title:    fmt.Sprintf("Possible survivor detected near %s", device.Name),
		Description: fmt.Sprintf("CO2 level %.0f ppm exceeds threshold %.0f ppm (probability: %s)",
			reading.CO2, threshold, probability),
		Location:    &loc,
		TriggeredAt: reading.ReceivedAt,
	}

	if err := s.alertService.Create(ctx, alert); err != nil {
		return fmt.Errorf("failed to create threshold alert for device %s: %w", reading.DeviceID, err)
	}

	s.logger.Info("Threshold alert generated",
		zap.String("device_id", reading.DeviceID),
		zap.Float64("co2", reading.CO2),
		zap.Float64("threshold", threshold),
		zap.String("probability", string(probability)),
	)
	return nil
}

// HandleTelemetry обробляє службову телеметрію пристрою (заряд батареї тощо)
func (s *IngestService) HandleTelemetry(ctx context.Context, msg *domain.DeviceTelemetryMessage) error {
	deviceID := msg.SourceID()

	device, err := s.deviceService.TouchFromTelemetry(ctx, deviceID, msg)
	if err != nil {
		return fmt.Errorf("failed to upsert device %s: %w", deviceID, err)
	}

	if msg.Subtype == domain.TelemetrySubtypeDevice && msg.Battery != nil {
		if err := s.evaluateBattery(ctx, device, *msg.Battery); err != nil {
			return err
		}
	}

	battery := device.BatteryLevel
	s.broadcaster.Broadcast(domain.NewEvent(domain.EventDeviceUpdate, domain.DeviceUpdatePayload{
		DeviceID:     device.ID,
		Status:       device.Status,
		BatteryLevel: &battery,
		Location:     &device.Location,
	}))
	return nil
}

// evaluateBattery генерує тривогу низького заряду з тією ж рівневою
// де-дуплікацією, що й порогові тривоги CO2
func (s *IngestService) evaluateBattery(ctx context.Context, device *domain.Device, batteryLevel int) error {
	s.mu.Lock()
	low := batteryLevel < s.batteryLowLevel
	shouldAlert := low && !s.battFlags[device.ID]
	if low {
		s.battFlags[device.ID] = true
	} else {
		delete(s.battFlags, device.ID)
	}
	s.mu.Unlock()

	if !shouldAlert {
		return nil
	}

	alert := &domain.Alert{
		DeviceID:    device.ID,
		Type:        domain.AlertTypeBatteryLow,
		Severity:    domain.AlertSeverityMedium,
		Title:       fmt.Sprintf("Low battery on %s", device.Name),
		Description: fmt.Sprintf("Battery level %d%% is below %d%%", batteryLevel, s.batteryLowLevel),
		Location:    &device.Location,
		TriggeredAt: time.Now(),
	}

	if err := s.alertService.Create(ctx, alert); err != nil {
		return fmt.Errorf("failed to create battery alert for device %s: %w", device.ID, err)
	}
	return nil
}

// HandleSOS створює тривогу найвищої важливості за сигналом лиха з вузла.
// Сигнали SOS не де-дуплікуються: кожен сигнал є окремою подією.
func (s *IngestService) HandleSOS(ctx context.Context, msg *domain.SOSMessage) error {
	device, err := s.deviceService.findOrRegister(ctx, msg.From)
	if err != nil {
		return fmt.Errorf("failed to upsert device %s: %w", msg.From, err)
	}

	description := msg.Message
	if description == "" {
		description = "SOS signal received from field node"
	}

	alert := &domain.Alert{
		DeviceID:    msg.From,
		Type:        domain.AlertTypeSOS,
		Severity:    domain.AlertSeverityCritical,
		Title:       fmt.Sprintf("SOS from %s", device.Name),
		Description: description,
		Location:    &domain.Location{Latitude: msg.Latitude, Longitude: msg.Longitude},
		TriggeredAt: time.Now(),
	}

	if err := s.alertService.Create(ctx, alert); err != nil {
		return fmt.Errorf("failed to create sos alert for device %s: %w", msg.From, err)
	}
	return nil
}

// HandleMeshMessage декодує й маршрутизує сире повідомлення mesh-мережі
func (s *IngestService) HandleMeshMessage(ctx context.Context, payload []byte) error {
	msg, err := domain.DecodeMeshMessage(payload)
	if err != nil {
		return err
	}

	switch {
	case msg.SensorData != nil:
		return s.HandleSensorData(ctx, msg.SensorData)
	case msg.Telemetry != nil:
		return s.HandleTelemetry(ctx, msg.Telemetry)
	case msg.SOS != nil:
		return s.HandleSOS(ctx, msg.SOS)
	default:
		return fmt.Errorf("mesh message decoded to no payload")
	}
}
