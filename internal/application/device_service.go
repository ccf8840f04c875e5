package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"rescue-coordination-system/internal/domain"
	"rescue-coordination-system/internal/ports"
)

// DeviceService відповідає за реєстр пристроїв mesh-мережі.
// Пристрої реєструються автоматично при першому повідомленні з мережі.
type DeviceService struct {
	deviceRepo      ports.DeviceRepository
	broadcaster     ports.EventBroadcaster
	logger          *zap.Logger
	batteryLowLevel int
}

// NewDeviceService створює новий екземпляр DeviceService
func NewDeviceService(deviceRepo ports.DeviceRepository, broadcaster ports.EventBroadcaster, batteryLowLevel int, logger *zap.Logger) *DeviceService {
	return &DeviceService{
		deviceRepo:      deviceRepo,
		broadcaster:     broadcaster,
		logger:          logger,
		batteryLowLevel: batteryLowLevel,
	}
}

// TouchFromReading оновлює пристрій за показаннями сенсорів, створюючи його
// при першому контакті. Будь-яке повідомлення переводить пристрій в online.
func (s *DeviceService) TouchFromReading(ctx context.Context, deviceID string, reading *domain.SensorReading) (*domain.Device, error) {
	device, err := s.findOrRegister(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	device.LastSeenAt = reading.ReceivedAt
	if reading.GPSFix > 0 {
		device.Location = reading.Location
	}
	device.Status = s.statusFor(device.BatteryLevel)

	if err := s.deviceRepo.Update(ctx, device); err != nil {
		return nil, err
	}
	return device, nil
}

// TouchFromTelemetry оновлює пристрій за службовою телеметрією
func (s *DeviceService) TouchFromTelemetry(ctx context.Context, deviceID string, msg *domain.DeviceTelemetryMessage) (*domain.Device, error) {
	device, err := s.findOrRegister(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	device.LastSeenAt = time.Now()
	if msg.Battery != nil {
		device.BatteryLevel = *msg.Battery
	}
	device.Status = s.statusFor(device.BatteryLevel)

	if err := s.deviceRepo.Update(ctx, device); err != nil {
		return nil, err
	}
	return device, nil
}

// findOrRegister шукає пристрій, реєструючи новий при першому контакті
func (s *DeviceService) findOrRegister(ctx context.Context, deviceID string) (*domain.Device, error) {
	device, err := s.deviceRepo.FindByID(ctx, deviceID)
	if err == nil {
		return device, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	now := time.Now()
	device = &domain.Device{
		ID:           deviceID,
		Name:         fmt.Sprintf("Node %s", deviceID),
		Status:       domain.DeviceStatusOnline,
		BatteryLevel: 100,
		LastSeenAt:   now,
		CreatedAt:    now,
	}

	if err := s.deviceRepo.Save(ctx, device); err != nil {
		return nil, err
	}

	s.logger.Info("New device registered from mesh network",
		zap.String("device_id", deviceID),
	)
	return device, nil
}

// statusFor обчислює статус активного пристрою за рівнем заряду
func (s *DeviceService) statusFor(batteryLevel int) domain.DeviceStatus {
	if batteryLevel < s.batteryLowLevel {
		return domain.DeviceStatusWarning
	}
	return domain.DeviceStatusOnline
}

// Register створює пристрій вручну через API
func (s *DeviceService) Register(ctx context.Context, device *domain.Device) (*domain.Device, error) {
	if _, err := s.deviceRepo.FindByID(ctx, device.ID); err == nil {
		return nil, fmt.Errorf("%w: device %s", domain.ErrDuplicateID, device.ID)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	now := time.Now()
	if device.Status == "" {
		device.Status = domain.DeviceStatusOffline
	}
	device.CreatedAt = now
	device.LastSeenAt = now

	if err := s.deviceRepo.Save(ctx, device); err != nil {
		return nil, err
	}

	s.logger.Info("Device registered", zap.String("device_id", device.ID))
	return device, nil
}

// Update оновлює атрибути пристрою
func (s *DeviceService) Update(ctx context.Context, device *domain.Device) (*domain.Device, error) {
	existing, err := s.deviceRepo.FindByID(ctx, device.ID)
	if err != nil {
		return nil, err
	}

	if device.Name != "" {
		existing.Name = device.Name
	}
	if device.Status != "" {
		existing.Status = device.Status
	}
	if device.Location.Latitude != 0 || device.Location.Longitude != 0 {
		existing.Location = device.Location
	}

	if err := s.deviceRepo.Update(ctx, existing); err != nil {
		return nil, err
	}

	battery := existing.BatteryLevel
	s.broadcaster.Broadcast(domain.NewEvent(domain.EventDeviceUpdate, domain.DeviceUpdatePayload{
		DeviceID:     existing.ID,
		Status:       existing.Status,
		BatteryLevel: &battery,
		Location:     &existing.Location,
	}))
	return existing, nil
}

// MarkOffline переводить пристрій в offline.
// Викликається доглядачем присутності; тривога при цьому не створюється.
func (s *DeviceService) MarkOffline(ctx context.Context, deviceID string) error {
	device, err := s.deviceRepo.FindByID(ctx, deviceID)
	if err != nil {
		return err
	}

	if device.Status == domain.DeviceStatusOffline {
		return nil
	}

	device.Status = domain.DeviceStatusOffline
	if err := s.deviceRepo.Update(ctx, device); err != nil {
		return err
	}

	s.logger.Info("Device marked offline",
		zap.String("device_id", deviceID),
		zap.Time("last_seen_at", device.LastSeenAt),
	)

	battery := device.BatteryLevel
	s.broadcaster.Broadcast(domain.NewEvent(domain.EventDeviceUpdate, domain.DeviceUpdatePayload{
		DeviceID:     device.ID,
		Status:       device.Status,
		BatteryLevel: &battery,
		Location:     &device.Location,
	}))
	return nil
}

// GetByID отримує пристрій за ідентифікатором
func (s *DeviceService) GetByID(ctx context.Context, id string) (*domain.Device, error) {
	return s.deviceRepo.FindByID(ctx, id)
}

// List отримує пристрої за фільтрами
func (s *DeviceService) List(ctx context.Context, filters map[string]interface{}) ([]*domain.Device, error) {
	return s.deviceRepo.FindAll(ctx, filters)
}

// Delete видаляє пристрій з реєстру
func (s *DeviceService) Delete(ctx context.Context, id string) error {
	return s.deviceRepo.Delete(ctx, id)
}
