package application

import (
	"context"
	"time"

	"go.uber.org/zap"

	"rescue-coordination-system/internal/domain"
	"rescue-coordination-system/internal/ports"
)

// PresenceService слідкує за мовчанням пристроїв: вузли, що не виходили на
// зв'язок довше заданого часу, автоматично переводяться в offline. Це єдине
// автоматичне пониження статусу; тривога при цьому навмисно не створюється,
// бо мовчання вузла в зоні лиха є нормою, а не інцидентом.
type PresenceService struct {
	deviceRepo    ports.DeviceRepository
	deviceService *DeviceService
	logger        *zap.Logger

	sweepInterval  time.Duration
	offlineTimeout time.Duration
}

// NewPresenceService створює новий екземпляр PresenceService
func NewPresenceService(deviceRepo ports.DeviceRepository, deviceService *DeviceService, sweepInterval, offlineTimeout time.Duration, logger *zap.Logger) *PresenceService {
	return &PresenceService{
		deviceRepo:     deviceRepo,
		deviceService:  deviceService,
		logger:         logger,
		sweepInterval:  sweepInterval,
		offlineTimeout: offlineTimeout,
	}
}

// Start запускає періодичний обхід. Блокує до скасування контексту.
func (s *PresenceService) Start(ctx context.Context) {
	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	s.logger.Info("Presence sweep started",
		zap.Duration("interval", s.sweepInterval),
		zap.Duration("offline_timeout", s.offlineTimeout),
	)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Presence sweep stopped")
			return
		case <-ticker.C:
			if err := s.Sweep(ctx); err != nil {
				s.logger.Error("Presence sweep failed", zap.Error(err))
			}
		}
	}
}

// Sweep виконує один обхід реєстру пристроїв
func (s *PresenceService) Sweep(ctx context.Context) error {
	devices, err := s.deviceRepo.FindAll(ctx, nil)
	if err != nil {
		return err
	}

	cutoff := time.Now().Add(-s.offlineTimeout)
	for _, device := range devices {
		if device.Status == domain.DeviceStatusOffline {
			continue
		}
		if device.LastSeenAt.After(cutoff) {
			continue
		}
		if err := s.deviceService.MarkOffline(ctx, device.ID); err != nil {
			s.logger.Warn("Failed to mark silent device offline",
				zap.String("device_id", device.ID),
				zap.Error(err),
			)
		}
	}
	return nil
}
