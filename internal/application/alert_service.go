package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"rescue-coordination-system/internal/domain"
	"rescue-coordination-system/internal/ports"
)

// AlertService відповідає за реєстр тривог та переходи їхніх статусів.
// Статус рухається лише вперед: active -> acknowledged -> resolved
// (резолюція дозволена також безпосередньо з active).
// М'ютекс серіалізує послідовності читання-перевірки-запису, щоб конкурентні
// переходи не відкочували вже завершену тривогу.
type AlertService struct {
	alertRepo   ports.AlertRepository
	broadcaster ports.EventBroadcaster
	logger      *zap.Logger

	mu sync.Mutex
}

// NewAlertService створює новий екземпляр AlertService
func NewAlertService(
	alertRepo ports.AlertRepository,
	broadcaster ports.EventBroadcaster,
	logger *zap.Logger,
) *AlertService {
	return &AlertService{
		alertRepo:   alertRepo,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

// Create вставляє нову тривогу; повертає ErrDuplicateID при колізії ідентифікаторів
func (s *AlertService) Create(ctx context.Context, alert *domain.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if alert.ID == uuid.Nil {
		alert.ID = uuid.New()
	} else if existing, err := s.alertRepo.FindByID(ctx, alert.ID); err == nil && existing != nil {
		return fmt.Errorf("%w: alert %s", domain.ErrDuplicateID, alert.ID)
	}

	if alert.Status == "" {
		alert.Status = domain.AlertStatusActive
	}
	if alert.TriggeredAt.IsZero() {
		alert.TriggeredAt = time.Now()
	}

	if err := s.alertRepo.Save(ctx, alert); err != nil {
		return err
	}

	s.logger.Info("Alert created",
		zap.String("alert_id", alert.ID.String()),
		zap.String("device_id", alert.DeviceID),
		zap.String("type", string(alert.Type)),
		zap.String("severity", string(alert.Severity)),
	)

	s.broadcaster.Broadcast(domain.NewEvent(domain.EventAlertNew, domain.AlertPayload{Alert: alert}))
	return nil
}

// CreateManualReport створює тривогу за ручним повідомленням з місця події
func (s *AlertService) CreateManualReport(ctx context.Context, title, description string, location domain.Location, survivorEstimate *int, actor domain.Actor) (*domain.Alert, error) {
	alert := &domain.Alert{
		ID:            uuid.New(),
		DeviceID:      domain.ManualReportDeviceID,
		Type:          domain.AlertTypeManual,
		Severity:      domain.AlertSeverityHigh,
		Status:        domain.AlertStatusActive,
		Title:         title,
		Description:   description,
		Location:      &location,
		TriggeredAt:   time.Now(),
		SurvivorCount: survivorEstimate,
	}
	if actor.DisplayName != "" {
		alert.Description = fmt.Sprintf("%s (reported by %s)", description, actor.DisplayName)
	}

	if err := s.Create(ctx, alert); err != nil {
		return nil, err
	}
	return alert, nil
}

// Acknowledge підтверджує тривогу; дозволено лише зі статусу active
func (s *AlertService) Acknowledge(ctx context.Context, id uuid.UUID, actor domain.Actor) (*domain.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	alert, err := s.alertRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if alert.Status != domain.AlertStatusActive {
		return nil, domain.AlertTransitionError(alert.Status, domain.AlertStatusAcknowledged)
	}

	now := time.Now()
	alert.Status = domain.AlertStatusAcknowledged
	alert.AcknowledgedAt = &now
	alert.AcknowledgedBy = actor.DisplayName

	if err := s.alertRepo.Update(ctx, alert); err != nil {
		return nil, err
	}

	s.broadcaster.Broadcast(domain.NewEvent(domain.EventAlertUpdate, domain.AlertPayload{Alert: alert}))
	return alert, nil
}

// Resolve завершує тривогу; дозволено зі статусів active та acknowledged.
// survivorCount необов'язковий і використовується для ручних повідомлень.
func (s *AlertService) Resolve(ctx context.Context, id uuid.UUID, survivorCount *int) (*domain.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	alert, err := s.alertRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if alert.Status == domain.AlertStatusResolved {
		return nil, domain.AlertTransitionError(alert.Status, domain.AlertStatusResolved)
	}

	now := time.Now()
	alert.Status = domain.AlertStatusResolved
	alert.ResolvedAt = &now
	if survivorCount != nil {
		alert.SurvivorCount = survivorCount
	}

	if err := s.alertRepo.Update(ctx, alert); err != nil {
		return nil, err
	}

	s.logger.Info("Alert resolved",
		zap.String("alert_id", alert.ID.String()),
		zap.String("device_id", alert.DeviceID),
	)

	s.broadcaster.Broadcast(domain.NewEvent(domain.EventAlertUpdate, domain.AlertPayload{Alert: alert}))
	return alert, nil
}

// Delete видаляє тривогу; окрема адміністративна операція поза життєвим циклом
func (s *AlertService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.alertRepo.Delete(ctx, id)
}

// GetByID отримує тривогу за ідентифікатором
func (s *AlertService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Alert, error) {
	return s.alertRepo.FindByID(ctx, id)
}

// List отримує тривоги з фільтрацією за статусом, серйозністю та пристроєм
func (s *AlertService) List(ctx context.Context, filters map[string]interface{}) ([]*domain.Alert, error) {
	return s.alertRepo.FindAll(ctx, filters)
}

// Active повертає всі активні тривоги
func (s *AlertService) Active(ctx context.Context) ([]*domain.Alert, error) {
	return s.alertRepo.FindAll(ctx, map[string]interface{}{
		"status": domain.AlertStatusActive,
	})
}

// CriticalUnresolved повертає критичні тривоги, що ще не завершені
func (s *AlertService) CriticalUnresolved(ctx context.Context) ([]*domain.Alert, error) {
	alerts, err := s.alertRepo.FindAll(ctx, map[string]interface{}{
		"severity": domain.AlertSeverityCritical,
	})
	if err != nil {
		return nil, err
	}

	var out []*domain.Alert
	for _, a := range alerts {
		if a.Status != domain.AlertStatusResolved {
			out = append(out, a)
		}
	}
	return out, nil
}
