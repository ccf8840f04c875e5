package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"rescue-coordination-system/internal/domain"
)

// MemoryAlertRepository імплементує AlertRepository у пам'яті
type MemoryAlertRepository struct {
	mu     sync.RWMutex
	alerts map[uuid.UUID]*domain.Alert
}

// NewMemoryAlertRepository створює новий екземпляр MemoryAlertRepository
func NewMemoryAlertRepository() *MemoryAlertRepository {
	return &MemoryAlertRepository{
		alerts: make(map[uuid.UUID]*domain.Alert),
	}
}

func (r *MemoryAlertRepository) Save(ctx context.Context, alert *domain.Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.alerts[alert.ID] = copyAlert(alert)
	return nil
}

func (r *MemoryAlertRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Alert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	alert, ok := r.alerts[id]
	if !ok {
		return nil, fmt.Errorf("%w: alert %s", domain.ErrNotFound, id)
	}
	return copyAlert(alert), nil
}

func (r *MemoryAlertRepository) FindAll(ctx context.Context, filters map[string]interface{}) ([]*domain.Alert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var alerts []*domain.Alert
	for _, alert := range r.alerts {
		if status, ok := filters["status"]; ok && string(alert.Status) != fmt.Sprint(status) {
			continue
		}
		if severity, ok := filters["severity"]; ok && string(alert.Severity) != fmt.Sprint(severity) {
			continue
		}
		if deviceID, ok := filters["device_id"]; ok && alert.DeviceID != fmt.Sprint(deviceID) {
			continue
		}
		alerts = append(alerts, copyAlert(alert))
	}

	sort.Slice(alerts, func(i, j int) bool {
		return alerts[i].TriggeredAt.After(alerts[j].TriggeredAt)
	})
	return alerts, nil
}

func (r *MemoryAlertRepository) Update(ctx context.Context, alert *domain.Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.alerts[alert.ID]; !ok {
		return fmt.Errorf("%w: alert %s", domain.ErrNotFound, alert.ID)
	}

	r.alerts[alert.ID] = copyAlert(alert)
	return nil
}

func (r *MemoryAlertRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.alerts[id]; !ok {
		return fmt.Errorf("%w: alert %s", domain.ErrNotFound, id)
	}

	delete(r.alerts, id)
	return nil
}

func copyAlert(alert *domain.Alert) *domain.Alert {
	copied := *alert
	if alert.Location != nil {
		loc := *alert.Location
		copied.Location = &loc
	}
	if alert.AcknowledgedAt != nil {
		t := *alert.AcknowledgedAt
		copied.AcknowledgedAt = &t
	}
	if alert.ResolvedAt != nil {
		t := *alert.ResolvedAt
		copied.ResolvedAt = &t
	}
	if alert.SurvivorCount != nil {
		n := *alert.SurvivorCount
		copied.SurvivorCount = &n
	}
	return &copied
}
