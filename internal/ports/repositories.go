package ports

import (
	"context"
	"github.com/google/uuid"
	"rescue-coordination-system/internal/domain"
)

// DeviceRepository визначає методи для роботи з пристроями
type DeviceRepository interface {
	Save(ctx context.Context, device *domain.Device) error
	FindByID(ctx context.Context, id string) (*domain.Device, error)
	FindAll(ctx context.Context, filters map[string]interface{}) ([]*domain.Device, error)
	Update(ctx context.Context, device *domain.Device) error
	Delete(ctx context.Context, id string) error
}

// AlertRepository визначає методи для роботи з тривогами
type AlertRepository interface {
	Save(ctx context.Context, alert *domain.Alert) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Alert, error)
	FindAll(ctx context.Context, filters map[string]interface{}) ([]*domain.Alert, error)
	Update(ctx context.Context, alert *domain.Alert) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// CampaignRepository визначає методи для роботи з кампаніями.
// Запити за статусом та членством рятувальника можуть виконуватися повним
// скануванням, якщо сховище не має відповідних індексів.
type CampaignRepository interface {
	Save(ctx context.Context, campaign *domain.Campaign) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Campaign, error)
	FindAll(ctx context.Context) ([]*domain.Campaign, error)
	FindByStatus(ctx context.Context, status domain.CampaignStatus) ([]*domain.Campaign, error)
	FindByRescuer(ctx context.Context, rescuerID string) ([]*domain.Campaign, error)
	Update(ctx context.Context, campaign *domain.Campaign) error
}

// UserRepository визначає методи для роботи з користувачами
type UserRepository interface {
	Save(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindAll(ctx context.Context) ([]*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
}
