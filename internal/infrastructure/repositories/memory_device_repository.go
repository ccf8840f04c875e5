package repositories

import (
	"context"
	"fmt"
	"sync"

	"rescue-coordination-system/internal/domain"
)

// MemoryDeviceRepository імплементує DeviceRepository у пам'яті.
// Використовується в тестах та для локального запуску без PostgreSQL.
type MemoryDeviceRepository struct {
	mu      sync.RWMutex
	devices map[string]*domain.Device
}

// NewMemoryDeviceRepository створює новий екземпляр MemoryDeviceRepository
func NewMemoryDeviceRepository() *MemoryDeviceRepository {
	return &MemoryDeviceRepository{
		devices: make(map[string]*domain.Device),
	}
}

func (r *MemoryDeviceRepository) Save(ctx context.Context, device *domain.Device) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *device
	r.devices[device.ID] = &copied
	return nil
}

func (r *MemoryDeviceRepository) FindByID(ctx context.Context, id string) (*domain.Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	device, ok := r.devices[id]
	if !ok {
		return nil, fmt.Errorf("%w: device %s", domain.ErrNotFound, id)
	}

	copied := *device
	return &copied, nil
}

func (r *MemoryDeviceRepository) FindAll(ctx context.Context, filters map[string]interface{}) ([]*domain.Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var devices []*domain.Device
	for _, device := range r.devices {
		if status, ok := filters["status"]; ok && string(device.Status) != fmt.Sprint(status) {
			continue
		}
		copied := *device
		devices = append(devices, &copied)
	}
	return devices, nil
}

func (r *MemoryDeviceRepository) Update(ctx context.Context, device *domain.Device) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.devices[device.ID]; !ok {
		return fmt.Errorf("%w: device %s", domain.ErrNotFound, device.ID)
	}

	copied := *device
	r.devices[device.ID] = &copied
	return nil
}

func (r *MemoryDeviceRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.devices[id]; !ok {
		return fmt.Errorf("%w: device %s", domain.ErrNotFound, id)
	}

	delete(r.devices, id)
	return nil
}
