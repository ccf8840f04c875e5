package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"rescue-coordination-system/internal/domain"
)

// PostgresDeviceRepository імплементує DeviceRepository для PostgreSQL
type PostgresDeviceRepository struct {
	db *sql.DB
}

// NewPostgresDeviceRepository створює новий екземпляр PostgresDeviceRepository
func NewPostgresDeviceRepository(db *sql.DB) *PostgresDeviceRepository {
	return &PostgresDeviceRepository{
		db: db,
	}
}

func (r *PostgresDeviceRepository) Save(ctx context.Context, device *domain.Device) error {
	query := `
        INSERT INTO devices (id, name, status, battery_level, latitude, longitude, last_seen_at, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `

	_, err := r.db.ExecContext(
		ctx,
		query,
		device.ID,
		device.Name,
		device.Status,
		device.BatteryLevel,
		device.Location.Latitude,
		device.Location.Longitude,
		device.LastSeenAt,
		device.CreatedAt,
	)

	return err
}

func (r *PostgresDeviceRepository) FindByID(ctx context.Context, id string) (*domain.Device, error) {
	query := `
        SELECT id, name, status, battery_level, latitude, longitude, last_seen_at, created_at
        FROM devices
        WHERE id = $1
    `

	var device domain.Device
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&device.ID,
		&device.Name,
		&device.Status,
		&device.BatteryLevel,
		&device.Location.Latitude,
		&device.Location.Longitude,
		&device.LastSeenAt,
		&device.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: device %s", domain.ErrNotFound, id)
	}

	if err != nil {
		return nil, err
	}

	return &device, nil
}

// FindAll шукає пристрої за фільтрами
func (r *PostgresDeviceRepository) FindAll(ctx context.Context, filters map[string]interface{}) ([]*domain.Device, error) {
	query := `
        SELECT id, name, status, battery_level, latitude, longitude, last_seen_at, created_at
        FROM devices
        WHERE 1=1
    `

	var args []interface{}
	argIndex := 1

	// Додавання фільтрів
	if status, ok := filters["status"]; ok {
		query += fmt.Sprintf(" AND status = $%d", argIndex)
		args = append(args, status)
		argIndex++
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var devices []*domain.Device
	for rows.Next() {
		var device domain.Device
		if err := rows.Scan(
			&device.ID,
			&device.Name,
			&device.Status,
			&device.BatteryLevel,
			&device.Location.Latitude,
			&device.Location.Longitude,
			&device.LastSeenAt,
			&device.CreatedAt,
		); err != nil {
			return nil, err
		}
		devices = append(devices, &device)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return devices, nil
}

func (r *PostgresDeviceRepository) Update(ctx context.Context, device *domain.Device) error {
	query := `
        UPDATE devices
        SET name = $1, status = $2, battery_level = $3, latitude = $4, longitude = $5, last_seen_at = $6
        WHERE id = $7
    `

	result, err := r.db.ExecContext(
		ctx,
		query,
		device.Name,
		device.Status,
		device.BatteryLevel,
		device.Location.Latitude,
		device.Location.Longitude,
		device.LastSeenAt,
		device.ID,
	)

	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return fmt.Errorf("%w: device %s", domain.ErrNotFound, device.ID)
	}

	return nil
}

func (r *PostgresDeviceRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM devices WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return fmt.Errorf("%w: device %s", domain.ErrNotFound, id)
	}

	return nil
}
