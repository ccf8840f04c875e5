package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"rescue-coordination-system/internal/domain"
)

// PostgresAlertRepository імплементує AlertRepository для PostgreSQL
type PostgresAlertRepository struct {
	db *sql.DB
}

// NewPostgresAlertRepository створює новий екземпляр PostgresAlertRepository
func NewPostgresAlertRepository(db *sql.DB) *PostgresAlertRepository {
	return &PostgresAlertRepository{
		db: db,
	}
}

const alertColumns = `id, device_id, type, severity, status, title, description, latitude, longitude, triggered_at, acknowledged_at, acknowledged_by, resolved_at, survivor_count`

func (r *PostgresAlertRepository) Save(ctx context.Context, alert *domain.Alert) error {
	query := `
        INSERT INTO alerts (` + alertColumns + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
    `

	var lat, lon sql.NullFloat64
	if alert.Location != nil {
		lat = sql.NullFloat64{Float64: alert.Location.Latitude, Valid: true}
		lon = sql.NullFloat64{Float64: alert.Location.Longitude, Valid: true}
	}

	_, err := r.db.ExecContext(
		ctx,
		query,
		alert.ID,
		alert.DeviceID,
		alert.Type,
		alert.Severity,
		alert.Status,
		alert.Title,
		alert.Description,
		lat,
		lon,
		alert.TriggeredAt,
		alert.AcknowledgedAt,
		nullString(alert.AcknowledgedBy),
		alert.ResolvedAt,
		alert.SurvivorCount,
	)

	return err
}

func (r *PostgresAlertRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM alerts WHERE id = $1`

	alert, err := scanAlert(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: alert %s", domain.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	return alert, nil
}

// FindAll шукає тривоги за фільтрами
func (r *PostgresAlertRepository) FindAll(ctx context.Context, filters map[string]interface{}) ([]*domain.Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM alerts WHERE 1=1`

	var args []interface{}
	argIndex := 1

	// Додавання фільтрів
	if status, ok := filters["status"]; ok {
		query += fmt.Sprintf(" AND status = $%d", argIndex)
		args = append(args, status)
		argIndex++
	}

	if severity, ok := filters["severity"]; ok {
		query += fmt.Sprintf(" AND severity = $%d", argIndex)
		args = append(args, severity)
		argIndex++
	}

	if deviceID, ok := filters["device_id"]; ok {
		query += fmt.Sprintf(" AND device_id = $%d", argIndex)
		args = append(args, deviceID)
		argIndex++
	}

	query += " ORDER BY triggered_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alerts []*domain.Alert
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, alert)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return alerts, nil
}

func (r *PostgresAlertRepository) Update(ctx context.Context, alert *domain.Alert) error {
	query := `
        UPDATE alerts
        SET status = $1, acknowledged_at = $2, acknowledged_by = $3, resolved_at = $4, survivor_count = $5
        WHERE id = $6
    `

	result, err := r.db.ExecContext(
		ctx,
		query,
		alert.Status,
		alert.AcknowledgedAt,
		nullString(alert.AcknowledgedBy),
		alert.ResolvedAt,
		alert.SurvivorCount,
		alert.ID,
	)

	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return fmt.Errorf("%w: alert %s", domain.ErrNotFound, alert.ID)
	}

	return nil
}

func (r *PostgresAlertRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM alerts WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return fmt.Errorf("%w: alert %s", domain.ErrNotFound, id)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAlert(row rowScanner) (*domain.Alert, error) {
	var alert domain.Alert
	var lat, lon sql.NullFloat64
	var acknowledgedBy sql.NullString

	err := row.Scan(
		&alert.ID,
		&alert.DeviceID,
		&alert.Type,
		&alert.Severity,
		&alert.Status,
		&alert.Title,
		&alert.Description,
		&lat,
		&lon,
		&alert.TriggeredAt,
		&alert.AcknowledgedAt,
		&acknowledgedBy,
		&alert.ResolvedAt,
		&alert.SurvivorCount,
	)
	if err != nil {
		return nil, err
	}

	if lat.Valid && lon.Valid {
		alert.Location = &domain.Location{Latitude: lat.Float64, Longitude: lon.Float64}
	}
	alert.AcknowledgedBy = acknowledgedBy.String

	return &alert, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
