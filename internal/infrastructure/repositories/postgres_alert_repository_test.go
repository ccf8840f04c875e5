package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rescue-coordination-system/internal/domain"
)

func alertColumnNames() []string {
	return []string{
		"id", "device_id", "type", "severity", "status", "title", "description",
		"latitude", "longitude", "triggered_at", "acknowledged_at", "acknowledged_by",
		"resolved_at", "survivor_count",
	}
}

func TestPostgresAlertRepository_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresAlertRepository(db)
	id := uuid.New()
	triggeredAt := time.Now()

	rows := sqlmock.NewRows(alertColumnNames()).
		AddRow(id, "node-1", "sensor_threshold", "critical", "active",
			"Possible survivor detected", "CO2 level 1300 ppm", 50.45, 30.52,
			triggeredAt, nil, nil, nil, nil)

	mock.ExpectQuery("SELECT (.+) FROM alerts WHERE id").
		WithArgs(id).
		WillReturnRows(rows)

	alert, err := repo.FindByID(context.Background(), id)
	require.NoError(t, err)

	assert.Equal(t, id, alert.ID)
	assert.Equal(t, "node-1", alert.DeviceID)
	assert.Equal(t, domain.AlertTypeThreshold, alert.Type)
	assert.Equal(t, domain.AlertStatusActive, alert.Status)
	require.NotNil(t, alert.Location)
	assert.Equal(t, 50.45, alert.Location.Latitude)
	assert.Nil(t, alert.AcknowledgedAt)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresAlertRepository_FindByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresAlertRepository(db)
	id := uuid.New()

	mock.ExpectQuery("SELECT (.+) FROM alerts WHERE id").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(alertColumnNames()))

	_, err = repo.FindByID(context.Background(), id)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresAlertRepository_FindAll_StatusFilter(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresAlertRepository(db)

	rows := sqlmock.NewRows(alertColumnNames()).
		AddRow(uuid.New(), "node-1", "sos", "critical", "active",
			"SOS from Node node-1", "", nil, nil, time.Now(), nil, nil, nil, nil)

	mock.ExpectQuery("SELECT (.+) FROM alerts WHERE 1=1 AND status").
		WithArgs("active").
		WillReturnRows(rows)

	alerts, err := repo.FindAll(context.Background(), map[string]interface{}{"status": "active"})
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, domain.AlertTypeSOS, alerts[0].Type)
	assert.Nil(t, alerts[0].Location)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresAlertRepository_Update_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresAlertRepository(db)
	alert := &domain.Alert{ID: uuid.New(), Status: domain.AlertStatusResolved}

	mock.ExpectExec("UPDATE alerts").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.Update(context.Background(), alert)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}
