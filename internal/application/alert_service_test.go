package application

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"rescue-coordination-system/internal/domain"
	"rescue-coordination-system/internal/ports"
)

func newActiveAlert(t *testing.T, env *testEnv) *domain.Alert {
	t.Helper()
	alert := &domain.Alert{
		DeviceID: "node-1",
		Type:     domain.AlertTypeThreshold,
		Severity: domain.AlertSeverityHigh,
		Title:    "Possible survivor detected",
	}
	require.NoError(t, env.alerts.Create(context.Background(), alert))
	return alert
}

func TestAlertCreate_DefaultsAndBroadcast(t *testing.T) {
	env := newTestEnv()
	alert := newActiveAlert(t, env)

	assert.NotEqual(t, uuid.Nil, alert.ID)
	assert.Equal(t, domain.AlertStatusActive, alert.Status)
	assert.False(t, alert.TriggeredAt.IsZero())

	assert.Len(t, env.broadcaster.eventsOfType(domain.EventAlertNew), 1)
}

func TestAlertCreate_DuplicateID(t *testing.T) {
	env := newTestEnv()
	alert := newActiveAlert(t, env)

	dup := &domain.Alert{ID: alert.ID, DeviceID: "node-2", Title: "Duplicate"}
	err := env.alerts.Create(context.Background(), dup)
	assert.ErrorIs(t, err, domain.ErrDuplicateID)
}

func TestAlertAcknowledge(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	alert := newActiveAlert(t, env)

	acked, err := env.alerts.Acknowledge(ctx, alert.ID, domain.Actor{ID: "op-1", DisplayName: "Operator One"})
	require.NoError(t, err)
	assert.Equal(t, domain.AlertStatusAcknowledged, acked.Status)
	assert.Equal(t, "Operator One", acked.AcknowledgedBy)
	assert.NotNil(t, acked.AcknowledgedAt)

	// Повторне підтвердження відхиляється
	_, err = env.alerts.Acknowledge(ctx, alert.ID, domain.Actor{ID: "op-2"})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestAlertResolve_FromActiveAndAcknowledged(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	// Резолюція безпосередньо з active
	direct := newActiveAlert(t, env)
	resolved, err := env.alerts.Resolve(ctx, direct.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.AlertStatusResolved, resolved.Status)
	assert.NotNil(t, resolved.ResolvedAt)

	// Резолюція після підтвердження, з кількістю вцілілих
	acked := newActiveAlert(t, env)
	_, err = env.alerts.Acknowledge(ctx, acked.ID, domain.Actor{ID: "op-1"})
	require.NoError(t, err)

	count := 2
	resolved, err = env.alerts.Resolve(ctx, acked.ID, &count)
	require.NoError(t, err)
	require.NotNil(t, resolved.SurvivorCount)
	assert.Equal(t, 2, *resolved.SurvivorCount)
}

func TestAlertResolve_AlreadyResolved(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	alert := newActiveAlert(t, env)

	_, err := env.alerts.Resolve(ctx, alert.ID, nil)
	require.NoError(t, err)

	_, err = env.alerts.Resolve(ctx, alert.ID, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestAlertOperations_NotFound(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	missing := uuid.New()

	_, err := env.alerts.GetByID(ctx, missing)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = env.alerts.Acknowledge(ctx, missing, domain.Actor{ID: "op-1"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = env.alerts.Resolve(ctx, missing, nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateManualReport(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	estimate := 3
	alert, err := env.alerts.CreateManualReport(ctx, "Trapped family reported",
		"Voices heard under rubble", domain.Location{Latitude: 50.45, Longitude: 30.52},
		&estimate, domain.Actor{ID: "op-1", DisplayName: "Operator One"})
	require.NoError(t, err)

	assert.Equal(t, domain.AlertTypeManual, alert.Type)
	assert.Equal(t, domain.ManualReportDeviceID, alert.DeviceID)
	assert.Equal(t, domain.AlertSeverityHigh, alert.Severity)
	assert.Contains(t, alert.Description, "Operator One")
	require.NotNil(t, alert.SurvivorCount)
	assert.Equal(t, 3, *alert.SurvivorCount)
}

func TestAlertActive_Filter(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	first := newActiveAlert(t, env)
	newActiveAlert(t, env)
	_, err := env.alerts.Resolve(ctx, first.ID, nil)
	require.NoError(t, err)

	active, err := env.alerts.Active(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 1)
}

// gatedAlertRepository зупиняє перший запис між читанням та оновленням,
// щоб відтворити чергування двох конкурентних переходів статусу
type gatedAlertRepository struct {
	ports.AlertRepository
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (r *gatedAlertRepository) Update(ctx context.Context, alert *domain.Alert) error {
	gated := false
	r.once.Do(func() { gated = true })
	if gated {
		close(r.entered)
		<-r.release
	}
	return r.AlertRepository.Update(ctx, alert)
}

func TestAlertResolve_NotRegressedByConcurrentAcknowledge(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	alert := newActiveAlert(t, env)

	repo := &gatedAlertRepository{
		AlertRepository: env.alertRepo,
		entered:         make(chan struct{}),
		release:         make(chan struct{}),
	}
	service := NewAlertService(repo, env.broadcaster, zap.NewNop())

	ackDone := make(chan error, 1)
	go func() {
		_, err := service.Acknowledge(ctx, alert.ID, domain.Actor{ID: "op-1"})
		ackDone <- err
	}()
	<-repo.entered

	resolveDone := make(chan error, 1)
	go func() {
		_, err := service.Resolve(ctx, alert.ID, nil)
		resolveDone <- err
	}()

	// Резолюція не має почати власну послідовність читання-запису,
	// поки підтвердження не завершилося
	select {
	case err := <-resolveDone:
		t.Fatalf("resolve completed during acknowledge: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	close(repo.release)
	require.NoError(t, <-ackDone)
	require.NoError(t, <-resolveDone)

	final, err := env.alerts.GetByID(ctx, alert.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AlertStatusResolved, final.Status)
	assert.NotNil(t, final.ResolvedAt)
}
