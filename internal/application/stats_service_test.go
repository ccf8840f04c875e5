package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rescue-coordination-system/internal/domain"
)

func TestDashboardStats(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	stats := NewStatsService(env.deviceRepo, env.alertRepo, env.campaignRepo, env.userRepo)

	require.NoError(t, env.userRepo.Save(ctx, &domain.User{ID: "op-1", Role: domain.RoleAdmin}))
	require.NoError(t, env.userRepo.Save(ctx, &domain.User{ID: "rescuer-1", Role: domain.RoleRescuer}))

	require.NoError(t, env.deviceRepo.Save(ctx, &domain.Device{ID: "node-1", Status: domain.DeviceStatusOnline}))
	require.NoError(t, env.deviceRepo.Save(ctx, &domain.Device{ID: "node-2", Status: domain.DeviceStatusWarning}))
	require.NoError(t, env.deviceRepo.Save(ctx, &domain.Device{ID: "node-3", Status: domain.DeviceStatusOffline}))

	newActiveAlert(t, env)
	resolvedAlert := newActiveAlert(t, env)
	_, err := env.alerts.Resolve(ctx, resolvedAlert.ID, nil)
	require.NoError(t, err)

	seedCampaignFromAlerts(t, env, []string{"rescuer-1"})

	dashboard, err := stats.Dashboard(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, dashboard.TotalUsers)
	assert.Equal(t, 3, dashboard.TotalDevices)
	assert.Equal(t, 2, dashboard.DevicesOnline)
	assert.Equal(t, 1, dashboard.DevicesOffline)
	assert.Equal(t, 3, dashboard.ActiveAlerts)
	assert.Equal(t, 1, dashboard.ActiveCampaigns)
}

func TestRescuerPerformance(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	stats := NewStatsService(env.deviceRepo, env.alertRepo, env.campaignRepo, env.userRepo)

	require.NoError(t, env.userRepo.Save(ctx, &domain.User{
		ID: "rescuer-1", DisplayName: "Rescuer One", Role: domain.RoleRescuer,
	}))

	campaign, _ := seedCampaignFromAlerts(t, env, []string{"rescuer-1"})
	first := campaign.NodeAssignments[0].NodeID
	second := campaign.NodeAssignments[1].NodeID

	_, err := env.campaigns.AssignNode(ctx, campaign.ID, first, []string{"rescuer-1"})
	require.NoError(t, err)
	_, err = env.campaigns.AssignNode(ctx, campaign.ID, second, []string{"rescuer-1"})
	require.NoError(t, err)

	_, err = env.campaigns.MarkNodeRescued(ctx, campaign.ID, first, "rescuer-1", 3)
	require.NoError(t, err)

	performance, err := stats.RescuerPerformance(ctx)
	require.NoError(t, err)
	require.Len(t, performance, 1)

	p := performance[0]
	assert.Equal(t, "rescuer-1", p.RescuerID)
	assert.Equal(t, "Rescuer One", p.DisplayName)
	assert.Equal(t, 2, p.NodesAssigned)
	assert.Equal(t, 1, p.NodesRescued)
	assert.Equal(t, 3, p.SurvivorsFound)
}
