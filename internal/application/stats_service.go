package application

import (
	"context"

	"rescue-coordination-system/internal/domain"
	"rescue-coordination-system/internal/ports"
)

// StatsService обчислює агреговані показники для панелей оператора.
// Обсяги даних польової системи невеликі, тому агрегація виконується
// повним проходом по репозиторіях без окремого сховища показників.
type StatsService struct {
	deviceRepo   ports.DeviceRepository
	alertRepo    ports.AlertRepository
	campaignRepo ports.CampaignRepository
	userRepo     ports.UserRepository
}

// NewStatsService створює новий екземпляр StatsService
func NewStatsService(deviceRepo ports.DeviceRepository, alertRepo ports.AlertRepository, campaignRepo ports.CampaignRepository, userRepo ports.UserRepository) *StatsService {
	return &StatsService{
		deviceRepo:   deviceRepo,
		alertRepo:    alertRepo,
		campaignRepo: campaignRepo,
		userRepo:     userRepo,
	}
}

// Dashboard обчислює зведення для головної панелі
func (s *StatsService) Dashboard(ctx context.Context) (*domain.DashboardStats, error) {
	stats := &domain.DashboardStats{}

	users, err := s.userRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	stats.TotalUsers = len(users)

	devices, err := s.deviceRepo.FindAll(ctx, nil)
	if err != nil {
		return nil, err
	}
	stats.TotalDevices = len(devices)
	for _, d := range devices {
		if d.Status == domain.DeviceStatusOffline {
			stats.DevicesOffline++
		} else {
			stats.DevicesOnline++
		}
	}

	alerts, err := s.alertRepo.FindAll(ctx, map[string]interface{}{"status": string(domain.AlertStatusActive)})
	if err != nil {
		return nil, err
	}
	stats.ActiveAlerts = len(alerts)

	campaigns, err := s.campaignRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range campaigns {
		if !c.Status.IsTerminal() {
			stats.ActiveCampaigns++
		}
	}

	return stats, nil
}

// RescuerPerformance обчислює показники рятувальників за всіма кампаніями
func (s *StatsService) RescuerPerformance(ctx context.Context) ([]*domain.RescuerPerformance, error) {
	campaigns, err := s.campaignRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*domain.RescuerPerformance)
	get := func(rescuerID string) *domain.RescuerPerformance {
		p, ok := byID[rescuerID]
		if !ok {
			p = &domain.RescuerPerformance{RescuerID: rescuerID}
			byID[rescuerID] = p
		}
		return p
	}

	for _, c := range campaigns {
		for _, node := range c.NodeAssignments {
			for _, rescuerID := range node.RescuerIDs {
				get(rescuerID).NodesAssigned++
			}
			if node.Status == domain.NodeStatusRescued && node.RescuedBy != "" {
				p := get(node.RescuedBy)
				p.NodesRescued++
				p.SurvivorsFound += node.SurvivorsFound
			}
		}
	}

	users, err := s.userRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if p, ok := byID[u.ID]; ok {
			p.DisplayName = u.DisplayName
		}
	}

	out := make([]*domain.RescuerPerformance, 0, len(byID))
	for _, p := range byID {
		out = append(out, p)
	}
	return out, nil
}
