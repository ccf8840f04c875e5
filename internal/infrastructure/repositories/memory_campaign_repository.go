package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"rescue-coordination-system/internal/domain"
)

// MemoryCampaignRepository імплементує CampaignRepository у пам'яті
type MemoryCampaignRepository struct {
	mu        sync.RWMutex
	campaigns map[uuid.UUID]*domain.Campaign
}

// NewMemoryCampaignRepository створює новий екземпляр MemoryCampaignRepository
func NewMemoryCampaignRepository() *MemoryCampaignRepository {
	return &MemoryCampaignRepository{
		campaigns: make(map[uuid.UUID]*domain.Campaign),
	}
}

func (r *MemoryCampaignRepository) Save(ctx context.Context, campaign *domain.Campaign) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.campaigns[campaign.ID] = copyCampaign(campaign)
	return nil
}

func (r *MemoryCampaignRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Campaign, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	campaign, ok := r.campaigns[id]
	if !ok {
		return nil, fmt.Errorf("%w: campaign %s", domain.ErrNotFound, id)
	}
	return copyCampaign(campaign), nil
}

func (r *MemoryCampaignRepository) FindAll(ctx context.Context) ([]*domain.Campaign, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	campaigns := make([]*domain.Campaign, 0, len(r.campaigns))
	for _, campaign := range r.campaigns {
		campaigns = append(campaigns, copyCampaign(campaign))
	}

	sort.Slice(campaigns, func(i, j int) bool {
		return campaigns[i].CreatedAt.After(campaigns[j].CreatedAt)
	})
	return campaigns, nil
}

func (r *MemoryCampaignRepository) FindByStatus(ctx context.Context, status domain.CampaignStatus) ([]*domain.Campaign, error) {
	all, err := r.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	var matched []*domain.Campaign
	for _, c := range all {
		if c.Status == status {
			matched = append(matched, c)
		}
	}
	return matched, nil
}

func (r *MemoryCampaignRepository) FindByRescuer(ctx context.Context, rescuerID string) ([]*domain.Campaign, error) {
	all, err := r.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	var matched []*domain.Campaign
	for _, c := range all {
		if c.HasRescuer(rescuerID) {
			matched = append(matched, c)
		}
	}
	return matched, nil
}

func (r *MemoryCampaignRepository) Update(ctx context.Context, campaign *domain.Campaign) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.campaigns[campaign.ID]; !ok {
		return fmt.Errorf("%w: campaign %s", domain.ErrNotFound, campaign.ID)
	}

	r.campaigns[campaign.ID] = copyCampaign(campaign)
	return nil
}

func copyCampaign(campaign *domain.Campaign) *domain.Campaign {
	copied := *campaign

	copied.AlertIDs = append([]uuid.UUID{}, campaign.AlertIDs...)
	copied.AssignedRescuerIDs = append([]string{}, campaign.AssignedRescuerIDs...)
	copied.StatusHistory = append([]domain.StatusHistoryEntry{}, campaign.StatusHistory...)
	copied.Notes = append([]domain.CampaignNote{}, campaign.Notes...)

	copied.NodeAssignments = make([]domain.NodeAssignment, len(campaign.NodeAssignments))
	for i, node := range campaign.NodeAssignments {
		nodeCopy := node
		nodeCopy.RescuerIDs = append([]string{}, node.RescuerIDs...)
		if node.AlertID != nil {
			id := *node.AlertID
			nodeCopy.AlertID = &id
		}
		if node.RescuedAt != nil {
			t := *node.RescuedAt
			nodeCopy.RescuedAt = &t
		}
		copied.NodeAssignments[i] = nodeCopy
	}

	if campaign.ResolvedAt != nil {
		t := *campaign.ResolvedAt
		copied.ResolvedAt = &t
	}

	return &copied
}
