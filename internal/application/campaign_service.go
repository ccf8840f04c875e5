package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"rescue-coordination-system/internal/domain"
	"rescue-coordination-system/internal/ports"
)

// NodeSeed описує вихідні дані одного вузла при створенні кампанії
type NodeSeed struct {
	DeviceID string
	Location domain.Location
}

// CampaignService відповідає за життєвий цикл рятувальних кампаній:
// переходи статусів, призначення рятувальників та агрегацію результатів.
// Усі мутації кампаній серіалізуються; перевірки виконуються до будь-якої
// зміни стану, тому відкат не потрібен.
type CampaignService struct {
	campaignRepo ports.CampaignRepository
	alertService *AlertService
	archive      ports.CampaignArchive
	broadcaster  ports.EventBroadcaster
	logger       *zap.Logger

	// Серіалізує конкуруючі запити на мутацію кампаній
	mu sync.Mutex
}

// NewCampaignService створює новий екземпляр CampaignService
func NewCampaignService(
	campaignRepo ports.CampaignRepository,
	alertService *AlertService,
	archive ports.CampaignArchive,
	broadcaster ports.EventBroadcaster,
	logger *zap.Logger,
) *CampaignService {
	return &CampaignService{
		campaignRepo: campaignRepo,
		alertService: alertService,
		archive:      archive,
		broadcaster:  broadcaster,
		logger:       logger,
	}
}

// CreateFromAlerts створює кампанію з одним вузлом на кожну вибрану тривогу.
// Якщо rescuerIDs не порожній, кампанія одразу стартує в статусі assigned,
// але журнал все одно містить обидва записи: initiated та assigned.
func (s *CampaignService) CreateFromAlerts(ctx context.Context, name string, alertIDs []uuid.UUID, rescuerIDs []string, alertDeviceMap map[uuid.UUID]NodeSeed) (*domain.Campaign, error) {
	if len(alertIDs) == 0 {
		return nil, domain.ErrEmptyNodeSet
	}

	nodes := make([]domain.NodeAssignment, 0, len(alertIDs))
	for _, alertID := range alertIDs {
		id := alertID
		seed := alertDeviceMap[alertID]
		nodeID := seed.DeviceID
		if nodeID == "" {
			nodeID = alertID.String()
		}
		nodes = append(nodes, domain.NodeAssignment{
			NodeID:     nodeID,
			DeviceID:   seed.DeviceID,
			AlertID:    &id,
			RescuerIDs: []string{},
			Location:   seed.Location,
			Status:     domain.NodeStatusPending,
		})
	}

	return s.create(ctx, name, alertIDs, rescuerIDs, nodes)
}

// CreateFromDevices створює кампанію безпосередньо з вибраних пристроїв
func (s *CampaignService) CreateFromDevices(ctx context.Context, name string, deviceIDs []string, rescuerIDs []string, deviceLocationMap map[string]domain.Location) (*domain.Campaign, error) {
	if len(deviceIDs) == 0 {
		return nil, domain.ErrEmptyNodeSet
	}

	nodes := make([]domain.NodeAssignment, 0, len(deviceIDs))
	for _, deviceID := range deviceIDs {
		nodes = append(nodes, domain.NodeAssignment{
			NodeID:     deviceID,
			DeviceID:   deviceID,
			RescuerIDs: []string{},
			Location:   deviceLocationMap[deviceID],
			Status:     domain.NodeStatusPending,
		})
	}

	return s.create(ctx, name, nil, rescuerIDs, nodes)
}

func (s *CampaignService) create(ctx context.Context, name string, alertIDs []uuid.UUID, rescuerIDs []string, nodes []domain.NodeAssignment) (*domain.Campaign, error) {
	now := time.Now()

	campaign := &domain.Campaign{
		ID:                 uuid.New(),
		Name:               name,
		Status:             domain.CampaignStatusInitiated,
		AlertIDs:           alertIDs,
		AssignedRescuerIDs: []string{},
		NodeAssignments:    nodes,
		Location:           nodes[0].Location,
		StatusHistory: []domain.StatusHistoryEntry{
			{Status: domain.CampaignStatusInitiated, Timestamp: now, Note: "Campaign initiated"},
		},
		Notes:     []domain.CampaignNote{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if campaign.AlertIDs == nil {
		campaign.AlertIDs = []uuid.UUID{}
	}

	// Гілка часу створення: рятувальники відомі одразу, кампанія стартує
	// в assigned, але це не виняток у графі переходів — журнал містить
	// обидва записи
	if len(rescuerIDs) > 0 {
		campaign.AssignedRescuerIDs = append(campaign.AssignedRescuerIDs, rescuerIDs...)
		campaign.Status = domain.CampaignStatusAssigned
		campaign.StatusHistory = append(campaign.StatusHistory, domain.StatusHistoryEntry{
			Status:    domain.CampaignStatusAssigned,
			Timestamp: now,
			Note:      fmt.Sprintf("Assigned to %d rescuer(s)", len(rescuerIDs)),
		})
	}

	if err := s.campaignRepo.Save(ctx, campaign); err != nil {
		return nil, err
	}

	s.logger.Info("Campaign created",
		zap.String("campaign_id", campaign.ID.String()),
		zap.String("status", string(campaign.Status)),
		zap.Int("nodes", len(campaign.NodeAssignments)),
		zap.Int("rescuers", len(campaign.AssignedRescuerIDs)),
	)

	s.broadcaster.Broadcast(domain.NewEvent(domain.EventCampaignUpdate, domain.CampaignPayload{Campaign: campaign}))
	return campaign, nil
}

// UpdateStatus виконує перехід статусу кампанії. Перехід перевіряється за
// графом до будь-якої мутації; при відмові кампанія лишається незмінною.
// Для завершення кампанії використовуйте ResolveCampaign: цей загальний шлях
// не проставляє ResolvedAt, не завершує пов'язані тривоги та не архівує знімок.
func (s *CampaignService) UpdateStatus(ctx context.Context, id uuid.UUID, newStatus domain.CampaignStatus, note string, actor domain.Actor) (*domain.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	campaign, err := s.campaignRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !domain.CanTransition(campaign.Status, newStatus) {
		return nil, domain.TransitionError(campaign.Status, newStatus)
	}

	s.applyTransition(campaign, newStatus, note, actor.DisplayName)

	if err := s.campaignRepo.Update(ctx, campaign); err != nil {
		return nil, err
	}

	s.logger.Info("Campaign status changed",
		zap.String("campaign_id", campaign.ID.String()),
		zap.String("status", string(newStatus)),
		zap.String("actor", actor.DisplayName),
	)

	s.broadcaster.Broadcast(domain.NewEvent(domain.EventCampaignUpdate, domain.CampaignPayload{Campaign: campaign}))
	return campaign, nil
}

// applyTransition застосовує вже перевірений перехід: рівно один запис
// журналу на кожну зміну статусу
func (s *CampaignService) applyTransition(campaign *domain.Campaign, newStatus domain.CampaignStatus, note, updatedBy string) {
	now := time.Now()
	campaign.Status = newStatus
	campaign.UpdatedAt = now
	campaign.StatusHistory = append(campaign.StatusHistory, domain.StatusHistoryEntry{
		Status:    newStatus,
		Timestamp: now,
		Note:      note,
		UpdatedBy: updatedBy,
	})
}

// AssignCampaign призначає рятувальників на рівні кампанії.
// Дозволено лише зі статусу initiated.
func (s *CampaignService) AssignCampaign(ctx context.Context, id uuid.UUID, rescuerIDs []string) (*domain.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	campaign, err := s.campaignRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if campaign.Status != domain.CampaignStatusInitiated {
		return nil, fmt.Errorf("%w: campaign can only be assigned when initiated, current status is %s",
			domain.ErrInvalidState, campaign.Status)
	}

	campaign.AssignedRescuerIDs = mergeIDs(campaign.AssignedRescuerIDs, rescuerIDs)
	s.applyTransition(campaign, domain.CampaignStatusAssigned,
		fmt.Sprintf("Assigned to %d rescuer(s)", len(rescuerIDs)), "")

	if err := s.campaignRepo.Update(ctx, campaign); err != nil {
		return nil, err
	}

	s.broadcaster.Broadcast(domain.NewEvent(domain.EventCampaignUpdate, domain.CampaignPayload{Campaign: campaign}))
	return campaign, nil
}

// AssignNode призначає рятувальників на окремий вузол кампанії.
// Операція повторювана і не залежить від загального статусу кампанії;
// вказані рятувальники об'єднуються з множиною кампанії, а не замінюють її.
// Зміна вузла не додає запис до журналу статусів кампанії.
func (s *CampaignService) AssignNode(ctx context.Context, campaignID uuid.UUID, nodeID string, rescuerIDs []string) (*domain.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	campaign, err := s.campaignRepo.FindByID(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	node := campaign.Node(nodeID)
	if node == nil {
		return nil, fmt.Errorf("%w: node %s in campaign %s", domain.ErrNotFound, nodeID, campaignID)
	}

	node.RescuerIDs = append([]string{}, rescuerIDs...)
	node.Status = domain.NodeStatusAssigned
	campaign.AssignedRescuerIDs = mergeIDs(campaign.AssignedRescuerIDs, rescuerIDs)
	campaign.UpdatedAt = time.Now()

	if err := s.campaignRepo.Update(ctx, campaign); err != nil {
		return nil, err
	}

	s.broadcaster.Broadcast(domain.NewEvent(domain.EventCampaignUpdate, domain.CampaignPayload{Campaign: campaign}))
	return campaign, nil
}

// MarkNodeRescued позначає вузол врятованим. Термінальний стан для вузла;
// повторний виклик перезаписує кількість вцілілих (last-write-wins).
// Загальна кількість вцілілих завжди переобчислюється з даних вузлів.
func (s *CampaignService) MarkNodeRescued(ctx context.Context, campaignID uuid.UUID, nodeID string, rescuedBy string, survivorsFound int) (*domain.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	campaign, err := s.campaignRepo.FindByID(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	node := campaign.Node(nodeID)
	if node == nil {
		return nil, fmt.Errorf("%w: node %s in campaign %s", domain.ErrNotFound, nodeID, campaignID)
	}

	now := time.Now()
	node.Status = domain.NodeStatusRescued
	node.RescuedAt = &now
	node.RescuedBy = rescuedBy
	node.SurvivorsFound = survivorsFound

	campaign.TotalSurvivorsFound = recomputeSurvivors(campaign)
	campaign.UpdatedAt = now

	if err := s.campaignRepo.Update(ctx, campaign); err != nil {
		return nil, err
	}

	s.logger.Info("Node marked rescued",
		zap.String("campaign_id", campaignID.String()),
		zap.String("node_id", nodeID),
		zap.String("rescued_by", rescuedBy),
		zap.Int("survivors_found", survivorsFound),
	)

	s.broadcaster.Broadcast(domain.NewEvent(domain.EventCampaignUpdate, domain.CampaignPayload{Campaign: campaign}))
	return campaign, nil
}

// ResolveCampaign завершує кампанію. Дозволено з будь-якого нетермінального
// статусу, щоб підтримати дострокове завершення, коли всі вузли врятовані
// раніше повного проходження робочого процесу. Побічний ефект: усі прив'язані
// незавершені тривоги закриваються через реєстр тривог (best-effort, помилки
// окремих тривог не зривають резолюцію кампанії).
func (s *CampaignService) ResolveCampaign(ctx context.Context, campaignID uuid.UUID, resolvedBy string, note string) (*domain.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	campaign, err := s.campaignRepo.FindByID(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	if campaign.Status.IsTerminal() {
		return nil, domain.TransitionError(campaign.Status, domain.CampaignStatusResolved)
	}

	now := time.Now()
	campaign.TotalSurvivorsFound = recomputeSurvivors(campaign)
	if note == "" {
		note = fmt.Sprintf("Campaign resolved, %d survivor(s) found", campaign.TotalSurvivorsFound)
	}

	s.applyTransition(campaign, domain.CampaignStatusResolved, note, resolvedBy)
	campaign.ResolvedAt = &now

	if err := s.campaignRepo.Update(ctx, campaign); err != nil {
		return nil, err
	}

	s.resolveLinkedAlerts(ctx, campaign)
	s.archiveResolved(ctx, campaign)

	s.logger.Info("Campaign resolved",
		zap.String("campaign_id", campaignID.String()),
		zap.String("resolved_by", resolvedBy),
		zap.Int("total_survivors", campaign.TotalSurvivorsFound),
	)

	s.broadcaster.Broadcast(domain.NewEvent(domain.EventCampaignUpdate, domain.CampaignPayload{Campaign: campaign}))
	return campaign, nil
}

// resolveLinkedAlerts закриває всі тривоги, на які посилається кампанія.
// Помилки логуються та не перериваються: резолюція кампанії вже відбулася.
func (s *CampaignService) resolveLinkedAlerts(ctx context.Context, campaign *domain.Campaign) {
	seen := make(map[uuid.UUID]bool)
	var linked []uuid.UUID

	for _, id := range campaign.AlertIDs {
		if !seen[id] {
			seen[id] = true
			linked = append(linked, id)
		}
	}
	for _, node := range campaign.NodeAssignments {
		if node.AlertID != nil && !seen[*node.AlertID] {
			seen[*node.AlertID] = true
			linked = append(linked, *node.AlertID)
		}
	}

	for _, alertID := range linked {
		alert, err := s.alertService.GetByID(ctx, alertID)
		if err != nil {
			s.logger.Warn("Failed to load linked alert during campaign resolution",
				zap.String("campaign_id", campaign.ID.String()),
				zap.String("alert_id", alertID.String()),
				zap.Error(err),
			)
			continue
		}
		if alert.Status == domain.AlertStatusResolved {
			continue
		}
		if _, err := s.alertService.Resolve(ctx, alertID, nil); err != nil {
			s.logger.Warn("Failed to auto-resolve linked alert",
				zap.String("campaign_id", campaign.ID.String()),
				zap.String("alert_id", alertID.String()),
				zap.Error(err),
			)
		}
	}
}

// archiveResolved експортує знімок завершеної кампанії в довговічне сховище
func (s *CampaignService) archiveResolved(ctx context.Context, campaign *domain.Campaign) {
	if s.archive == nil {
		return
	}
	key, err := s.archive.ArchiveCampaign(ctx, campaign)
	if err != nil {
		s.logger.Warn("Failed to archive resolved campaign",
			zap.String("campaign_id", campaign.ID.String()),
			zap.Error(err),
		)
		return
	}
	s.logger.Info("Campaign archived",
		zap.String("campaign_id", campaign.ID.String()),
		zap.String("object_key", key),
	)
}

// AddNote додає нотатку до кампанії. Завжди дозволено незалежно від статусу.
func (s *CampaignService) AddNote(ctx context.Context, id uuid.UUID, content, author string) (*domain.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	campaign, err := s.campaignRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	campaign.Notes = append(campaign.Notes, domain.CampaignNote{
		ID:        uuid.New(),
		Content:   content,
		CreatedAt: time.Now(),
		CreatedBy: author,
	})
	campaign.UpdatedAt = time.Now()

	if err := s.campaignRepo.Update(ctx, campaign); err != nil {
		return nil, err
	}

	s.broadcaster.Broadcast(domain.NewEvent(domain.EventCampaignUpdate, domain.CampaignPayload{Campaign: campaign}))
	return campaign, nil
}

// GetByID отримує кампанію за ідентифікатором
func (s *CampaignService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Campaign, error) {
	return s.campaignRepo.FindByID(ctx, id)
}

// List отримує всі кампанії
func (s *CampaignService) List(ctx context.Context) ([]*domain.Campaign, error) {
	return s.campaignRepo.FindAll(ctx)
}

// ListByStatus отримує кампанії в заданому статусі
func (s *CampaignService) ListByStatus(ctx context.Context, status domain.CampaignStatus) ([]*domain.Campaign, error) {
	return s.campaignRepo.FindByStatus(ctx, status)
}

// ListByRescuer отримує кампанії, на які призначений рятувальник
func (s *CampaignService) ListByRescuer(ctx context.Context, rescuerID string) ([]*domain.Campaign, error) {
	return s.campaignRepo.FindByRescuer(ctx, rescuerID)
}

// ListActive повертає кампанії поза термінальними статусами
func (s *CampaignService) ListActive(ctx context.Context) ([]*domain.Campaign, error) {
	campaigns, err := s.campaignRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	var active []*domain.Campaign
	for _, c := range campaigns {
		if !c.Status.IsTerminal() {
			active = append(active, c)
		}
	}
	return active, nil
}

// Stats обчислює агреговані показники рятувальних операцій
func (s *CampaignService) Stats(ctx context.Context) (*domain.CampaignStats, error) {
	campaigns, err := s.campaignRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	stats := &domain.CampaignStats{}
	deployedRescuers := make(map[string]bool)

	for _, c := range campaigns {
		stats.TotalCampaigns++
		stats.TotalSurvivors += c.TotalSurvivorsFound

		switch {
		case c.Status == domain.CampaignStatusResolved:
			stats.ResolvedCampaigns++
		case !c.Status.IsTerminal():
			stats.ActiveCampaigns++
			stats.DeployedNodes += len(c.NodeAssignments)
			for _, id := range c.AssignedRescuerIDs {
				deployedRescuers[id] = true
			}
		}
	}

	stats.DeployedRescuers = len(deployedRescuers)
	return stats, nil
}

// recomputeSurvivors переобчислює суму вцілілих за врятованими вузлами.
// Лічильник кампанії ніколи не мутується незалежно.
func recomputeSurvivors(campaign *domain.Campaign) int {
	total := 0
	for _, node := range campaign.NodeAssignments {
		if node.Status == domain.NodeStatusRescued {
			total += node.SurvivorsFound
		}
	}
	return total
}

// mergeIDs об'єднує дві множини ідентифікаторів без дублікатів,
// зберігаючи порядок першої появи
func mergeIDs(existing, incoming []string) []string {
	seen := make(map[string]bool, len(existing))
	out := make([]string, 0, len(existing)+len(incoming))
	for _, id := range existing {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	for _, id := range incoming {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
