package application

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"rescue-coordination-system/internal/domain"
	"rescue-coordination-system/internal/infrastructure/repositories"
)

// captureBroadcaster накопичує транслювані події для перевірок у тестах
type captureBroadcaster struct {
	mu     sync.Mutex
	events []domain.Event
}

func (b *captureBroadcaster) Broadcast(event domain.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

func (b *captureBroadcaster) eventsOfType(t domain.EventType) []domain.Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	var matched []domain.Event
	for _, e := range b.events {
		if e.Type == t {
			matched = append(matched, e)
		}
	}
	return matched
}

// fakeArchive імітує об'єктне сховище знімків кампаній
type fakeArchive struct {
	mu        sync.Mutex
	archived  []string
	snapshots map[string]*domain.Campaign
	fail      bool
}

func (a *fakeArchive) ArchiveCampaign(ctx context.Context, campaign *domain.Campaign) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.fail {
		return "", fmt.Errorf("archive unavailable")
	}
	key := "campaigns/" + campaign.ID.String() + ".json"
	a.archived = append(a.archived, key)
	if a.snapshots == nil {
		a.snapshots = make(map[string]*domain.Campaign)
	}
	a.snapshots[key] = campaign
	return key, nil
}

func (a *fakeArchive) FetchArchived(ctx context.Context, objectKey string) (*domain.Campaign, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	campaign, ok := a.snapshots[objectKey]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return campaign, nil
}

func (a *fakeArchive) ListArchived(ctx context.Context) ([]string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	return append([]string(nil), a.archived...), nil
}

type testEnv struct {
	deviceRepo   *repositories.MemoryDeviceRepository
	alertRepo    *repositories.MemoryAlertRepository
	campaignRepo *repositories.MemoryCampaignRepository
	userRepo     *repositories.MemoryUserRepository
	broadcaster  *captureBroadcaster
	archive      *fakeArchive

	devices   *DeviceService
	alerts    *AlertService
	campaigns *CampaignService
}

func newTestEnv() *testEnv {
	env := &testEnv{
		deviceRepo:   repositories.NewMemoryDeviceRepository(),
		alertRepo:    repositories.NewMemoryAlertRepository(),
		campaignRepo: repositories.NewMemoryCampaignRepository(),
		userRepo:     repositories.NewMemoryUserRepository(),
		broadcaster:  &captureBroadcaster{},
		archive:      &fakeArchive{},
	}

	logger := zap.NewNop()
	env.devices = NewDeviceService(env.deviceRepo, env.broadcaster, 20, logger)
	env.alerts = NewAlertService(env.alertRepo, env.broadcaster, logger)
	env.campaigns = NewCampaignService(env.campaignRepo, env.alerts, env.archive, env.broadcaster, logger)
	return env
}
