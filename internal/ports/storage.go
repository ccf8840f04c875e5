package ports

import (
	"context"

	"rescue-coordination-system/internal/domain"
)

// ReadingCache визначає інтерфейс обмеженої історії телеметричних вимірів:
// ковзне вікно фіксованої ємності на пристрій плюс проєкція
// "останній вимір на пристрій". Найстаріші записи витісняються.
type ReadingCache interface {
	Append(ctx context.Context, reading *domain.SensorReading) error
	Latest(ctx context.Context, deviceID string) (*domain.SensorReading, error)
	History(ctx context.Context, deviceID string) ([]*domain.SensorReading, error)
	AllLatest(ctx context.Context) ([]*domain.SensorReading, error)
}

// CampaignArchive визначає інтерфейс експорту завершених кампаній
// у зовнішнє довговічне сховище та читання збережених знімків
type CampaignArchive interface {
	ArchiveCampaign(ctx context.Context, campaign *domain.Campaign) (string, error)
	FetchArchived(ctx context.Context, objectKey string) (*domain.Campaign, error)
	ListArchived(ctx context.Context) ([]string, error)
}

// EventBroadcaster визначає інтерфейс трансляції доменних подій
// підключеним спостерігачам. Публікація ніколи не блокує відправника.
type EventBroadcaster interface {
	Broadcast(event domain.Event)
}
