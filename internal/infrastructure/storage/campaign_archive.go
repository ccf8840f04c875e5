package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"rescue-coordination-system/internal/domain"
)

// MinioCampaignArchive зберігає знімки завершених кампаній в об'єктному
// сховищі. Знімок містить повний агрегат кампанії з журналом статусів,
// тому придатний для звітності після розформування бази.
type MinioCampaignArchive struct {
	minioClient *minio.Client
	bucketName  string
}

// NewMinioCampaignArchive створює новий екземпляр MinioCampaignArchive
func NewMinioCampaignArchive(minioEndpoint, minioAccessKey, minioSecretKey, minioBucket string, useSSL bool) (*MinioCampaignArchive, error) {
	// Ініціалізація MinIO клієнта
	minioClient, err := minio.New(minioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(minioAccessKey, minioSecretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize MinIO client: %w", err)
	}

	// Перевірка наявності бакета і створення його, якщо не існує
	exists, err := minioClient.BucketExists(context.Background(), minioBucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check if bucket exists: %w", err)
	}

	if !exists {
		err = minioClient.MakeBucket(context.Background(), minioBucket, minio.MakeBucketOptions{})
		if err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return &MinioCampaignArchive{
		minioClient: minioClient,
		bucketName:  minioBucket,
	}, nil
}

// ArchiveCampaign зберігає знімок кампанії та повертає ключ об'єкта
func (s *MinioCampaignArchive) ArchiveCampaign(ctx context.Context, campaign *domain.Campaign) (string, error) {
	data, err := json.MarshalIndent(campaign, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal campaign snapshot: %w", err)
	}

	objectKey := fmt.Sprintf("campaigns/%s/%s.json",
		campaign.CreatedAt.Format("2006-01-02"), campaign.ID)

	_, err = s.minioClient.PutObject(ctx, s.bucketName, objectKey,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return "", fmt.Errorf("failed to store campaign snapshot: %w", err)
	}

	return objectKey, nil
}

// FetchArchived читає збережений знімок кампанії за ключем об'єкта
func (s *MinioCampaignArchive) FetchArchived(ctx context.Context, objectKey string) (*domain.Campaign, error) {
	obj, err := s.minioClient.GetObject(ctx, s.bucketName, objectKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch campaign snapshot: %w", err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to read campaign snapshot: %w", err)
	}

	var campaign domain.Campaign
	if err := json.Unmarshal(data, &campaign); err != nil {
		return nil, fmt.Errorf("failed to unmarshal campaign snapshot: %w", err)
	}
	return &campaign, nil
}

// ListArchived повертає ключі всіх збережених знімків кампаній
func (s *MinioCampaignArchive) ListArchived(ctx context.Context) ([]string, error) {
	var keys []string

	objectCh := s.minioClient.ListObjects(ctx, s.bucketName, minio.ListObjectsOptions{
		Prefix:    "campaigns/",
		Recursive: true,
	})

	for obj := range objectCh {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list campaign snapshots: %w", obj.Err)
		}
		keys = append(keys, obj.Key)
	}
	return keys, nil
}
