// Package ingestion materializes a content definition into the catalog under
// one ingestion batch, inside a single database transaction.
package ingestion

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/catalog-sync/internal/config"
	"github.com/heartmarshall/catalog-sync/internal/domain"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type batchRepo interface {
	Upsert(ctx context.Context, tag, environment string) (domain.IngestionBatch, error)
}

type topicRepo interface {
	UpsertBySlug(ctx context.Context, slug, name string, parentID *uuid.UUID) (domain.UpsertResult, error)
}

type scholarRepo interface {
	Upsert(ctx context.Context, s domain.Scholar) (domain.UpsertResult, error)
}

type collectionRepo interface {
	Upsert(ctx context.Context, c domain.Collection) (domain.UpsertResult, error)
}

type seriesRepo interface {
	Upsert(ctx context.Context, s domain.Series) (domain.UpsertResult, error)
}

type lectureRepo interface {
	Upsert(ctx context.Context, l domain.Lecture) (domain.UpsertResult, error)
}

type audioAssetRepo interface {
	Upsert(ctx context.Context, a domain.AudioAsset) (domain.UpsertResult, error)
	DemotePrimaryExcept(ctx context.Context, lectureID uuid.UUID, keepURL string) (int64, error)
}

type topicLinkRepo interface {
	Sync(ctx context.Context, kind domain.TopicOwnerKind, ownerID uuid.UUID, topicIDs []uuid.UUID) error
}

type objectStore interface {
	Upload(ctx context.Context, key, path, contentType string) error
	PublicURL(key string) string
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Repos groups the repositories an ingestion run writes through.
type Repos struct {
	Batches     batchRepo
	Topics      topicRepo
	Scholars    scholarRepo
	Collections collectionRepo
	Series      seriesRepo
	Lectures    lectureRepo
	AudioAssets audioAssetRepo
	TopicLinks  topicLinkRepo
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service runs ingestions.
type Service struct {
	log   *slog.Logger
	repos Repos
	tx    txManager
	store objectStore
	cfg   config.IngestionConfig
	now   func() time.Time
}

// NewService creates a new ingestion service. Uploads fall back to local
// file:// URLs until SetObjectStore is called.
func NewService(logger *slog.Logger, repos Repos, tx txManager, cfg config.IngestionConfig) *Service {
	return &Service{
		log:   logger.With("service", "ingestion"),
		repos: repos,
		tx:    tx,
		cfg:   cfg,
		now:   time.Now,
	}
}

// SetObjectStore injects the optional object store used for audio uploads.
func (s *Service) SetObjectStore(store objectStore) {
	s.store = store
}
