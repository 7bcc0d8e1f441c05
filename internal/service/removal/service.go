// Package removal undoes an ingestion run: it deletes the batch's objects from
// the object store and its rows from the catalog, bottom-up.
package removal

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/catalog-sync/internal/config"
	"github.com/heartmarshall/catalog-sync/internal/domain"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type batchRepo interface {
	Get(ctx context.Context, tag, environment string) (domain.IngestionBatch, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type batchScopedRepo interface {
	CountByBatch(ctx context.Context, batchID uuid.UUID) (int, error)
	DeleteByBatch(ctx context.Context, batchID uuid.UUID) (int64, error)
}

type topicOwnerRepo interface {
	batchScopedRepo
	IDsByBatch(ctx context.Context, batchID uuid.UUID) ([]uuid.UUID, error)
}

type audioAssetRepo interface {
	batchScopedRepo
	URLsByBatch(ctx context.Context, batchID uuid.UUID) ([]string, error)
}

type topicLinkRepo interface {
	TopicIDsByOwners(ctx context.Context, lectureIDs, seriesIDs, collectionIDs []uuid.UUID) ([]uuid.UUID, error)
}

type topicRepo interface {
	DeleteUnreferenced(ctx context.Context, ids []uuid.UUID) (int64, error)
}

type objectStore interface {
	ListKeys(ctx context.Context, prefix string) ([]string, error)
	DeleteKeys(ctx context.Context, keys []string) (int, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Repos groups the repositories a removal reads and deletes through.
type Repos struct {
	Batches     batchRepo
	Scholars    batchScopedRepo
	Collections topicOwnerRepo
	Series      topicOwnerRepo
	Lectures    topicOwnerRepo
	AudioAssets audioAssetRepo
	TopicLinks  topicLinkRepo
	Topics      topicRepo
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service removes ingestion batches.
type Service struct {
	log   *slog.Logger
	repos Repos
	tx    txManager
	store objectStore
	cfg   config.IngestionConfig
}

// NewService creates a new removal service.
func NewService(logger *slog.Logger, repos Repos, tx txManager, cfg config.IngestionConfig) *Service {
	return &Service{
		log:   logger.With("service", "removal"),
		repos: repos,
		tx:    tx,
		cfg:   cfg,
	}
}

// SetObjectStore injects the object store. Without one, only removals that
// skip storage are allowed.
func (s *Service) SetObjectStore(store objectStore) {
	s.store = store
}
