// Package series implements the Series repository using PostgreSQL.
package series

import (
	"context"

	"github.com/google/uuid"

	postgres "github.com/heartmarshall/catalog-sync/internal/adapter/postgres"
	"github.com/heartmarshall/catalog-sync/internal/domain"
)

const table = "series"

// Repo provides series persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new series repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// ---------------------------------------------------------------------------
// SQL
// ---------------------------------------------------------------------------

// collection_id is always overwritten: a root series clears any previous
// parent collection.
const upsertSQL = `
INSERT INTO series (
    scholar_id, collection_id, slug, title, description, cover_image_url, language, status, order_index,
    published_lecture_count, published_duration_seconds, deleted_at, delete_after_at, ingestion_batch_id
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
ON CONFLICT (scholar_id, slug) DO UPDATE SET
    collection_id              = EXCLUDED.collection_id,
    title                      = EXCLUDED.title,
    description                = EXCLUDED.description,
    cover_image_url            = EXCLUDED.cover_image_url,
    language                   = EXCLUDED.language,
    status                     = EXCLUDED.status,
    order_index                = EXCLUDED.order_index,
    published_lecture_count    = EXCLUDED.published_lecture_count,
    published_duration_seconds = EXCLUDED.published_duration_seconds,
    deleted_at                 = EXCLUDED.deleted_at,
    delete_after_at            = EXCLUDED.delete_after_at,
    ingestion_batch_id         = EXCLUDED.ingestion_batch_id,
    updated_at                 = now()
RETURNING id, (xmax = 0) AS inserted`

const getBySlugSQL = `
SELECT id, scholar_id, collection_id, slug, title, description, cover_image_url, language, status, order_index,
       published_lecture_count, published_duration_seconds, deleted_at, delete_after_at, ingestion_batch_id
FROM series
WHERE scholar_id = $1 AND slug = $2`

// ---------------------------------------------------------------------------
// Operations
// ---------------------------------------------------------------------------

// Upsert creates or updates a series by (scholar_id, slug).
func (r *Repo) Upsert(ctx context.Context, s domain.Series) (domain.UpsertResult, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	var res domain.UpsertResult
	err := q.QueryRow(ctx, upsertSQL,
		s.ScholarID, s.CollectionID, s.Slug, s.Title, s.Description, s.CoverImageURL, s.Language, string(s.Status), s.OrderIndex,
		s.PublishedLectureCount, s.PublishedDurationSeconds, s.DeletedAt, s.DeleteAfterAt, s.BatchID,
	).Scan(&res.ID, &res.Created)
	if err != nil {
		return domain.UpsertResult{}, postgres.MapError(err, "series", s.Slug)
	}
	return res, nil
}

// GetBySlug returns a series by its natural key.
// Returns domain.ErrNotFound if the series does not exist.
func (r *Repo) GetBySlug(ctx context.Context, scholarID uuid.UUID, slug string) (domain.Series, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	var (
		s      domain.Series
		status string
	)
	err := q.QueryRow(ctx, getBySlugSQL, scholarID, slug).Scan(
		&s.ID, &s.ScholarID, &s.CollectionID, &s.Slug, &s.Title, &s.Description, &s.CoverImageURL, &s.Language, &status, &s.OrderIndex,
		&s.PublishedLectureCount, &s.PublishedDurationSeconds, &s.DeletedAt, &s.DeleteAfterAt, &s.BatchID,
	)
	if err != nil {
		return domain.Series{}, postgres.MapError(err, "series", slug)
	}
	s.Status = domain.ContentStatus(status)
	return s, nil
}

// IDsByBatch returns the ids of every series owned by the batch.
func (r *Repo) IDsByBatch(ctx context.Context, batchID uuid.UUID) ([]uuid.UUID, error) {
	return postgres.IDsByBatch(ctx, postgres.QuerierFromCtx(ctx, r.db), table, batchID)
}

// CountByBatch returns the number of series owned by the batch.
func (r *Repo) CountByBatch(ctx context.Context, batchID uuid.UUID) (int, error) {
	return postgres.CountByBatch(ctx, postgres.QuerierFromCtx(ctx, r.db), table, batchID)
}

// DeleteByBatch deletes every series owned by the batch.
func (r *Repo) DeleteByBatch(ctx context.Context, batchID uuid.UUID) (int64, error) {
	return postgres.DeleteByBatch(ctx, postgres.QuerierFromCtx(ctx, r.db), table, batchID)
}
