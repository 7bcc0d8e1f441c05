// Package collection implements the Collection repository using PostgreSQL.
package collection

import (
	"context"

	"github.com/google/uuid"

	postgres "github.com/heartmarshall/catalog-sync/internal/adapter/postgres"
	"github.com/heartmarshall/catalog-sync/internal/domain"
)

const table = "collections"

// Repo provides collection persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new collection repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// ---------------------------------------------------------------------------
// SQL
// ---------------------------------------------------------------------------

const upsertSQL = `
INSERT INTO collections (
    scholar_id, slug, title, description, cover_image_url, language, status, order_index,
    published_lecture_count, published_duration_seconds, deleted_at, delete_after_at, ingestion_batch_id
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
ON CONFLICT (scholar_id, slug) DO UPDATE SET
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
SELECT id, scholar_id, slug, title, description, cover_image_url, language, status, order_index,
       published_lecture_count, published_duration_seconds, deleted_at, delete_after_at, ingestion_batch_id
FROM collections
WHERE scholar_id = $1 AND slug = $2`

// ---------------------------------------------------------------------------
// Operations
// ---------------------------------------------------------------------------

// Upsert creates or updates a collection by (scholar_id, slug), overwriting
// every scalar field and the derived aggregates.
func (r *Repo) Upsert(ctx context.Context, c domain.Collection) (domain.UpsertResult, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	var res domain.UpsertResult
	err := q.QueryRow(ctx, upsertSQL,
		c.ScholarID, c.Slug, c.Title, c.Description, c.CoverImageURL, c.Language, string(c.Status), c.OrderIndex,
		c.PublishedLectureCount, c.PublishedDurationSeconds, c.DeletedAt, c.DeleteAfterAt, c.BatchID,
	).Scan(&res.ID, &res.Created)
	if err != nil {
		return domain.UpsertResult{}, postgres.MapError(err, "collection", c.Slug)
	}
	return res, nil
}

// GetBySlug returns a collection by its natural key.
// Returns domain.ErrNotFound if the collection does not exist.
func (r *Repo) GetBySlug(ctx context.Context, scholarID uuid.UUID, slug string) (domain.Collection, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	var (
		c      domain.Collection
		status string
	)
	err := q.QueryRow(ctx, getBySlugSQL, scholarID, slug).Scan(
		&c.ID, &c.ScholarID, &c.Slug, &c.Title, &c.Description, &c.CoverImageURL, &c.Language, &status, &c.OrderIndex,
		&c.PublishedLectureCount, &c.PublishedDurationSeconds, &c.DeletedAt, &c.DeleteAfterAt, &c.BatchID,
	)
	if err != nil {
		return domain.Collection{}, postgres.MapError(err, "collection", slug)
	}
	c.Status = domain.ContentStatus(status)
	return c, nil
}

// IDsByBatch returns the ids of every collection owned by the batch.
func (r *Repo) IDsByBatch(ctx context.Context, batchID uuid.UUID) ([]uuid.UUID, error) {
	return postgres.IDsByBatch(ctx, postgres.QuerierFromCtx(ctx, r.db), table, batchID)
}

// CountByBatch returns the number of collections owned by the batch.
func (r *Repo) CountByBatch(ctx context.Context, batchID uuid.UUID) (int, error) {
	return postgres.CountByBatch(ctx, postgres.QuerierFromCtx(ctx, r.db), table, batchID)
}

// DeleteByBatch deletes every collection owned by the batch.
func (r *Repo) DeleteByBatch(ctx context.Context, batchID uuid.UUID) (int64, error) {
	return postgres.DeleteByBatch(ctx, postgres.QuerierFromCtx(ctx, r.db), table, batchID)
}
