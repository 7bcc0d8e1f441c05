// Package lecture implements the Lecture repository using PostgreSQL.
package lecture

import (
	"context"

	"github.com/google/uuid"

	postgres "github.com/heartmarshall/catalog-sync/internal/adapter/postgres"
	"github.com/heartmarshall/catalog-sync/internal/domain"
)

const table = "lectures"

// Repo provides lecture persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new lecture repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// ---------------------------------------------------------------------------
// SQL
// ---------------------------------------------------------------------------

// On update published_at follows three rules: an explicit timestamp always
// wins; a published lecture keeps the stamp it already has; anything else
// is unpublished.
const upsertSQL = `
INSERT INTO lectures (
    scholar_id, series_id, slug, title, description, language, status, duration_seconds,
    published_at, order_index, deleted_at, delete_after_at, ingestion_batch_id
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
ON CONFLICT (scholar_id, slug) DO UPDATE SET
    series_id          = EXCLUDED.series_id,
    title              = EXCLUDED.title,
    description        = EXCLUDED.description,
    language           = EXCLUDED.language,
    status             = EXCLUDED.status,
    duration_seconds   = EXCLUDED.duration_seconds,
    published_at       = CASE
                             WHEN $14::boolean THEN EXCLUDED.published_at
                             WHEN EXCLUDED.status = 'published' THEN COALESCE(lectures.published_at, EXCLUDED.published_at)
                             ELSE NULL
                         END,
    order_index        = EXCLUDED.order_index,
    deleted_at         = EXCLUDED.deleted_at,
    delete_after_at    = EXCLUDED.delete_after_at,
    ingestion_batch_id = EXCLUDED.ingestion_batch_id,
    updated_at         = now()
RETURNING id, (xmax = 0) AS inserted`

const getBySlugSQL = `
SELECT id, scholar_id, series_id, slug, title, description, language, status, duration_seconds,
       published_at, order_index, deleted_at, delete_after_at, ingestion_batch_id
FROM lectures
WHERE scholar_id = $1 AND slug = $2`

// ---------------------------------------------------------------------------
// Operations
// ---------------------------------------------------------------------------

// Upsert creates or updates a lecture by (scholar_id, slug). l.PublishedAt
// must already be resolved by the caller; l.PublishedAtExplicit tells the
// update path whether it may replace an existing stamp.
func (r *Repo) Upsert(ctx context.Context, l domain.Lecture) (domain.UpsertResult, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	var res domain.UpsertResult
	err := q.QueryRow(ctx, upsertSQL,
		l.ScholarID, l.SeriesID, l.Slug, l.Title, l.Description, l.Language, string(l.Status), l.DurationSeconds,
		l.PublishedAt, l.OrderIndex, l.DeletedAt, l.DeleteAfterAt, l.BatchID,
		l.PublishedAtExplicit,
	).Scan(&res.ID, &res.Created)
	if err != nil {
		return domain.UpsertResult{}, postgres.MapError(err, "lecture", l.Slug)
	}
	return res, nil
}

// GetBySlug returns a lecture by its natural key.
// Returns domain.ErrNotFound if the lecture does not exist.
func (r *Repo) GetBySlug(ctx context.Context, scholarID uuid.UUID, slug string) (domain.Lecture, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	var (
		l      domain.Lecture
		status string
	)
	err := q.QueryRow(ctx, getBySlugSQL, scholarID, slug).Scan(
		&l.ID, &l.ScholarID, &l.SeriesID, &l.Slug, &l.Title, &l.Description, &l.Language, &status, &l.DurationSeconds,
		&l.PublishedAt, &l.OrderIndex, &l.DeletedAt, &l.DeleteAfterAt, &l.BatchID,
	)
	if err != nil {
		return domain.Lecture{}, postgres.MapError(err, "lecture", slug)
	}
	l.Status = domain.ContentStatus(status)
	return l, nil
}

// IDsByBatch returns the ids of every lecture owned by the batch.
func (r *Repo) IDsByBatch(ctx context.Context, batchID uuid.UUID) ([]uuid.UUID, error) {
	return postgres.IDsByBatch(ctx, postgres.QuerierFromCtx(ctx, r.db), table, batchID)
}

// CountByBatch returns the number of lectures owned by the batch.
func (r *Repo) CountByBatch(ctx context.Context, batchID uuid.UUID) (int, error) {
	return postgres.CountByBatch(ctx, postgres.QuerierFromCtx(ctx, r.db), table, batchID)
}

// DeleteByBatch deletes every lecture owned by the batch.
func (r *Repo) DeleteByBatch(ctx context.Context, batchID uuid.UUID) (int64, error) {
	return postgres.DeleteByBatch(ctx, postgres.QuerierFromCtx(ctx, r.db), table, batchID)
}
