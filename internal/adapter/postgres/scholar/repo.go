// Package scholar implements the Scholar repository using PostgreSQL.
package scholar

import (
	"context"

	"github.com/google/uuid"

	postgres "github.com/heartmarshall/catalog-sync/internal/adapter/postgres"
	"github.com/heartmarshall/catalog-sync/internal/domain"
)

const table = "scholars"

// Repo provides scholar persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new scholar repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// ---------------------------------------------------------------------------
// SQL
// ---------------------------------------------------------------------------

const upsertSQL = `
INSERT INTO scholars (slug, name, bio, country, main_language, image_url, is_active, ingestion_batch_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (slug) DO UPDATE SET
    name               = EXCLUDED.name,
    bio                = EXCLUDED.bio,
    country            = EXCLUDED.country,
    main_language      = EXCLUDED.main_language,
    image_url          = EXCLUDED.image_url,
    is_active          = EXCLUDED.is_active,
    ingestion_batch_id = EXCLUDED.ingestion_batch_id,
    updated_at         = now()
RETURNING id, (xmax = 0) AS inserted`

const getBySlugSQL = `
SELECT id, slug, name, bio, country, main_language, image_url, is_active, ingestion_batch_id
FROM scholars
WHERE slug = $1`

// ---------------------------------------------------------------------------
// Operations
// ---------------------------------------------------------------------------

// Upsert creates or updates a scholar by slug and stamps it with s.BatchID.
func (r *Repo) Upsert(ctx context.Context, s domain.Scholar) (domain.UpsertResult, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	var res domain.UpsertResult
	err := q.QueryRow(ctx, upsertSQL,
		s.Slug, s.Name, s.Bio, s.Country, s.MainLanguage, s.ImageURL, s.IsActive, s.BatchID,
	).Scan(&res.ID, &res.Created)
	if err != nil {
		return domain.UpsertResult{}, postgres.MapError(err, "scholar", s.Slug)
	}
	return res, nil
}

// GetBySlug returns a scholar by slug.
// Returns domain.ErrNotFound if the scholar does not exist.
func (r *Repo) GetBySlug(ctx context.Context, slug string) (domain.Scholar, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	var s domain.Scholar
	err := q.QueryRow(ctx, getBySlugSQL, slug).Scan(
		&s.ID, &s.Slug, &s.Name, &s.Bio, &s.Country, &s.MainLanguage, &s.ImageURL, &s.IsActive, &s.BatchID,
	)
	if err != nil {
		return domain.Scholar{}, postgres.MapError(err, "scholar", slug)
	}
	return s, nil
}

// CountByBatch returns the number of scholars owned by the batch.
func (r *Repo) CountByBatch(ctx context.Context, batchID uuid.UUID) (int, error) {
	return postgres.CountByBatch(ctx, postgres.QuerierFromCtx(ctx, r.db), table, batchID)
}

// DeleteByBatch deletes every scholar owned by the batch.
func (r *Repo) DeleteByBatch(ctx context.Context, batchID uuid.UUID) (int64, error) {
	return postgres.DeleteByBatch(ctx, postgres.QuerierFromCtx(ctx, r.db), table, batchID)
}
