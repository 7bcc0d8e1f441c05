// Package topic implements the Topic repository using PostgreSQL.
// Topics form a global taxonomy keyed by slug; they are not owned by a batch
// and are only removed once no attachment row references them.
package topic

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	postgres "github.com/heartmarshall/catalog-sync/internal/adapter/postgres"
	"github.com/heartmarshall/catalog-sync/internal/domain"
)

// Repo provides topic persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new topic repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// ---------------------------------------------------------------------------
// SQL
// ---------------------------------------------------------------------------

const upsertSQL = `
INSERT INTO topics (slug, name, parent_id)
VALUES ($1, $2, $3)
ON CONFLICT (slug) DO UPDATE SET
    name       = EXCLUDED.name,
    parent_id  = EXCLUDED.parent_id,
    updated_at = now()
RETURNING id, (xmax = 0) AS inserted`

const getBySlugSQL = `
SELECT id, slug, name, parent_id, created_at, updated_at
FROM topics
WHERE slug = $1`

// deleteUnreferencedSQL removes candidate topics that no attachment row
// references any more, regardless of which batch wrote the attachment.
const deleteUnreferencedSQL = `
DELETE FROM topics t
WHERE t.id = ANY($1::uuid[])
  AND NOT EXISTS (SELECT 1 FROM lecture_topics    lt WHERE lt.topic_id = t.id)
  AND NOT EXISTS (SELECT 1 FROM series_topics     st WHERE st.topic_id = t.id)
  AND NOT EXISTS (SELECT 1 FROM collection_topics ct WHERE ct.topic_id = t.id)`

// ---------------------------------------------------------------------------
// Operations
// ---------------------------------------------------------------------------

// UpsertBySlug creates or updates a topic by slug, setting name and parent.
func (r *Repo) UpsertBySlug(ctx context.Context, slug, name string, parentID *uuid.UUID) (domain.UpsertResult, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	var res domain.UpsertResult
	if err := q.QueryRow(ctx, upsertSQL, slug, name, parentID).Scan(&res.ID, &res.Created); err != nil {
		return domain.UpsertResult{}, postgres.MapError(err, "topic", slug)
	}
	return res, nil
}

// GetBySlug returns a topic by slug.
// Returns domain.ErrNotFound if the topic does not exist.
func (r *Repo) GetBySlug(ctx context.Context, slug string) (domain.Topic, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	var t domain.Topic
	err := q.QueryRow(ctx, getBySlugSQL, slug).Scan(&t.ID, &t.Slug, &t.Name, &t.ParentID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return domain.Topic{}, postgres.MapError(err, "topic", slug)
	}
	return t, nil
}

// DeleteUnreferenced deletes those of ids that are no longer attached to any
// lecture, series or collection. Returns the number of deleted topics.
func (r *Repo) DeleteUnreferenced(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	q := postgres.QuerierFromCtx(ctx, r.db)

	tag, err := q.Exec(ctx, deleteUnreferencedSQL, ids)
	if err != nil {
		return 0, fmt.Errorf("delete unreferenced topics: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Exists reports whether a topic with the given id exists.
func (r *Repo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	var exists bool
	err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM topics WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("topic exists: %w", err)
	}
	return exists, nil
}
