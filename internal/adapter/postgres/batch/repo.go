// Package batch implements the ingestion batch repository. A batch is the
// ownership stamp (tag, environment) written on every row of a run.
package batch

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	postgres "github.com/heartmarshall/catalog-sync/internal/adapter/postgres"
	"github.com/heartmarshall/catalog-sync/internal/domain"
)

// Repo provides ingestion batch persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new batch repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// ---------------------------------------------------------------------------
// SQL
// ---------------------------------------------------------------------------

// The no-op update makes RETURNING yield the existing row on conflict.
const upsertSQL = `
INSERT INTO ingestion_batches (tag, environment)
VALUES ($1, $2)
ON CONFLICT (tag, environment) DO UPDATE SET tag = EXCLUDED.tag
RETURNING id, tag, environment, created_at`

const getSQL = `
SELECT id, tag, environment, created_at
FROM ingestion_batches
WHERE tag = $1 AND environment = $2`

const deleteSQL = `DELETE FROM ingestion_batches WHERE id = $1`

// ---------------------------------------------------------------------------
// Operations
// ---------------------------------------------------------------------------

// Upsert returns the batch for (tag, environment), creating it on first use.
func (r *Repo) Upsert(ctx context.Context, tag, environment string) (domain.IngestionBatch, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	var b domain.IngestionBatch
	err := q.QueryRow(ctx, upsertSQL, tag, environment).Scan(&b.ID, &b.Tag, &b.Environment, &b.CreatedAt)
	if err != nil {
		return domain.IngestionBatch{}, postgres.MapError(err, "ingestion_batch", key(tag, environment))
	}
	return b, nil
}

// Get returns the batch for (tag, environment).
// Returns domain.ErrBatchNotFound if no such batch exists.
func (r *Repo) Get(ctx context.Context, tag, environment string) (domain.IngestionBatch, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	var b domain.IngestionBatch
	err := q.QueryRow(ctx, getSQL, tag, environment).Scan(&b.ID, &b.Tag, &b.Environment, &b.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.IngestionBatch{}, fmt.Errorf("ingestion_batch %s: %w", key(tag, environment), domain.ErrBatchNotFound)
	}
	if err != nil {
		return domain.IngestionBatch{}, postgres.MapError(err, "ingestion_batch", key(tag, environment))
	}
	return b, nil
}

// Delete removes the batch row. Rows still referencing it are removed by
// ON DELETE CASCADE.
func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	tag, err := q.Exec(ctx, deleteSQL, id)
	if err != nil {
		return postgres.MapError(err, "ingestion_batch", id.String())
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("ingestion_batch %s: %w", id, domain.ErrBatchNotFound)
	}
	return nil
}

func key(tag, environment string) string {
	return environment + "/" + tag
}
