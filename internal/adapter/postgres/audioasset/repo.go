// Package audioasset implements the AudioAsset repository using PostgreSQL.
// The partial unique index audio_assets_one_primary_idx guarantees at most one
// primary asset per lecture, so callers demote before they promote.
package audioasset

import (
	"context"
	"fmt"
	"math/big"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	postgres "github.com/heartmarshall/catalog-sync/internal/adapter/postgres"
	"github.com/heartmarshall/catalog-sync/internal/domain"
)

const table = "audio_assets"

// Repo provides audio asset persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new audio asset repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// ---------------------------------------------------------------------------
// SQL
// ---------------------------------------------------------------------------

const upsertSQL = `
INSERT INTO audio_assets (
    lecture_id, url, format, bitrate_kbps, size_bytes, duration_seconds, source, is_primary, ingestion_batch_id
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (lecture_id, url) DO UPDATE SET
    format             = EXCLUDED.format,
    bitrate_kbps       = EXCLUDED.bitrate_kbps,
    size_bytes         = EXCLUDED.size_bytes,
    duration_seconds   = EXCLUDED.duration_seconds,
    source             = EXCLUDED.source,
    is_primary         = EXCLUDED.is_primary,
    ingestion_batch_id = EXCLUDED.ingestion_batch_id,
    updated_at         = now()
RETURNING id, (xmax = 0) AS inserted`

const demotePrimaryExceptSQL = `
UPDATE audio_assets
SET is_primary = false, updated_at = now()
WHERE lecture_id = $1 AND is_primary AND url <> $2`

const listByLectureSQL = `
SELECT id, lecture_id, url, format, bitrate_kbps, size_bytes, duration_seconds, source, is_primary, ingestion_batch_id
FROM audio_assets
WHERE lecture_id = $1
ORDER BY url`

const urlsByBatchSQL = `
SELECT DISTINCT url
FROM audio_assets
WHERE ingestion_batch_id = $1
ORDER BY url`

// ---------------------------------------------------------------------------
// Operations
// ---------------------------------------------------------------------------

// Upsert creates or updates an audio asset by (lecture_id, url).
func (r *Repo) Upsert(ctx context.Context, a domain.AudioAsset) (domain.UpsertResult, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	var res domain.UpsertResult
	err := q.QueryRow(ctx, upsertSQL,
		a.LectureID, a.URL, a.Format, a.BitrateKbps, toNumeric(a.SizeBytes), a.DurationSeconds,
		a.Source, a.IsPrimary, a.BatchID,
	).Scan(&res.ID, &res.Created)
	if err != nil {
		return domain.UpsertResult{}, postgres.MapError(err, "audio_asset", a.URL)
	}
	return res, nil
}

// DemotePrimaryExcept clears is_primary on every asset of the lecture except
// the one stored under keepURL. An empty keepURL demotes all of them.
// Returns the number of demoted assets.
func (r *Repo) DemotePrimaryExcept(ctx context.Context, lectureID uuid.UUID, keepURL string) (int64, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	tag, err := q.Exec(ctx, demotePrimaryExceptSQL, lectureID, keepURL)
	if err != nil {
		return 0, postgres.MapError(err, "audio_asset", lectureID.String())
	}
	return tag.RowsAffected(), nil
}

// ListByLecture returns every asset of a lecture ordered by url.
func (r *Repo) ListByLecture(ctx context.Context, lectureID uuid.UUID) ([]domain.AudioAsset, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	rows, err := q.Query(ctx, listByLectureSQL, lectureID)
	if err != nil {
		return nil, fmt.Errorf("list audio assets: %w", err)
	}
	defer rows.Close()

	result := []domain.AudioAsset{}
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("scan audio asset: %w", err)
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list audio assets: %w", err)
	}
	return result, nil
}

// URLsByBatch returns the distinct stored urls of every asset owned by the batch.
func (r *Repo) URLsByBatch(ctx context.Context, batchID uuid.UUID) ([]string, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	rows, err := q.Query(ctx, urlsByBatchSQL, batchID)
	if err != nil {
		return nil, fmt.Errorf("audio urls by batch: %w", err)
	}
	urls, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("audio urls by batch: %w", err)
	}
	if urls == nil {
		urls = []string{}
	}
	return urls, nil
}

// CountByBatch returns the number of audio assets owned by the batch.
func (r *Repo) CountByBatch(ctx context.Context, batchID uuid.UUID) (int, error) {
	return postgres.CountByBatch(ctx, postgres.QuerierFromCtx(ctx, r.db), table, batchID)
}

// DeleteByBatch deletes every audio asset owned by the batch.
func (r *Repo) DeleteByBatch(ctx context.Context, batchID uuid.UUID) (int64, error) {
	return postgres.DeleteByBatch(ctx, postgres.QuerierFromCtx(ctx, r.db), table, batchID)
}

// ---------------------------------------------------------------------------
// Row scanning helpers
// ---------------------------------------------------------------------------

func scanAsset(rows pgx.Rows) (domain.AudioAsset, error) {
	var (
		a    domain.AudioAsset
		size pgtype.Numeric
		src  *string
	)
	if err := rows.Scan(
		&a.ID, &a.LectureID, &a.URL, &a.Format, &a.BitrateKbps, &size, &a.DurationSeconds, &src, &a.IsPrimary, &a.BatchID,
	); err != nil {
		return domain.AudioAsset{}, err
	}
	if src != nil {
		a.Source = *src
	}
	a.SizeBytes = fromNumeric(size)
	return a, nil
}

// toNumeric stores an arbitrary-precision integer without going through float.
func toNumeric(n *big.Int) pgtype.Numeric {
	if n == nil {
		return pgtype.Numeric{}
	}
	return pgtype.Numeric{Int: new(big.Int).Set(n), Exp: 0, Valid: true}
}

// fromNumeric normalizes a scanned NUMERIC(40,0) back to an integer. pgx may
// report trailing zeros as a positive exponent.
func fromNumeric(n pgtype.Numeric) *big.Int {
	if !n.Valid || n.Int == nil {
		return nil
	}
	v := new(big.Int).Set(n.Int)
	switch {
	case n.Exp > 0:
		v.Mul(v, new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n.Exp)), nil))
	case n.Exp < 0:
		v.Quo(v, new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(-n.Exp)), nil))
	}
	return v
}
