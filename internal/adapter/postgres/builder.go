package postgres

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// BatchColumn is the ownership column stamped on every batch-owned table.
const BatchColumn = "ingestion_batch_id"

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Builder returns a squirrel statement builder using $n placeholders.
func Builder() sq.StatementBuilderType {
	return psql
}

// Sqlizer is implemented by every squirrel builder.
type Sqlizer interface {
	ToSql() (string, []any, error)
}

// ExecBuilt renders a squirrel statement and executes it, returning the
// number of affected rows.
func ExecBuilt(ctx context.Context, q Querier, b Sqlizer) (int64, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}
	tag, err := q.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// CountByBatch returns the number of rows of table owned by batchID.
func CountByBatch(ctx context.Context, q Querier, table string, batchID uuid.UUID) (int, error) {
	query, args, err := psql.Select("count(*)").From(table).Where(sq.Eq{BatchColumn: batchID}).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count %s: %w", table, err)
	}

	var n int
	if err := q.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s by batch: %w", table, err)
	}
	return n, nil
}

// DeleteByBatch deletes every row of table owned by batchID.
func DeleteByBatch(ctx context.Context, q Querier, table string, batchID uuid.UUID) (int64, error) {
	n, err := ExecBuilt(ctx, q, psql.Delete(table).Where(sq.Eq{BatchColumn: batchID}))
	if err != nil {
		return 0, MapError(err, table, batchID.String())
	}
	return n, nil
}

// IDsByBatch returns the ids of every row of table owned by batchID.
// Returns an empty slice (not nil) when there are none.
func IDsByBatch(ctx context.Context, q Querier, table string, batchID uuid.UUID) ([]uuid.UUID, error) {
	query, args, err := psql.Select("id").From(table).Where(sq.Eq{BatchColumn: batchID}).OrderBy("id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build ids %s: %w", table, err)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ids %s by batch: %w", table, err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, fmt.Errorf("ids %s by batch: %w", table, err)
	}
	if ids == nil {
		ids = []uuid.UUID{}
	}
	return ids, nil
}
