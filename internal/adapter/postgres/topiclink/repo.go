// Package topiclink implements the lecture/series/collection topic join
// tables. One repository serves all three owner kinds.
package topiclink

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	postgres "github.com/heartmarshall/catalog-sync/internal/adapter/postgres"
	"github.com/heartmarshall/catalog-sync/internal/domain"
)

type joinTable struct {
	name  string
	owner string
}

var tables = map[domain.TopicOwnerKind]joinTable{
	domain.TopicOwnerLecture:    {name: "lecture_topics", owner: "lecture_id"},
	domain.TopicOwnerSeries:     {name: "series_topics", owner: "series_id"},
	domain.TopicOwnerCollection: {name: "collection_topics", owner: "collection_id"},
}

func tableFor(kind domain.TopicOwnerKind) (joinTable, error) {
	t, ok := tables[kind]
	if !ok {
		return joinTable{}, fmt.Errorf("topic owner kind %q: %w", kind, domain.ErrValidation)
	}
	return t, nil
}

// Repo provides topic attachment persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new topic link repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// ---------------------------------------------------------------------------
// SQL
// ---------------------------------------------------------------------------

const topicIDsByOwnersSQL = `
SELECT topic_id FROM lecture_topics    WHERE lecture_id    = ANY($1::uuid[])
UNION
SELECT topic_id FROM series_topics     WHERE series_id     = ANY($2::uuid[])
UNION
SELECT topic_id FROM collection_topics WHERE collection_id = ANY($3::uuid[])
ORDER BY topic_id`

// ---------------------------------------------------------------------------
// Operations
// ---------------------------------------------------------------------------

// Sync makes the owner's attachment rows equal topicIDs: rows outside the set
// are deleted, missing ones inserted, existing ones left alone.
func (r *Repo) Sync(ctx context.Context, kind domain.TopicOwnerKind, ownerID uuid.UUID, topicIDs []uuid.UUID) error {
	t, err := tableFor(kind)
	if err != nil {
		return err
	}

	q := postgres.QuerierFromCtx(ctx, r.db)

	if topicIDs == nil {
		topicIDs = []uuid.UUID{}
	}

	del := postgres.Builder().
		Delete(t.name).
		Where(sq.Eq{t.owner: ownerID}).
		Where("NOT (topic_id = ANY(?::uuid[]))", topicIDs)
	if _, err := postgres.ExecBuilt(ctx, q, del); err != nil {
		return postgres.MapError(err, t.name, ownerID.String())
	}

	if len(topicIDs) == 0 {
		return nil
	}

	ins := postgres.Builder().
		Insert(t.name).
		Columns(t.owner, "topic_id").
		Suffix("ON CONFLICT DO NOTHING")
	for _, id := range topicIDs {
		ins = ins.Values(ownerID, id)
	}
	if _, err := postgres.ExecBuilt(ctx, q, ins); err != nil {
		return postgres.MapError(err, t.name, ownerID.String())
	}

	return nil
}

// TopicIDs returns the topics currently attached to an owner.
func (r *Repo) TopicIDs(ctx context.Context, kind domain.TopicOwnerKind, ownerID uuid.UUID) ([]uuid.UUID, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	query, args, err := postgres.Builder().
		Select("topic_id").
		From(t.name).
		Where(sq.Eq{t.owner: ownerID}).
		OrderBy("topic_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build %s query: %w", t.name, err)
	}

	rows, err := postgres.QuerierFromCtx(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", t.name, err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", t.name, err)
	}
	if ids == nil {
		ids = []uuid.UUID{}
	}
	return ids, nil
}

// TopicIDsByOwners returns the distinct topics attached to any of the given
// lectures, series or collections.
func (r *Repo) TopicIDsByOwners(ctx context.Context, lectureIDs, seriesIDs, collectionIDs []uuid.UUID) ([]uuid.UUID, error) {
	if len(lectureIDs)+len(seriesIDs)+len(collectionIDs) == 0 {
		return []uuid.UUID{}, nil
	}

	q := postgres.QuerierFromCtx(ctx, r.db)

	rows, err := q.Query(ctx, topicIDsByOwnersSQL, nonNil(lectureIDs), nonNil(seriesIDs), nonNil(collectionIDs))
	if err != nil {
		return nil, fmt.Errorf("topic ids by owners: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, fmt.Errorf("topic ids by owners: %w", err)
	}
	if ids == nil {
		ids = []uuid.UUID{}
	}
	return ids, nil
}

func nonNil(ids []uuid.UUID) []uuid.UUID {
	if ids == nil {
		return []uuid.UUID{}
	}
	return ids
}
