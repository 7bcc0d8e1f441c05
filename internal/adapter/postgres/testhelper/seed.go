package testhelper

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/catalog-sync/internal/domain"
)

// UniqueSuffix returns a short unique string for generating non-conflicting test data.
func UniqueSuffix() string {
	return uuid.New().String()[:8]
}

// SeedBatch creates an ingestion batch with a unique tag.
func SeedBatch(t *testing.T, pool *pgxpool.Pool) domain.IngestionBatch {
	t.Helper()

	b := domain.IngestionBatch{Tag: "test-" + UniqueSuffix(), Environment: "test"}
	err := pool.QueryRow(context.Background(),
		`INSERT INTO ingestion_batches (tag, environment) VALUES ($1, $2) RETURNING id, created_at`,
		b.Tag, b.Environment,
	).Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		t.Fatalf("testhelper: SeedBatch: %v", err)
	}
	return b
}

// SeedScholar creates a scholar with a unique slug owned by batchID.
func SeedScholar(t *testing.T, pool *pgxpool.Pool, batchID uuid.UUID) domain.Scholar {
	t.Helper()

	s := domain.Scholar{Slug: "scholar-" + UniqueSuffix(), Name: "Test Scholar", IsActive: true, BatchID: batchID}
	err := pool.QueryRow(context.Background(),
		`INSERT INTO scholars (slug, name, is_active, ingestion_batch_id) VALUES ($1, $2, $3, $4) RETURNING id`,
		s.Slug, s.Name, s.IsActive, s.BatchID,
	).Scan(&s.ID)
	if err != nil {
		t.Fatalf("testhelper: SeedScholar: %v", err)
	}
	return s
}

// SeedLecture creates a draft lecture with a unique slug under scholarID.
func SeedLecture(t *testing.T, pool *pgxpool.Pool, scholarID, batchID uuid.UUID) domain.Lecture {
	t.Helper()

	l := domain.Lecture{
		ScholarID: scholarID,
		Slug:      "lecture-" + UniqueSuffix(),
		Title:     "Test Lecture",
		Status:    domain.ContentStatusDraft,
		BatchID:   batchID,
	}
	err := pool.QueryRow(context.Background(),
		`INSERT INTO lectures (scholar_id, slug, title, status, ingestion_batch_id) VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		l.ScholarID, l.Slug, l.Title, string(l.Status), l.BatchID,
	).Scan(&l.ID)
	if err != nil {
		t.Fatalf("testhelper: SeedLecture: %v", err)
	}
	return l
}

// SeedTopic creates a root topic with a unique slug.
func SeedTopic(t *testing.T, pool *pgxpool.Pool) domain.Topic {
	t.Helper()

	tp := domain.Topic{Slug: "topic-" + UniqueSuffix(), Name: "Test Topic"}
	err := pool.QueryRow(context.Background(),
		`INSERT INTO topics (slug, name) VALUES ($1, $2) RETURNING id, created_at, updated_at`,
		tp.Slug, tp.Name,
	).Scan(&tp.ID, &tp.CreatedAt, &tp.UpdatedAt)
	if err != nil {
		t.Fatalf("testhelper: SeedTopic: %v", err)
	}
	return tp
}

// CountRows returns the number of rows in table matching the optional where
// clause. Only for tests: table and where are interpolated verbatim.
func CountRows(t *testing.T, pool *pgxpool.Pool, table, where string, args ...any) int {
	t.Helper()

	query := "SELECT count(*) FROM " + table
	if where != "" {
		query += " WHERE " + where
	}
	var n int
	if err := pool.QueryRow(context.Background(), query, args...).Scan(&n); err != nil {
		t.Fatalf("testhelper: CountRows %s: %v", table, err)
	}
	return n
}
