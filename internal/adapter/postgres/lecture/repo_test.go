package lecture_test

import (
	"context"
	"testing"
	"time"

	"github.com/heartmarshall/catalog-sync/internal/adapter/postgres/lecture"
	"github.com/heartmarshall/catalog-sync/internal/adapter/postgres/testhelper"
	"github.com/heartmarshall/catalog-sync/internal/domain"
)

func TestRepo_Upsert_PublishedAtRules(t *testing.T) {
	t.Parallel()
	pool := testhelper.SetupTestDB(t)
	repo := lecture.New(pool)
	ctx := context.Background()

	b := testhelper.SeedBatch(t, pool)
	s := testhelper.SeedScholar(t, pool, b.ID)

	stamp := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	l := domain.Lecture{
		ScholarID:   s.ID,
		Slug:        "lecture-" + testhelper.UniqueSuffix(),
		Title:       "First",
		Status:      domain.ContentStatusPublished,
		PublishedAt: &stamp,
		BatchID:     b.ID,
	}

	created, err := repo.Upsert(ctx, l)
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if !created.Created {
		t.Error("first upsert should report Created")
	}

	// Re-ingest as published without an explicit timestamp: stamp is kept.
	later := stamp.Add(48 * time.Hour)
	l.PublishedAt = &later
	l.PublishedAtExplicit = false
	l.Title = "Renamed"
	if _, err := repo.Upsert(ctx, l); err != nil {
		t.Fatalf("Upsert keep: %v", err)
	}
	got, err := repo.GetBySlug(ctx, s.ID, l.Slug)
	if err != nil {
		t.Fatalf("GetBySlug: %v", err)
	}
	if got.Title != "Renamed" {
		t.Errorf("Title = %q, want Renamed", got.Title)
	}
	if got.PublishedAt == nil || !got.PublishedAt.Equal(stamp) {
		t.Errorf("PublishedAt = %v, want kept %v", got.PublishedAt, stamp)
	}

	// An explicit timestamp always wins.
	l.PublishedAtExplicit = true
	if _, err := repo.Upsert(ctx, l); err != nil {
		t.Fatalf("Upsert explicit: %v", err)
	}
	got, _ = repo.GetBySlug(ctx, s.ID, l.Slug)
	if got.PublishedAt == nil || !got.PublishedAt.Equal(later) {
		t.Errorf("PublishedAt = %v, want explicit %v", got.PublishedAt, later)
	}

	// Unpublishing clears it.
	l.Status = domain.ContentStatusDraft
	l.PublishedAt = nil
	l.PublishedAtExplicit = false
	if _, err := repo.Upsert(ctx, l); err != nil {
		t.Fatalf("Upsert draft: %v", err)
	}
	got, _ = repo.GetBySlug(ctx, s.ID, l.Slug)
	if got.PublishedAt != nil {
		t.Errorf("PublishedAt = %v, want nil for draft", got.PublishedAt)
	}
	if got.Status != domain.ContentStatusDraft {
		t.Errorf("Status = %q, want draft", got.Status)
	}
}

func TestRepo_BatchScoped(t *testing.T) {
	t.Parallel()
	pool := testhelper.SetupTestDB(t)
	repo := lecture.New(pool)
	ctx := context.Background()

	b := testhelper.SeedBatch(t, pool)
	s := testhelper.SeedScholar(t, pool, b.ID)
	l1 := testhelper.SeedLecture(t, pool, s.ID, b.ID)
	l2 := testhelper.SeedLecture(t, pool, s.ID, b.ID)

	ids, err := repo.IDsByBatch(ctx, b.ID)
	if err != nil {
		t.Fatalf("IDsByBatch: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("IDsByBatch = %v, want 2 ids", ids)
	}
	seen := map[string]bool{ids[0].String(): true, ids[1].String(): true}
	if !seen[l1.ID.String()] || !seen[l2.ID.String()] {
		t.Errorf("IDsByBatch = %v, want %s and %s", ids, l1.ID, l2.ID)
	}

	if n, err := repo.CountByBatch(ctx, b.ID); err != nil || n != 2 {
		t.Errorf("CountByBatch = %d, %v; want 2", n, err)
	}
	if n, err := repo.DeleteByBatch(ctx, b.ID); err != nil || n != 2 {
		t.Errorf("DeleteByBatch = %d, %v; want 2", n, err)
	}
	if n, err := repo.CountByBatch(ctx, b.ID); err != nil || n != 0 {
		t.Errorf("CountByBatch after delete = %d, %v; want 0", n, err)
	}
}
