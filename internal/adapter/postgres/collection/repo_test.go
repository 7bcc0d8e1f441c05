package collection_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/heartmarshall/catalog-sync/internal/adapter/postgres/collection"
	"github.com/heartmarshall/catalog-sync/internal/adapter/postgres/testhelper"
	"github.com/heartmarshall/catalog-sync/internal/domain"
)

func TestRepo_Upsert_OverwritesAggregates(t *testing.T) {
	t.Parallel()
	pool := testhelper.SetupTestDB(t)
	ctx := context.Background()

	b := testhelper.SeedBatch(t, pool)
	s := testhelper.SeedScholar(t, pool, b.ID)
	repo := collection.New(pool)

	dur := int64(900)
	c := domain.Collection{
		ScholarID: s.ID,
		Slug:      "col-" + testhelper.UniqueSuffix(),
		Title:     "Collection",
		Status:    domain.ContentStatusPublished,
		BatchID:   b.ID,
		PublishedAggregates: domain.PublishedAggregates{
			PublishedLectureCount:    3,
			PublishedDurationSeconds: &dur,
		},
	}
	first, err := repo.Upsert(ctx, c)
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if !first.Created {
		t.Error("first Upsert should create")
	}

	deleted := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	c.Title = "Renamed"
	c.Status = domain.ContentStatusArchived
	c.PublishedLectureCount = 0
	c.PublishedDurationSeconds = nil
	c.DeletedAt = &deleted
	second, err := repo.Upsert(ctx, c)
	if err != nil {
		t.Fatalf("Upsert again: %v", err)
	}
	if second.ID != first.ID || second.Created {
		t.Errorf("expected update of %s, got %+v", first.ID, second)
	}

	got, err := repo.GetBySlug(ctx, s.ID, c.Slug)
	if err != nil {
		t.Fatalf("GetBySlug: %v", err)
	}
	if got.Title != "Renamed" || got.Status != domain.ContentStatusArchived {
		t.Errorf("scalars not overwritten: %+v", got)
	}
	if got.PublishedLectureCount != 0 || got.PublishedDurationSeconds != nil {
		t.Errorf("aggregates = %d/%v, want 0/nil", got.PublishedLectureCount, got.PublishedDurationSeconds)
	}
	if !got.IsDeleted() || !got.DeletedAt.Equal(deleted) {
		t.Errorf("DeletedAt = %v, want %v", got.DeletedAt, deleted)
	}
}

func TestRepo_GetBySlug_NotFound(t *testing.T) {
	t.Parallel()
	pool := testhelper.SetupTestDB(t)

	b := testhelper.SeedBatch(t, pool)
	s := testhelper.SeedScholar(t, pool, b.ID)

	_, err := collection.New(pool).GetBySlug(context.Background(), s.ID, "missing-"+testhelper.UniqueSuffix())
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
