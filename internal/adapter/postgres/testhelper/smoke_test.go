package testhelper

import (
	"context"
	"testing"
)

func TestSetupTestDB_Smoke(t *testing.T) {
	pool := SetupTestDB(t)

	b := SeedBatch(t, pool)
	s := SeedScholar(t, pool, b.ID)

	var slug string
	err := pool.QueryRow(
		context.Background(),
		`SELECT slug FROM scholars WHERE id = $1`,
		s.ID,
	).Scan(&slug)
	if err != nil {
		t.Fatalf("expected scholar in DB, got error: %v", err)
	}

	if slug != s.Slug {
		t.Fatalf("expected slug %q, got %q", s.Slug, slug)
	}

	if n := CountRows(t, pool, "scholars", "ingestion_batch_id = $1", b.ID); n != 1 {
		t.Fatalf("expected 1 scholar in batch, got %d", n)
	}
}
