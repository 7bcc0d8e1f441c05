package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/catalog-sync/internal/app"
	"github.com/heartmarshall/catalog-sync/internal/domain"
	"github.com/heartmarshall/catalog-sync/internal/service/ingestion"
	"github.com/heartmarshall/catalog-sync/internal/service/removal"
)

var errOpen = errors.New("open called")

// stubOpen makes openApp fail with errOpen and reports whether it was called.
func stubOpen(t *testing.T) *bool {
	t.Helper()
	called := false
	orig := openApp
	openApp = func(context.Context, app.Options) (*app.App, error) {
		called = true
		return nil, errOpen
	}
	t.Cleanup(func() { openApp = orig })
	return &called
}

func execute(args ...string) (string, error) {
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeDefinition(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestIngest_TagRequired(t *testing.T) {
	called := stubOpen(t)
	path := writeDefinition(t, `{"version": 1}`)

	for _, args := range [][]string{
		{"ingest", path},
		{"ingest", path, "--tag", "   "},
	} {
		_, err := execute(args...)
		assert.ErrorIs(t, err, errTagRequired, "args %v", args)
	}
	assert.False(t, *called)
}

func TestIngest_RequiresDefinitionArg(t *testing.T) {
	called := stubOpen(t)

	_, err := execute("ingest", "--tag", "t")
	require.Error(t, err)
	assert.False(t, *called)
}

func TestIngest_InvalidDefinitionFailsBeforeConnecting(t *testing.T) {
	called := stubOpen(t)
	path := writeDefinition(t, `{"version": 2}`)

	_, err := execute("ingest", path, "--tag", "t")
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.False(t, *called)
}

func TestIngest_MissingFile(t *testing.T) {
	called := stubOpen(t)

	_, err := execute("ingest", filepath.Join(t.TempDir(), "nope.json"), "--tag", "t")
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.False(t, *called)
}

func TestIngest_OpensAppForValidInput(t *testing.T) {
	called := stubOpen(t)
	path := writeDefinition(t, `{"version": 1}`)

	_, err := execute("ingest", path, "--tag", "t", "--dry-run")
	assert.ErrorIs(t, err, errOpen)
	assert.True(t, *called)
}

func TestRemove_TagRequired(t *testing.T) {
	called := stubOpen(t)

	_, err := execute("remove", "--skip-r2")
	assert.ErrorIs(t, err, errTagRequired)
	assert.False(t, *called)

	_, err = execute("remove", "--tag", "t")
	assert.ErrorIs(t, err, errOpen)
	assert.True(t, *called)
}

func TestConfigFlagReachesOpen(t *testing.T) {
	orig := openApp
	t.Cleanup(func() { openApp = orig })

	var got app.Options
	openApp = func(_ context.Context, opts app.Options) (*app.App, error) {
		got = opts
		return nil, errOpen
	}

	_, err := execute("--config", "/etc/catalogsync.yaml", "migrate")
	assert.ErrorIs(t, err, errOpen)
	assert.Equal(t, "/etc/catalogsync.yaml", got.ConfigPath)
	assert.NotNil(t, got.LogOutput)
}

func TestRemove_RejectsArgs(t *testing.T) {
	stubOpen(t)

	_, err := execute("remove", "extra", "--tag", "t")
	require.Error(t, err)
	assert.NotErrorIs(t, err, errOpen)
}

func TestPrintIngestResult(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	printIngestResult(&buf, &ingestion.Result{
		BatchID:     uuid.MustParse("00000000-0000-0000-0000-000000000001"),
		Tag:         "2024_Q1",
		Environment: "prod",
		DryRun:      true,
		Lectures:    ingestion.Counters{Created: 3, Updated: 1},
		Uploaded:    2,
		Duration:    1500 * time.Millisecond,
	})

	out := buf.String()
	assert.Contains(t, out, "Batch 2024_Q1 (prod)")
	assert.Contains(t, out, "dry run, rolled back")
	assert.Contains(t, out, "lectures         3 created     1 updated")
	assert.Contains(t, out, "uploaded         2")
	assert.Contains(t, out, "Done in 1.5s")
}

func TestPrintRemoveResult(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	printRemoveResult(&buf, &removal.Result{
		Tag:         "seed",
		Environment: "prod",
		SkipStorage: true,
		Found:       removal.Counts{Lectures: 4},
		Deleted:     removal.Counts{Lectures: 4},
	})

	out := buf.String()
	assert.Contains(t, out, "lectures         4 found     4 deleted")
	assert.Contains(t, out, "storage       skipped")
}
