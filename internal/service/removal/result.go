package removal

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Counts holds per-kind row counts of one batch.
type Counts struct {
	Scholars    int
	Collections int
	Series      int
	Lectures    int
	AudioAssets int
}

func (c Counts) attr(name string) slog.Attr {
	return slog.Group(name,
		slog.Int("scholars", c.Scholars),
		slog.Int("collections", c.Collections),
		slog.Int("series", c.Series),
		slog.Int("lectures", c.Lectures),
		slog.Int("audio_assets", c.AudioAssets),
	)
}

// Result reports what a removal found and deleted.
type Result struct {
	BatchID     uuid.UUID
	Tag         string
	Environment string
	DryRun      bool
	SkipStorage bool

	// Found holds the counts taken before anything was deleted.
	Found Counts
	// Deleted holds rows deleted by the bottom-up pass. Zero for a dry run.
	Deleted Counts

	CandidateTopics int
	TopicsDeleted   int64

	// StorageKeys is the sorted union of DatabaseKeys and ListedKeys.
	StorageKeys    []string
	DatabaseKeys   int
	ListedKeys     int
	ObjectsDeleted int

	Duration time.Duration
}

func (r *Result) logAttrs() []any {
	return []any{
		slog.String("tag", r.Tag),
		slog.String("environment", r.Environment),
		slog.Bool("dry_run", r.DryRun),
		slog.Bool("skip_storage", r.SkipStorage),
		r.Found.attr("found"),
		r.Deleted.attr("deleted"),
		slog.Int("candidate_topics", r.CandidateTopics),
		slog.Int64("topics_deleted", r.TopicsDeleted),
		slog.Int("storage_keys", len(r.StorageKeys)),
		slog.Int("database_keys", r.DatabaseKeys),
		slog.Int("listed_keys", r.ListedKeys),
		slog.Int("objects_deleted", r.ObjectsDeleted),
		slog.Duration("duration", r.Duration),
	}
}
