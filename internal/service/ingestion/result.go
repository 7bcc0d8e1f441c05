package ingestion

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/catalog-sync/internal/domain"
)

// Counters tallies natural-key upserts of one entity kind.
type Counters struct {
	Created int
	Updated int
}

// Total returns Created + Updated.
func (c Counters) Total() int {
	return c.Created + c.Updated
}

func (c *Counters) add(r domain.UpsertResult) {
	if r.Created {
		c.Created++
	} else {
		c.Updated++
	}
}

// Result reports what a run wrote. For a dry run the counters describe the
// rolled-back transaction.
type Result struct {
	BatchID     uuid.UUID
	Tag         string
	Environment string
	DryRun      bool

	Topics      Counters
	Scholars    Counters
	Collections Counters
	Series      Counters
	Lectures    Counters
	AudioAssets Counters

	// TopicLinks is the number of attachment rows the run reconciled.
	TopicLinks int
	// Uploaded counts objects written to the object store. Uploads are not
	// rolled back by a dry run.
	Uploaded int
	// LocalFallbacks counts assets stored as file:// URLs.
	LocalFallbacks int
	// Demoted counts audio assets whose primary flag was cleared.
	Demoted int64

	Duration time.Duration
}

func (r *Result) logAttrs() []any {
	counters := func(name string, c Counters) slog.Attr {
		return slog.Group(name, slog.Int("created", c.Created), slog.Int("updated", c.Updated))
	}
	return []any{
		slog.String("tag", r.Tag),
		slog.String("environment", r.Environment),
		slog.Bool("dry_run", r.DryRun),
		counters("topics", r.Topics),
		counters("scholars", r.Scholars),
		counters("collections", r.Collections),
		counters("series", r.Series),
		counters("lectures", r.Lectures),
		counters("audio_assets", r.AudioAssets),
		slog.Int("topic_links", r.TopicLinks),
		slog.Int("uploaded", r.Uploaded),
		slog.Int("local_fallbacks", r.LocalFallbacks),
		slog.Int64("demoted", r.Demoted),
		slog.Duration("duration", r.Duration),
	}
}
