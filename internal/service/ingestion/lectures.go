package ingestion

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/catalog-sync/internal/contentdef"
	"github.com/heartmarshall/catalog-sync/internal/domain"
)

// ingestLecture upserts a lecture, then syncs its topics and audio assets.
// An explicit publishedAt wins; otherwise a published lecture is stamped with
// the run time, which the repository keeps if the row was already published.
func (r *run) ingestLecture(ctx context.Context, scholarSlug string, scholarID uuid.UUID, seriesID *uuid.UUID, ld contentdef.LectureDef) error {
	publishedAt := ld.PublishedAtTime()
	explicit := publishedAt != nil
	if !explicit && ld.Status == domain.ContentStatusPublished {
		stamp := r.now
		publishedAt = &stamp
	}

	res, err := r.repos.Lectures.Upsert(ctx, domain.Lecture{
		ScholarID:           scholarID,
		SeriesID:            seriesID,
		Slug:                ld.Slug,
		Title:               ld.Title,
		Description:         ld.Description,
		Language:            ld.Language,
		Status:              ld.Status,
		DurationSeconds:     ld.DurationSeconds,
		PublishedAt:         publishedAt,
		PublishedAtExplicit: explicit,
		OrderIndex:          ld.OrderIndex,
		BatchID:             r.batch.ID,
		SoftDelete:          ld.SoftDelete(),
	})
	if err != nil {
		return fmt.Errorf("upsert lecture %s/%s: %w", scholarSlug, ld.Slug, err)
	}
	r.res.Lectures.add(res)
	r.log.DebugContext(ctx, "lecture upserted",
		slog.String("scholar", scholarSlug),
		slog.String("slug", ld.Slug),
		slog.Bool("created", res.Created),
	)

	if err := r.syncTopics(ctx, domain.TopicOwnerLecture, res.ID, ld.Slug, ld.TopicSlugs); err != nil {
		return err
	}
	return r.syncAudio(ctx, scholarSlug, ld, res.ID)
}
