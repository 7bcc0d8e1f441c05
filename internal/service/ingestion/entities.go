package ingestion

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/catalog-sync/internal/contentdef"
	"github.com/heartmarshall/catalog-sync/internal/domain"
)

// ingestScholar upserts a scholar, then its collections, root series and root
// lectures, in that order.
func (r *run) ingestScholar(ctx context.Context, sd contentdef.ScholarDef) error {
	res, err := r.repos.Scholars.Upsert(ctx, domain.Scholar{
		Slug:         sd.Slug,
		Name:         sd.Name,
		Bio:          sd.Bio,
		Country:      sd.Country,
		MainLanguage: sd.MainLanguage,
		ImageURL:     sd.ImageURL,
		IsActive:     sd.Active(),
		BatchID:      r.batch.ID,
	})
	if err != nil {
		return fmt.Errorf("upsert scholar %q: %w", sd.Slug, err)
	}
	r.res.Scholars.add(res)
	r.log.DebugContext(ctx, "scholar upserted", slog.String("slug", sd.Slug), slog.Bool("created", res.Created))

	for _, cd := range sd.Collections {
		if err := r.ingestCollection(ctx, sd.Slug, res.ID, cd); err != nil {
			return err
		}
	}
	for _, srd := range sd.Series {
		if err := r.ingestSeries(ctx, sd.Slug, res.ID, nil, srd); err != nil {
			return err
		}
	}
	for _, ld := range sd.Lectures {
		if err := r.ingestLecture(ctx, sd.Slug, res.ID, nil, ld); err != nil {
			return err
		}
	}
	return nil
}

func (r *run) ingestCollection(ctx context.Context, scholarSlug string, scholarID uuid.UUID, cd contentdef.CollectionDef) error {
	res, err := r.repos.Collections.Upsert(ctx, domain.Collection{
		ScholarID:           scholarID,
		Slug:                cd.Slug,
		Title:               cd.Title,
		Description:         cd.Description,
		CoverImageURL:       cd.CoverImageURL,
		Language:            cd.Language,
		Status:              cd.Status,
		OrderIndex:          cd.OrderIndex,
		BatchID:             r.batch.ID,
		PublishedAggregates: publishedAggregates(collectionLectures(cd)),
		SoftDelete:          cd.SoftDelete(),
	})
	if err != nil {
		return fmt.Errorf("upsert collection %s/%s: %w", scholarSlug, cd.Slug, err)
	}
	r.res.Collections.add(res)

	if err := r.syncTopics(ctx, domain.TopicOwnerCollection, res.ID, cd.Slug, cd.TopicSlugs); err != nil {
		return err
	}

	for _, srd := range cd.Series {
		if err := r.ingestSeries(ctx, scholarSlug, scholarID, &res.ID, srd); err != nil {
			return err
		}
	}
	return nil
}

// ingestSeries always writes collectionID, so a nil value moves a series that
// used to live in a collection back to the scholar root.
func (r *run) ingestSeries(ctx context.Context, scholarSlug string, scholarID uuid.UUID, collectionID *uuid.UUID, sd contentdef.SeriesDef) error {
	res, err := r.repos.Series.Upsert(ctx, domain.Series{
		ScholarID:           scholarID,
		CollectionID:        collectionID,
		Slug:                sd.Slug,
		Title:               sd.Title,
		Description:         sd.Description,
		CoverImageURL:       sd.CoverImageURL,
		Language:            sd.Language,
		Status:              sd.Status,
		OrderIndex:          sd.OrderIndex,
		BatchID:             r.batch.ID,
		PublishedAggregates: publishedAggregates(sd.Lectures),
		SoftDelete:          sd.SoftDelete(),
	})
	if err != nil {
		return fmt.Errorf("upsert series %s/%s: %w", scholarSlug, sd.Slug, err)
	}
	r.res.Series.add(res)

	if err := r.syncTopics(ctx, domain.TopicOwnerSeries, res.ID, sd.Slug, sd.TopicSlugs); err != nil {
		return err
	}

	for _, ld := range sd.Lectures {
		if err := r.ingestLecture(ctx, scholarSlug, scholarID, &res.ID, ld); err != nil {
			return err
		}
	}
	return nil
}
