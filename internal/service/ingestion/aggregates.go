package ingestion

import (
	"github.com/heartmarshall/catalog-sync/internal/contentdef"
	"github.com/heartmarshall/catalog-sync/internal/domain"
)

// publishedAggregates counts published, non-deleted lectures and sums their
// durations. A single unknown duration makes the whole sum unknown; an empty
// set yields 0 and 0.
func publishedAggregates(lectures []contentdef.LectureDef) domain.PublishedAggregates {
	var (
		count int
		total int64
		known = true
	)
	for _, l := range lectures {
		if l.Status != domain.ContentStatusPublished || l.SoftDelete().IsDeleted() {
			continue
		}
		count++
		if l.DurationSeconds == nil {
			known = false
			continue
		}
		total += int64(*l.DurationSeconds)
	}

	agg := domain.PublishedAggregates{PublishedLectureCount: count}
	if known {
		agg.PublishedDurationSeconds = &total
	}
	return agg
}

// collectionLectures flattens the lectures of every series in a collection.
func collectionLectures(c contentdef.CollectionDef) []contentdef.LectureDef {
	var out []contentdef.LectureDef
	for _, s := range c.Series {
		out = append(out, s.Lectures...)
	}
	return out
}
