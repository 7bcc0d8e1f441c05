package domain

import (
	"math/big"
	"time"

	"github.com/google/uuid"
)

// IngestionBatch identifies one ingestion run target. (Tag, Environment) is unique.
type IngestionBatch struct {
	ID          uuid.UUID
	Tag         string
	Environment string
	CreatedAt   time.Time
}

// Topic is a node of the global topic taxonomy. Slug is the natural key.
type Topic struct {
	ID        uuid.UUID
	Slug      string
	Name      string
	ParentID  *uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Scholar is the author of collections, series and lectures. Slug is globally unique.
type Scholar struct {
	ID           uuid.UUID
	Slug         string
	Name         string
	Bio          *string
	Country      *string
	MainLanguage *string
	ImageURL     *string
	IsActive     bool
	BatchID      uuid.UUID
}

// SoftDelete carries the timestamps an external sweeper uses for hard deletion.
type SoftDelete struct {
	DeletedAt     *time.Time
	DeleteAfterAt *time.Time
}

// IsDeleted reports whether the row is marked as soft-deleted.
func (s SoftDelete) IsDeleted() bool {
	return s.DeletedAt != nil
}

// PublishedAggregates are derived at ingestion time for collections and series.
// PublishedDurationSeconds is nil when any contributing lecture has no duration.
type PublishedAggregates struct {
	PublishedLectureCount    int
	PublishedDurationSeconds *int64
}

// Collection groups series of a scholar. Natural key: (ScholarID, Slug).
type Collection struct {
	ID            uuid.UUID
	ScholarID     uuid.UUID
	Slug          string
	Title         string
	Description   *string
	CoverImageURL *string
	Language      *string
	Status        ContentStatus
	OrderIndex    *int
	BatchID       uuid.UUID
	PublishedAggregates
	SoftDelete
}

// Series is an ordered run of lectures. Natural key: (ScholarID, Slug).
// CollectionID is nil for series owned directly by the scholar.
type Series struct {
	ID            uuid.UUID
	ScholarID     uuid.UUID
	CollectionID  *uuid.UUID
	Slug          string
	Title         string
	Description   *string
	CoverImageURL *string
	Language      *string
	Status        ContentStatus
	OrderIndex    *int
	BatchID       uuid.UUID
	PublishedAggregates
	SoftDelete
}

// Lecture is a single recorded talk. Natural key: (ScholarID, Slug).
type Lecture struct {
	ID              uuid.UUID
	ScholarID       uuid.UUID
	SeriesID        *uuid.UUID
	Slug            string
	Title           string
	Description     *string
	Language        *string
	Status          ContentStatus
	DurationSeconds *int
	PublishedAt     *time.Time
	// PublishedAtExplicit is true when PublishedAt came from the content
	// definition rather than being stamped at ingestion time.
	PublishedAtExplicit bool
	OrderIndex          *int
	BatchID             uuid.UUID
	SoftDelete
}

// AudioAsset is a playable file of a lecture. Natural key: (LectureID, URL).
type AudioAsset struct {
	ID              uuid.UUID
	LectureID       uuid.UUID
	URL             string
	Format          string
	BitrateKbps     *int
	SizeBytes       *big.Int
	DurationSeconds *int
	Source          string
	IsPrimary       bool
	BatchID         uuid.UUID
}

// UpsertResult reports the row id of a natural-key upsert and whether it was inserted.
type UpsertResult struct {
	ID      uuid.UUID
	Created bool
}
