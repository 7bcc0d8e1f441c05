// Package contentdef parses and validates content definition documents: the
// hierarchical description of topics, scholars, collections, series, lectures
// and audio assets that an ingestion run materializes.
package contentdef

import (
	"encoding/json"
	"math/big"
	"time"

	"github.com/heartmarshall/catalog-sync/internal/domain"
)

// SupportedVersion is the only accepted value of Definition.Version.
const SupportedVersion = 1

// Definition is the root of a content definition document.
type Definition struct {
	Version  int          `json:"version"  yaml:"version"  validate:"eq=1"`
	Topics   []TopicDef   `json:"topics"   yaml:"topics"   validate:"dive"`
	Scholars []ScholarDef `json:"scholars" yaml:"scholars" validate:"dive"`
}

// TopicDef declares a taxonomy node. ParentSlug may reference a topic declared
// later in the list.
type TopicDef struct {
	Slug       string  `json:"slug"       yaml:"slug"       validate:"required,slug"`
	Name       string  `json:"name"       yaml:"name"       validate:"required"`
	ParentSlug *string `json:"parentSlug" yaml:"parentSlug" validate:"omitempty,slug"`
}

// ScholarDef declares a scholar and everything the scholar owns.
type ScholarDef struct {
	Slug         string          `json:"slug"         yaml:"slug"         validate:"required,slug"`
	Name         string          `json:"name"         yaml:"name"         validate:"required"`
	Bio          *string         `json:"bio"          yaml:"bio"`
	Country      *string         `json:"country"      yaml:"country"`
	MainLanguage *string         `json:"mainLanguage" yaml:"mainLanguage"`
	ImageURL     *string         `json:"imageUrl"     yaml:"imageUrl"     validate:"omitempty,url"`
	IsActive     *bool           `json:"isActive"     yaml:"isActive"`
	Collections  []CollectionDef `json:"collections"  yaml:"collections"  validate:"dive"`
	Series       []SeriesDef     `json:"series"       yaml:"series"       validate:"dive"`
	Lectures     []LectureDef    `json:"lectures"     yaml:"lectures"     validate:"dive"`
}

// CollectionDef declares a collection of series.
type CollectionDef struct {
	Slug          string               `json:"slug"          yaml:"slug"          validate:"required,slug"`
	Title         string               `json:"title"         yaml:"title"         validate:"required"`
	Description   *string              `json:"description"   yaml:"description"`
	CoverImageURL *string              `json:"coverImageUrl" yaml:"coverImageUrl" validate:"omitempty,url"`
	Language      *string              `json:"language"      yaml:"language"`
	Status        domain.ContentStatus `json:"status"        yaml:"status"        validate:"omitempty,content_status"`
	OrderIndex    *int                 `json:"orderIndex"    yaml:"orderIndex"    validate:"omitempty,min=0"`
	TopicSlugs    []string             `json:"topicSlugs"    yaml:"topicSlugs"    validate:"dive,slug"`
	DeletedAt     *string              `json:"deletedAt"     yaml:"deletedAt"     validate:"omitempty,rfc3339"`
	DeleteAfterAt *string              `json:"deleteAfterAt" yaml:"deleteAfterAt" validate:"omitempty,rfc3339"`
	Series        []SeriesDef          `json:"series"        yaml:"series"        validate:"dive"`
}

// SeriesDef declares a series of lectures.
type SeriesDef struct {
	Slug          string               `json:"slug"          yaml:"slug"          validate:"required,slug"`
	Title         string               `json:"title"         yaml:"title"         validate:"required"`
	Description   *string              `json:"description"   yaml:"description"`
	CoverImageURL *string              `json:"coverImageUrl" yaml:"coverImageUrl" validate:"omitempty,url"`
	Language      *string              `json:"language"      yaml:"language"`
	Status        domain.ContentStatus `json:"status"        yaml:"status"        validate:"omitempty,content_status"`
	OrderIndex    *int                 `json:"orderIndex"    yaml:"orderIndex"    validate:"omitempty,min=0"`
	TopicSlugs    []string             `json:"topicSlugs"    yaml:"topicSlugs"    validate:"dive,slug"`
	DeletedAt     *string              `json:"deletedAt"     yaml:"deletedAt"     validate:"omitempty,rfc3339"`
	DeleteAfterAt *string              `json:"deleteAfterAt" yaml:"deleteAfterAt" validate:"omitempty,rfc3339"`
	Lectures      []LectureDef         `json:"lectures"      yaml:"lectures"      validate:"dive"`
}

// LectureDef declares a lecture and its audio files.
type LectureDef struct {
	Slug            string               `json:"slug"            yaml:"slug"            validate:"required,slug"`
	Title           string               `json:"title"           yaml:"title"           validate:"required"`
	Description     *string              `json:"description"     yaml:"description"`
	Language        *string              `json:"language"        yaml:"language"`
	Status          domain.ContentStatus `json:"status"          yaml:"status"          validate:"omitempty,content_status"`
	DurationSeconds *int                 `json:"durationSeconds" yaml:"durationSeconds" validate:"omitempty,min=0"`
	PublishedAt     *string              `json:"publishedAt"     yaml:"publishedAt"     validate:"omitempty,rfc3339"`
	OrderIndex      *int                 `json:"orderIndex"      yaml:"orderIndex"      validate:"omitempty,min=0"`
	TopicSlugs      []string             `json:"topicSlugs"      yaml:"topicSlugs"      validate:"dive,slug"`
	DeletedAt       *string              `json:"deletedAt"       yaml:"deletedAt"       validate:"omitempty,rfc3339"`
	DeleteAfterAt   *string              `json:"deleteAfterAt"   yaml:"deleteAfterAt"   validate:"omitempty,rfc3339"`
	AudioAssets     []AudioAssetDef      `json:"audioAssets"     yaml:"audioAssets"     validate:"dive"`
}

// AudioAssetDef declares one audio file of a lecture. At least one of URL,
// File, or the conventional file on disk must resolve at ingestion time.
type AudioAssetDef struct {
	URL             *string      `json:"url"             yaml:"url"             validate:"omitempty,url"`
	File            *string      `json:"file"            yaml:"file"            validate:"omitempty,min=1"`
	Format          *string      `json:"format"          yaml:"format"          validate:"omitempty,alphanum,max=16"`
	BitrateKbps     *int         `json:"bitrateKbps"     yaml:"bitrateKbps"     validate:"omitempty,min=0"`
	SizeBytes       *json.Number `json:"sizeBytes"       yaml:"sizeBytes"       validate:"omitempty,nonneg_int"`
	DurationSeconds *int         `json:"durationSeconds" yaml:"durationSeconds" validate:"omitempty,min=0"`
	Source          *string      `json:"source"          yaml:"source"`
	IsPrimary       bool         `json:"isPrimary"       yaml:"isPrimary"`
}

// SizeBytesInt returns SizeBytes as an arbitrary-precision integer, or nil.
// The value has already been checked by Validate.
func (a AudioAssetDef) SizeBytesInt() *big.Int {
	if a.SizeBytes == nil {
		return nil
	}
	n, ok := new(big.Int).SetString(a.SizeBytes.String(), 10)
	if !ok {
		return nil
	}
	return n
}

// Active reports the scholar's active flag (defaults to true).
func (s ScholarDef) Active() bool {
	return s.IsActive == nil || *s.IsActive
}

// SoftDelete converts the validated timestamps of a collection.
func (c CollectionDef) SoftDelete() domain.SoftDelete {
	return domain.SoftDelete{DeletedAt: parseTime(c.DeletedAt), DeleteAfterAt: parseTime(c.DeleteAfterAt)}
}

// SoftDelete converts the validated timestamps of a series.
func (s SeriesDef) SoftDelete() domain.SoftDelete {
	return domain.SoftDelete{DeletedAt: parseTime(s.DeletedAt), DeleteAfterAt: parseTime(s.DeleteAfterAt)}
}

// SoftDelete converts the validated timestamps of a lecture.
func (l LectureDef) SoftDelete() domain.SoftDelete {
	return domain.SoftDelete{DeletedAt: parseTime(l.DeletedAt), DeleteAfterAt: parseTime(l.DeleteAfterAt)}
}

// PublishedAtTime returns the explicit publish timestamp, or nil.
func (l LectureDef) PublishedAtTime() *time.Time {
	return parseTime(l.PublishedAt)
}

func parseTime(s *string) *time.Time {
	if s == nil {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, *s)
	if err != nil {
		return nil
	}
	t = t.UTC()
	return &t
}
