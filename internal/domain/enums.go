package domain

// ContentStatus is the editorial state of a collection, series or lecture.
type ContentStatus string

const (
	ContentStatusDraft     ContentStatus = "draft"
	ContentStatusReview    ContentStatus = "review"
	ContentStatusPublished ContentStatus = "published"
	ContentStatusArchived  ContentStatus = "archived"
)

func (s ContentStatus) String() string { return string(s) }

func (s ContentStatus) IsValid() bool {
	switch s {
	case ContentStatusDraft, ContentStatusReview, ContentStatusPublished, ContentStatusArchived:
		return true
	}
	return false
}

// TopicOwnerKind identifies which catalog entity a topic attachment belongs to.
type TopicOwnerKind string

const (
	TopicOwnerLecture    TopicOwnerKind = "lecture"
	TopicOwnerSeries     TopicOwnerKind = "series"
	TopicOwnerCollection TopicOwnerKind = "collection"
)

func (k TopicOwnerKind) String() string { return string(k) }

func (k TopicOwnerKind) IsValid() bool {
	switch k {
	case TopicOwnerLecture, TopicOwnerSeries, TopicOwnerCollection:
		return true
	}
	return false
}

// AllTopicOwnerKinds lists every attachment table owner, in removal scan order.
func AllTopicOwnerKinds() []TopicOwnerKind {
	return []TopicOwnerKind{TopicOwnerLecture, TopicOwnerSeries, TopicOwnerCollection}
}

// Audio asset origin tags.
const (
	AudioSourceR2             = "r2"
	AudioSourceIngestionLocal = "ingestion-local"
	AudioSourceExternal       = "external"
)
