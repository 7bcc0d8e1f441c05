package ingestion

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/catalog-sync/internal/config"
	"github.com/heartmarshall/catalog-sync/internal/domain"
)

// ===========================================================================
// In-memory catalog shared by the fake repositories
// ===========================================================================

type memCatalog struct {
	batches     map[string]domain.IngestionBatch
	topics      map[string]domain.Topic
	scholars    map[string]domain.Scholar
	collections map[string]domain.Collection
	series      map[string]domain.Series
	lectures    map[string]domain.Lecture
	assets      map[string]domain.AudioAsset
	links       map[domain.TopicOwnerKind]map[uuid.UUID][]uuid.UUID

	upsertErr error
}

func newMemCatalog() *memCatalog {
	return &memCatalog{
		batches:     make(map[string]domain.IngestionBatch),
		topics:      make(map[string]domain.Topic),
		scholars:    make(map[string]domain.Scholar),
		collections: make(map[string]domain.Collection),
		series:      make(map[string]domain.Series),
		lectures:    make(map[string]domain.Lecture),
		assets:      make(map[string]domain.AudioAsset),
		links:       make(map[domain.TopicOwnerKind]map[uuid.UUID][]uuid.UUID),
	}
}

func scopedKey(scholarID uuid.UUID, slug string) string {
	return scholarID.String() + "/" + slug
}

func (m *memCatalog) repos() Repos {
	return Repos{
		Batches:     memBatches{m},
		Topics:      memTopics{m},
		Scholars:    memScholars{m},
		Collections: memCollections{m},
		Series:      memSeries{m},
		Lectures:    memLectures{m},
		AudioAssets: memAssets{m},
		TopicLinks:  memLinks{m},
	}
}

func (m *memCatalog) seriesBySlug(slug string) (domain.Series, bool) {
	for _, s := range m.series {
		if s.Slug == slug {
			return s, true
		}
	}
	return domain.Series{}, false
}

func (m *memCatalog) lectureBySlug(slug string) (domain.Lecture, bool) {
	for _, l := range m.lectures {
		if l.Slug == slug {
			return l, true
		}
	}
	return domain.Lecture{}, false
}

func (m *memCatalog) assetsOf(lectureID uuid.UUID) []domain.AudioAsset {
	var out []domain.AudioAsset
	for _, a := range m.assets {
		if a.LectureID == lectureID {
			out = append(out, a)
		}
	}
	return out
}

type memBatches struct{ m *memCatalog }

func (r memBatches) Upsert(_ context.Context, tag, environment string) (domain.IngestionBatch, error) {
	key := tag + "|" + environment
	if b, ok := r.m.batches[key]; ok {
		return b, nil
	}
	b := domain.IngestionBatch{ID: uuid.New(), Tag: tag, Environment: environment, CreatedAt: time.Now()}
	r.m.batches[key] = b
	return b, nil
}

type memTopics struct{ m *memCatalog }

func (r memTopics) UpsertBySlug(_ context.Context, slug, name string, parentID *uuid.UUID) (domain.UpsertResult, error) {
	t, ok := r.m.topics[slug]
	if !ok {
		t = domain.Topic{ID: uuid.New(), Slug: slug}
	}
	t.Name = name
	t.ParentID = parentID
	r.m.topics[slug] = t
	return domain.UpsertResult{ID: t.ID, Created: !ok}, nil
}

type memScholars struct{ m *memCatalog }

func (r memScholars) Upsert(_ context.Context, s domain.Scholar) (domain.UpsertResult, error) {
	if r.m.upsertErr != nil {
		return domain.UpsertResult{}, r.m.upsertErr
	}
	prev, ok := r.m.scholars[s.Slug]
	s.ID = uuid.New()
	if ok {
		s.ID = prev.ID
	}
	r.m.scholars[s.Slug] = s
	return domain.UpsertResult{ID: s.ID, Created: !ok}, nil
}

type memCollections struct{ m *memCatalog }

func (r memCollections) Upsert(_ context.Context, c domain.Collection) (domain.UpsertResult, error) {
	key := scopedKey(c.ScholarID, c.Slug)
	prev, ok := r.m.collections[key]
	c.ID = uuid.New()
	if ok {
		c.ID = prev.ID
	}
	r.m.collections[key] = c
	return domain.UpsertResult{ID: c.ID, Created: !ok}, nil
}

type memSeries struct{ m *memCatalog }

func (r memSeries) Upsert(_ context.Context, s domain.Series) (domain.UpsertResult, error) {
	key := scopedKey(s.ScholarID, s.Slug)
	prev, ok := r.m.series[key]
	s.ID = uuid.New()
	if ok {
		s.ID = prev.ID
	}
	r.m.series[key] = s
	return domain.UpsertResult{ID: s.ID, Created: !ok}, nil
}

type memLectures struct{ m *memCatalog }

func (r memLectures) Upsert(_ context.Context, l domain.Lecture) (domain.UpsertResult, error) {
	key := scopedKey(l.ScholarID, l.Slug)
	prev, ok := r.m.lectures[key]
	l.ID = uuid.New()
	if ok {
		l.ID = prev.ID
	}
	r.m.lectures[key] = l
	return domain.UpsertResult{ID: l.ID, Created: !ok}, nil
}

type memAssets struct{ m *memCatalog }

func (r memAssets) Upsert(_ context.Context, a domain.AudioAsset) (domain.UpsertResult, error) {
	key := a.LectureID.String() + "|" + a.URL
	prev, ok := r.m.assets[key]
	a.ID = uuid.New()
	if ok {
		a.ID = prev.ID
	}
	r.m.assets[key] = a
	return domain.UpsertResult{ID: a.ID, Created: !ok}, nil
}

func (r memAssets) DemotePrimaryExcept(_ context.Context, lectureID uuid.UUID, keepURL string) (int64, error) {
	var n int64
	for k, a := range r.m.assets {
		if a.LectureID == lectureID && a.IsPrimary && a.URL != keepURL {
			a.IsPrimary = false
			r.m.assets[k] = a
			n++
		}
	}
	return n, nil
}

type memLinks struct{ m *memCatalog }

func (r memLinks) Sync(_ context.Context, kind domain.TopicOwnerKind, ownerID uuid.UUID, topicIDs []uuid.UUID) error {
	if r.m.links[kind] == nil {
		r.m.links[kind] = make(map[uuid.UUID][]uuid.UUID)
	}
	r.m.links[kind][ownerID] = append([]uuid.UUID(nil), topicIDs...)
	return nil
}

// ===========================================================================
// Transaction and object store fakes
// ===========================================================================

type passThroughTx struct {
	calls int
}

func (tx *passThroughTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	tx.calls++
	return fn(ctx)
}

type upload struct {
	Key, Path, ContentType string
}

type recordingStore struct {
	uploads []upload
	err     error
}

func (s *recordingStore) Upload(_ context.Context, key, path, contentType string) error {
	if s.err != nil {
		return s.err
	}
	s.uploads = append(s.uploads, upload{Key: key, Path: path, ContentType: contentType})
	return nil
}

func (s *recordingStore) PublicURL(key string) string {
	return "https://cdn.test/" + key
}

// ===========================================================================
// Helpers
// ===========================================================================

var fixedNow = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func newTestService(cat *memCatalog) (*Service, *passThroughTx) {
	tx := &passThroughTx{}
	svc := NewService(
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		cat.repos(),
		tx,
		config.IngestionConfig{Environment: "test", AudioDir: "./audio", TxTimeout: time.Minute},
	)
	svc.now = func() time.Time { return fixedNow }
	return svc, tx
}

func ptr[T any](v T) *T { return &v }
