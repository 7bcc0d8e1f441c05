package removal

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/catalog-sync/internal/domain"
)

// Remove deletes everything stamped with the batch (in.Tag, in.Environment).
//
// Objects are deleted first: if that fails the batch is left intact so the
// removal can be retried. Rows are then deleted bottom-up in one transaction,
// followed by topics no attachment references any more and the batch row.
// A dry run only counts.
func (s *Service) Remove(ctx context.Context, in RemoveInput) (*Result, error) {
	in.applyDefaults(s.cfg)
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if !in.SkipStorage && s.store == nil {
		return nil, fmt.Errorf("remove storage objects: %w", domain.ErrStorageNotConfigured)
	}

	start := time.Now()
	res := &Result{Tag: in.Tag, Environment: in.Environment, DryRun: in.DryRun, SkipStorage: in.SkipStorage}

	b, err := s.repos.Batches.Get(ctx, in.Tag, in.Environment)
	if err != nil {
		return nil, err
	}
	res.BatchID = b.ID

	if res.Found, err = s.count(ctx, b.ID); err != nil {
		return nil, err
	}

	candidates, err := s.candidateTopics(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	res.CandidateTopics = len(candidates)

	if err := s.collectStorageKeys(ctx, b, in, res); err != nil {
		return nil, err
	}

	if in.DryRun {
		res.Duration = time.Since(start)
		s.log.InfoContext(ctx, "removal dry run", res.logAttrs()...)
		return res, nil
	}

	if !in.SkipStorage && len(res.StorageKeys) > 0 {
		n, err := s.store.DeleteKeys(ctx, res.StorageKeys)
		res.ObjectsDeleted = n
		if err != nil {
			return nil, fmt.Errorf("delete storage objects (%d of %d deleted): %w", n, len(res.StorageKeys), err)
		}
	}

	txCtx := ctx
	if s.cfg.TxTimeout > 0 {
		var cancel context.CancelFunc
		txCtx, cancel = context.WithTimeout(ctx, s.cfg.TxTimeout)
		defer cancel()
	}
	err = s.tx.RunInTx(txCtx, func(ctx context.Context) error {
		return s.deleteRows(ctx, b.ID, candidates, res)
	})
	if err != nil {
		return nil, err
	}

	res.Duration = time.Since(start)
	s.log.InfoContext(ctx, "removal finished", res.logAttrs()...)
	return res, nil
}

func (s *Service) count(ctx context.Context, batchID uuid.UUID) (Counts, error) {
	var (
		c   Counts
		err error
	)
	steps := []struct {
		kind string
		repo batchScopedRepo
		dst  *int
	}{
		{"scholars", s.repos.Scholars, &c.Scholars},
		{"collections", s.repos.Collections, &c.Collections},
		{"series", s.repos.Series, &c.Series},
		{"lectures", s.repos.Lectures, &c.Lectures},
		{"audio_assets", s.repos.AudioAssets, &c.AudioAssets},
	}
	for _, st := range steps {
		if *st.dst, err = st.repo.CountByBatch(ctx, batchID); err != nil {
			return Counts{}, fmt.Errorf("count %s: %w", st.kind, err)
		}
	}
	return c, nil
}

// candidateTopics returns every topic attached to a lecture, series or
// collection of the batch.
func (s *Service) candidateTopics(ctx context.Context, batchID uuid.UUID) ([]uuid.UUID, error) {
	lectureIDs, err := s.repos.Lectures.IDsByBatch(ctx, batchID)
	if err != nil {
		return nil, fmt.Errorf("lecture ids: %w", err)
	}
	seriesIDs, err := s.repos.Series.IDsByBatch(ctx, batchID)
	if err != nil {
		return nil, fmt.Errorf("series ids: %w", err)
	}
	collectionIDs, err := s.repos.Collections.IDsByBatch(ctx, batchID)
	if err != nil {
		return nil, fmt.Errorf("collection ids: %w", err)
	}

	ids, err := s.repos.TopicLinks.TopicIDsByOwners(ctx, lectureIDs, seriesIDs, collectionIDs)
	if err != nil {
		return nil, fmt.Errorf("candidate topics: %w", err)
	}
	return ids, nil
}

// collectStorageKeys unions the storage keys recorded on the batch's audio
// assets with the keys actually present under the batch prefix. The two can
// disagree after dry runs or manual edits of the bucket.
func (s *Service) collectStorageKeys(ctx context.Context, b domain.IngestionBatch, in RemoveInput, res *Result) error {
	urls, err := s.repos.AudioAssets.URLsByBatch(ctx, b.ID)
	if err != nil {
		return fmt.Errorf("audio urls: %w", err)
	}

	keys := make([]string, 0, len(urls))
	for _, u := range urls {
		if domain.IsStorageKey(u) {
			keys = append(keys, u)
		}
	}
	res.DatabaseKeys = len(keys)

	if !in.SkipStorage {
		prefix := domain.BatchStoragePrefix(b.Environment, b.Tag)
		listed, err := s.store.ListKeys(ctx, prefix)
		if err != nil {
			return fmt.Errorf("list storage keys under %s: %w", prefix, err)
		}
		res.ListedKeys = len(listed)
		keys = append(keys, listed...)
	}

	slices.Sort(keys)
	res.StorageKeys = slices.Compact(keys)
	return nil
}

// deleteRows runs inside the removal transaction.
func (s *Service) deleteRows(ctx context.Context, batchID uuid.UUID, candidates []uuid.UUID, res *Result) error {
	var deleted Counts
	steps := []struct {
		kind string
		repo batchScopedRepo
		dst  *int
	}{
		{"audio_assets", s.repos.AudioAssets, &deleted.AudioAssets},
		{"lectures", s.repos.Lectures, &deleted.Lectures},
		{"series", s.repos.Series, &deleted.Series},
		{"collections", s.repos.Collections, &deleted.Collections},
		{"scholars", s.repos.Scholars, &deleted.Scholars},
	}
	for _, st := range steps {
		n, err := st.repo.DeleteByBatch(ctx, batchID)
		if err != nil {
			return fmt.Errorf("delete %s: %w", st.kind, err)
		}
		*st.dst = int(n)
		s.log.DebugContext(ctx, "deleted batch rows", slog.String("kind", st.kind), slog.Int64("rows", n))
	}

	topics, err := s.repos.Topics.DeleteUnreferenced(ctx, candidates)
	if err != nil {
		return fmt.Errorf("delete unreferenced topics: %w", err)
	}

	if err := s.repos.Batches.Delete(ctx, batchID); err != nil {
		return fmt.Errorf("delete batch: %w", err)
	}

	res.Deleted = deleted
	res.TopicsDeleted = topics
	return nil
}
