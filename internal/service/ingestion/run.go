package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/catalog-sync/internal/domain"
)

// run carries the state of one ingestion inside its transaction.
type run struct {
	*Service
	in       RunInput
	batch    domain.IngestionBatch
	topicIDs map[string]uuid.UUID
	now      time.Time
	res      *Result
}

// Run ingests in.Definition under the batch (in.Tag, in.Environment).
//
// Every database write happens in one transaction. A dry run performs all of
// them, then rolls back and still returns the counters. Object store uploads
// are not transactional and survive both failures and dry runs.
func (s *Service) Run(ctx context.Context, in RunInput) (*Result, error) {
	in.applyDefaults(s.cfg)
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if in.StrictAudioUpload && s.store == nil {
		return nil, fmt.Errorf("strict audio upload: %w", domain.ErrStorageNotConfigured)
	}

	start := time.Now()
	res := &Result{Tag: in.Tag, Environment: in.Environment, DryRun: in.DryRun}

	txCtx := ctx
	if s.cfg.TxTimeout > 0 {
		var cancel context.CancelFunc
		txCtx, cancel = context.WithTimeout(ctx, s.cfg.TxTimeout)
		defer cancel()
	}

	err := s.tx.RunInTx(txCtx, func(ctx context.Context) error {
		r := &run{Service: s, in: in, now: s.now().UTC(), res: res}
		if err := r.execute(ctx); err != nil {
			return err
		}
		if in.DryRun {
			return domain.ErrDryRunRollback
		}
		return nil
	})
	res.Duration = time.Since(start)

	switch {
	case err == nil:
	case in.DryRun && errors.Is(err, domain.ErrDryRunRollback):
		s.log.DebugContext(ctx, "dry run rolled back", slog.String("tag", in.Tag))
	default:
		s.log.ErrorContext(ctx, "ingestion failed",
			slog.String("tag", in.Tag),
			slog.String("environment", in.Environment),
			slog.Int("uploaded", res.Uploaded),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	s.log.InfoContext(ctx, "ingestion finished", res.logAttrs()...)
	return res, nil
}

func (r *run) execute(ctx context.Context) error {
	batch, err := r.repos.Batches.Upsert(ctx, r.in.Tag, r.in.Environment)
	if err != nil {
		return fmt.Errorf("upsert ingestion batch: %w", err)
	}
	r.batch = batch
	r.res.BatchID = batch.ID

	r.log.DebugContext(ctx, "ingestion batch",
		slog.String("batch_id", batch.ID.String()),
		slog.String("tag", batch.Tag),
		slog.String("environment", batch.Environment),
	)

	r.topicIDs, err = r.resolveTopics(ctx, r.in.Definition.Topics)
	if err != nil {
		return err
	}

	for _, sd := range r.in.Definition.Scholars {
		if err := r.ingestScholar(ctx, sd); err != nil {
			return err
		}
	}
	return nil
}
