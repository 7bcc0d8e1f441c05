package ingestion

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/heartmarshall/catalog-sync/internal/domain"
)

// syncTopics makes the owner's attachment rows equal the declared slugs.
func (r *run) syncTopics(ctx context.Context, kind domain.TopicOwnerKind, ownerID uuid.UUID, ownerSlug string, slugs []string) error {
	ids := make([]uuid.UUID, 0, len(slugs))
	seen := make(map[uuid.UUID]bool, len(slugs))
	for _, slug := range slugs {
		id, ok := r.topicIDs[slug]
		if !ok {
			return fmt.Errorf("%w %q referenced by %s %q", domain.ErrUnknownTopic, slug, kind, ownerSlug)
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}

	if err := r.repos.TopicLinks.Sync(ctx, kind, ownerID, ids); err != nil {
		return fmt.Errorf("sync %s %q topics: %w", kind, ownerSlug, err)
	}
	r.res.TopicLinks += len(ids)
	return nil
}
