package ingestion

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/heartmarshall/catalog-sync/internal/contentdef"
	"github.com/heartmarshall/catalog-sync/internal/domain"
)

// Reasons a topic could not be placed in the hierarchy.
const (
	ReasonMissingParent = "missing parent"
	ReasonCycle         = "cycle"
)

// UnresolvedTopic is a topic whose parent never received an id.
type UnresolvedTopic struct {
	Slug       string
	ParentSlug string
	Reason     string
}

// UnresolvedTopicsError lists every topic left pending after resolution.
// It matches domain.ErrUnresolvedTopics.
type UnresolvedTopicsError struct {
	Topics []UnresolvedTopic
}

func (e *UnresolvedTopicsError) Error() string {
	parts := make([]string, 0, len(e.Topics))
	for _, t := range e.Topics {
		parts = append(parts, fmt.Sprintf("%s (parent %s: %s)", t.Slug, t.ParentSlug, t.Reason))
	}
	return fmt.Sprintf("%s: %s", domain.ErrUnresolvedTopics, strings.Join(parts, ", "))
}

func (e *UnresolvedTopicsError) Unwrap() error { return domain.ErrUnresolvedTopics }

// resolveTopics upserts root topics, then keeps passing over the rest until a
// pass places nothing. Declaration order does not matter.
func (r *run) resolveTopics(ctx context.Context, defs []contentdef.TopicDef) (map[string]uuid.UUID, error) {
	ids := make(map[string]uuid.UUID, len(defs))

	upsert := func(t contentdef.TopicDef, parentID *uuid.UUID) error {
		res, err := r.repos.Topics.UpsertBySlug(ctx, t.Slug, t.Name, parentID)
		if err != nil {
			return fmt.Errorf("upsert topic %q: %w", t.Slug, err)
		}
		r.res.Topics.add(res)
		ids[t.Slug] = res.ID
		return nil
	}

	var pending []contentdef.TopicDef
	for _, t := range defs {
		if t.ParentSlug == nil {
			if err := upsert(t, nil); err != nil {
				return nil, err
			}
			continue
		}
		pending = append(pending, t)
	}

	for len(pending) > 0 {
		var next []contentdef.TopicDef
		for _, t := range pending {
			parentID, ok := ids[*t.ParentSlug]
			if !ok {
				next = append(next, t)
				continue
			}
			if err := upsert(t, &parentID); err != nil {
				return nil, err
			}
		}
		if len(next) == len(pending) {
			return nil, unresolvedTopics(defs, next)
		}
		pending = next
	}
	return ids, nil
}

// unresolvedTopics classifies each pending topic by following its parent
// chain through the other pending topics: the chain either ends at a slug
// nobody declared or loops back on itself.
func unresolvedTopics(defs, pending []contentdef.TopicDef) *UnresolvedTopicsError {
	declared := make(map[string]bool, len(defs))
	for _, t := range defs {
		declared[t.Slug] = true
	}
	parentOf := make(map[string]string, len(pending))
	for _, t := range pending {
		parentOf[t.Slug] = *t.ParentSlug
	}

	out := &UnresolvedTopicsError{Topics: make([]UnresolvedTopic, 0, len(pending))}
	for _, t := range pending {
		reason := ReasonCycle
		seen := map[string]bool{t.Slug: true}
		for slug := *t.ParentSlug; ; slug = parentOf[slug] {
			if !declared[slug] {
				reason = ReasonMissingParent
				break
			}
			if seen[slug] {
				break
			}
			seen[slug] = true
		}
		out.Topics = append(out.Topics, UnresolvedTopic{Slug: t.Slug, ParentSlug: *t.ParentSlug, Reason: reason})
	}
	return out
}
