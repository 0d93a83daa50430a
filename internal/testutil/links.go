package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ontoforge/ontology-core/domain/ontology"
)

// MemoryLinkRepository is a map-backed LinkRepository with upsert keyed by
// (source, target, type), matching the SQL implementation's unique index.
type MemoryLinkRepository struct {
	mu    sync.Mutex
	links map[uuid.UUID]*ontology.Link
}

func NewMemoryLinkRepository() *MemoryLinkRepository {
	return &MemoryLinkRepository{links: make(map[uuid.UUID]*ontology.Link)}
}

func (r *MemoryLinkRepository) Upsert(_ context.Context, sourceID, targetID uuid.UUID, kind ontology.LinkKind, metadata map[string]any) (*ontology.Link, error) {
	if metadata == nil {
		metadata = map[string]any{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.links {
		if l.SourceID == sourceID && l.TargetID == targetID && l.LinkType == kind {
			l.Metadata = metadata
			l.UpdatedAt = time.Now().UTC()
			return l, nil
		}
	}
	ts := time.Now().UTC()
	link := &ontology.Link{
		ID:        uuid.New(),
		SourceID:  sourceID,
		TargetID:  targetID,
		LinkType:  kind,
		Metadata:  metadata,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	r.links[link.ID] = link
	return link, nil
}

func (r *MemoryLinkRepository) Get(_ context.Context, id uuid.UUID) (*ontology.Link, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.links[id], nil
}

func (r *MemoryLinkRepository) BySource(_ context.Context, sourceID uuid.UUID, kind ontology.LinkKind) ([]*ontology.Link, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*ontology.Link
	for _, l := range r.links {
		if l.SourceID == sourceID && l.LinkType == kind {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *MemoryLinkRepository) ByTarget(_ context.Context, targetID uuid.UUID, kind ontology.LinkKind) ([]*ontology.Link, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*ontology.Link
	for _, l := range r.links {
		if l.TargetID == targetID && l.LinkType == kind {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *MemoryLinkRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.links, id)
	return nil
}

func (r *MemoryLinkRepository) DeleteTouching(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for lid, l := range r.links {
		if l.SourceID == id || l.TargetID == id {
			delete(r.links, lid)
		}
	}
	return nil
}

// Len reports the number of stored links.
func (r *MemoryLinkRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.links)
}
