package ontology

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/ontoforge/ontology-core/pkg/apperror"
	"github.com/ontoforge/ontology-core/pkg/logger"
)

// BatchRequest is one query in a BatchQuery call.
type BatchRequest struct {
	Kind    Kind         `json:"kind"`
	Options QueryOptions `json:"options"`
}

// Store is the uniform object/link facade. Service is the direct
// implementation; CachedService wraps any Store with a read cache.
type Store interface {
	GetObject(ctx context.Context, kind Kind, id uuid.UUID) (Object, error)
	QueryObjects(ctx context.Context, kind Kind, opts QueryOptions) ([]Object, error)
	CountObjects(ctx context.Context, kind Kind, opts QueryOptions) (int, error)
	CreateObject(ctx context.Context, in Input) (Object, error)
	CreateObjects(ctx context.Context, kind Kind, ins []Input) ([]Object, error)
	UpdateObject(ctx context.Context, kind Kind, id uuid.UUID, p Patch) (Object, error)
	DeleteObject(ctx context.Context, kind Kind, id uuid.UUID) error
	GetLinkedObjects(ctx context.Context, sourceID uuid.UUID, kind LinkKind) ([]Object, error)
	CreateLink(ctx context.Context, sourceID, targetID uuid.UUID, kind LinkKind, metadata map[string]any) (*Link, error)
	DeleteLink(ctx context.Context, id uuid.UUID) error
	BatchQuery(ctx context.Context, reqs []BatchRequest) ([][]Object, error)
}

// Service resolves kinds through the registry and traverses links by their
// configured strategy.
type Service struct {
	registry *Registry
	links    LinkRepository
	log      *slog.Logger
}

func NewService(registry *Registry, links LinkRepository, log *slog.Logger) *Service {
	return &Service{
		registry: registry,
		links:    links,
		log:      log.With(logger.Scope("ontology.service")),
	}
}

func (s *Service) GetObject(ctx context.Context, kind Kind, id uuid.UUID) (Object, error) {
	repo, err := s.registry.Repository(kind)
	if err != nil {
		return nil, err
	}
	return repo.Get(ctx, id)
}

func (s *Service) QueryObjects(ctx context.Context, kind Kind, opts QueryOptions) ([]Object, error) {
	repo, err := s.registry.Repository(kind)
	if err != nil {
		return nil, err
	}
	return repo.Query(ctx, opts)
}

func (s *Service) CountObjects(ctx context.Context, kind Kind, opts QueryOptions) (int, error) {
	repo, err := s.registry.Repository(kind)
	if err != nil {
		return 0, err
	}
	return repo.Count(ctx, opts)
}

func (s *Service) CreateObject(ctx context.Context, in Input) (Object, error) {
	repo, err := s.registry.Repository(in.InputKind())
	if err != nil {
		return nil, err
	}
	return repo.Create(ctx, in)
}

// CreateObjects inserts all inputs of one kind in a single statement. The
// batch succeeds or fails as a whole.
func (s *Service) CreateObjects(ctx context.Context, kind Kind, ins []Input) ([]Object, error) {
	repo, err := s.registry.Repository(kind)
	if err != nil {
		return nil, err
	}
	for _, in := range ins {
		if in.InputKind() != kind {
			return nil, apperror.NewValidation("batch inputs must all be of kind " + string(kind))
		}
	}
	return repo.CreateBatch(ctx, ins)
}

func (s *Service) UpdateObject(ctx context.Context, kind Kind, id uuid.UUID, p Patch) (Object, error) {
	repo, err := s.registry.Repository(kind)
	if err != nil {
		return nil, err
	}
	return repo.Update(ctx, id, p)
}

// DeleteObject removes the object and every link touching it.
func (s *Service) DeleteObject(ctx context.Context, kind Kind, id uuid.UUID) error {
	repo, err := s.registry.Repository(kind)
	if err != nil {
		return err
	}
	if err := repo.Delete(ctx, id); err != nil {
		return err
	}
	return s.links.DeleteTouching(ctx, id)
}

// GetLinkedObjects resolves the targets of every link of the given kind
// leaving sourceID. Foreign-key kinds are a single filtered query on the
// target table; link-table kinds walk the edge rows and load each target,
// silently dropping edges whose target no longer resolves.
func (s *Service) GetLinkedObjects(ctx context.Context, sourceID uuid.UUID, kind LinkKind) ([]Object, error) {
	spec, err := kind.Spec()
	if err != nil {
		return nil, err
	}
	repo, err := s.registry.Repository(spec.Target)
	if err != nil {
		return nil, err
	}

	if spec.Strategy == StrategyForeignKey {
		return repo.Query(ctx, QueryOptions{}.WithFilter(spec.ForeignKeyField, OpEq, sourceID))
	}

	edges, err := s.links.BySource(ctx, sourceID, kind)
	if err != nil {
		return nil, err
	}
	out := make([]Object, 0, len(edges))
	for _, edge := range edges {
		obj, err := repo.Get(ctx, edge.TargetID)
		if err != nil {
			return nil, err
		}
		if obj == nil {
			// Dangling edge or target outside the tenant scope.
			continue
		}
		out = append(out, obj)
	}
	return out, nil
}

// CreateLink validates both endpoints against the link kind's declared source
// and target kinds, then upserts the edge. Foreign-key kinds have no edge row
// to create: the relation lives on the target's own column.
func (s *Service) CreateLink(ctx context.Context, sourceID, targetID uuid.UUID, kind LinkKind, metadata map[string]any) (*Link, error) {
	spec, err := kind.Spec()
	if err != nil {
		return nil, err
	}
	if spec.Strategy == StrategyForeignKey {
		return nil, apperror.NewValidation(
			"link type " + string(kind) + " is derived from the " + spec.ForeignKeyField + " field; update the target object instead")
	}
	if err := s.requireObject(ctx, spec.Source, sourceID, "source"); err != nil {
		return nil, err
	}
	if err := s.requireObject(ctx, spec.Target, targetID, "target"); err != nil {
		return nil, err
	}
	return s.links.Upsert(ctx, sourceID, targetID, kind, metadata)
}

func (s *Service) requireObject(ctx context.Context, kind Kind, id uuid.UUID, side string) error {
	repo, err := s.registry.Repository(kind)
	if err != nil {
		return err
	}
	obj, err := repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if obj == nil {
		return apperror.NewNotFound("link "+side+" "+string(kind), id.String())
	}
	return nil
}

func (s *Service) DeleteLink(ctx context.Context, id uuid.UUID) error {
	return s.links.Delete(ctx, id)
}

// BatchQuery runs the requests concurrently and returns results in input
// order. Every request runs to completion; when any fail, the error of the
// earliest failed request is returned alongside the results that succeeded
// (failed slots stay nil).
func (s *Service) BatchQuery(ctx context.Context, reqs []BatchRequest) ([][]Object, error) {
	results := make([][]Object, len(reqs))
	errs := make([]error, len(reqs))

	var wg sync.WaitGroup
	for i, req := range reqs {
		wg.Add(1)
		go func(i int, req BatchRequest) {
			defer wg.Done()
			results[i], errs[i] = s.QueryObjects(ctx, req.Kind, req.Options)
		}(i, req)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return results, err
		}
	}
	return results, nil
}
