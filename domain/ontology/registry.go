package ontology

import (
	"fmt"

	"github.com/ontoforge/ontology-core/pkg/apperror"
)

// Registry maps each object kind to its repository. The mapping is built once
// at startup; lookups at request time cannot encounter an unknown kind unless
// a kind was never registered, which surfaces as repository_not_configured.
type Registry struct {
	repos map[Kind]ObjectRepository
}

func NewRegistry() *Registry {
	return &Registry{repos: make(map[Kind]ObjectRepository)}
}

// Register binds repo to its declared kind. Unknown kinds and duplicate
// registrations are programming errors and panic at startup rather than
// surfacing per request.
func (r *Registry) Register(repo ObjectRepository) {
	kind := repo.Kind()
	if !kind.Valid() {
		panic(fmt.Sprintf("ontology: cannot register repository for unknown kind %q", kind))
	}
	if _, dup := r.repos[kind]; dup {
		panic(fmt.Sprintf("ontology: repository for kind %q registered twice", kind))
	}
	r.repos[kind] = repo
}

// Repository returns the repository registered for kind.
func (r *Registry) Repository(kind Kind) (ObjectRepository, error) {
	repo, ok := r.repos[kind]
	if !ok {
		return nil, apperror.ErrRepositoryNotConfigured.WithMessagef("no repository registered for kind %q", kind)
	}
	return repo, nil
}

// Kinds lists the kinds with a registered repository.
func (r *Registry) Kinds() []Kind {
	out := make([]Kind, 0, len(r.repos))
	for _, k := range Kinds {
		if _, ok := r.repos[k]; ok {
			out = append(out, k)
		}
	}
	return out
}
