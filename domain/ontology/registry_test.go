package ontology_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ontoforge/ontology-core/domain/ontology"
	"github.com/ontoforge/ontology-core/internal/testutil"
	"github.com/ontoforge/ontology-core/pkg/apperror"
)

func TestRegistryLookup(t *testing.T) {
	reg := ontology.NewRegistry()
	reg.Register(testutil.NewMemoryRepository(ontology.KindProject))

	repo, err := reg.Repository(ontology.KindProject)
	require.NoError(t, err)
	assert.Equal(t, ontology.KindProject, repo.Kind())

	_, err = reg.Repository(ontology.KindTask)
	require.ErrorIs(t, err, apperror.ErrRepositoryNotConfigured)
}

func TestRegistryRejectsUnknownKind(t *testing.T) {
	reg := ontology.NewRegistry()
	assert.Panics(t, func() {
		reg.Register(testutil.NewMemoryRepository(ontology.Kind("Widget")))
	})
}

func TestRegistryRejectsDuplicateRegistration(t *testing.T) {
	reg := ontology.NewRegistry()
	reg.Register(testutil.NewMemoryRepository(ontology.KindProject))
	assert.Panics(t, func() {
		reg.Register(testutil.NewMemoryRepository(ontology.KindProject))
	})
}

func TestRegistryKinds(t *testing.T) {
	reg := ontology.NewRegistry()
	reg.Register(testutil.NewMemoryRepository(ontology.KindTask))
	reg.Register(testutil.NewMemoryRepository(ontology.KindProject))

	// Listed in canonical kind order, not registration order.
	assert.Equal(t, []ontology.Kind{ontology.KindProject, ontology.KindTask}, reg.Kinds())
}
