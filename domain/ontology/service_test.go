package ontology_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ontoforge/ontology-core/domain/ontology"
	"github.com/ontoforge/ontology-core/pkg/apperror"
)

func createEntity(t *testing.T, f *fixture, ctx context.Context, name string) *ontology.Entity {
	t.Helper()
	obj, err := f.store.CreateObject(ctx, ontology.CreateEntityInput{
		ProjectID: uuid.New(),
		Name:      name,
	})
	require.NoError(t, err)
	return obj.(*ontology.Entity)
}

func TestGetLinkedObjectsForeignKey(t *testing.T) {
	f := newFixture()
	ctx := tenantCtx(uuid.New())

	project := createProject(t, f, ctx, "alpha")
	other := createProject(t, f, ctx, "beta")

	for _, name := range []string{"api", "worker"} {
		_, err := f.store.CreateObject(ctx, ontology.CreateModuleInput{
			ProjectID: project.ID,
			Name:      name,
		})
		require.NoError(t, err)
	}
	_, err := f.store.CreateObject(ctx, ontology.CreateModuleInput{
		ProjectID: other.ID,
		Name:      "stray",
	})
	require.NoError(t, err)

	objs, err := f.store.GetLinkedObjects(ctx, project.ID, ontology.LinkProjectModules)
	require.NoError(t, err)
	require.Len(t, objs, 2)
	for _, obj := range objs {
		assert.Equal(t, project.ID, obj.(*ontology.Module).ProjectID)
	}

	// No edge rows are involved in foreign-key traversal.
	assert.Equal(t, 0, f.links.Len())
}

func TestGetLinkedObjectsLinkTable(t *testing.T) {
	f := newFixture()
	ctx := tenantCtx(uuid.New())

	e1 := createEntity(t, f, ctx, "invoice")
	e2 := createEntity(t, f, ctx, "customer")
	e3 := createEntity(t, f, ctx, "address")

	_, err := f.store.CreateLink(ctx, e1.ID, e2.ID, ontology.LinkEntityReferences, nil)
	require.NoError(t, err)
	_, err = f.store.CreateLink(ctx, e1.ID, e3.ID, ontology.LinkEntityReferences, nil)
	require.NoError(t, err)

	objs, err := f.store.GetLinkedObjects(ctx, e1.ID, ontology.LinkEntityReferences)
	require.NoError(t, err)
	assert.Len(t, objs, 2)

	// A dangling edge is dropped, not surfaced as an error.
	require.NoError(t, f.repos[ontology.KindEntity].Delete(ctx, e3.ID))
	objs, err = f.store.GetLinkedObjects(ctx, e1.ID, ontology.LinkEntityReferences)
	require.NoError(t, err)
	require.Len(t, objs, 1)
	assert.Equal(t, e2.ID, objs[0].ObjectID())
}

func TestCreateLinkUpsertsOnTriple(t *testing.T) {
	f := newFixture()
	ctx := tenantCtx(uuid.New())

	e1 := createEntity(t, f, ctx, "invoice")
	e2 := createEntity(t, f, ctx, "customer")

	first, err := f.store.CreateLink(ctx, e1.ID, e2.ID, ontology.LinkEntityReferences, map[string]any{"field": "billing"})
	require.NoError(t, err)

	second, err := f.store.CreateLink(ctx, e1.ID, e2.ID, ontology.LinkEntityReferences, map[string]any{"field": "shipping"})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "shipping", second.Metadata["field"])
	assert.Equal(t, 1, f.links.Len())
}

func TestCreateLinkRejectsForeignKeyKinds(t *testing.T) {
	f := newFixture()
	ctx := tenantCtx(uuid.New())

	project := createProject(t, f, ctx, "alpha")
	obj, err := f.store.CreateObject(ctx, ontology.CreateModuleInput{ProjectID: project.ID, Name: "api"})
	require.NoError(t, err)

	_, err = f.store.CreateLink(ctx, project.ID, obj.ObjectID(), ontology.LinkProjectModules, nil)
	require.ErrorIs(t, err, apperror.ErrValidation)
	assert.Contains(t, err.Error(), "is derived from the project_id field")
}

func TestCreateLinkValidatesEndpoints(t *testing.T) {
	f := newFixture()
	ctx := tenantCtx(uuid.New())

	e1 := createEntity(t, f, ctx, "invoice")

	_, err := f.store.CreateLink(ctx, e1.ID, uuid.New(), ontology.LinkEntityReferences, nil)
	require.ErrorIs(t, err, apperror.ErrNotFound)
	assert.Contains(t, err.Error(), "link target Entity")

	_, err = f.store.CreateLink(ctx, uuid.New(), e1.ID, ontology.LinkEntityReferences, nil)
	require.ErrorIs(t, err, apperror.ErrNotFound)
	assert.Contains(t, err.Error(), "link source Entity")
}

func TestCreateLinkEndpointsScopedToTenant(t *testing.T) {
	f := newFixture()
	ctxA, ctxB := tenantCtx(uuid.New()), tenantCtx(uuid.New())

	e1 := createEntity(t, f, ctxA, "invoice")
	e2 := createEntity(t, f, ctxB, "customer")

	// The other tenant's entity is invisible, so the endpoint check fails.
	_, err := f.store.CreateLink(ctxA, e1.ID, e2.ID, ontology.LinkEntityReferences, nil)
	require.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestDeleteObjectRemovesTouchingLinks(t *testing.T) {
	f := newFixture()
	ctx := tenantCtx(uuid.New())

	e1 := createEntity(t, f, ctx, "invoice")
	e2 := createEntity(t, f, ctx, "customer")
	e3 := createEntity(t, f, ctx, "address")

	_, err := f.store.CreateLink(ctx, e1.ID, e2.ID, ontology.LinkEntityReferences, nil)
	require.NoError(t, err)
	_, err = f.store.CreateLink(ctx, e2.ID, e3.ID, ontology.LinkEntityReferences, nil)
	require.NoError(t, err)

	require.NoError(t, f.store.DeleteObject(ctx, ontology.KindEntity, e2.ID))
	assert.Equal(t, 0, f.links.Len())
}

func TestCreateObjectsRejectsMixedKinds(t *testing.T) {
	f := newFixture()
	ctx := tenantCtx(uuid.New())

	_, err := f.store.CreateObjects(ctx, ontology.KindProject, []ontology.Input{
		ontology.CreateProjectInput{Name: "alpha"},
		ontology.CreateTaskInput{Title: "stray"},
	})
	require.ErrorIs(t, err, apperror.ErrValidation)
}

func TestBatchQueryPreservesInputOrder(t *testing.T) {
	f := newFixture()
	ctx := tenantCtx(uuid.New())

	createProject(t, f, ctx, "alpha")
	createProject(t, f, ctx, "beta")
	_, err := f.store.CreateObject(ctx, ontology.CreateTaskInput{Title: "one"})
	require.NoError(t, err)

	results, err := f.store.BatchQuery(ctx, []ontology.BatchRequest{
		{Kind: ontology.KindProject},
		{Kind: ontology.KindTask},
		{Kind: ontology.KindModule},
	})
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Len(t, results[0], 2)
	assert.Len(t, results[1], 1)
	assert.Empty(t, results[2])
}

func TestBatchQueryReturnsEarliestFailure(t *testing.T) {
	f := newFixture()
	ctx := tenantCtx(uuid.New())

	_, err := f.store.CreateObject(ctx, ontology.CreateTaskInput{Title: "one"})
	require.NoError(t, err)

	results, err := f.store.BatchQuery(ctx, []ontology.BatchRequest{
		{Kind: ontology.KindTask},
		{Kind: ontology.Kind("Widget")},
		{Kind: ontology.KindTask, Options: ontology.QueryOptions{}.WithFilter("title", ontology.Operator("bogus"), "x")},
	})
	// Both later requests fail; the earliest one's error wins, and the
	// successful slots keep their results.
	require.ErrorIs(t, err, apperror.ErrRepositoryNotConfigured)
	require.Len(t, results, 3)
	assert.Len(t, results[0], 1)
	assert.Nil(t, results[1])
	assert.Nil(t, results[2])
}
