package ontology_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ontoforge/ontology-core/domain/ontology"
	"github.com/ontoforge/ontology-core/internal/testutil"
	"github.com/ontoforge/ontology-core/pkg/apperror"
)

func createProject(t *testing.T, f *fixture, ctx context.Context, name string) *ontology.Project {
	t.Helper()
	obj, err := f.store.CreateObject(ctx, ontology.CreateProjectInput{
		UserID: uuid.New(),
		Name:   name,
	})
	require.NoError(t, err)
	return obj.(*ontology.Project)
}

func TestIsolateReadsInvisibleAcrossTenants(t *testing.T) {
	f := newFixture()
	orgA, orgB := uuid.New(), uuid.New()
	ctxA, ctxB := tenantCtx(orgA), tenantCtx(orgB)

	project := createProject(t, f, ctxA, "alpha")

	got, err := f.store.GetObject(ctxA, ontology.KindProject, project.ID)
	require.NoError(t, err)
	require.NotNil(t, got)

	// The other tenant sees absence, not a permission error.
	got, err = f.store.GetObject(ctxB, ontology.KindProject, project.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestIsolateQueryScopedToTenant(t *testing.T) {
	f := newFixture()
	orgA, orgB := uuid.New(), uuid.New()
	ctxA, ctxB := tenantCtx(orgA), tenantCtx(orgB)

	createProject(t, f, ctxA, "alpha")
	createProject(t, f, ctxA, "beta")
	createProject(t, f, ctxB, "gamma")

	objsA, err := f.store.QueryObjects(ctxA, ontology.KindProject, ontology.QueryOptions{})
	require.NoError(t, err)
	assert.Len(t, objsA, 2)

	objsB, err := f.store.QueryObjects(ctxB, ontology.KindProject, ontology.QueryOptions{})
	require.NoError(t, err)
	assert.Len(t, objsB, 1)
	assert.Equal(t, "gamma", objsB[0].(*ontology.Project).Name)

	countA, err := f.store.CountObjects(ctxA, ontology.KindProject, ontology.QueryOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, countA)
}

func TestIsolateCreateStampsOrganization(t *testing.T) {
	f := newFixture()
	orgA, orgB := uuid.New(), uuid.New()
	ctxA := tenantCtx(orgA)

	// A caller-supplied organization id is overridden by the context's.
	obj, err := f.store.CreateObject(ctxA, ontology.CreateProjectInput{
		OrganizationID: orgB,
		UserID:         uuid.New(),
		Name:           "alpha",
	})
	require.NoError(t, err)
	assert.Equal(t, orgA, obj.(*ontology.Project).OrganizationID)
}

func TestIsolateCreateBatchStampsOrganization(t *testing.T) {
	f := newFixture()
	orgA := uuid.New()
	ctxA := tenantCtx(orgA)

	objs, err := f.store.CreateObjects(ctxA, ontology.KindTask, []ontology.Input{
		ontology.CreateTaskInput{Title: "one"},
		ontology.CreateTaskInput{OrganizationID: uuid.New(), Title: "two"},
	})
	require.NoError(t, err)
	require.Len(t, objs, 2)
	for _, obj := range objs {
		assert.Equal(t, orgA, obj.(*ontology.Task).OrganizationID)
	}
}

func TestIsolateMutationsAcrossTenantsDenied(t *testing.T) {
	f := newFixture()
	orgA, orgB := uuid.New(), uuid.New()
	ctxA, ctxB := tenantCtx(orgA), tenantCtx(orgB)

	project := createProject(t, f, ctxA, "alpha")

	name := "renamed"
	_, err := f.store.UpdateObject(ctxB, ontology.KindProject, project.ID, ontology.ProjectPatch{Name: &name})
	require.ErrorIs(t, err, apperror.ErrAccessDenied)
	// The denial names both organizations for diagnosability.
	assert.Contains(t, err.Error(), orgA.String())
	assert.Contains(t, err.Error(), orgB.String())

	err = f.store.DeleteObject(ctxB, ontology.KindProject, project.ID)
	require.ErrorIs(t, err, apperror.ErrAccessDenied)

	// The row is untouched.
	got, err := f.store.GetObject(ctxA, ontology.KindProject, project.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "alpha", got.(*ontology.Project).Name)
}

func TestIsolateUpdateMissingIsNotFound(t *testing.T) {
	f := newFixture()
	ctx := tenantCtx(uuid.New())

	name := "renamed"
	_, err := f.store.UpdateObject(ctx, ontology.KindProject, uuid.New(), ontology.ProjectPatch{Name: &name})
	require.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestIsolateDeleteMissingIsNoop(t *testing.T) {
	f := newFixture()
	ctx := tenantCtx(uuid.New())

	require.NoError(t, f.store.DeleteObject(ctx, ontology.KindProject, uuid.New()))
}

func TestIsolateRequiresTenantContext(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.store.GetObject(ctx, ontology.KindProject, uuid.New())
	require.ErrorIs(t, err, apperror.ErrContextNotSet)

	_, err = f.store.QueryObjects(ctx, ontology.KindProject, ontology.QueryOptions{})
	require.ErrorIs(t, err, apperror.ErrContextNotSet)

	_, err = f.store.CreateObject(ctx, ontology.CreateProjectInput{Name: "alpha"})
	require.ErrorIs(t, err, apperror.ErrContextNotSet)

	err = f.store.DeleteObject(ctx, ontology.KindProject, uuid.New())
	require.ErrorIs(t, err, apperror.ErrContextNotSet)
}

func TestIsolateRejectsNilOrganization(t *testing.T) {
	f := newFixture()
	ctx := tenantCtx(uuid.Nil)

	_, err := f.store.GetObject(ctx, ontology.KindProject, uuid.New())
	require.ErrorIs(t, err, apperror.ErrContextNotSet)
}

func guardedOrgStore() *ontology.Service {
	registry := ontology.NewRegistry()
	registry.Register(ontology.GuardOrganizations(testutil.NewMemoryRepository(ontology.KindOrganization)))
	return ontology.NewService(registry, testutil.NewMemoryLinkRepository(), testLogger())
}

func TestOrganizationAccessPinnedToContextOrganization(t *testing.T) {
	store := guardedOrgStore()

	// Organizations bootstrap before any tenant context exists.
	acme, err := store.CreateObject(context.Background(), ontology.CreateOrganizationInput{Name: "acme", OwnerUserID: uuid.New()})
	require.NoError(t, err)
	globex, err := store.CreateObject(context.Background(), ontology.CreateOrganizationInput{Name: "globex", OwnerUserID: uuid.New()})
	require.NoError(t, err)

	ctx := tenantCtx(acme.ObjectID())

	// An unfiltered query returns only the context organization's own row.
	objs, err := store.QueryObjects(ctx, ontology.KindOrganization, ontology.QueryOptions{})
	require.NoError(t, err)
	require.Len(t, objs, 1)
	assert.Equal(t, acme.ObjectID(), objs[0].ObjectID())

	n, err := store.CountObjects(ctx, ontology.KindOrganization, ontology.QueryOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// Other organizations read as absent.
	got, err := store.GetObject(ctx, ontology.KindOrganization, globex.ObjectID())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestOrganizationMutationsAcrossTenantsDenied(t *testing.T) {
	store := guardedOrgStore()

	acme, err := store.CreateObject(context.Background(), ontology.CreateOrganizationInput{Name: "acme", OwnerUserID: uuid.New()})
	require.NoError(t, err)
	globex, err := store.CreateObject(context.Background(), ontology.CreateOrganizationInput{Name: "globex", OwnerUserID: uuid.New()})
	require.NoError(t, err)

	ctx := tenantCtx(acme.ObjectID())

	name := "initech"
	_, err = store.UpdateObject(ctx, ontology.KindOrganization, globex.ObjectID(), ontology.OrganizationPatch{Name: &name})
	require.ErrorIs(t, err, apperror.ErrAccessDenied)

	err = store.DeleteObject(ctx, ontology.KindOrganization, globex.ObjectID())
	require.ErrorIs(t, err, apperror.ErrAccessDenied)

	// The context organization may update its own row.
	updated, err := store.UpdateObject(ctx, ontology.KindOrganization, acme.ObjectID(), ontology.OrganizationPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "initech", updated.(*ontology.Organization).Name)
}

func TestOrganizationReadsRequireTenantContext(t *testing.T) {
	store := guardedOrgStore()

	_, err := store.QueryObjects(context.Background(), ontology.KindOrganization, ontology.QueryOptions{})
	require.ErrorIs(t, err, apperror.ErrContextNotSet)

	_, err = store.GetObject(context.Background(), ontology.KindOrganization, uuid.New())
	require.ErrorIs(t, err, apperror.ErrContextNotSet)
}
