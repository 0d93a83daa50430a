package ontology_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ontoforge/ontology-core/domain/ontology"
	"github.com/ontoforge/ontology-core/pkg/cache"
)

// countingStore counts read calls reaching the wrapped store, so tests can
// tell cache hits from fall-throughs.
type countingStore struct {
	ontology.Store
	gets    atomic.Int64
	queries atomic.Int64
	linked  atomic.Int64
}

func (s *countingStore) GetObject(ctx context.Context, kind ontology.Kind, id uuid.UUID) (ontology.Object, error) {
	s.gets.Add(1)
	return s.Store.GetObject(ctx, kind, id)
}

func (s *countingStore) QueryObjects(ctx context.Context, kind ontology.Kind, opts ontology.QueryOptions) ([]ontology.Object, error) {
	s.queries.Add(1)
	return s.Store.QueryObjects(ctx, kind, opts)
}

func (s *countingStore) GetLinkedObjects(ctx context.Context, sourceID uuid.UUID, kind ontology.LinkKind) ([]ontology.Object, error) {
	s.linked.Add(1)
	return s.Store.GetLinkedObjects(ctx, sourceID, kind)
}

type cachedFixture struct {
	*fixture
	counting *countingStore
	cached   *ontology.CachedService
}

func newCachedFixture(t *testing.T) *cachedFixture {
	t.Helper()
	f := newFixture()
	c := cache.New(cache.Options{}, testLogger())
	t.Cleanup(c.Close)
	counting := &countingStore{Store: f.store}
	ttl := ontology.CacheTTLs{Object: time.Minute, Query: time.Minute, Link: time.Minute}
	return &cachedFixture{
		fixture:  f,
		counting: counting,
		cached:   ontology.NewCachedService(counting, c, ttl, testLogger()),
	}
}

func TestCachedGetObjectServesRepeatReadsFromCache(t *testing.T) {
	cf := newCachedFixture(t)
	ctx := tenantCtx(uuid.New())

	obj, err := cf.cached.CreateObject(ctx, ontology.CreateProjectInput{UserID: uuid.New(), Name: "alpha"})
	require.NoError(t, err)
	id := obj.ObjectID()

	first, err := cf.cached.GetObject(ctx, ontology.KindProject, id)
	require.NoError(t, err)
	second, err := cf.cached.GetObject(ctx, ontology.KindProject, id)
	require.NoError(t, err)

	assert.Equal(t, int64(1), cf.counting.gets.Load())
	assert.Equal(t, first.ObjectID(), second.ObjectID())
	assert.Equal(t, "alpha", second.(*ontology.Project).Name)
}

func TestCachedQueryInvalidatedByCreate(t *testing.T) {
	cf := newCachedFixture(t)
	ctx := tenantCtx(uuid.New())

	objs, err := cf.cached.QueryObjects(ctx, ontology.KindProject, ontology.QueryOptions{})
	require.NoError(t, err)
	assert.Empty(t, objs)

	// Cached: no second trip to the store.
	_, err = cf.cached.QueryObjects(ctx, ontology.KindProject, ontology.QueryOptions{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), cf.counting.queries.Load())

	_, err = cf.cached.CreateObject(ctx, ontology.CreateProjectInput{UserID: uuid.New(), Name: "alpha"})
	require.NoError(t, err)

	objs, err = cf.cached.QueryObjects(ctx, ontology.KindProject, ontology.QueryOptions{})
	require.NoError(t, err)
	assert.Len(t, objs, 1)
	assert.Equal(t, int64(2), cf.counting.queries.Load())
}

func TestCachedQueryInvalidatedByUpdateAndDelete(t *testing.T) {
	cf := newCachedFixture(t)
	ctx := tenantCtx(uuid.New())

	obj, err := cf.cached.CreateObject(ctx, ontology.CreateProjectInput{UserID: uuid.New(), Name: "alpha"})
	require.NoError(t, err)
	id := obj.ObjectID()

	_, err = cf.cached.GetObject(ctx, ontology.KindProject, id)
	require.NoError(t, err)

	name := "beta"
	_, err = cf.cached.UpdateObject(ctx, ontology.KindProject, id, ontology.ProjectPatch{Name: &name})
	require.NoError(t, err)

	got, err := cf.cached.GetObject(ctx, ontology.KindProject, id)
	require.NoError(t, err)
	assert.Equal(t, "beta", got.(*ontology.Project).Name)

	require.NoError(t, cf.cached.DeleteObject(ctx, ontology.KindProject, id))
	got, err = cf.cached.GetObject(ctx, ontology.KindProject, id)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCachedKeysSeparatedByOrganization(t *testing.T) {
	cf := newCachedFixture(t)
	ctxA, ctxB := tenantCtx(uuid.New()), tenantCtx(uuid.New())

	_, err := cf.cached.CreateObject(ctxA, ontology.CreateProjectInput{UserID: uuid.New(), Name: "alpha"})
	require.NoError(t, err)

	objsA, err := cf.cached.QueryObjects(ctxA, ontology.KindProject, ontology.QueryOptions{})
	require.NoError(t, err)
	assert.Len(t, objsA, 1)

	// Same options, different tenant: the cached result of A must not leak.
	objsB, err := cf.cached.QueryObjects(ctxB, ontology.KindProject, ontology.QueryOptions{})
	require.NoError(t, err)
	assert.Empty(t, objsB)
}

func TestCachedBypassedWithoutTenantContext(t *testing.T) {
	cf := newCachedFixture(t)
	ctx := context.Background()

	// The fixture's organization repository is unwrapped, so reads reach it
	// without a tenant scope and the cache must stand aside.
	obj, err := cf.cached.CreateObject(ctx, ontology.CreateOrganizationInput{Name: "acme", OwnerUserID: uuid.New()})
	require.NoError(t, err)

	for range 2 {
		got, err := cf.cached.GetObject(ctx, ontology.KindOrganization, obj.ObjectID())
		require.NoError(t, err)
		require.NotNil(t, got)
	}
	assert.Equal(t, int64(2), cf.counting.gets.Load())
}

func TestCachedLinkedObjectsInvalidation(t *testing.T) {
	cf := newCachedFixture(t)
	ctx := tenantCtx(uuid.New())

	e1, err := cf.cached.CreateObject(ctx, ontology.CreateEntityInput{ProjectID: uuid.New(), Name: "invoice"})
	require.NoError(t, err)
	e2, err := cf.cached.CreateObject(ctx, ontology.CreateEntityInput{ProjectID: uuid.New(), Name: "customer"})
	require.NoError(t, err)

	link, err := cf.cached.CreateLink(ctx, e1.ObjectID(), e2.ObjectID(), ontology.LinkEntityReferences, nil)
	require.NoError(t, err)

	for range 2 {
		objs, err := cf.cached.GetLinkedObjects(ctx, e1.ObjectID(), ontology.LinkEntityReferences)
		require.NoError(t, err)
		assert.Len(t, objs, 1)
	}
	assert.Equal(t, int64(1), cf.counting.linked.Load())

	// DeleteLink knows only the id, so the whole link namespace is flushed.
	require.NoError(t, cf.cached.DeleteLink(ctx, link.ID))

	objs, err := cf.cached.GetLinkedObjects(ctx, e1.ObjectID(), ontology.LinkEntityReferences)
	require.NoError(t, err)
	assert.Empty(t, objs)
	assert.Equal(t, int64(2), cf.counting.linked.Load())
}
