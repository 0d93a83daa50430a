package ontology_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ontoforge/ontology-core/domain/ontology"
	"github.com/ontoforge/ontology-core/internal/testutil"
)

// countingRepo counts the statement-level calls a batcher issues, so tests
// can verify merging, and can force batch failures.
type countingRepo struct {
	ontology.ObjectRepository
	gets          atomic.Int64
	queries       atomic.Int64
	creates       atomic.Int64
	createBatches atomic.Int64

	batchErr      error
	truncateBatch bool
}

func (r *countingRepo) Get(ctx context.Context, id uuid.UUID) (ontology.Object, error) {
	r.gets.Add(1)
	return r.ObjectRepository.Get(ctx, id)
}

func (r *countingRepo) Query(ctx context.Context, opts ontology.QueryOptions) ([]ontology.Object, error) {
	r.queries.Add(1)
	return r.ObjectRepository.Query(ctx, opts)
}

func (r *countingRepo) Create(ctx context.Context, in ontology.Input) (ontology.Object, error) {
	r.creates.Add(1)
	return r.ObjectRepository.Create(ctx, in)
}

func (r *countingRepo) CreateBatch(ctx context.Context, ins []ontology.Input) ([]ontology.Object, error) {
	r.createBatches.Add(1)
	if r.batchErr != nil {
		return nil, r.batchErr
	}
	objs, err := r.ObjectRepository.CreateBatch(ctx, ins)
	if err != nil {
		return nil, err
	}
	if r.truncateBatch && len(objs) > 1 {
		objs = objs[:1]
	}
	return objs, nil
}

func newBatchFixture(window time.Duration, maxSize int) (*ontology.Batcher, *countingRepo) {
	repo := &countingRepo{ObjectRepository: testutil.NewMemoryRepository(ontology.KindProject)}
	reg := ontology.NewRegistry()
	reg.Register(repo)
	return ontology.NewBatcher(reg, window, maxSize, testLogger()), repo
}

func TestBatcherMergesConcurrentGets(t *testing.T) {
	b, repo := newBatchFixture(30*time.Millisecond, 100)
	defer b.Close()
	ctx := context.Background()

	ids := make([]uuid.UUID, 3)
	for i := range ids {
		obj, err := repo.ObjectRepository.Create(ctx, ontology.CreateProjectInput{Name: "p"})
		require.NoError(t, err)
		ids[i] = obj.ObjectID()
	}
	absent := uuid.New()

	var wg sync.WaitGroup
	results := make([]ontology.Object, 4)
	errs := make([]error, 4)
	for i, id := range append(ids, absent) {
		wg.Add(1)
		go func(i int, id uuid.UUID) {
			defer wg.Done()
			results[i], errs[i] = b.Get(ctx, ontology.KindProject, id)
		}(i, id)
	}
	wg.Wait()

	for i := range 3 {
		require.NoError(t, errs[i])
		require.NotNil(t, results[i])
		assert.Equal(t, ids[i], results[i].ObjectID())
	}
	// An absent id resolves to (nil, nil), same as a direct Get.
	require.NoError(t, errs[3])
	assert.Nil(t, results[3])

	// One IN query for the whole group, no per-id lookups.
	assert.Equal(t, int64(1), repo.queries.Load())
	assert.Equal(t, int64(0), repo.gets.Load())
}

func TestBatcherFlushesAtCapacity(t *testing.T) {
	// The window is effectively infinite: only the size trigger can flush.
	b, repo := newBatchFixture(time.Hour, 2)
	defer b.Close()
	ctx := context.Background()

	obj, err := repo.ObjectRepository.Create(ctx, ontology.CreateProjectInput{Name: "p"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = b.Get(ctx, ontology.KindProject, obj.ObjectID())
		}(i)
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.Equal(t, int64(1), repo.queries.Load())
}

func TestBatcherSingleGetStaysDirect(t *testing.T) {
	b, repo := newBatchFixture(10*time.Millisecond, 100)
	defer b.Close()
	ctx := context.Background()

	obj, err := repo.ObjectRepository.Create(ctx, ontology.CreateProjectInput{Name: "p"})
	require.NoError(t, err)

	got, err := b.Get(ctx, ontology.KindProject, obj.ObjectID())
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, int64(1), repo.gets.Load())
	assert.Equal(t, int64(0), repo.queries.Load())
}

func TestBatcherMergesConcurrentInserts(t *testing.T) {
	b, repo := newBatchFixture(30*time.Millisecond, 100)
	defer b.Close()
	ctx := context.Background()

	names := []string{"alpha", "beta", "gamma"}
	var wg sync.WaitGroup
	results := make([]ontology.Object, len(names))
	errs := make([]error, len(names))
	for i, name := range names {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			results[i], errs[i] = b.Create(ctx, ontology.CreateProjectInput{Name: name})
		}(i, name)
	}
	wg.Wait()

	// Each caller gets back the row for its own input.
	for i, name := range names {
		require.NoError(t, errs[i])
		require.NotNil(t, results[i])
		assert.Equal(t, name, results[i].(*ontology.Project).Name)
	}
	assert.Equal(t, int64(1), repo.createBatches.Load())
	assert.Equal(t, int64(0), repo.creates.Load())
}

func TestBatcherMergedFailureFailsAllFolded(t *testing.T) {
	b, repo := newBatchFixture(30*time.Millisecond, 100)
	defer b.Close()
	repo.batchErr = assert.AnError
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = b.Create(ctx, ontology.CreateProjectInput{Name: "p"})
		}(i)
	}
	wg.Wait()

	require.ErrorIs(t, errs[0], assert.AnError)
	require.ErrorIs(t, errs[1], assert.AnError)
}

func TestBatcherShapeMismatchFailsAllFolded(t *testing.T) {
	b, repo := newBatchFixture(30*time.Millisecond, 100)
	defer b.Close()
	repo.truncateBatch = true
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = b.Create(ctx, ontology.CreateProjectInput{Name: "p"})
		}(i)
	}
	wg.Wait()

	require.ErrorIs(t, errs[0], ontology.ErrBatchShape)
	require.ErrorIs(t, errs[1], ontology.ErrBatchShape)
}

func TestClosedBatcherExecutesDirectly(t *testing.T) {
	b, repo := newBatchFixture(time.Hour, 100)
	ctx := context.Background()
	b.Close()

	obj, err := b.Create(ctx, ontology.CreateProjectInput{Name: "p"})
	require.NoError(t, err)
	require.NotNil(t, obj)

	got, err := b.Get(ctx, ontology.KindProject, obj.ObjectID())
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, int64(1), repo.creates.Load())
	assert.Equal(t, int64(1), repo.gets.Load())
	assert.Equal(t, int64(0), repo.queries.Load())
	assert.Equal(t, int64(0), repo.createBatches.Load())
}
