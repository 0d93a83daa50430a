package ontology

import (
	"context"

	"github.com/google/uuid"

	"github.com/ontoforge/ontology-core/domain/tenant"
	"github.com/ontoforge/ontology-core/pkg/apperror"
)

// ObjectRepository is the uniform per-kind persistence contract. Get returns
// (nil, nil) when the id is absent; Update fails with not_found; Delete is
// idempotent.
type ObjectRepository interface {
	Kind() Kind
	Get(ctx context.Context, id uuid.UUID) (Object, error)
	Query(ctx context.Context, opts QueryOptions) ([]Object, error)
	Count(ctx context.Context, opts QueryOptions) (int, error)
	Create(ctx context.Context, in Input) (Object, error)
	// CreateBatch inserts all inputs in one multi-row statement. The whole
	// batch succeeds or fails together.
	CreateBatch(ctx context.Context, ins []Input) ([]Object, error)
	Update(ctx context.Context, id uuid.UUID, p Patch) (Object, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// LinkRepository stores directed typed edges between object ids.
type LinkRepository interface {
	// Upsert creates the link or, when the (source, target, type) triple
	// already exists, replaces its metadata and refreshes the timestamp.
	Upsert(ctx context.Context, sourceID, targetID uuid.UUID, kind LinkKind, metadata map[string]any) (*Link, error)
	Get(ctx context.Context, id uuid.UUID) (*Link, error)
	BySource(ctx context.Context, sourceID uuid.UUID, kind LinkKind) ([]*Link, error)
	ByTarget(ctx context.Context, targetID uuid.UUID, kind LinkKind) ([]*Link, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// DeleteTouching removes every link whose source or target is id.
	DeleteTouching(ctx context.Context, id uuid.UUID) error
}

// Isolate wraps a repository so that every operation is scoped to the tenant
// context's organization: reads gain an organization equality filter, inserts
// are stamped with the context organization (overriding caller-supplied
// values), and updates/deletes re-validate the stored row's organization
// before proceeding. Calling any method without an installed tenant context
// fails with context_not_set.
func Isolate(inner ObjectRepository) ObjectRepository {
	return &isolatedRepository{inner: inner}
}

type isolatedRepository struct {
	inner ObjectRepository
}

func (r *isolatedRepository) Kind() Kind { return r.inner.Kind() }

func (r *isolatedRepository) Get(ctx context.Context, id uuid.UUID) (Object, error) {
	tc, err := tenant.Require(ctx)
	if err != nil {
		return nil, err
	}
	obj, err := r.inner.Get(ctx, id)
	if err != nil || obj == nil {
		return nil, err
	}
	if scoped, ok := obj.(Scoped); ok && scoped.OrganizationScope() != tc.OrganizationID {
		// Rows of other tenants are invisible, not forbidden: reads fail
		// closed by reporting absence.
		return nil, nil
	}
	return obj, nil
}

func (r *isolatedRepository) Query(ctx context.Context, opts QueryOptions) ([]Object, error) {
	tc, err := tenant.Require(ctx)
	if err != nil {
		return nil, err
	}
	return r.inner.Query(ctx, opts.WithFilter("organization_id", OpEq, tc.OrganizationID))
}

func (r *isolatedRepository) Count(ctx context.Context, opts QueryOptions) (int, error) {
	tc, err := tenant.Require(ctx)
	if err != nil {
		return 0, err
	}
	return r.inner.Count(ctx, opts.WithFilter("organization_id", OpEq, tc.OrganizationID))
}

func (r *isolatedRepository) Create(ctx context.Context, in Input) (Object, error) {
	tc, err := tenant.Require(ctx)
	if err != nil {
		return nil, err
	}
	if scoped, ok := in.(ScopedInput); ok {
		in = scoped.WithOrganization(tc.OrganizationID)
	}
	return r.inner.Create(ctx, in)
}

func (r *isolatedRepository) CreateBatch(ctx context.Context, ins []Input) ([]Object, error) {
	tc, err := tenant.Require(ctx)
	if err != nil {
		return nil, err
	}
	stamped := make([]Input, len(ins))
	for i, in := range ins {
		if scoped, ok := in.(ScopedInput); ok {
			in = scoped.WithOrganization(tc.OrganizationID)
		}
		stamped[i] = in
	}
	return r.inner.CreateBatch(ctx, stamped)
}

func (r *isolatedRepository) Update(ctx context.Context, id uuid.UUID, p Patch) (Object, error) {
	if err := r.checkOwnership(ctx, id, true); err != nil {
		return nil, err
	}
	return r.inner.Update(ctx, id, p)
}

func (r *isolatedRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.checkOwnership(ctx, id, false); err != nil {
		return err
	}
	return r.inner.Delete(ctx, id)
}

// GuardOrganizations wraps the organization repository. Organizations are the
// tenancy root: rows are created before any tenant context exists, so inserts
// pass through unscoped, but every read and mutation is pinned to the context
// organization's own row. Other tenants' organizations are invisible to reads
// and access_denied to mutations.
func GuardOrganizations(inner ObjectRepository) ObjectRepository {
	return &organizationGuard{inner: inner}
}

type organizationGuard struct {
	inner ObjectRepository
}

func (r *organizationGuard) Kind() Kind { return r.inner.Kind() }

func (r *organizationGuard) Get(ctx context.Context, id uuid.UUID) (Object, error) {
	tc, err := tenant.Require(ctx)
	if err != nil {
		return nil, err
	}
	if id != tc.OrganizationID {
		return nil, nil
	}
	return r.inner.Get(ctx, id)
}

func (r *organizationGuard) Query(ctx context.Context, opts QueryOptions) ([]Object, error) {
	tc, err := tenant.Require(ctx)
	if err != nil {
		return nil, err
	}
	return r.inner.Query(ctx, opts.WithFilter("id", OpEq, tc.OrganizationID))
}

func (r *organizationGuard) Count(ctx context.Context, opts QueryOptions) (int, error) {
	tc, err := tenant.Require(ctx)
	if err != nil {
		return 0, err
	}
	return r.inner.Count(ctx, opts.WithFilter("id", OpEq, tc.OrganizationID))
}

func (r *organizationGuard) Create(ctx context.Context, in Input) (Object, error) {
	return r.inner.Create(ctx, in)
}

func (r *organizationGuard) CreateBatch(ctx context.Context, ins []Input) ([]Object, error) {
	return r.inner.CreateBatch(ctx, ins)
}

func (r *organizationGuard) Update(ctx context.Context, id uuid.UUID, p Patch) (Object, error) {
	if err := r.checkSelf(ctx, id); err != nil {
		return nil, err
	}
	return r.inner.Update(ctx, id, p)
}

func (r *organizationGuard) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.checkSelf(ctx, id); err != nil {
		return err
	}
	return r.inner.Delete(ctx, id)
}

// checkSelf rejects mutations of any organization row other than the context
// organization itself. The organization row is its own scope.
func (r *organizationGuard) checkSelf(ctx context.Context, id uuid.UUID) error {
	tc, err := tenant.Require(ctx)
	if err != nil {
		return err
	}
	if id != tc.OrganizationID {
		return apperror.NewAccessDenied(tc.OrganizationID.String(), id.String())
	}
	return nil
}

// checkOwnership verifies that the target row, if present, belongs to the
// context organization. requireExists controls whether absence is an error
// (updates) or a no-op (idempotent deletes).
func (r *isolatedRepository) checkOwnership(ctx context.Context, id uuid.UUID, requireExists bool) error {
	tc, err := tenant.Require(ctx)
	if err != nil {
		return err
	}
	obj, err := r.inner.Get(ctx, id)
	if err != nil {
		return err
	}
	if obj == nil {
		if requireExists {
			return apperror.NewNotFound(string(r.inner.Kind()), id.String())
		}
		return nil
	}
	if scoped, ok := obj.(Scoped); ok && scoped.OrganizationScope() != tc.OrganizationID {
		return apperror.NewAccessDenied(tc.OrganizationID.String(), scoped.OrganizationScope().String())
	}
	return nil
}
