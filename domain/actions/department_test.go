package actions_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ontoforge/ontology-core/domain/actions"
	"github.com/ontoforge/ontology-core/domain/ontology"
	"github.com/ontoforge/ontology-core/domain/tenant"
)

func createDept(t *testing.T, ctx context.Context, store ontology.Store, name string, parent *uuid.UUID) *ontology.Department {
	t.Helper()
	out := run(t, ctx, &actions.CreateDepartment{Store: store, DepartmentName: name, ParentID: parent})
	return out.(*ontology.Department)
}

func getDept(t *testing.T, ctx context.Context, store ontology.Store, id uuid.UUID) *ontology.Department {
	t.Helper()
	obj, err := store.GetObject(ctx, ontology.KindDepartment, id)
	require.NoError(t, err)
	require.NotNil(t, obj)
	return obj.(*ontology.Department)
}

func TestCreateDepartmentMaintainsPathAndLevel(t *testing.T) {
	e := newEnv()
	ctx := e.ctx(uuid.New(), tenant.RoleAdmin)

	root := createDept(t, ctx, e.store, "Engineering", nil)
	assert.Equal(t, 1, root.Level)
	assert.Equal(t, root.ID.String(), root.Path)
	assert.Nil(t, root.ParentID)

	child := createDept(t, ctx, e.store, "Platform", &root.ID)
	assert.Equal(t, 2, child.Level)
	assert.Equal(t, root.Path+"/"+child.ID.String(), child.Path)

	grandchild := createDept(t, ctx, e.store, "Storage", &child.ID)
	assert.Equal(t, 3, grandchild.Level)
	assert.Equal(t, child.Path+"/"+grandchild.ID.String(), grandchild.Path)
}

func TestUpdateDepartmentMoveRewritesSubtree(t *testing.T) {
	e := newEnv()
	ctx := e.ctx(uuid.New(), tenant.RoleAdmin)

	root := createDept(t, ctx, e.store, "Engineering", nil)
	child := createDept(t, ctx, e.store, "Platform", &root.ID)
	grandchild := createDept(t, ctx, e.store, "Storage", &child.ID)

	// Detach the middle node to the root level.
	run(t, ctx, &actions.UpdateDepartment{Store: e.store, DepartmentID: child.ID, MoveToRoot: true})

	moved := getDept(t, ctx, e.store, child.ID)
	assert.Equal(t, 1, moved.Level)
	assert.Equal(t, child.ID.String(), moved.Path)
	assert.Nil(t, moved.ParentID)

	desc := getDept(t, ctx, e.store, grandchild.ID)
	assert.Equal(t, 2, desc.Level)
	assert.Equal(t, child.ID.String()+"/"+grandchild.ID.String(), desc.Path)

	// Move it back under a new parent.
	other := createDept(t, ctx, e.store, "Product", nil)
	run(t, ctx, &actions.UpdateDepartment{Store: e.store, DepartmentID: child.ID, NewParentID: &other.ID})

	moved = getDept(t, ctx, e.store, child.ID)
	assert.Equal(t, 2, moved.Level)
	assert.Equal(t, other.Path+"/"+child.ID.String(), moved.Path)
	require.NotNil(t, moved.ParentID)
	assert.Equal(t, other.ID, *moved.ParentID)

	desc = getDept(t, ctx, e.store, grandchild.ID)
	assert.Equal(t, 3, desc.Level)
	assert.Equal(t, moved.Path+"/"+grandchild.ID.String(), desc.Path)
}

func TestUpdateDepartmentRejectsCycles(t *testing.T) {
	e := newEnv()
	ctx := e.ctx(uuid.New(), tenant.RoleAdmin)

	root := createDept(t, ctx, e.store, "Engineering", nil)
	child := createDept(t, ctx, e.store, "Platform", &root.ID)
	grandchild := createDept(t, ctx, e.store, "Storage", &child.ID)

	err := (&actions.UpdateDepartment{Store: e.store, DepartmentID: root.ID, NewParentID: &grandchild.ID}).Validate(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "own descendant")

	err = (&actions.UpdateDepartment{Store: e.store, DepartmentID: root.ID, NewParentID: &root.ID}).Validate(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "own parent")
}

func TestUpdateDepartmentRenameKeepsPosition(t *testing.T) {
	e := newEnv()
	ctx := e.ctx(uuid.New(), tenant.RoleAdmin)

	root := createDept(t, ctx, e.store, "Engineering", nil)
	child := createDept(t, ctx, e.store, "Platform", &root.ID)

	name := "Infrastructure"
	run(t, ctx, &actions.UpdateDepartment{Store: e.store, DepartmentID: child.ID, DepartmentName: &name})

	got := getDept(t, ctx, e.store, child.ID)
	assert.Equal(t, "Infrastructure", got.Name)
	assert.Equal(t, child.Path, got.Path)
	assert.Equal(t, child.Level, got.Level)
}

func TestDeleteDepartmentCascadesSubtree(t *testing.T) {
	e := newEnv()
	ctx := e.ctx(uuid.New(), tenant.RoleAdmin)

	root := createDept(t, ctx, e.store, "Engineering", nil)
	child := createDept(t, ctx, e.store, "Platform", &root.ID)
	grandchild := createDept(t, ctx, e.store, "Storage", &child.ID)
	sibling := createDept(t, ctx, e.store, "Product", nil)

	out := run(t, ctx, &actions.DeleteDepartment{Store: e.store, DepartmentID: root.ID}).(map[string]any)
	assert.Equal(t, 2, out["deleted_descendants"])

	for _, id := range []uuid.UUID{root.ID, child.ID, grandchild.ID} {
		got, err := e.store.GetObject(ctx, ontology.KindDepartment, id)
		require.NoError(t, err)
		assert.Nil(t, got)
	}

	// Unrelated trees are untouched.
	assert.NotNil(t, getDept(t, ctx, e.store, sibling.ID))
}
