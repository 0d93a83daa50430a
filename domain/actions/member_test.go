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

func createMember(t *testing.T, ctx context.Context, store ontology.Store, role string) *ontology.Member {
	t.Helper()
	out := run(t, ctx, &actions.CreateMember{
		Store:  store,
		UserID: uuid.New(),
		Email:  "user@example.com",
		Role:   role,
	})
	return out.(*ontology.Member)
}

func TestCreateMemberDefaultsToActive(t *testing.T) {
	e := newEnv()
	ctx := e.ctx(uuid.New(), tenant.RoleAdmin)

	member := createMember(t, ctx, e.store, "member")
	assert.Equal(t, ontology.MemberStatusActive, member.Status)
	assert.Equal(t, e.orgID, member.OrganizationID)
}

func TestCreateMemberRejectsUnknownRole(t *testing.T) {
	e := newEnv()
	ctx := e.ctx(uuid.New(), tenant.RoleAdmin)

	a := &actions.CreateMember{Store: e.store, UserID: uuid.New(), Email: "user@example.com", Role: "superuser"}
	err := a.Validate(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown role")
}

func TestDeleteMemberGuardsLastOwner(t *testing.T) {
	e := newEnv()
	ctx := e.ctx(uuid.New(), tenant.RoleOwner)

	owner := createMember(t, ctx, e.store, "owner")

	err := (&actions.DeleteMember{Store: e.store, MemberID: owner.ID}).Validate(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "last owner")

	// A second owner lifts the guard.
	createMember(t, ctx, e.store, "owner")
	out := run(t, ctx, &actions.DeleteMember{Store: e.store, MemberID: owner.ID}).(map[string]any)
	assert.Equal(t, owner.ID, out["id"])

	got, err := e.store.GetObject(ctx, ontology.KindMember, owner.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUpdateMemberGuardsLastOwnerDemotion(t *testing.T) {
	e := newEnv()
	ctx := e.ctx(uuid.New(), tenant.RoleOwner)

	owner := createMember(t, ctx, e.store, "owner")

	role := "member"
	err := (&actions.UpdateMember{Store: e.store, MemberID: owner.ID, Role: &role}).Validate(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "last owner")

	createMember(t, ctx, e.store, "owner")
	out := run(t, ctx, &actions.UpdateMember{Store: e.store, MemberID: owner.ID, Role: &role})
	assert.Equal(t, "member", out.(*ontology.Member).Role)
}

func TestUpdateMemberTransfersDepartment(t *testing.T) {
	e := newEnv()
	ctx := e.ctx(uuid.New(), tenant.RoleAdmin)

	member := createMember(t, ctx, e.store, "member")
	dept := createDept(t, ctx, e.store, "Engineering", nil)

	out := run(t, ctx, &actions.UpdateMember{Store: e.store, MemberID: member.ID, DepartmentID: &dept.ID})
	updated := out.(*ontology.Member)
	require.NotNil(t, updated.DepartmentID)
	assert.Equal(t, dept.ID, *updated.DepartmentID)

	// A transfer into a missing department fails validation.
	missing := uuid.New()
	err := (&actions.UpdateMember{Store: e.store, MemberID: member.ID, DepartmentID: &missing}).Validate(ctx)
	require.Error(t, err)
}

func TestOwnerCountIsScopedToOrganization(t *testing.T) {
	e := newEnv()
	ctx := e.ctx(uuid.New(), tenant.RoleOwner)
	owner := createMember(t, ctx, e.store, "owner")

	// An owner in another organization does not lift the guard.
	otherOrg := tenant.WithContext(context.Background(), tenant.Context{
		OrganizationID: uuid.New(),
		UserID:         uuid.New(),
		Role:           tenant.RoleOwner,
	})
	createMember(t, otherOrg, e.store, "owner")

	err := (&actions.DeleteMember{Store: e.store, MemberID: owner.ID}).Validate(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "last owner")
}
