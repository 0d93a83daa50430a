package permissions_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ontoforge/ontology-core/domain/permissions"
	"github.com/ontoforge/ontology-core/domain/tenant"
	"github.com/ontoforge/ontology-core/pkg/apperror"
)

func checkCtx(userID uuid.UUID, role tenant.Role) context.Context {
	return tenant.WithContext(context.Background(), tenant.Context{
		OrganizationID: uuid.New(),
		UserID:         userID,
		Role:           role,
	})
}

func TestRoleCheckerGrantsByMinimumRole(t *testing.T) {
	checker := permissions.NewRoleChecker()
	userID := uuid.New()

	cases := []struct {
		role    tenant.Role
		perm    permissions.Permission
		allowed bool
	}{
		{tenant.RoleMember, permissions.ProjectCreate, true},
		{tenant.RoleMember, permissions.ProjectDelete, false},
		{tenant.RoleMember, permissions.MemberManage, false},
		{tenant.RoleAdmin, permissions.ProjectDelete, true},
		{tenant.RoleAdmin, permissions.DepartmentManage, true},
		{tenant.RoleOwner, permissions.MemberManage, true},
		{tenant.RoleOwner, permissions.TaskUpdate, true},
	}
	for _, tc := range cases {
		decision, err := checker.Check(checkCtx(userID, tc.role), userID, []permissions.Permission{tc.perm}, nil)
		require.NoError(t, err)
		assert.Equal(t, tc.allowed, decision.Allowed, "%s with role %s", tc.perm, tc.role)
		if !tc.allowed {
			assert.Contains(t, decision.Reason, string(tc.perm))
		}
	}
}

func TestRoleCheckerRequiresEveryPermission(t *testing.T) {
	checker := permissions.NewRoleChecker()
	userID := uuid.New()

	decision, err := checker.Check(checkCtx(userID, tenant.RoleMember), userID,
		[]permissions.Permission{permissions.ProjectCreate, permissions.ProjectDelete}, nil)
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
}

func TestRoleCheckerDeniesUnknownPermission(t *testing.T) {
	checker := permissions.NewRoleChecker()
	userID := uuid.New()

	decision, err := checker.Check(checkCtx(userID, tenant.RoleOwner), userID,
		[]permissions.Permission{permissions.Permission("project:fork")}, nil)
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
}

func TestRoleCheckerDeniesMismatchedUser(t *testing.T) {
	checker := permissions.NewRoleChecker()

	decision, err := checker.Check(checkCtx(uuid.New(), tenant.RoleOwner), uuid.New(),
		[]permissions.Permission{permissions.ProjectCreate}, nil)
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
}

func TestRoleCheckerRequiresTenantContext(t *testing.T) {
	checker := permissions.NewRoleChecker()

	_, err := checker.Check(context.Background(), uuid.New(),
		[]permissions.Permission{permissions.ProjectCreate}, nil)
	require.ErrorIs(t, err, apperror.ErrContextNotSet)
}
