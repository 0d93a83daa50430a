// Package permissions decides whether a user may perform an operation within
// the current tenant.
package permissions

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/fx"

	"github.com/ontoforge/ontology-core/domain/tenant"
)

// Permission names one grantable capability, e.g. "project:create".
type Permission string

const (
	ProjectCreate    Permission = "project:create"
	ProjectUpdate    Permission = "project:update"
	ProjectDelete    Permission = "project:delete"
	ModuleCreate     Permission = "module:create"
	DepartmentManage Permission = "department:manage"
	MemberManage     Permission = "member:manage"
	TaskCreate       Permission = "task:create"
	TaskUpdate       Permission = "task:update"
)

// Decision is the outcome of a permission check. Reason is only meaningful
// when Allowed is false.
type Decision struct {
	Allowed bool
	Reason  string
}

// Checker decides whether userID holds every permission in perms, optionally
// against a specific resource.
type Checker interface {
	Check(ctx context.Context, userID uuid.UUID, perms []Permission, resourceID *uuid.UUID) (Decision, error)
}

// minimumRole maps each permission to the weakest role that grants it.
var minimumRole = map[Permission]tenant.Role{
	ProjectCreate:    tenant.RoleMember,
	ProjectUpdate:    tenant.RoleMember,
	ProjectDelete:    tenant.RoleAdmin,
	ModuleCreate:     tenant.RoleMember,
	DepartmentManage: tenant.RoleAdmin,
	MemberManage:     tenant.RoleAdmin,
	TaskCreate:       tenant.RoleMember,
	TaskUpdate:       tenant.RoleMember,
}

// RoleChecker grants permissions from the tenant context's role: owner covers
// admin covers member. Unknown permissions are denied.
type RoleChecker struct{}

func NewRoleChecker() *RoleChecker { return &RoleChecker{} }

func (c *RoleChecker) Check(ctx context.Context, userID uuid.UUID, perms []Permission, _ *uuid.UUID) (Decision, error) {
	tc, err := tenant.Require(ctx)
	if err != nil {
		return Decision{}, err
	}
	if tc.UserID != userID {
		return Decision{Allowed: false, Reason: "not authorized"}, nil
	}
	for _, p := range perms {
		min, known := minimumRole[p]
		if !known || !tc.Role.AtLeast(min) {
			return Decision{Allowed: false, Reason: "not authorized: missing permission " + string(p)}, nil
		}
	}
	return Decision{Allowed: true}, nil
}

var Module = fx.Module("permissions",
	fx.Provide(
		NewRoleChecker,
		func(c *RoleChecker) Checker { return c },
	),
)
