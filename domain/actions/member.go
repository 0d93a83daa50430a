package actions

import (
	"context"

	"github.com/google/uuid"

	"github.com/ontoforge/ontology-core/domain/ontology"
	"github.com/ontoforge/ontology-core/domain/permissions"
	"github.com/ontoforge/ontology-core/domain/tenant"
	"github.com/ontoforge/ontology-core/pkg/apperror"
)

// CreateMember adds a user to the organization.
type CreateMember struct {
	Store        ontology.Store
	UserID       uuid.UUID
	Email        string
	Role         string
	DepartmentID *uuid.UUID
}

func (a *CreateMember) Name() string { return "CreateMember" }

func (a *CreateMember) Permissions() []permissions.Permission {
	return []permissions.Permission{permissions.MemberManage}
}

func (a *CreateMember) Input() map[string]any {
	return map[string]any{
		"user_id": a.UserID,
		"email":   a.Email,
		"role":    a.Role,
	}
}

func (a *CreateMember) Validate(ctx context.Context) error {
	if a.Email == "" {
		return apperror.NewValidation("email must not be empty")
	}
	if a.Role != "" && !validRole(a.Role) {
		return apperror.NewValidation("unknown role " + a.Role)
	}
	if a.DepartmentID != nil {
		if _, err := requireKind(ctx, a.Store, ontology.KindDepartment, *a.DepartmentID); err != nil {
			return err
		}
	}
	return nil
}

func (a *CreateMember) Execute(ctx context.Context) (any, error) {
	return a.Store.CreateObject(ctx, ontology.CreateMemberInput{
		UserID:       a.UserID,
		Email:        a.Email,
		Role:         a.Role,
		Status:       ontology.MemberStatusActive,
		DepartmentID: a.DepartmentID,
	})
}

// UpdateMember changes a member's role or transfers them between departments.
type UpdateMember struct {
	Store        ontology.Store
	MemberID     uuid.UUID
	Role         *string
	DepartmentID *uuid.UUID
}

func (a *UpdateMember) Name() string { return "UpdateMember" }

func (a *UpdateMember) Permissions() []permissions.Permission {
	return []permissions.Permission{permissions.MemberManage}
}

func (a *UpdateMember) Input() map[string]any {
	in := map[string]any{"id": a.MemberID}
	if a.Role != nil {
		in["role"] = *a.Role
	}
	if a.DepartmentID != nil {
		in["department_id"] = *a.DepartmentID
	}
	return in
}

func (a *UpdateMember) Validate(ctx context.Context) error {
	obj, err := requireKind(ctx, a.Store, ontology.KindMember, a.MemberID)
	if err != nil {
		return err
	}
	member := obj.(*ontology.Member)
	if a.Role != nil {
		if !validRole(*a.Role) {
			return apperror.NewValidation("unknown role " + *a.Role)
		}
		// Demoting the last owner would leave the organization unmanageable.
		if member.Role == string(tenant.RoleOwner) && *a.Role != string(tenant.RoleOwner) {
			owners, err := countOwners(ctx, a.Store)
			if err != nil {
				return err
			}
			if owners <= 1 {
				return apperror.NewValidation("cannot demote the organization's last owner")
			}
		}
	}
	if a.DepartmentID != nil {
		if _, err := requireKind(ctx, a.Store, ontology.KindDepartment, *a.DepartmentID); err != nil {
			return err
		}
	}
	return nil
}

func (a *UpdateMember) Execute(ctx context.Context) (any, error) {
	return a.Store.UpdateObject(ctx, ontology.KindMember, a.MemberID, ontology.MemberPatch{
		Role:         a.Role,
		DepartmentID: a.DepartmentID,
	})
}

// DeleteMember removes a member from the organization. The last owner cannot
// be removed.
type DeleteMember struct {
	Store    ontology.Store
	MemberID uuid.UUID
}

func (a *DeleteMember) Name() string { return "DeleteMember" }

func (a *DeleteMember) Permissions() []permissions.Permission {
	return []permissions.Permission{permissions.MemberManage}
}

func (a *DeleteMember) Input() map[string]any {
	return map[string]any{"id": a.MemberID}
}

func (a *DeleteMember) Validate(ctx context.Context) error {
	obj, err := requireKind(ctx, a.Store, ontology.KindMember, a.MemberID)
	if err != nil {
		return err
	}
	member := obj.(*ontology.Member)
	if member.Role == string(tenant.RoleOwner) {
		owners, err := countOwners(ctx, a.Store)
		if err != nil {
			return err
		}
		if owners <= 1 {
			return apperror.NewValidation("cannot remove the organization's last owner")
		}
	}
	return nil
}

func (a *DeleteMember) Execute(ctx context.Context) (any, error) {
	if err := a.Store.DeleteObject(ctx, ontology.KindMember, a.MemberID); err != nil {
		return nil, err
	}
	return map[string]any{"id": a.MemberID}, nil
}

func validRole(role string) bool {
	switch tenant.Role(role) {
	case tenant.RoleOwner, tenant.RoleAdmin, tenant.RoleMember:
		return true
	}
	return false
}

func countOwners(ctx context.Context, store ontology.Store) (int, error) {
	return store.CountObjects(ctx, ontology.KindMember,
		ontology.QueryOptions{}.WithFilter("role", ontology.OpEq, string(tenant.RoleOwner)))
}
