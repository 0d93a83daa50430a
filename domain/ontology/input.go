package ontology

import (
	"time"

	"github.com/google/uuid"
)

// Typed creation payloads, one per kind. The store dispatches on InputKind;
// repositories reject inputs of the wrong concrete type with a validation
// error. Field-level validation is the Action layer's job, not the store's.

type CreateOrganizationInput struct {
	Name        string    `json:"name"`
	OwnerUserID uuid.UUID `json:"owner_user_id"`
}

func (CreateOrganizationInput) InputKind() Kind { return KindOrganization }

type CreateMemberInput struct {
	OrganizationID uuid.UUID  `json:"organization_id"`
	UserID         uuid.UUID  `json:"user_id"`
	Email          string     `json:"email"`
	Role           string     `json:"role"`
	Status         string     `json:"status"`
	DepartmentID   *uuid.UUID `json:"department_id,omitempty"`
}

func (CreateMemberInput) InputKind() Kind { return KindMember }

func (in CreateMemberInput) WithOrganization(id uuid.UUID) Input {
	in.OrganizationID = id
	return in
}

type CreateDepartmentInput struct {
	// ID may be pre-assigned by the caller so the materialized path, which
	// ends in the row's own id, can be computed before the insert. Left nil,
	// the repository assigns one.
	ID             *uuid.UUID `json:"id,omitempty"`
	OrganizationID uuid.UUID  `json:"organization_id"`
	Name           string     `json:"name"`
	ParentID       *uuid.UUID `json:"parent_id,omitempty"`
	Path           string     `json:"path"`
	Level          int        `json:"level"`
	SortOrder      int        `json:"sort_order"`
}

func (CreateDepartmentInput) InputKind() Kind { return KindDepartment }

func (in CreateDepartmentInput) WithOrganization(id uuid.UUID) Input {
	in.OrganizationID = id
	return in
}

type CreateProjectInput struct {
	OrganizationID uuid.UUID `json:"organization_id"`
	UserID         uuid.UUID `json:"user_id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
}

func (CreateProjectInput) InputKind() Kind { return KindProject }

func (in CreateProjectInput) WithOrganization(id uuid.UUID) Input {
	in.OrganizationID = id
	return in
}

type CreateModuleInput struct {
	OrganizationID uuid.UUID `json:"organization_id"`
	ProjectID      uuid.UUID `json:"project_id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	SortOrder      int       `json:"sort_order"`
}

func (CreateModuleInput) InputKind() Kind { return KindModule }

func (in CreateModuleInput) WithOrganization(id uuid.UUID) Input {
	in.OrganizationID = id
	return in
}

type CreateEntityInput struct {
	OrganizationID uuid.UUID      `json:"organization_id"`
	ProjectID      uuid.UUID      `json:"project_id"`
	ModuleID       *uuid.UUID     `json:"module_id,omitempty"`
	Name           string         `json:"name"`
	Fields         map[string]any `json:"fields"`
}

func (CreateEntityInput) InputKind() Kind { return KindEntity }

func (in CreateEntityInput) WithOrganization(id uuid.UUID) Input {
	in.OrganizationID = id
	return in
}

type CreateTaskInput struct {
	OrganizationID uuid.UUID  `json:"organization_id"`
	ProjectID      *uuid.UUID `json:"project_id,omitempty"`
	AssigneeID     *uuid.UUID `json:"assignee_id,omitempty"`
	Title          string     `json:"title"`
	Status         string     `json:"status"`
	DueAt          *time.Time `json:"due_at,omitempty"`
}

func (CreateTaskInput) InputKind() Kind { return KindTask }

func (in CreateTaskInput) WithOrganization(id uuid.UUID) Input {
	in.OrganizationID = id
	return in
}

// Typed patch payloads. Nil fields retain their prior value.

type OrganizationPatch struct {
	Name *string `json:"name,omitempty"`
}

func (OrganizationPatch) PatchKind() Kind { return KindOrganization }

type MemberPatch struct {
	Role         *string    `json:"role,omitempty"`
	Status       *string    `json:"status,omitempty"`
	DepartmentID *uuid.UUID `json:"department_id,omitempty"`
	Email        *string    `json:"email,omitempty"`
}

func (MemberPatch) PatchKind() Kind { return KindMember }

type DepartmentPatch struct {
	Name     *string    `json:"name,omitempty"`
	ParentID *uuid.UUID `json:"parent_id,omitempty"`
	// ClearParent sets parent_id to NULL; a nil ParentID alone means "retain".
	ClearParent bool    `json:"clear_parent,omitempty"`
	Path        *string `json:"path,omitempty"`
	Level       *int    `json:"level,omitempty"`
	SortOrder   *int    `json:"sort_order,omitempty"`
}

func (DepartmentPatch) PatchKind() Kind { return KindDepartment }

type ProjectPatch struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	IsArchived  *bool   `json:"is_archived,omitempty"`
}

func (ProjectPatch) PatchKind() Kind { return KindProject }

type ModulePatch struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	SortOrder   *int    `json:"sort_order,omitempty"`
}

func (ModulePatch) PatchKind() Kind { return KindModule }

type EntityPatch struct {
	Name     *string         `json:"name,omitempty"`
	ModuleID *uuid.UUID      `json:"module_id,omitempty"`
	Fields   *map[string]any `json:"fields,omitempty"`
}

func (EntityPatch) PatchKind() Kind { return KindEntity }

type TaskPatch struct {
	Title      *string    `json:"title,omitempty"`
	Status     *string    `json:"status,omitempty"`
	ProjectID  *uuid.UUID `json:"project_id,omitempty"`
	AssigneeID *uuid.UUID `json:"assignee_id,omitempty"`
	DueAt      *time.Time `json:"due_at,omitempty"`
}

func (TaskPatch) PatchKind() Kind { return KindTask }
