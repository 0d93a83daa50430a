package ontology

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Organization is the tenant: the unit of data isolation. It is the only
// kind without an organization scoping column of its own.
type Organization struct {
	bun.BaseModel `bun:"table:organizations,alias:org"`

	ID          uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	Name        string    `bun:"name,notnull" json:"name"`
	OwnerUserID uuid.UUID `bun:"owner_user_id,type:uuid,notnull" json:"owner_user_id"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:now()" json:"created_at"`
	UpdatedAt   time.Time `bun:"updated_at,notnull,default:now()" json:"updated_at"`
}

func (o *Organization) ObjectKind() Kind    { return KindOrganization }
func (o *Organization) ObjectID() uuid.UUID { return o.ID }

// Member links one user to one organization, optionally to a department.
type Member struct {
	bun.BaseModel `bun:"table:members,alias:m"`

	ID             uuid.UUID  `bun:"id,pk,type:uuid" json:"id"`
	OrganizationID uuid.UUID  `bun:"organization_id,type:uuid,notnull" json:"organization_id"`
	UserID         uuid.UUID  `bun:"user_id,type:uuid,notnull" json:"user_id"`
	Email          string     `bun:"email,notnull" json:"email"`
	Role           string     `bun:"role,notnull,default:'member'" json:"role"`
	Status         string     `bun:"status,notnull,default:'active'" json:"status"`
	DepartmentID   *uuid.UUID `bun:"department_id,type:uuid" json:"department_id,omitempty"`
	CreatedAt      time.Time  `bun:"created_at,notnull,default:now()" json:"created_at"`
	UpdatedAt      time.Time  `bun:"updated_at,notnull,default:now()" json:"updated_at"`
}

func (m *Member) ObjectKind() Kind             { return KindMember }
func (m *Member) ObjectID() uuid.UUID          { return m.ID }
func (m *Member) OrganizationScope() uuid.UUID { return m.OrganizationID }

// Member statuses.
const (
	MemberStatusActive    = "active"
	MemberStatusInvited   = "invited"
	MemberStatusSuspended = "suspended"
)

// Department is a tree node within an organization. Path is the materialized
// ancestor-id chain ending in the node's own id; Level is the chain length.
// Both are recomputed on create and move.
type Department struct {
	bun.BaseModel `bun:"table:departments,alias:d"`

	ID             uuid.UUID  `bun:"id,pk,type:uuid" json:"id"`
	OrganizationID uuid.UUID  `bun:"organization_id,type:uuid,notnull" json:"organization_id"`
	Name           string     `bun:"name,notnull" json:"name"`
	ParentID       *uuid.UUID `bun:"parent_id,type:uuid" json:"parent_id,omitempty"`
	Path           string     `bun:"path,notnull" json:"path"`
	Level          int        `bun:"level,notnull,default:1" json:"level"`
	SortOrder      int        `bun:"sort_order,notnull,default:0" json:"sort_order"`
	CreatedAt      time.Time  `bun:"created_at,notnull,default:now()" json:"created_at"`
	UpdatedAt      time.Time  `bun:"updated_at,notnull,default:now()" json:"updated_at"`
}

func (d *Department) ObjectKind() Kind             { return KindDepartment }
func (d *Department) ObjectID() uuid.UUID          { return d.ID }
func (d *Department) OrganizationScope() uuid.UUID { return d.OrganizationID }

// Project is exclusively owned by one organization and records its creating
// user.
type Project struct {
	bun.BaseModel `bun:"table:projects,alias:p"`

	ID             uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	OrganizationID uuid.UUID `bun:"organization_id,type:uuid,notnull" json:"organization_id"`
	UserID         uuid.UUID `bun:"user_id,type:uuid,notnull" json:"user_id"`
	Name           string    `bun:"name,notnull" json:"name"`
	Description    string    `bun:"description,notnull,default:''" json:"description"`
	IsArchived     bool      `bun:"is_archived,notnull,default:false" json:"is_archived"`
	CreatedAt      time.Time `bun:"created_at,notnull,default:now()" json:"created_at"`
	UpdatedAt      time.Time `bun:"updated_at,notnull,default:now()" json:"updated_at"`
}

func (p *Project) ObjectKind() Kind             { return KindProject }
func (p *Project) ObjectID() uuid.UUID          { return p.ID }
func (p *Project) OrganizationScope() uuid.UUID { return p.OrganizationID }

// Module is a sub-unit of a project, cascade-deleted with it.
type Module struct {
	bun.BaseModel `bun:"table:modules,alias:mod"`

	ID             uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	OrganizationID uuid.UUID `bun:"organization_id,type:uuid,notnull" json:"organization_id"`
	ProjectID      uuid.UUID `bun:"project_id,type:uuid,notnull" json:"project_id"`
	Name           string    `bun:"name,notnull" json:"name"`
	Description    string    `bun:"description,notnull,default:''" json:"description"`
	SortOrder      int       `bun:"sort_order,notnull,default:0" json:"sort_order"`
	CreatedAt      time.Time `bun:"created_at,notnull,default:now()" json:"created_at"`
	UpdatedAt      time.Time `bun:"updated_at,notnull,default:now()" json:"updated_at"`
}

func (m *Module) ObjectKind() Kind             { return KindModule }
func (m *Module) ObjectID() uuid.UUID          { return m.ID }
func (m *Module) OrganizationScope() uuid.UUID { return m.OrganizationID }

// Entity is a schema-carrying record within a project, optionally attached to
// a module.
type Entity struct {
	bun.BaseModel `bun:"table:entities,alias:e"`

	ID             uuid.UUID      `bun:"id,pk,type:uuid" json:"id"`
	OrganizationID uuid.UUID      `bun:"organization_id,type:uuid,notnull" json:"organization_id"`
	ProjectID      uuid.UUID      `bun:"project_id,type:uuid,notnull" json:"project_id"`
	ModuleID       *uuid.UUID     `bun:"module_id,type:uuid" json:"module_id,omitempty"`
	Name           string         `bun:"name,notnull" json:"name"`
	Fields         map[string]any `bun:"fields,type:jsonb,notnull,default:'{}'" json:"fields"`
	CreatedAt      time.Time      `bun:"created_at,notnull,default:now()" json:"created_at"`
	UpdatedAt      time.Time      `bun:"updated_at,notnull,default:now()" json:"updated_at"`
}

func (e *Entity) ObjectKind() Kind             { return KindEntity }
func (e *Entity) ObjectID() uuid.UUID          { return e.ID }
func (e *Entity) OrganizationScope() uuid.UUID { return e.OrganizationID }

// Task is a unit of work, optionally attached to a project and an assignee.
type Task struct {
	bun.BaseModel `bun:"table:tasks,alias:t"`

	ID             uuid.UUID  `bun:"id,pk,type:uuid" json:"id"`
	OrganizationID uuid.UUID  `bun:"organization_id,type:uuid,notnull" json:"organization_id"`
	ProjectID      *uuid.UUID `bun:"project_id,type:uuid" json:"project_id,omitempty"`
	AssigneeID     *uuid.UUID `bun:"assignee_id,type:uuid" json:"assignee_id,omitempty"`
	Title          string     `bun:"title,notnull" json:"title"`
	Status         string     `bun:"status,notnull,default:'open'" json:"status"`
	DueAt          *time.Time `bun:"due_at" json:"due_at,omitempty"`
	CreatedAt      time.Time  `bun:"created_at,notnull,default:now()" json:"created_at"`
	UpdatedAt      time.Time  `bun:"updated_at,notnull,default:now()" json:"updated_at"`
}

func (t *Task) ObjectKind() Kind             { return KindTask }
func (t *Task) ObjectID() uuid.UUID          { return t.ID }
func (t *Task) OrganizationScope() uuid.UUID { return t.OrganizationID }

// Task statuses.
const (
	TaskStatusOpen = "open"
	TaskStatusDone = "done"
)

// Link is a directed, typed edge between two object ids with attached
// metadata. At most one link exists per (source, target, type) triple;
// re-creating the triple upserts the metadata.
type Link struct {
	bun.BaseModel `bun:"table:ontology_links,alias:l"`

	ID        uuid.UUID      `bun:"id,pk,type:uuid" json:"id"`
	SourceID  uuid.UUID      `bun:"source_id,type:uuid,notnull" json:"source_id"`
	TargetID  uuid.UUID      `bun:"target_id,type:uuid,notnull" json:"target_id"`
	LinkType  LinkKind       `bun:"link_type,notnull" json:"link_type"`
	Metadata  map[string]any `bun:"metadata,type:jsonb,notnull,default:'{}'" json:"metadata"`
	CreatedAt time.Time      `bun:"created_at,notnull,default:now()" json:"created_at"`
	UpdatedAt time.Time      `bun:"updated_at,notnull,default:now()" json:"updated_at"`
}
