package actions

import (
	"context"

	"github.com/google/uuid"

	"github.com/ontoforge/ontology-core/domain/ontology"
	"github.com/ontoforge/ontology-core/domain/permissions"
	"github.com/ontoforge/ontology-core/domain/tenant"
	"github.com/ontoforge/ontology-core/pkg/apperror"
)

// CreateProject creates a project owned by the acting user.
type CreateProject struct {
	Store       ontology.Store
	ProjectName string
	Description string
}

func (a *CreateProject) Name() string { return "CreateProject" }

func (a *CreateProject) Permissions() []permissions.Permission {
	return []permissions.Permission{permissions.ProjectCreate}
}

func (a *CreateProject) Input() map[string]any {
	return map[string]any{"name": a.ProjectName, "description": a.Description}
}

func (a *CreateProject) Validate(_ context.Context) error {
	return validateName("name", a.ProjectName)
}

func (a *CreateProject) Execute(ctx context.Context) (any, error) {
	tc, err := tenant.Require(ctx)
	if err != nil {
		return nil, err
	}
	return a.Store.CreateObject(ctx, ontology.CreateProjectInput{
		UserID:      tc.UserID,
		Name:        a.ProjectName,
		Description: a.Description,
	})
}

// UpdateProject renames or redescribes a project.
type UpdateProject struct {
	Store       ontology.Store
	ProjectID   uuid.UUID
	ProjectName *string
	Description *string
}

func (a *UpdateProject) Name() string { return "UpdateProject" }

func (a *UpdateProject) Permissions() []permissions.Permission {
	return []permissions.Permission{permissions.ProjectUpdate}
}

func (a *UpdateProject) Input() map[string]any {
	in := map[string]any{"id": a.ProjectID}
	if a.ProjectName != nil {
		in["name"] = *a.ProjectName
	}
	if a.Description != nil {
		in["description"] = *a.Description
	}
	return in
}

func (a *UpdateProject) Validate(ctx context.Context) error {
	if a.ProjectName != nil {
		if err := validateName("name", *a.ProjectName); err != nil {
			return err
		}
	}
	_, err := requireKind(ctx, a.Store, ontology.KindProject, a.ProjectID)
	return err
}

func (a *UpdateProject) Execute(ctx context.Context) (any, error) {
	return a.Store.UpdateObject(ctx, ontology.KindProject, a.ProjectID, ontology.ProjectPatch{
		Name:        a.ProjectName,
		Description: a.Description,
	})
}

// ArchiveProject flips a project's archived flag. Only the owning user may
// archive or unarchive.
type ArchiveProject struct {
	Store     ontology.Store
	ProjectID uuid.UUID
	Archived  bool
}

func (a *ArchiveProject) Name() string { return "ArchiveProject" }

func (a *ArchiveProject) Permissions() []permissions.Permission {
	return []permissions.Permission{permissions.ProjectUpdate}
}

func (a *ArchiveProject) Input() map[string]any {
	return map[string]any{"id": a.ProjectID, "archived": a.Archived}
}

func (a *ArchiveProject) Validate(ctx context.Context) error {
	obj, err := requireKind(ctx, a.Store, ontology.KindProject, a.ProjectID)
	if err != nil {
		return err
	}
	tc, err := tenant.Require(ctx)
	if err != nil {
		return err
	}
	if obj.(*ontology.Project).UserID != tc.UserID {
		return apperror.ErrForbidden.WithMessage("not authorized: only the project owner may archive it")
	}
	return nil
}

func (a *ArchiveProject) Execute(ctx context.Context) (any, error) {
	return a.Store.UpdateObject(ctx, ontology.KindProject, a.ProjectID, ontology.ProjectPatch{
		IsArchived: &a.Archived,
	})
}

// CreateModule creates a module under an existing project.
type CreateModule struct {
	Store       ontology.Store
	ProjectID   uuid.UUID
	ModuleName  string
	Description string
	SortOrder   int
}

func (a *CreateModule) Name() string { return "CreateModule" }

func (a *CreateModule) Permissions() []permissions.Permission {
	return []permissions.Permission{permissions.ModuleCreate}
}

func (a *CreateModule) Input() map[string]any {
	return map[string]any{"project_id": a.ProjectID, "name": a.ModuleName}
}

func (a *CreateModule) Validate(ctx context.Context) error {
	if err := validateName("name", a.ModuleName); err != nil {
		return err
	}
	_, err := requireKind(ctx, a.Store, ontology.KindProject, a.ProjectID)
	return err
}

func (a *CreateModule) Execute(ctx context.Context) (any, error) {
	return a.Store.CreateObject(ctx, ontology.CreateModuleInput{
		ProjectID:   a.ProjectID,
		Name:        a.ModuleName,
		Description: a.Description,
		SortOrder:   a.SortOrder,
	})
}

// DeleteProject removes a project and cascades through its modules and
// entities. The cascade is the action's responsibility, not the store's.
type DeleteProject struct {
	Store     ontology.Store
	ProjectID uuid.UUID
}

func (a *DeleteProject) Name() string { return "DeleteProject" }

func (a *DeleteProject) Permissions() []permissions.Permission {
	return []permissions.Permission{permissions.ProjectDelete}
}

func (a *DeleteProject) Input() map[string]any {
	return map[string]any{"id": a.ProjectID}
}

func (a *DeleteProject) Validate(ctx context.Context) error {
	obj, err := requireKind(ctx, a.Store, ontology.KindProject, a.ProjectID)
	if err != nil {
		return err
	}
	tc, err := tenant.Require(ctx)
	if err != nil {
		return err
	}
	if obj.(*ontology.Project).UserID != tc.UserID && !tc.Role.AtLeast(tenant.RoleAdmin) {
		return apperror.ErrForbidden.WithMessage("not authorized: only the project owner or an admin may delete it")
	}
	return nil
}

func (a *DeleteProject) Execute(ctx context.Context) (any, error) {
	entities, err := a.Store.GetLinkedObjects(ctx, a.ProjectID, ontology.LinkProjectEntities)
	if err != nil {
		return nil, err
	}
	for _, e := range entities {
		if err := a.Store.DeleteObject(ctx, ontology.KindEntity, e.ObjectID()); err != nil {
			return nil, err
		}
	}
	modules, err := a.Store.GetLinkedObjects(ctx, a.ProjectID, ontology.LinkProjectModules)
	if err != nil {
		return nil, err
	}
	for _, m := range modules {
		if err := a.Store.DeleteObject(ctx, ontology.KindModule, m.ObjectID()); err != nil {
			return nil, err
		}
	}
	if err := a.Store.DeleteObject(ctx, ontology.KindProject, a.ProjectID); err != nil {
		return nil, err
	}
	return map[string]any{"id": a.ProjectID, "deleted_modules": len(modules), "deleted_entities": len(entities)}, nil
}
