package testutil

import (
	"time"

	"github.com/google/uuid"

	"github.com/ontoforge/ontology-core/domain/ontology"
	"github.com/ontoforge/ontology-core/pkg/apperror"
)

// buildObject constructs the stored record for an input, mirroring what the
// SQL repositories do: server-assigned id and timestamps, defaults applied.
func buildObject(kind ontology.Kind, in ontology.Input) (ontology.Object, error) {
	if in.InputKind() != kind {
		return nil, apperror.NewValidation("input payload does not match kind " + string(kind))
	}
	ts := time.Now().UTC()
	switch input := in.(type) {
	case ontology.CreateOrganizationInput:
		return &ontology.Organization{
			ID: uuid.New(), Name: input.Name, OwnerUserID: input.OwnerUserID,
			CreatedAt: ts, UpdatedAt: ts,
		}, nil
	case ontology.CreateMemberInput:
		role := input.Role
		if role == "" {
			role = "member"
		}
		status := input.Status
		if status == "" {
			status = ontology.MemberStatusActive
		}
		return &ontology.Member{
			ID: uuid.New(), OrganizationID: input.OrganizationID, UserID: input.UserID,
			Email: input.Email, Role: role, Status: status, DepartmentID: input.DepartmentID,
			CreatedAt: ts, UpdatedAt: ts,
		}, nil
	case ontology.CreateDepartmentInput:
		id := uuid.New()
		if input.ID != nil {
			id = *input.ID
		}
		return &ontology.Department{
			ID: id, OrganizationID: input.OrganizationID, Name: input.Name,
			ParentID: input.ParentID, Path: input.Path, Level: input.Level,
			SortOrder: input.SortOrder, CreatedAt: ts, UpdatedAt: ts,
		}, nil
	case ontology.CreateProjectInput:
		return &ontology.Project{
			ID: uuid.New(), OrganizationID: input.OrganizationID, UserID: input.UserID,
			Name: input.Name, Description: input.Description,
			CreatedAt: ts, UpdatedAt: ts,
		}, nil
	case ontology.CreateModuleInput:
		return &ontology.Module{
			ID: uuid.New(), OrganizationID: input.OrganizationID, ProjectID: input.ProjectID,
			Name: input.Name, Description: input.Description, SortOrder: input.SortOrder,
			CreatedAt: ts, UpdatedAt: ts,
		}, nil
	case ontology.CreateEntityInput:
		fields := input.Fields
		if fields == nil {
			fields = map[string]any{}
		}
		return &ontology.Entity{
			ID: uuid.New(), OrganizationID: input.OrganizationID, ProjectID: input.ProjectID,
			ModuleID: input.ModuleID, Name: input.Name, Fields: fields,
			CreatedAt: ts, UpdatedAt: ts,
		}, nil
	case ontology.CreateTaskInput:
		status := input.Status
		if status == "" {
			status = ontology.TaskStatusOpen
		}
		return &ontology.Task{
			ID: uuid.New(), OrganizationID: input.OrganizationID, ProjectID: input.ProjectID,
			AssigneeID: input.AssigneeID, Title: input.Title, Status: status, DueAt: input.DueAt,
			CreatedAt: ts, UpdatedAt: ts,
		}, nil
	}
	return nil, apperror.NewValidation("input payload does not match kind " + string(kind))
}

// applyPatch returns a copy of obj with the patch's non-nil fields applied.
func applyPatch(obj ontology.Object, p ontology.Patch) (ontology.Object, error) {
	ts := time.Now().UTC()
	switch patch := p.(type) {
	case ontology.OrganizationPatch:
		rec := *obj.(*ontology.Organization)
		if patch.Name != nil {
			rec.Name = *patch.Name
		}
		rec.UpdatedAt = ts
		return &rec, nil
	case ontology.MemberPatch:
		rec := *obj.(*ontology.Member)
		if patch.Role != nil {
			rec.Role = *patch.Role
		}
		if patch.Status != nil {
			rec.Status = *patch.Status
		}
		if patch.DepartmentID != nil {
			rec.DepartmentID = patch.DepartmentID
		}
		if patch.Email != nil {
			rec.Email = *patch.Email
		}
		rec.UpdatedAt = ts
		return &rec, nil
	case ontology.DepartmentPatch:
		rec := *obj.(*ontology.Department)
		if patch.Name != nil {
			rec.Name = *patch.Name
		}
		if patch.ClearParent {
			rec.ParentID = nil
		} else if patch.ParentID != nil {
			rec.ParentID = patch.ParentID
		}
		if patch.Path != nil {
			rec.Path = *patch.Path
		}
		if patch.Level != nil {
			rec.Level = *patch.Level
		}
		if patch.SortOrder != nil {
			rec.SortOrder = *patch.SortOrder
		}
		rec.UpdatedAt = ts
		return &rec, nil
	case ontology.ProjectPatch:
		rec := *obj.(*ontology.Project)
		if patch.Name != nil {
			rec.Name = *patch.Name
		}
		if patch.Description != nil {
			rec.Description = *patch.Description
		}
		if patch.IsArchived != nil {
			rec.IsArchived = *patch.IsArchived
		}
		rec.UpdatedAt = ts
		return &rec, nil
	case ontology.ModulePatch:
		rec := *obj.(*ontology.Module)
		if patch.Name != nil {
			rec.Name = *patch.Name
		}
		if patch.Description != nil {
			rec.Description = *patch.Description
		}
		if patch.SortOrder != nil {
			rec.SortOrder = *patch.SortOrder
		}
		rec.UpdatedAt = ts
		return &rec, nil
	case ontology.EntityPatch:
		rec := *obj.(*ontology.Entity)
		if patch.Name != nil {
			rec.Name = *patch.Name
		}
		if patch.ModuleID != nil {
			rec.ModuleID = patch.ModuleID
		}
		if patch.Fields != nil {
			rec.Fields = *patch.Fields
		}
		rec.UpdatedAt = ts
		return &rec, nil
	case ontology.TaskPatch:
		rec := *obj.(*ontology.Task)
		if patch.Title != nil {
			rec.Title = *patch.Title
		}
		if patch.Status != nil {
			rec.Status = *patch.Status
		}
		if patch.ProjectID != nil {
			rec.ProjectID = patch.ProjectID
		}
		if patch.AssigneeID != nil {
			rec.AssigneeID = patch.AssigneeID
		}
		if patch.DueAt != nil {
			rec.DueAt = patch.DueAt
		}
		rec.UpdatedAt = ts
		return &rec, nil
	}
	return nil, apperror.NewValidation("patch payload does not match object kind")
}
