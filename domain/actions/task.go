package actions

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ontoforge/ontology-core/domain/ontology"
	"github.com/ontoforge/ontology-core/domain/permissions"
	"github.com/ontoforge/ontology-core/pkg/apperror"
)

// CreateTask records a unit of work, optionally attached to a project and an
// assignee.
type CreateTask struct {
	Store      ontology.Store
	Title      string
	ProjectID  *uuid.UUID
	AssigneeID *uuid.UUID
	DueAt      *time.Time
}

func (a *CreateTask) Name() string { return "CreateTask" }

func (a *CreateTask) Permissions() []permissions.Permission {
	return []permissions.Permission{permissions.TaskCreate}
}

func (a *CreateTask) Input() map[string]any {
	in := map[string]any{"title": a.Title}
	if a.ProjectID != nil {
		in["project_id"] = *a.ProjectID
	}
	if a.AssigneeID != nil {
		in["assignee_id"] = *a.AssigneeID
	}
	return in
}

func (a *CreateTask) Validate(ctx context.Context) error {
	if err := validateName("title", a.Title); err != nil {
		return err
	}
	if a.ProjectID != nil {
		if _, err := requireKind(ctx, a.Store, ontology.KindProject, *a.ProjectID); err != nil {
			return err
		}
	}
	if a.AssigneeID != nil {
		if _, err := requireKind(ctx, a.Store, ontology.KindMember, *a.AssigneeID); err != nil {
			return err
		}
	}
	return nil
}

func (a *CreateTask) Execute(ctx context.Context) (any, error) {
	return a.Store.CreateObject(ctx, ontology.CreateTaskInput{
		ProjectID:  a.ProjectID,
		AssigneeID: a.AssigneeID,
		Title:      a.Title,
		Status:     ontology.TaskStatusOpen,
		DueAt:      a.DueAt,
	})
}

// UpdateTask retitles, reassigns, or completes a task.
type UpdateTask struct {
	Store      ontology.Store
	TaskID     uuid.UUID
	Title      *string
	Status     *string
	AssigneeID *uuid.UUID
	DueAt      *time.Time
}

func (a *UpdateTask) Name() string { return "UpdateTask" }

func (a *UpdateTask) Permissions() []permissions.Permission {
	return []permissions.Permission{permissions.TaskUpdate}
}

func (a *UpdateTask) Input() map[string]any {
	in := map[string]any{"id": a.TaskID}
	if a.Title != nil {
		in["title"] = *a.Title
	}
	if a.Status != nil {
		in["status"] = *a.Status
	}
	return in
}

func (a *UpdateTask) Validate(ctx context.Context) error {
	if a.Title != nil {
		if err := validateName("title", *a.Title); err != nil {
			return err
		}
	}
	if a.Status != nil {
		switch *a.Status {
		case ontology.TaskStatusOpen, ontology.TaskStatusDone:
		default:
			return apperror.NewValidation("unknown task status " + *a.Status)
		}
	}
	if a.AssigneeID != nil {
		if _, err := requireKind(ctx, a.Store, ontology.KindMember, *a.AssigneeID); err != nil {
			return err
		}
	}
	_, err := requireKind(ctx, a.Store, ontology.KindTask, a.TaskID)
	return err
}

func (a *UpdateTask) Execute(ctx context.Context) (any, error) {
	return a.Store.UpdateObject(ctx, ontology.KindTask, a.TaskID, ontology.TaskPatch{
		Title:      a.Title,
		Status:     a.Status,
		AssigneeID: a.AssigneeID,
		DueAt:      a.DueAt,
	})
}
