package actions

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/ontoforge/ontology-core/domain/ontology"
	"github.com/ontoforge/ontology-core/domain/permissions"
	"github.com/ontoforge/ontology-core/pkg/apperror"
)

// Department paths are the "/"-joined chain of ancestor ids ending in the
// node's own id; the level is the chain length. Both are maintained here, on
// create and move, never by the store.

func childPath(parent *ontology.Department, id uuid.UUID) (string, int) {
	if parent == nil {
		return id.String(), 1
	}
	return parent.Path + "/" + id.String(), parent.Level + 1
}

func subtreeOf(ctx context.Context, store ontology.Store, d *ontology.Department) ([]*ontology.Department, error) {
	objs, err := store.QueryObjects(ctx, ontology.KindDepartment,
		ontology.QueryOptions{}.WithFilter("path", ontology.OpLike, d.Path+"/%"))
	if err != nil {
		return nil, err
	}
	out := make([]*ontology.Department, len(objs))
	for i, obj := range objs {
		out[i] = obj.(*ontology.Department)
	}
	return out, nil
}

// CreateDepartment creates a department, optionally under a parent.
type CreateDepartment struct {
	Store          ontology.Store
	DepartmentName string
	ParentID       *uuid.UUID
	SortOrder      int
}

func (a *CreateDepartment) Name() string { return "CreateDepartment" }

func (a *CreateDepartment) Permissions() []permissions.Permission {
	return []permissions.Permission{permissions.DepartmentManage}
}

func (a *CreateDepartment) Input() map[string]any {
	in := map[string]any{"name": a.DepartmentName}
	if a.ParentID != nil {
		in["parent_id"] = *a.ParentID
	}
	return in
}

func (a *CreateDepartment) Validate(ctx context.Context) error {
	if err := validateName("name", a.DepartmentName); err != nil {
		return err
	}
	if a.ParentID != nil {
		if _, err := requireKind(ctx, a.Store, ontology.KindDepartment, *a.ParentID); err != nil {
			return err
		}
	}
	return nil
}

func (a *CreateDepartment) Execute(ctx context.Context) (any, error) {
	var parent *ontology.Department
	if a.ParentID != nil {
		obj, err := requireKind(ctx, a.Store, ontology.KindDepartment, *a.ParentID)
		if err != nil {
			return nil, err
		}
		parent = obj.(*ontology.Department)
	}
	id := uuid.New()
	path, level := childPath(parent, id)
	return a.Store.CreateObject(ctx, ontology.CreateDepartmentInput{
		ID:        &id,
		Name:      a.DepartmentName,
		ParentID:  a.ParentID,
		Path:      path,
		Level:     level,
		SortOrder: a.SortOrder,
	})
}

// UpdateDepartment renames a department or moves it under a new parent,
// recomputing path and level for the node and its whole subtree.
type UpdateDepartment struct {
	Store          ontology.Store
	DepartmentID   uuid.UUID
	DepartmentName *string
	// NewParentID moves the department. Set MoveToRoot to detach it instead;
	// both unset leaves the position unchanged.
	NewParentID *uuid.UUID
	MoveToRoot  bool
}

func (a *UpdateDepartment) Name() string { return "UpdateDepartment" }

func (a *UpdateDepartment) Permissions() []permissions.Permission {
	return []permissions.Permission{permissions.DepartmentManage}
}

func (a *UpdateDepartment) Input() map[string]any {
	in := map[string]any{"id": a.DepartmentID}
	if a.DepartmentName != nil {
		in["name"] = *a.DepartmentName
	}
	if a.NewParentID != nil {
		in["parent_id"] = *a.NewParentID
	}
	if a.MoveToRoot {
		in["move_to_root"] = true
	}
	return in
}

func (a *UpdateDepartment) Validate(ctx context.Context) error {
	if a.DepartmentName != nil {
		if err := validateName("name", *a.DepartmentName); err != nil {
			return err
		}
	}
	obj, err := requireKind(ctx, a.Store, ontology.KindDepartment, a.DepartmentID)
	if err != nil {
		return err
	}
	node := obj.(*ontology.Department)
	if a.NewParentID != nil {
		if *a.NewParentID == a.DepartmentID {
			return apperror.NewValidation("a department cannot be its own parent")
		}
		pobj, err := requireKind(ctx, a.Store, ontology.KindDepartment, *a.NewParentID)
		if err != nil {
			return err
		}
		parent := pobj.(*ontology.Department)
		if strings.HasPrefix(parent.Path+"/", node.Path+"/") {
			return apperror.NewValidation("cannot move a department under its own descendant")
		}
	}
	return nil
}

func (a *UpdateDepartment) Execute(ctx context.Context) (any, error) {
	obj, err := requireKind(ctx, a.Store, ontology.KindDepartment, a.DepartmentID)
	if err != nil {
		return nil, err
	}
	node := obj.(*ontology.Department)

	patch := ontology.DepartmentPatch{Name: a.DepartmentName}
	moved := a.NewParentID != nil || a.MoveToRoot
	if moved {
		var parent *ontology.Department
		if a.NewParentID != nil {
			pobj, err := requireKind(ctx, a.Store, ontology.KindDepartment, *a.NewParentID)
			if err != nil {
				return nil, err
			}
			parent = pobj.(*ontology.Department)
		}
		newPath, newLevel := childPath(parent, node.ID)
		oldPath, oldLevel := node.Path, node.Level

		// Rewrite descendants before the node so the subtree query still
		// matches the old prefix.
		subtree, err := subtreeOf(ctx, a.Store, node)
		if err != nil {
			return nil, err
		}
		for _, d := range subtree {
			descPath := newPath + strings.TrimPrefix(d.Path, oldPath)
			descLevel := d.Level + newLevel - oldLevel
			_, err := a.Store.UpdateObject(ctx, ontology.KindDepartment, d.ID, ontology.DepartmentPatch{
				Path:  &descPath,
				Level: &descLevel,
			})
			if err != nil {
				return nil, err
			}
		}

		patch.ParentID = a.NewParentID
		patch.ClearParent = a.MoveToRoot
		patch.Path = &newPath
		patch.Level = &newLevel
	}

	return a.Store.UpdateObject(ctx, ontology.KindDepartment, a.DepartmentID, patch)
}

// DeleteDepartment removes a department and every descendant, matched by path
// prefix.
type DeleteDepartment struct {
	Store        ontology.Store
	DepartmentID uuid.UUID
}

func (a *DeleteDepartment) Name() string { return "DeleteDepartment" }

func (a *DeleteDepartment) Permissions() []permissions.Permission {
	return []permissions.Permission{permissions.DepartmentManage}
}

func (a *DeleteDepartment) Input() map[string]any {
	return map[string]any{"id": a.DepartmentID}
}

func (a *DeleteDepartment) Validate(ctx context.Context) error {
	_, err := requireKind(ctx, a.Store, ontology.KindDepartment, a.DepartmentID)
	return err
}

func (a *DeleteDepartment) Execute(ctx context.Context) (any, error) {
	obj, err := requireKind(ctx, a.Store, ontology.KindDepartment, a.DepartmentID)
	if err != nil {
		return nil, err
	}
	node := obj.(*ontology.Department)

	subtree, err := subtreeOf(ctx, a.Store, node)
	if err != nil {
		return nil, err
	}
	for _, d := range subtree {
		if err := a.Store.DeleteObject(ctx, ontology.KindDepartment, d.ID); err != nil {
			return nil, err
		}
	}
	if err := a.Store.DeleteObject(ctx, ontology.KindDepartment, node.ID); err != nil {
		return nil, err
	}
	return map[string]any{"id": a.DepartmentID, "deleted_descendants": len(subtree)}, nil
}
