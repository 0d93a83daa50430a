package actions

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/ontoforge/ontology-core/domain/ontology"
	"github.com/ontoforge/ontology-core/pkg/apperror"
	"github.com/ontoforge/ontology-core/pkg/auth"
)

// Handler binds HTTP requests onto actions and runs them. Every response is
// the uniform result envelope with status 200; failures are carried inside
// it, not as HTTP errors.
type Handler struct {
	runner *Runner
	store  ontology.Store
}

func NewHandler(runner *Runner, store ontology.Store) *Handler {
	return &Handler{runner: runner, store: store}
}

func (h *Handler) run(c echo.Context, a Action) error {
	return c.JSON(http.StatusOK, h.runner.Run(c.Request().Context(), a))
}

func pathID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, apperror.NewBadRequest("malformed id " + c.Param("id"))
	}
	return id, nil
}

type createProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *Handler) CreateProject(c echo.Context) error {
	var req createProjectRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("malformed payload")
	}
	return h.run(c, &CreateProject{Store: h.store, ProjectName: req.Name, Description: req.Description})
}

type updateProjectRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

func (h *Handler) UpdateProject(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req updateProjectRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("malformed payload")
	}
	return h.run(c, &UpdateProject{Store: h.store, ProjectID: id, ProjectName: req.Name, Description: req.Description})
}

type archiveProjectRequest struct {
	Archived bool `json:"archived"`
}

func (h *Handler) ArchiveProject(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req archiveProjectRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("malformed payload")
	}
	return h.run(c, &ArchiveProject{Store: h.store, ProjectID: id, Archived: req.Archived})
}

func (h *Handler) DeleteProject(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	return h.run(c, &DeleteProject{Store: h.store, ProjectID: id})
}

type createModuleRequest struct {
	ProjectID   uuid.UUID `json:"project_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	SortOrder   int       `json:"sort_order"`
}

func (h *Handler) CreateModule(c echo.Context) error {
	var req createModuleRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("malformed payload")
	}
	return h.run(c, &CreateModule{
		Store:       h.store,
		ProjectID:   req.ProjectID,
		ModuleName:  req.Name,
		Description: req.Description,
		SortOrder:   req.SortOrder,
	})
}

type createDepartmentRequest struct {
	Name      string     `json:"name"`
	ParentID  *uuid.UUID `json:"parent_id,omitempty"`
	SortOrder int        `json:"sort_order"`
}

func (h *Handler) CreateDepartment(c echo.Context) error {
	var req createDepartmentRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("malformed payload")
	}
	return h.run(c, &CreateDepartment{
		Store:          h.store,
		DepartmentName: req.Name,
		ParentID:       req.ParentID,
		SortOrder:      req.SortOrder,
	})
}

type updateDepartmentRequest struct {
	Name       *string    `json:"name,omitempty"`
	ParentID   *uuid.UUID `json:"parent_id,omitempty"`
	MoveToRoot bool       `json:"move_to_root,omitempty"`
}

func (h *Handler) UpdateDepartment(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req updateDepartmentRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("malformed payload")
	}
	return h.run(c, &UpdateDepartment{
		Store:          h.store,
		DepartmentID:   id,
		DepartmentName: req.Name,
		NewParentID:    req.ParentID,
		MoveToRoot:     req.MoveToRoot,
	})
}

func (h *Handler) DeleteDepartment(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	return h.run(c, &DeleteDepartment{Store: h.store, DepartmentID: id})
}

type createMemberRequest struct {
	UserID       uuid.UUID  `json:"user_id"`
	Email        string     `json:"email"`
	Role         string     `json:"role"`
	DepartmentID *uuid.UUID `json:"department_id,omitempty"`
}

func (h *Handler) CreateMember(c echo.Context) error {
	var req createMemberRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("malformed payload")
	}
	return h.run(c, &CreateMember{
		Store:        h.store,
		UserID:       req.UserID,
		Email:        req.Email,
		Role:         req.Role,
		DepartmentID: req.DepartmentID,
	})
}

type updateMemberRequest struct {
	Role         *string    `json:"role,omitempty"`
	DepartmentID *uuid.UUID `json:"department_id,omitempty"`
}

func (h *Handler) UpdateMember(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req updateMemberRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("malformed payload")
	}
	return h.run(c, &UpdateMember{Store: h.store, MemberID: id, Role: req.Role, DepartmentID: req.DepartmentID})
}

func (h *Handler) DeleteMember(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	return h.run(c, &DeleteMember{Store: h.store, MemberID: id})
}

type createTaskRequest struct {
	Title      string     `json:"title"`
	ProjectID  *uuid.UUID `json:"project_id,omitempty"`
	AssigneeID *uuid.UUID `json:"assignee_id,omitempty"`
	DueAt      *time.Time `json:"due_at,omitempty"`
}

func (h *Handler) CreateTask(c echo.Context) error {
	var req createTaskRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("malformed payload")
	}
	return h.run(c, &CreateTask{
		Store:      h.store,
		Title:      req.Title,
		ProjectID:  req.ProjectID,
		AssigneeID: req.AssigneeID,
		DueAt:      req.DueAt,
	})
}

type updateTaskRequest struct {
	Title      *string    `json:"title,omitempty"`
	Status     *string    `json:"status,omitempty"`
	AssigneeID *uuid.UUID `json:"assignee_id,omitempty"`
	DueAt      *time.Time `json:"due_at,omitempty"`
}

func (h *Handler) UpdateTask(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req updateTaskRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("malformed payload")
	}
	return h.run(c, &UpdateTask{
		Store:      h.store,
		TaskID:     id,
		Title:      req.Title,
		Status:     req.Status,
		AssigneeID: req.AssigneeID,
		DueAt:      req.DueAt,
	})
}

// RegisterRoutes registers the action routes.
func RegisterRoutes(e *echo.Echo, h *Handler, authMiddleware *auth.Middleware) {
	g := e.Group("/api/v1/actions")
	g.Use(authMiddleware.Require())

	g.POST("/projects", h.CreateProject)
	g.PATCH("/projects/:id", h.UpdateProject)
	g.POST("/projects/:id/archive", h.ArchiveProject)
	g.DELETE("/projects/:id", h.DeleteProject)

	g.POST("/modules", h.CreateModule)

	g.POST("/departments", h.CreateDepartment)
	g.PATCH("/departments/:id", h.UpdateDepartment)
	g.DELETE("/departments/:id", h.DeleteDepartment)

	g.POST("/members", h.CreateMember)
	g.PATCH("/members/:id", h.UpdateMember)
	g.DELETE("/members/:id", h.DeleteMember)

	g.POST("/tasks", h.CreateTask)
	g.PATCH("/tasks/:id", h.UpdateTask)
}
