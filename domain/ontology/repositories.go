package ontology

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/ontoforge/ontology-core/pkg/apperror"
)

// Queryable field whitelists per kind. Field names double as column names;
// anything not listed is rejected before reaching SQL.

var organizationColumns = map[string]string{
	"id": "id", "name": "name", "owner_user_id": "owner_user_id",
	"created_at": "created_at", "updated_at": "updated_at",
	// Organizations are their own tenant scope.
	"organization_id": "id",
}

var memberColumns = map[string]string{
	"id": "id", "organization_id": "organization_id", "user_id": "user_id",
	"email": "email", "role": "role", "status": "status",
	"department_id": "department_id", "created_at": "created_at", "updated_at": "updated_at",
}

var departmentColumns = map[string]string{
	"id": "id", "organization_id": "organization_id", "name": "name",
	"parent_id": "parent_id", "path": "path", "level": "level",
	"sort_order": "sort_order", "created_at": "created_at", "updated_at": "updated_at",
}

var projectColumns = map[string]string{
	"id": "id", "organization_id": "organization_id", "user_id": "user_id",
	"name": "name", "description": "description", "is_archived": "is_archived",
	"created_at": "created_at", "updated_at": "updated_at",
}

var moduleColumns = map[string]string{
	"id": "id", "organization_id": "organization_id", "project_id": "project_id",
	"name": "name", "description": "description", "sort_order": "sort_order",
	"created_at": "created_at", "updated_at": "updated_at",
}

var entityColumns = map[string]string{
	"id": "id", "organization_id": "organization_id", "project_id": "project_id",
	"module_id": "module_id", "name": "name",
	"created_at": "created_at", "updated_at": "updated_at",
}

var taskColumns = map[string]string{
	"id": "id", "organization_id": "organization_id", "project_id": "project_id",
	"assignee_id": "assignee_id", "title": "title", "status": "status",
	"due_at": "due_at", "created_at": "created_at", "updated_at": "updated_at",
}

// OrganizationRepository persists the Organization kind. It is registered
// without the isolation layer: the organization row is the tenant itself.
type OrganizationRepository struct {
	table[Organization, *Organization]
}

func NewOrganizationRepository(db bun.IDB, log *slog.Logger) *OrganizationRepository {
	return &OrganizationRepository{table: newTable[Organization, *Organization](db, log, KindOrganization, organizationColumns)}
}

func (r *OrganizationRepository) Create(ctx context.Context, in Input) (Object, error) {
	input, ok := in.(CreateOrganizationInput)
	if !ok {
		return nil, wrongInput(KindOrganization)
	}
	ts := now()
	rec := &Organization{
		ID:          uuid.New(),
		Name:        input.Name,
		OwnerUserID: input.OwnerUserID,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
	return r.insert(ctx, rec)
}

func (r *OrganizationRepository) CreateBatch(ctx context.Context, ins []Input) ([]Object, error) {
	recs := make([]Organization, 0, len(ins))
	ts := now()
	for _, in := range ins {
		input, ok := in.(CreateOrganizationInput)
		if !ok {
			return nil, wrongInput(KindOrganization)
		}
		recs = append(recs, Organization{
			ID:          uuid.New(),
			Name:        input.Name,
			OwnerUserID: input.OwnerUserID,
			CreatedAt:   ts,
			UpdatedAt:   ts,
		})
	}
	return r.insertAll(ctx, recs)
}

func (r *OrganizationRepository) Update(ctx context.Context, id uuid.UUID, p Patch) (Object, error) {
	patch, ok := p.(OrganizationPatch)
	if !ok {
		return nil, wrongPatch(KindOrganization)
	}
	obj, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, apperror.NewNotFound(string(KindOrganization), id.String())
	}
	rec := obj.(*Organization)
	var columns []string
	if patch.Name != nil {
		rec.Name = *patch.Name
		columns = append(columns, "name")
	}
	rec.UpdatedAt = now()
	return r.update(ctx, rec, columns)
}

// MemberRepository persists the Member kind.
type MemberRepository struct {
	table[Member, *Member]
}

func NewMemberRepository(db bun.IDB, log *slog.Logger) *MemberRepository {
	return &MemberRepository{table: newTable[Member, *Member](db, log, KindMember, memberColumns)}
}

func (r *MemberRepository) Create(ctx context.Context, in Input) (Object, error) {
	input, ok := in.(CreateMemberInput)
	if !ok {
		return nil, wrongInput(KindMember)
	}
	rec := newMember(input)
	return r.insert(ctx, rec)
}

func (r *MemberRepository) CreateBatch(ctx context.Context, ins []Input) ([]Object, error) {
	recs := make([]Member, 0, len(ins))
	for _, in := range ins {
		input, ok := in.(CreateMemberInput)
		if !ok {
			return nil, wrongInput(KindMember)
		}
		recs = append(recs, *newMember(input))
	}
	return r.insertAll(ctx, recs)
}

func newMember(input CreateMemberInput) *Member {
	ts := now()
	role := input.Role
	if role == "" {
		role = "member"
	}
	status := input.Status
	if status == "" {
		status = MemberStatusActive
	}
	return &Member{
		ID:             uuid.New(),
		OrganizationID: input.OrganizationID,
		UserID:         input.UserID,
		Email:          input.Email,
		Role:           role,
		Status:         status,
		DepartmentID:   input.DepartmentID,
		CreatedAt:      ts,
		UpdatedAt:      ts,
	}
}

func (r *MemberRepository) Update(ctx context.Context, id uuid.UUID, p Patch) (Object, error) {
	patch, ok := p.(MemberPatch)
	if !ok {
		return nil, wrongPatch(KindMember)
	}
	obj, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, apperror.NewNotFound(string(KindMember), id.String())
	}
	rec := obj.(*Member)
	var columns []string
	if patch.Role != nil {
		rec.Role = *patch.Role
		columns = append(columns, "role")
	}
	if patch.Status != nil {
		rec.Status = *patch.Status
		columns = append(columns, "status")
	}
	if patch.DepartmentID != nil {
		rec.DepartmentID = patch.DepartmentID
		columns = append(columns, "department_id")
	}
	if patch.Email != nil {
		rec.Email = *patch.Email
		columns = append(columns, "email")
	}
	rec.UpdatedAt = now()
	return r.update(ctx, rec, columns)
}

// FindByOrgUser returns the member row for (organization, user), or nil when
// absent.
func (r *MemberRepository) FindByOrgUser(ctx context.Context, orgID, userID uuid.UUID) (*Member, error) {
	rec := new(Member)
	err := r.db.NewSelect().
		Model(rec).
		Where("organization_id = ?", orgID).
		Where("user_id = ?", userID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperror.ErrDatabase.WithInternal(err)
	}
	return rec, nil
}

// FindActiveByUser returns the user's active memberships across all
// organizations. Used at the request boundary, before any tenant context
// exists.
func (r *MemberRepository) FindActiveByUser(ctx context.Context, userID uuid.UUID) ([]*Member, error) {
	var recs []*Member
	err := r.db.NewSelect().
		Model(&recs).
		Where("user_id = ?", userID).
		Where("status = ?", MemberStatusActive).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, apperror.ErrDatabase.WithInternal(err)
	}
	return recs, nil
}

// DepartmentRepository persists the Department kind.
type DepartmentRepository struct {
	table[Department, *Department]
}

func NewDepartmentRepository(db bun.IDB, log *slog.Logger) *DepartmentRepository {
	return &DepartmentRepository{table: newTable[Department, *Department](db, log, KindDepartment, departmentColumns)}
}

func (r *DepartmentRepository) Create(ctx context.Context, in Input) (Object, error) {
	input, ok := in.(CreateDepartmentInput)
	if !ok {
		return nil, wrongInput(KindDepartment)
	}
	rec := newDepartment(input)
	return r.insert(ctx, rec)
}

func (r *DepartmentRepository) CreateBatch(ctx context.Context, ins []Input) ([]Object, error) {
	recs := make([]Department, 0, len(ins))
	for _, in := range ins {
		input, ok := in.(CreateDepartmentInput)
		if !ok {
			return nil, wrongInput(KindDepartment)
		}
		recs = append(recs, *newDepartment(input))
	}
	return r.insertAll(ctx, recs)
}

func newDepartment(input CreateDepartmentInput) *Department {
	ts := now()
	id := uuid.New()
	if input.ID != nil {
		id = *input.ID
	}
	return &Department{
		ID:             id,
		OrganizationID: input.OrganizationID,
		Name:           input.Name,
		ParentID:       input.ParentID,
		Path:           input.Path,
		Level:          input.Level,
		SortOrder:      input.SortOrder,
		CreatedAt:      ts,
		UpdatedAt:      ts,
	}
}

func (r *DepartmentRepository) Update(ctx context.Context, id uuid.UUID, p Patch) (Object, error) {
	patch, ok := p.(DepartmentPatch)
	if !ok {
		return nil, wrongPatch(KindDepartment)
	}
	obj, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, apperror.NewNotFound(string(KindDepartment), id.String())
	}
	rec := obj.(*Department)
	var columns []string
	if patch.Name != nil {
		rec.Name = *patch.Name
		columns = append(columns, "name")
	}
	if patch.ClearParent {
		rec.ParentID = nil
		columns = append(columns, "parent_id")
	} else if patch.ParentID != nil {
		rec.ParentID = patch.ParentID
		columns = append(columns, "parent_id")
	}
	if patch.Path != nil {
		rec.Path = *patch.Path
		columns = append(columns, "path")
	}
	if patch.Level != nil {
		rec.Level = *patch.Level
		columns = append(columns, "level")
	}
	if patch.SortOrder != nil {
		rec.SortOrder = *patch.SortOrder
		columns = append(columns, "sort_order")
	}
	rec.UpdatedAt = now()
	return r.update(ctx, rec, columns)
}

// ProjectRepository persists the Project kind.
type ProjectRepository struct {
	table[Project, *Project]
}

func NewProjectRepository(db bun.IDB, log *slog.Logger) *ProjectRepository {
	return &ProjectRepository{table: newTable[Project, *Project](db, log, KindProject, projectColumns)}
}

func (r *ProjectRepository) Create(ctx context.Context, in Input) (Object, error) {
	input, ok := in.(CreateProjectInput)
	if !ok {
		return nil, wrongInput(KindProject)
	}
	rec := newProject(input)
	return r.insert(ctx, rec)
}

func (r *ProjectRepository) CreateBatch(ctx context.Context, ins []Input) ([]Object, error) {
	recs := make([]Project, 0, len(ins))
	for _, in := range ins {
		input, ok := in.(CreateProjectInput)
		if !ok {
			return nil, wrongInput(KindProject)
		}
		recs = append(recs, *newProject(input))
	}
	return r.insertAll(ctx, recs)
}

func newProject(input CreateProjectInput) *Project {
	ts := now()
	return &Project{
		ID:             uuid.New(),
		OrganizationID: input.OrganizationID,
		UserID:         input.UserID,
		Name:           input.Name,
		Description:    input.Description,
		CreatedAt:      ts,
		UpdatedAt:      ts,
	}
}

func (r *ProjectRepository) Update(ctx context.Context, id uuid.UUID, p Patch) (Object, error) {
	patch, ok := p.(ProjectPatch)
	if !ok {
		return nil, wrongPatch(KindProject)
	}
	obj, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, apperror.NewNotFound(string(KindProject), id.String())
	}
	rec := obj.(*Project)
	var columns []string
	if patch.Name != nil {
		rec.Name = *patch.Name
		columns = append(columns, "name")
	}
	if patch.Description != nil {
		rec.Description = *patch.Description
		columns = append(columns, "description")
	}
	if patch.IsArchived != nil {
		rec.IsArchived = *patch.IsArchived
		columns = append(columns, "is_archived")
	}
	rec.UpdatedAt = now()
	return r.update(ctx, rec, columns)
}

// ModuleRepository persists the Module kind.
type ModuleRepository struct {
	table[Module, *Module]
}

func NewModuleRepository(db bun.IDB, log *slog.Logger) *ModuleRepository {
	return &ModuleRepository{table: newTable[Module, *Module](db, log, KindModule, moduleColumns)}
}

func (r *ModuleRepository) Create(ctx context.Context, in Input) (Object, error) {
	input, ok := in.(CreateModuleInput)
	if !ok {
		return nil, wrongInput(KindModule)
	}
	rec := newModule(input)
	return r.insert(ctx, rec)
}

func (r *ModuleRepository) CreateBatch(ctx context.Context, ins []Input) ([]Object, error) {
	recs := make([]Module, 0, len(ins))
	for _, in := range ins {
		input, ok := in.(CreateModuleInput)
		if !ok {
			return nil, wrongInput(KindModule)
		}
		recs = append(recs, *newModule(input))
	}
	return r.insertAll(ctx, recs)
}

func newModule(input CreateModuleInput) *Module {
	ts := now()
	return &Module{
		ID:             uuid.New(),
		OrganizationID: input.OrganizationID,
		ProjectID:      input.ProjectID,
		Name:           input.Name,
		Description:    input.Description,
		SortOrder:      input.SortOrder,
		CreatedAt:      ts,
		UpdatedAt:      ts,
	}
}

func (r *ModuleRepository) Update(ctx context.Context, id uuid.UUID, p Patch) (Object, error) {
	patch, ok := p.(ModulePatch)
	if !ok {
		return nil, wrongPatch(KindModule)
	}
	obj, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, apperror.NewNotFound(string(KindModule), id.String())
	}
	rec := obj.(*Module)
	var columns []string
	if patch.Name != nil {
		rec.Name = *patch.Name
		columns = append(columns, "name")
	}
	if patch.Description != nil {
		rec.Description = *patch.Description
		columns = append(columns, "description")
	}
	if patch.SortOrder != nil {
		rec.SortOrder = *patch.SortOrder
		columns = append(columns, "sort_order")
	}
	rec.UpdatedAt = now()
	return r.update(ctx, rec, columns)
}

// EntityRepository persists the Entity kind.
type EntityRepository struct {
	table[Entity, *Entity]
}

func NewEntityRepository(db bun.IDB, log *slog.Logger) *EntityRepository {
	return &EntityRepository{table: newTable[Entity, *Entity](db, log, KindEntity, entityColumns)}
}

func (r *EntityRepository) Create(ctx context.Context, in Input) (Object, error) {
	input, ok := in.(CreateEntityInput)
	if !ok {
		return nil, wrongInput(KindEntity)
	}
	rec := newEntity(input)
	return r.insert(ctx, rec)
}

func (r *EntityRepository) CreateBatch(ctx context.Context, ins []Input) ([]Object, error) {
	recs := make([]Entity, 0, len(ins))
	for _, in := range ins {
		input, ok := in.(CreateEntityInput)
		if !ok {
			return nil, wrongInput(KindEntity)
		}
		recs = append(recs, *newEntity(input))
	}
	return r.insertAll(ctx, recs)
}

func newEntity(input CreateEntityInput) *Entity {
	ts := now()
	fields := input.Fields
	if fields == nil {
		fields = map[string]any{}
	}
	return &Entity{
		ID:             uuid.New(),
		OrganizationID: input.OrganizationID,
		ProjectID:      input.ProjectID,
		ModuleID:       input.ModuleID,
		Name:           input.Name,
		Fields:         fields,
		CreatedAt:      ts,
		UpdatedAt:      ts,
	}
}

func (r *EntityRepository) Update(ctx context.Context, id uuid.UUID, p Patch) (Object, error) {
	patch, ok := p.(EntityPatch)
	if !ok {
		return nil, wrongPatch(KindEntity)
	}
	obj, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, apperror.NewNotFound(string(KindEntity), id.String())
	}
	rec := obj.(*Entity)
	var columns []string
	if patch.Name != nil {
		rec.Name = *patch.Name
		columns = append(columns, "name")
	}
	if patch.ModuleID != nil {
		rec.ModuleID = patch.ModuleID
		columns = append(columns, "module_id")
	}
	if patch.Fields != nil {
		rec.Fields = *patch.Fields
		columns = append(columns, "fields")
	}
	rec.UpdatedAt = now()
	return r.update(ctx, rec, columns)
}

// TaskRepository persists the Task kind.
type TaskRepository struct {
	table[Task, *Task]
}

func NewTaskRepository(db bun.IDB, log *slog.Logger) *TaskRepository {
	return &TaskRepository{table: newTable[Task, *Task](db, log, KindTask, taskColumns)}
}

func (r *TaskRepository) Create(ctx context.Context, in Input) (Object, error) {
	input, ok := in.(CreateTaskInput)
	if !ok {
		return nil, wrongInput(KindTask)
	}
	rec := newTask(input)
	return r.insert(ctx, rec)
}

func (r *TaskRepository) CreateBatch(ctx context.Context, ins []Input) ([]Object, error) {
	recs := make([]Task, 0, len(ins))
	for _, in := range ins {
		input, ok := in.(CreateTaskInput)
		if !ok {
			return nil, wrongInput(KindTask)
		}
		recs = append(recs, *newTask(input))
	}
	return r.insertAll(ctx, recs)
}

func newTask(input CreateTaskInput) *Task {
	ts := now()
	status := input.Status
	if status == "" {
		status = TaskStatusOpen
	}
	return &Task{
		ID:             uuid.New(),
		OrganizationID: input.OrganizationID,
		ProjectID:      input.ProjectID,
		AssigneeID:     input.AssigneeID,
		Title:          input.Title,
		Status:         status,
		DueAt:          input.DueAt,
		CreatedAt:      ts,
		UpdatedAt:      ts,
	}
}

func (r *TaskRepository) Update(ctx context.Context, id uuid.UUID, p Patch) (Object, error) {
	patch, ok := p.(TaskPatch)
	if !ok {
		return nil, wrongPatch(KindTask)
	}
	obj, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, apperror.NewNotFound(string(KindTask), id.String())
	}
	rec := obj.(*Task)
	var columns []string
	if patch.Title != nil {
		rec.Title = *patch.Title
		columns = append(columns, "title")
	}
	if patch.Status != nil {
		rec.Status = *patch.Status
		columns = append(columns, "status")
	}
	if patch.ProjectID != nil {
		rec.ProjectID = patch.ProjectID
		columns = append(columns, "project_id")
	}
	if patch.AssigneeID != nil {
		rec.AssigneeID = patch.AssigneeID
		columns = append(columns, "assignee_id")
	}
	if patch.DueAt != nil {
		rec.DueAt = patch.DueAt
		columns = append(columns, "due_at")
	}
	rec.UpdatedAt = now()
	return r.update(ctx, rec, columns)
}
