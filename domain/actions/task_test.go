package actions_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ontoforge/ontology-core/domain/actions"
	"github.com/ontoforge/ontology-core/domain/ontology"
	"github.com/ontoforge/ontology-core/domain/tenant"
)

func TestCreateTaskDefaultsToOpen(t *testing.T) {
	e := newEnv()
	ctx := e.ctx(uuid.New(), tenant.RoleMember)

	out := run(t, ctx, &actions.CreateTask{Store: e.store, Title: "write docs"})
	task := out.(*ontology.Task)
	assert.Equal(t, ontology.TaskStatusOpen, task.Status)
	assert.Nil(t, task.ProjectID)
}

func TestCreateTaskValidatesProjectAndAssignee(t *testing.T) {
	e := newEnv()
	ctx := e.ctx(uuid.New(), tenant.RoleMember)

	missing := uuid.New()
	err := (&actions.CreateTask{Store: e.store, Title: "write docs", ProjectID: &missing}).Validate(ctx)
	require.Error(t, err)

	err = (&actions.CreateTask{Store: e.store, Title: "write docs", AssigneeID: &missing}).Validate(ctx)
	require.Error(t, err)
}

func TestUpdateTaskCompletion(t *testing.T) {
	e := newEnv()
	ctx := e.ctx(uuid.New(), tenant.RoleMember)

	task := run(t, ctx, &actions.CreateTask{Store: e.store, Title: "write docs"}).(*ontology.Task)

	done := ontology.TaskStatusDone
	out := run(t, ctx, &actions.UpdateTask{Store: e.store, TaskID: task.ID, Status: &done})
	assert.Equal(t, ontology.TaskStatusDone, out.(*ontology.Task).Status)

	bogus := "paused"
	err := (&actions.UpdateTask{Store: e.store, TaskID: task.ID, Status: &bogus}).Validate(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown task status")
}
