package service_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/task-manager-api/internal/domain"
	"github.com/phrazzld/task-manager-api/internal/mocks"
	"github.com/phrazzld/task-manager-api/internal/service"
	"github.com/phrazzld/task-manager-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 8))))
	return buf.Bytes()
}

func newTaskService(t *testing.T) (service.TaskService, *mocks.MockTaskStore, *mocks.MockTransactor) {
	t.Helper()
	tasks := mocks.NewMockTaskStore()
	tx := &mocks.MockTransactor{}
	svc, err := service.NewTaskService(tasks, tx, quietLogger())
	require.NoError(t, err)
	return svc, tasks, tx
}

func boolPtr(b bool) *bool    { return &b }
func strPtr(s string) *string { return &s }

func TestNewTaskServiceRequiresDependencies(t *testing.T) {
	_, err := service.NewTaskService(nil, &mocks.MockTransactor{}, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestTaskCreate(t *testing.T) {
	svc, _, _ := newTaskService(t)
	owner := uuid.New()

	task, err := svc.Create(context.Background(), owner, "  buy milk ", false)
	require.NoError(t, err)
	assert.Equal(t, owner, task.OwnerID)
	assert.Equal(t, "buy milk", task.Description)
	assert.False(t, task.Completed)

	_, err = svc.Create(context.Background(), owner, "   ", false)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestTaskCreateStoreFailure(t *testing.T) {
	svc, tasks, _ := newTaskService(t)
	tasks.CreateFn = func(ctx context.Context, task *domain.Task) error {
		return errors.New("connection reset")
	}

	_, err := svc.Create(context.Background(), uuid.New(), "buy milk", false)
	var svcErr *service.ServiceError
	assert.ErrorAs(t, err, &svcErr)
}

func TestTaskOwnershipIsNotFound(t *testing.T) {
	svc, _, _ := newTaskService(t)
	ctx := context.Background()
	owner, intruder := uuid.New(), uuid.New()

	task, err := svc.Create(ctx, owner, "buy milk", false)
	require.NoError(t, err)

	_, err = svc.Get(ctx, intruder, task.ID)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)

	_, err = svc.Get(ctx, owner, uuid.New())
	assert.ErrorIs(t, err, store.ErrTaskNotFound)

	_, err = svc.Update(ctx, intruder, task.ID, domain.TaskPatch{Completed: boolPtr(true)})
	assert.ErrorIs(t, err, store.ErrTaskNotFound)

	_, err = svc.Delete(ctx, intruder, task.ID)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)

	got, err := svc.Get(ctx, owner, task.ID)
	require.NoError(t, err)
	assert.False(t, got.Completed, "intruder's update must not have touched the task")
}

func TestTaskUpdate(t *testing.T) {
	svc, tasks, tx := newTaskService(t)
	ctx := context.Background()
	owner := uuid.New()
	task, err := svc.Create(ctx, owner, "buy milk", false)
	require.NoError(t, err)

	updated, err := svc.Update(ctx, owner, task.ID, domain.TaskPatch{Completed: boolPtr(true)})
	require.NoError(t, err)
	assert.True(t, updated.Completed)
	assert.Equal(t, "buy milk", updated.Description)
	assert.Equal(t, 1, tx.Calls)

	_, err = svc.Update(ctx, owner, task.ID, domain.TaskPatch{Description: strPtr(" ")})
	assert.ErrorIs(t, err, domain.ErrValidation)

	stored, err := tasks.GetByID(ctx, owner, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "buy milk", stored.Description)
	assert.True(t, stored.Completed)
}

func TestTaskDelete(t *testing.T) {
	svc, tasks, _ := newTaskService(t)
	ctx := context.Background()
	owner := uuid.New()
	task, err := svc.Create(ctx, owner, "buy milk", false)
	require.NoError(t, err)

	deleted, err := svc.Delete(ctx, owner, task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.ID, deleted.ID)
	assert.Zero(t, tasks.Count())
}

func TestTaskList(t *testing.T) {
	svc, tasks, _ := newTaskService(t)
	ctx := context.Background()
	owner, other := uuid.New(), uuid.New()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, d := range []struct {
		desc string
		done bool
	}{{"c", true}, {"a", false}, {"b", true}} {
		task, err := domain.NewTask(owner, d.desc, d.done)
		require.NoError(t, err)
		task.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, tasks.Create(ctx, task))
	}
	foreign, err := domain.NewTask(other, "foreign", true)
	require.NoError(t, err)
	require.NoError(t, tasks.Create(ctx, foreign))

	descriptions := func(ts []*domain.Task) []string {
		out := make([]string, len(ts))
		for i, task := range ts {
			out[i] = task.Description
		}
		return out
	}

	all, err := svc.List(ctx, owner, domain.TaskQuery{})
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a", "b"}, descriptions(all))

	done, err := svc.List(ctx, owner, domain.TaskQuery{Completed: boolPtr(true)})
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b"}, descriptions(done))

	newest, err := svc.List(ctx, owner, domain.TaskQuery{Sort: domain.ParseTaskSort("createdAt:desc"), Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, descriptions(newest))

	paged, err := svc.List(ctx, owner, domain.TaskQuery{Sort: domain.ParseTaskSort("description"), Skip: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, descriptions(paged))

	_, err = svc.List(ctx, owner, domain.TaskQuery{Limit: -5, Skip: -1})
	require.NoError(t, err)
	assert.Equal(t, domain.TaskQuery{}, tasks.LastQuery, "negative paging is clamped to zero")
}
