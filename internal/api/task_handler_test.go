package api

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/task-manager-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *testEnv) createTask(t *testing.T, token, description string, completed bool) domain.Task {
	t.Helper()
	rr := e.do(t, http.MethodPost, "/tasks", token, map[string]interface{}{
		"description": description, "completed": completed,
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decodeInto[domain.Task](t, rr)
}

func descriptions(tasks []domain.Task) []string {
	out := make([]string, len(tasks))
	for i, task := range tasks {
		out[i] = task.Description
	}
	return out
}

func TestCreateTaskForcesOwner(t *testing.T) {
	env := newTestEnv(t)
	ann := env.register(t, "Ann", "ann@x.com")
	bob := env.register(t, "Bob", "bob@x.com")

	rr := env.do(t, http.MethodPost, "/tasks", ann.Token, map[string]interface{}{
		"description": "buy milk", "owner": bob.User.ID.String(),
	})
	require.Equal(t, http.StatusCreated, rr.Code)
	task := decodeInto[domain.Task](t, rr)
	assert.Equal(t, ann.User.ID, task.OwnerID)
	assert.Equal(t, "buy milk", task.Description)
	assert.False(t, task.Completed)
}

func TestCreateTaskValidation(t *testing.T) {
	env := newTestEnv(t)
	ann := env.register(t, "Ann", "ann@x.com")

	for _, body := range []map[string]interface{}{
		{},
		{"description": "   "},
	} {
		rr := env.do(t, http.MethodPost, "/tasks", ann.Token, body)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.JSONEq(t, `{"error":"description: is required"}`, rr.Body.String())
	}

	rr := env.do(t, http.MethodPost, "/tasks", ann.Token, map[string]interface{}{"description": "x", "completed": "yes"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"error":"completed: has the wrong type"}`, rr.Body.String())
	assert.Zero(t, env.tasks.Count())
}

func TestListTasks(t *testing.T) {
	env := newTestEnv(t)
	ann := env.register(t, "Ann", "ann@x.com")
	bob := env.register(t, "Bob", "bob@x.com")

	env.createTask(t, ann.Token, "c", true)
	env.createTask(t, ann.Token, "a", false)
	env.createTask(t, ann.Token, "b", true)
	env.createTask(t, bob.Token, "foreign", true)

	tests := []struct {
		name     string
		query    string
		expected []string
	}{
		{"all", "", []string{"c", "a", "b"}},
		{"completed", "?completed=true", []string{"c", "b"}},
		{"open", "?completed=false", []string{"a"}},
		{"sorted", "?sortBy=description:asc", []string{"a", "b", "c"}},
		{"sorted desc with limit", "?sortBy=description:desc&limit=2", []string{"c", "b"}},
		{"skip", "?sortBy=description&skip=1", []string{"b", "c"}},
		{"garbage paging", "?limit=abc&skip=-4", []string{"c", "a", "b"}},
		{"unknown sort falls back", "?sortBy=owner:desc", []string{"c", "a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do(t, http.MethodGet, "/tasks"+tt.query, ann.Token, nil)
			require.Equal(t, http.StatusOK, rr.Code)
			assert.Equal(t, tt.expected, descriptions(decodeInto[[]domain.Task](t, rr)))
		})
	}
}

func TestListTasksEmptyIsArray(t *testing.T) {
	env := newTestEnv(t)
	ann := env.register(t, "Ann", "ann@x.com")

	rr := env.do(t, http.MethodGet, "/tasks?completed=true", ann.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestListTasksStoreFailure(t *testing.T) {
	env := newTestEnv(t)
	ann := env.register(t, "Ann", "ann@x.com")
	env.tasks.ListFn = func(ctx context.Context, ownerID uuid.UUID, q domain.TaskQuery) ([]*domain.Task, error) {
		return nil, errors.New("statement timeout")
	}

	rr := env.do(t, http.MethodGet, "/tasks", ann.Token, nil)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Empty(t, rr.Body.String())
}

func TestTaskOwnershipIsNotFound(t *testing.T) {
	env := newTestEnv(t)
	ann := env.register(t, "Ann", "ann@x.com")
	bob := env.register(t, "Bob", "bob@x.com")
	task := env.createTask(t, ann.Token, "buy milk", false)
	path := "/tasks/" + task.ID.String()

	for _, c := range []struct {
		method string
		body   interface{}
	}{
		{http.MethodGet, nil},
		{http.MethodPatch, map[string]bool{"completed": true}},
		{http.MethodDelete, nil},
	} {
		res := env.do(t, c.method, path, bob.Token, c.body)
		assert.Equal(t, http.StatusNotFound, res.Code, c.method)
		assert.Empty(t, res.Body.String())
	}

	for _, missing := range []string{uuid.NewString(), "not-a-uuid"} {
		res := env.do(t, http.MethodGet, "/tasks/"+missing, ann.Token, nil)
		assert.Equal(t, http.StatusNotFound, res.Code)
	}

	got := decodeInto[domain.Task](t, env.do(t, http.MethodGet, path, ann.Token, nil))
	assert.False(t, got.Completed)
}

func TestUpdateTask(t *testing.T) {
	env := newTestEnv(t)
	ann := env.register(t, "Ann", "ann@x.com")
	task := env.createTask(t, ann.Token, "buy milk", false)
	path := "/tasks/" + task.ID.String()

	rr := env.do(t, http.MethodPatch, path, ann.Token, map[string]bool{"completed": true})
	require.Equal(t, http.StatusOK, rr.Code)
	updated := decodeInto[domain.Task](t, rr)
	assert.True(t, updated.Completed)
	assert.Equal(t, "buy milk", updated.Description)

	tests := []struct {
		name         string
		body         interface{}
		expectedBody string
	}{
		{"disallowed owner", map[string]interface{}{"owner": uuid.NewString()}, `{"error":"invalid updates"}`},
		{"disallowed mixed", map[string]interface{}{"completed": false, "_id": "x"}, `{"error":"invalid updates"}`},
		{"blank description", map[string]interface{}{"description": " "}, `{"error":"description: is required"}`},
		{"case variant keys", `{"Completed": false, "DESCRIPTION": "hacked"}`, `{"error":"invalid updates"}`},
		{"trailing document", `{"completed": false} {"owner": "x"}`, `{"error":"body: is not valid JSON"}`},
		{"null description", `{"description": null}`, `{"error":"description: is required"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do(t, http.MethodPatch, path, ann.Token, tt.body)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.JSONEq(t, tt.expectedBody, rr.Body.String())
		})
	}

	// A disallowed field is rejected before the task is looked up.
	rr = env.do(t, http.MethodPatch, "/tasks/"+uuid.NewString(), ann.Token, map[string]string{"owner": "x"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	current := decodeInto[domain.Task](t, env.do(t, http.MethodGet, path, ann.Token, nil))
	assert.True(t, current.Completed)
	assert.Equal(t, "buy milk", current.Description)
	assert.Equal(t, ann.User.ID, current.OwnerID)
}

func TestDeleteTask(t *testing.T) {
	env := newTestEnv(t)
	ann := env.register(t, "Ann", "ann@x.com")
	task := env.createTask(t, ann.Token, "buy milk", false)
	path := "/tasks/" + task.ID.String()

	rr := env.do(t, http.MethodDelete, path, ann.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, task.ID, decodeInto[domain.Task](t, rr).ID)

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodDelete, path, ann.Token, nil).Code)
	assert.Zero(t, env.tasks.Count())
}
