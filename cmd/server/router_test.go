package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/task-manager-api/internal/api/middleware"
	"github.com/phrazzld/task-manager-api/internal/config"
	"github.com/phrazzld/task-manager-api/internal/mocks"
	"github.com/phrazzld/task-manager-api/internal/service"
	"github.com/phrazzld/task-manager-api/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestApplication builds an application over in-memory stores.
func newTestApplication(t *testing.T) *application {
	t.Helper()

	cfg := testConfig()
	log := quietLogger()
	users := mocks.NewMockUserStore()
	tasks := mocks.NewMockTaskStore()
	tx := &mocks.MockTransactor{}

	tokens, err := auth.NewJWTService(config.AuthConfig{JWTSecret: cfg.Auth.JWTSecret})
	require.NoError(t, err)

	userSvc, err := service.NewUserService(users, tasks, tx, &mocks.MockPasswordHasher{}, tokens, &mocks.MockEventEmitter{}, log)
	require.NoError(t, err)
	taskSvc, err := service.NewTaskService(tasks, tx, log)
	require.NoError(t, err)

	return &application{
		config:      cfg,
		logger:      log,
		userService: userSvc,
		taskService: taskSvc,
	}
}

func call(t *testing.T, h http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestHealthCheck(t *testing.T) {
	router := newTestApplication(t).setupRouter()

	rr := call(t, router, http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "OK", rr.Body.String())
	assert.NotEmpty(t, rr.Header().Get(middleware.TraceHeader))
}

func TestUnknownRouteIsNotFound(t *testing.T) {
	router := newTestApplication(t).setupRouter()

	rr := call(t, router, http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAccountAndTaskLifecycle(t *testing.T) {
	router := newTestApplication(t).setupRouter()

	rr := call(t, router, http.MethodPost, "/users", "", map[string]interface{}{
		"name": "Ann", "email": "ann@x.com", "password": "mypass1",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var registered struct {
		User struct {
			ID    string `json:"id"`
			Email string `json:"email"`
		} `json:"user"`
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &registered))
	require.NotEmpty(t, registered.Token)
	token := registered.Token

	rr = call(t, router, http.MethodPost, "/users/login", "", map[string]string{
		"email": "ann@x.com", "password": "wrongpass",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"error":"Unable to login"}`, rr.Body.String())

	rr = call(t, router, http.MethodPost, "/tasks", token, map[string]interface{}{
		"description": "buy milk",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var task struct {
		ID        string `json:"id"`
		Owner     string `json:"owner"`
		Completed bool   `json:"completed"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &task))
	assert.Equal(t, registered.User.ID, task.Owner)
	assert.False(t, task.Completed)

	rr = call(t, router, http.MethodGet, "/tasks?completed=true", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())

	rr = call(t, router, http.MethodPatch, "/tasks/"+task.ID, token, map[string]bool{"completed": true})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &task))
	assert.True(t, task.Completed)

	rr = call(t, router, http.MethodDelete, "/users/me", token, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = call(t, router, http.MethodGet, "/tasks/"+task.ID, token, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.JSONEq(t, `{"error":"Please authenticate"}`, rr.Body.String())
}
