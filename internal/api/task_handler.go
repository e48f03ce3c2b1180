package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/task-manager-api/internal/api/shared"
	"github.com/phrazzld/task-manager-api/internal/domain"
	"github.com/phrazzld/task-manager-api/internal/service"
)

// Query parameters accepted by GET /tasks.
const (
	QueryCompleted = "completed"
	QuerySortBy    = "sortBy"
	QueryLimit     = "limit"
	QuerySkip      = "skip"
)

// TaskHandler handles CRUD on the session user's tasks.
type TaskHandler struct {
	tasks  service.TaskService
	logger *slog.Logger
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(tasks service.TaskService, logger *slog.Logger) *TaskHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskHandler{
		tasks:  tasks,
		logger: logger.With(slog.String("component", "task_handler")),
	}
}

// Create handles POST /tasks. Any owner in the body is ignored.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, _, ok := sessionFromRequest(w, r)
	if !ok {
		return
	}

	var req CreateTaskRequest
	if !parseAndValidateRequest(w, r, &req) {
		return
	}

	task, err := h.tasks.Create(r.Context(), user.ID, req.Description, req.Completed)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, task)
}

// List handles GET /tasks?completed=&sortBy=&limit=&skip=.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	user, _, ok := sessionFromRequest(w, r)
	if !ok {
		return
	}

	tasks, err := h.tasks.List(r.Context(), user.ID, parseTaskQuery(r))
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	if tasks == nil {
		tasks = []*domain.Task{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, tasks)
}

func parseTaskQuery(r *http.Request) domain.TaskQuery {
	q := r.URL.Query()
	return domain.TaskQuery{
		Completed: domain.ParseCompletedFilter(q.Get(QueryCompleted)),
		Sort:      domain.ParseTaskSort(q.Get(QuerySortBy)),
		Limit:     domain.ParsePageValue(q.Get(QueryLimit)),
		Skip:      domain.ParsePageValue(q.Get(QuerySkip)),
	}
}

// Get handles GET /tasks/{id}.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, _, ok := sessionFromRequest(w, r)
	if !ok {
		return
	}
	taskID, ok := taskIDFromPath(w, r)
	if !ok {
		return
	}

	task, err := h.tasks.Get(r.Context(), user.ID, taskID)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// Update handles PATCH /tasks/{id}. The body may only name description and
// completed.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, _, ok := sessionFromRequest(w, r)
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if !parseUpdateRequest(w, r, &req) {
		return
	}

	taskID, ok := taskIDFromPath(w, r)
	if !ok {
		return
	}

	task, err := h.tasks.Update(r.Context(), user.ID, taskID, req.Patch())
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// Delete handles DELETE /tasks/{id} and returns the removed task.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, _, ok := sessionFromRequest(w, r)
	if !ok {
		return
	}
	taskID, ok := taskIDFromPath(w, r)
	if !ok {
		return
	}

	task, err := h.tasks.Delete(r.Context(), user.ID, taskID)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, task)
}
