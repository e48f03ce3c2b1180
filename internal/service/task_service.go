package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/task-manager-api/internal/domain"
	"github.com/phrazzld/task-manager-api/internal/platform/logger"
	"github.com/phrazzld/task-manager-api/internal/redact"
	"github.com/phrazzld/task-manager-api/internal/store"
)

// TaskService provides owner-scoped task operations. A task owned by someone
// else behaves exactly like a missing one: store.ErrTaskNotFound.
type TaskService interface {
	// Create adds a task for ownerID.
	Create(ctx context.Context, ownerID uuid.UUID, description string, completed bool) (*domain.Task, error)

	// Get returns one of the owner's tasks.
	Get(ctx context.Context, ownerID, taskID uuid.UUID) (*domain.Task, error)

	// List returns the owner's tasks matching q.
	List(ctx context.Context, ownerID uuid.UUID, q domain.TaskQuery) ([]*domain.Task, error)

	// Update applies an allow-listed patch to one of the owner's tasks.
	Update(ctx context.Context, ownerID, taskID uuid.UUID, patch domain.TaskPatch) (*domain.Task, error)

	// Delete removes one of the owner's tasks and returns it.
	Delete(ctx context.Context, ownerID, taskID uuid.UUID) (*domain.Task, error)
}

// taskServiceImpl implements the TaskService interface
type taskServiceImpl struct {
	tasks  store.TaskStore
	tx     store.Transactor
	logger *slog.Logger
}

// NewTaskService creates a new TaskService.
func NewTaskService(tasks store.TaskStore, tx store.Transactor, logger *slog.Logger) (TaskService, error) {
	if tasks == nil {
		return nil, domain.NewValidationError("tasks", "cannot be nil", domain.ErrValidation)
	}
	if tx == nil {
		return nil, domain.NewValidationError("tx", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &taskServiceImpl{
		tasks:  tasks,
		tx:     tx,
		logger: logger.With(slog.String("component", "task_service")),
	}, nil
}

// Create implements TaskService.Create
func (s *taskServiceImpl) Create(
	ctx context.Context,
	ownerID uuid.UUID,
	description string,
	completed bool,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := domain.NewTask(ownerID, description, completed)
	if err != nil {
		return nil, err
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		log.Error("failed to create task", slog.String("error", redact.Error(err)))
		return nil, NewServiceError("task", "create", "failed to save task", err)
	}

	log.Debug("task created", slog.String("task_id", task.ID.String()))
	return task, nil
}

// Get implements TaskService.Get
func (s *taskServiceImpl) Get(ctx context.Context, ownerID, taskID uuid.UUID) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, ownerID, taskID)
	if err != nil {
		return nil, s.wrap("get", err)
	}
	return task, nil
}

// List implements TaskService.List
func (s *taskServiceImpl) List(
	ctx context.Context,
	ownerID uuid.UUID,
	q domain.TaskQuery,
) ([]*domain.Task, error) {
	if q.Limit < 0 {
		q.Limit = 0
	}
	if q.Skip < 0 {
		q.Skip = 0
	}

	tasks, err := s.tasks.List(ctx, ownerID, q)
	if err != nil {
		return nil, s.wrap("list", err)
	}
	return tasks, nil
}

// Update implements TaskService.Update
// The ownership lookup and the write run in one transaction so the patch is
// applied to the row that was checked.
func (s *taskServiceImpl) Update(
	ctx context.Context,
	ownerID, taskID uuid.UUID,
	patch domain.TaskPatch,
) (*domain.Task, error) {
	var updated *domain.Task
	err := s.tx.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.tasks.WithTx(tx)

		current, err := txTasks.GetByID(ctx, ownerID, taskID)
		if err != nil {
			return err
		}

		next, err := current.ApplyPatch(patch)
		if err != nil {
			return err
		}
		if err := txTasks.Update(ctx, next); err != nil {
			return err
		}
		updated = next
		return nil
	})
	if err != nil {
		return nil, s.wrap("update", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Debug("task updated",
		slog.String("task_id", taskID.String()))
	return updated, nil
}

// Delete implements TaskService.Delete
func (s *taskServiceImpl) Delete(ctx context.Context, ownerID, taskID uuid.UUID) (*domain.Task, error) {
	task, err := s.tasks.Delete(ctx, ownerID, taskID)
	if err != nil {
		return nil, s.wrap("delete", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Debug("task deleted",
		slog.String("task_id", taskID.String()))
	return task, nil
}

// wrap passes expected errors through and wraps everything else.
func (s *taskServiceImpl) wrap(operation string, err error) error {
	if errors.Is(err, store.ErrTaskNotFound) || domain.IsValidationError(err) {
		return err
	}
	s.logger.Error("task operation failed",
		slog.String("operation", operation),
		slog.String("error", redact.Error(err)))
	return NewServiceError("task", operation, "store failure", err)
}
