package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/task-manager-api/internal/domain"
)

// TaskStore defines the interface for task persistence. Every read and write
// is scoped by owner: a task that exists but belongs to someone else is
// reported as ErrTaskNotFound.
type TaskStore interface {
	// Create saves a new task.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves the task with id owned by ownerID.
	GetByID(ctx context.Context, ownerID, id uuid.UUID) (*domain.Task, error)

	// List returns the owner's tasks filtered, sorted and paged by q.
	List(ctx context.Context, ownerID uuid.UUID, q domain.TaskQuery) ([]*domain.Task, error)

	// Update persists description, completed and updated_at of an owned task.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes the owned task and returns it as it was.
	Delete(ctx context.Context, ownerID, id uuid.UUID) (*domain.Task, error)

	// DeleteByOwner removes every task of ownerID and reports how many went.
	DeleteByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error)

	// WithTx returns a new TaskStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) TaskStore
}
