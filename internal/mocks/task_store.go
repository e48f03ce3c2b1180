package mocks

import (
	"cmp"
	"context"
	"database/sql"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/task-manager-api/internal/domain"
	"github.com/phrazzld/task-manager-api/internal/store"
)

// MockTaskStore implements store.TaskStore in memory, including owner
// scoping, filtering, sorting and paging.
type MockTaskStore struct {
	CreateFn        func(ctx context.Context, task *domain.Task) error
	ListFn          func(ctx context.Context, ownerID uuid.UUID, q domain.TaskQuery) ([]*domain.Task, error)
	UpdateFn        func(ctx context.Context, task *domain.Task) error
	DeleteByOwnerFn func(ctx context.Context, ownerID uuid.UUID) (int64, error)

	// LastQuery records the query passed to the most recent List call.
	LastQuery domain.TaskQuery

	mu    sync.Mutex
	tasks []*domain.Task
}

var _ store.TaskStore = (*MockTaskStore)(nil)

// NewMockTaskStore creates an empty store.
func NewMockTaskStore() *MockTaskStore {
	return &MockTaskStore{}
}

// Count returns the number of stored tasks across all owners.
func (m *MockTaskStore) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}

func cloneTask(t *domain.Task) *domain.Task {
	c := *t
	return &c
}

func (m *MockTaskStore) find(ownerID, id uuid.UUID) int {
	return slices.IndexFunc(m.tasks, func(t *domain.Task) bool {
		return t.ID == id && t.OwnerID == ownerID
	})
}

// Create implements the TaskStore interface
func (m *MockTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, task)
	}
	if err := task.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks = append(m.tasks, cloneTask(task))
	return nil
}

// GetByID implements the TaskStore interface
func (m *MockTaskStore) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := m.find(ownerID, id); i >= 0 {
		return cloneTask(m.tasks[i]), nil
	}
	return nil, store.ErrTaskNotFound
}

// List implements the TaskStore interface
func (m *MockTaskStore) List(ctx context.Context, ownerID uuid.UUID, q domain.TaskQuery) ([]*domain.Task, error) {
	m.mu.Lock()
	m.LastQuery = q
	m.mu.Unlock()

	if m.ListFn != nil {
		return m.ListFn(ctx, ownerID, q)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*domain.Task, 0)
	for _, t := range m.tasks {
		if t.OwnerID != ownerID {
			continue
		}
		if q.Completed != nil && t.Completed != *q.Completed {
			continue
		}
		out = append(out, cloneTask(t))
	}

	field, desc := domain.SortByCreatedAt, false
	if q.Sort != nil {
		field, desc = q.Sort.Field, q.Sort.Descending
	}
	slices.SortStableFunc(out, func(a, b *domain.Task) int {
		c := compareTasks(field, a, b)
		if desc {
			c = -c
		}
		if c == 0 {
			c = strings.Compare(a.ID.String(), b.ID.String())
		}
		return c
	})

	if q.Skip > 0 {
		out = out[min(q.Skip, len(out)):]
	}
	if q.Limit > 0 && q.Limit < len(out) {
		out = out[:q.Limit]
	}
	return out, nil
}

func compareTasks(field domain.TaskSortField, a, b *domain.Task) int {
	switch field {
	case domain.SortByUpdatedAt:
		return a.UpdatedAt.Compare(b.UpdatedAt)
	case domain.SortByDescription:
		return cmp.Compare(a.Description, b.Description)
	case domain.SortByCompleted:
		return cmp.Compare(boolRank(a.Completed), boolRank(b.Completed))
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Update implements the TaskStore interface
func (m *MockTaskStore) Update(ctx context.Context, task *domain.Task) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, task)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.find(task.OwnerID, task.ID)
	if i < 0 {
		return store.ErrTaskNotFound
	}
	m.tasks[i] = cloneTask(task)
	return nil
}

// Delete implements the TaskStore interface
func (m *MockTaskStore) Delete(ctx context.Context, ownerID, id uuid.UUID) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.find(ownerID, id)
	if i < 0 {
		return nil, store.ErrTaskNotFound
	}
	removed := m.tasks[i]
	m.tasks = slices.Delete(m.tasks, i, i+1)
	return removed, nil
}

// DeleteByOwner implements the TaskStore interface
func (m *MockTaskStore) DeleteByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	if m.DeleteByOwnerFn != nil {
		return m.DeleteByOwnerFn(ctx, ownerID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	before := len(m.tasks)
	m.tasks = slices.DeleteFunc(m.tasks, func(t *domain.Task) bool { return t.OwnerID == ownerID })
	return int64(before - len(m.tasks)), nil
}

// WithTx implements the TaskStore interface. The mock has no transactions.
func (m *MockTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return m
}
