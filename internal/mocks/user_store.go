package mocks

import (
	"context"
	"database/sql"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/task-manager-api/internal/domain"
	"github.com/phrazzld/task-manager-api/internal/store"
)

// MockUserStore implements store.UserStore for testing. Without function
// overrides it behaves like a small in-memory database.
type MockUserStore struct {
	// Function fields for customizable behavior
	CreateFn          func(ctx context.Context, user *domain.User) error
	GetByEmailFn      func(ctx context.Context, email string) (*domain.User, error)
	GetByIDFn         func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByIDAndTokenFn func(ctx context.Context, id uuid.UUID, token string) (*domain.User, error)
	UpdateFn          func(ctx context.Context, user *domain.User) error
	DeleteFn          func(ctx context.Context, id uuid.UUID) error
	AddTokenFn        func(ctx context.Context, userID uuid.UUID, token string) error
	ClearTokensFn     func(ctx context.Context, userID uuid.UUID) error
	SetAvatarFn       func(ctx context.Context, userID uuid.UUID, avatar []byte) error

	mu      sync.Mutex
	users   map[uuid.UUID]*domain.User
	avatars map[uuid.UUID][]byte
}

var _ store.UserStore = (*MockUserStore)(nil)

// NewMockUserStore creates a new mock store with initialized defaults
func NewMockUserStore() *MockUserStore {
	return &MockUserStore{
		users:   make(map[uuid.UUID]*domain.User),
		avatars: make(map[uuid.UUID][]byte),
	}
}

func cloneUser(u *domain.User) *domain.User {
	c := *u
	c.Tokens = slices.Clone(u.Tokens)
	c.Avatar = nil
	return &c
}

// Seed stores user directly, bypassing CreateFn.
func (m *MockUserStore) Seed(user *domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = cloneUser(user)
}

// Count returns the number of stored users.
func (m *MockUserStore) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users)
}

// Tokens returns the live token set of a stored user.
func (m *MockUserStore) Tokens(userID uuid.UUID) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[userID]; ok {
		return slices.Clone(u.Tokens)
	}
	return nil
}

// Create implements the UserStore interface
func (m *MockUserStore) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, user)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == domain.NormalizeEmail(user.Email) {
			return store.ErrEmailExists
		}
	}
	m.users[user.ID] = cloneUser(user)
	return nil
}

// GetByID implements the UserStore interface
func (m *MockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		return cloneUser(u), nil
	}
	return nil, store.ErrUserNotFound
}

// GetByEmail implements the UserStore interface
func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.GetByEmailFn != nil {
		return m.GetByEmailFn(ctx, email)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == domain.NormalizeEmail(email) {
			return cloneUser(u), nil
		}
	}
	return nil, store.ErrUserNotFound
}

// GetByIDAndToken implements the UserStore interface
func (m *MockUserStore) GetByIDAndToken(ctx context.Context, id uuid.UUID, token string) (*domain.User, error) {
	if m.GetByIDAndTokenFn != nil {
		return m.GetByIDAndTokenFn(ctx, id, token)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok && u.HasToken(token) {
		return cloneUser(u), nil
	}
	return nil, store.ErrUserNotFound
}

// Update implements the UserStore interface
func (m *MockUserStore) Update(ctx context.Context, user *domain.User) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, user)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.users[user.ID]
	if !ok {
		return store.ErrUserNotFound
	}
	for id, u := range m.users {
		if id != user.ID && u.Email == user.Email {
			return store.ErrEmailExists
		}
	}
	next := cloneUser(user)
	next.Tokens = current.Tokens
	m.users[user.ID] = next
	return nil
}

// Delete implements the UserStore interface
func (m *MockUserStore) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return store.ErrUserNotFound
	}
	delete(m.users, id)
	delete(m.avatars, id)
	return nil
}

// AddToken implements the UserStore interface
func (m *MockUserStore) AddToken(ctx context.Context, userID uuid.UUID, token string) error {
	if m.AddTokenFn != nil {
		return m.AddTokenFn(ctx, userID, token)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return store.ErrUserNotFound
	}
	u.Tokens = append(u.Tokens, token)
	return nil
}

// RemoveToken implements the UserStore interface
func (m *MockUserStore) RemoveToken(ctx context.Context, userID uuid.UUID, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok || !u.HasToken(token) {
		return store.ErrTokenNotFound
	}
	u.Tokens = slices.DeleteFunc(u.Tokens, func(t string) bool { return t == token })
	return nil
}

// ClearTokens implements the UserStore interface
func (m *MockUserStore) ClearTokens(ctx context.Context, userID uuid.UUID) error {
	if m.ClearTokensFn != nil {
		return m.ClearTokensFn(ctx, userID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[userID]; ok {
		u.Tokens = nil
	}
	return nil
}

// SetAvatar implements the UserStore interface
func (m *MockUserStore) SetAvatar(ctx context.Context, userID uuid.UUID, avatar []byte) error {
	if m.SetAvatarFn != nil {
		return m.SetAvatarFn(ctx, userID, avatar)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[userID]; !ok {
		return store.ErrUserNotFound
	}
	if len(avatar) == 0 {
		delete(m.avatars, userID)
		return nil
	}
	m.avatars[userID] = slices.Clone(avatar)
	return nil
}

// GetAvatar implements the UserStore interface
func (m *MockUserStore) GetAvatar(ctx context.Context, userID uuid.UUID) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.avatars[userID]; ok {
		return slices.Clone(a), nil
	}
	return nil, store.ErrAvatarNotFound
}

// WithTx implements the UserStore interface. The mock has no transactions.
func (m *MockUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return m
}
