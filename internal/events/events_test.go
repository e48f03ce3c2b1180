package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/task-manager-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAccountEvent(t *testing.T) {
	user, err := domain.NewUser("Ann", "ann@example.com", "mypass1", 30)
	require.NoError(t, err)

	event, err := NewAccountEvent(AccountCreated, user)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, event.ID)
	assert.Equal(t, AccountCreated, event.Type)
	assert.WithinDuration(t, time.Now(), event.CreatedAt, 2*time.Second)

	var payload AccountPayload
	require.NoError(t, event.UnmarshalPayload(&payload))
	assert.Equal(t, user.ID, payload.UserID)
	assert.Equal(t, "Ann", payload.Name)
	assert.Equal(t, "ann@example.com", payload.Email)

	raw, err := json.Marshal(event)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "mypass1")
}

func TestNewEventRejectsUnmarshalablePayload(t *testing.T) {
	_, err := NewEvent("bad", make(chan int))
	assert.Error(t, err)
}

// MockEventHandler implements the EventHandler interface for testing
type MockEventHandler struct {
	mu           sync.Mutex
	LastEvent    *Event
	HandlerError error
	HandledCount int
}

// HandleEvent implements the EventHandler interface
func (h *MockEventHandler) HandleEvent(ctx context.Context, event *Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.LastEvent = event
	h.HandledCount++
	return h.HandlerError
}

func (h *MockEventHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.HandledCount
}

func TestHandlerFunc(t *testing.T) {
	want := errors.New("handler error")
	var got *Event
	h := HandlerFunc(func(ctx context.Context, event *Event) error {
		got = event
		return want
	})

	event, err := NewEvent("test_type", map[string]string{"key": "value"})
	require.NoError(t, err)

	assert.Equal(t, want, h.HandleEvent(context.Background(), event))
	assert.Same(t, event, got)
}
