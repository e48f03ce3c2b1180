package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/task-manager-api/internal/events"
)

// MockEventEmitter records emitted events.
type MockEventEmitter struct {
	Err error

	mu     sync.Mutex
	events []*events.Event
}

var _ events.EventEmitter = (*MockEventEmitter)(nil)

// EmitEvent implements events.EventEmitter.
func (m *MockEventEmitter) EmitEvent(ctx context.Context, event *events.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return m.Err
}

// Events returns the emitted events in order.
func (m *MockEventEmitter) Events() []*events.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*events.Event, len(m.events))
	copy(out, m.events)
	return out
}

// Types returns the types of the emitted events in order.
func (m *MockEventEmitter) Types() []string {
	evs := m.Events()
	types := make([]string, len(evs))
	for i, e := range evs {
		types[i] = e.Type
	}
	return types
}
