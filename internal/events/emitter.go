package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/phrazzld/task-manager-api/internal/redact"
)

var (
	// ErrEmitterClosed is returned by AsyncEmitter.EmitEvent after Close.
	ErrEmitterClosed = errors.New("event emitter closed")

	// ErrQueueFull is returned by AsyncEmitter.EmitEvent when no queue slot
	// is free.
	ErrQueueFull = errors.New("event queue is full")
)

// InMemoryEventEmitter stores registered handlers in memory and dispatches
// events to them synchronously.
type InMemoryEventEmitter struct {
	handlers []EventHandler
	mu       sync.RWMutex
	logger   *slog.Logger
}

// NewInMemoryEventEmitter creates a new instance of InMemoryEventEmitter.
func NewInMemoryEventEmitter(logger *slog.Logger) *InMemoryEventEmitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &InMemoryEventEmitter{
		handlers: make([]EventHandler, 0),
		logger:   logger.With("component", "in_memory_event_emitter"),
	}
}

// RegisterHandler adds a new event handler to receive events.
func (e *InMemoryEventEmitter) RegisterHandler(handler EventHandler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers = append(e.handlers, handler)
	e.logger.Debug("registered new event handler", "handler_count", len(e.handlers))
}

// EmitEvent publishes the given event to all registered handlers.
// If any handler returns an error, the event will still be sent to all other handlers,
// and the first error encountered will be returned.
func (e *InMemoryEventEmitter) EmitEvent(ctx context.Context, event *Event) error {
	e.mu.RLock()
	handlers := make([]EventHandler, len(e.handlers))
	copy(handlers, e.handlers)
	e.mu.RUnlock()

	e.logger.Debug("emitting event",
		"event_id", event.ID,
		"event_type", event.Type,
		"handler_count", len(handlers))

	if len(handlers) == 0 {
		e.logger.Warn("no handlers registered for event",
			"event_id", event.ID,
			"event_type", event.Type)
		return nil
	}

	var firstErr error
	for i, handler := range handlers {
		if err := handler.HandleEvent(ctx, event); err != nil {
			e.logger.Error("handler failed to process event",
				"error", redact.Error(err),
				"handler_index", i,
				"event_id", event.ID,
				"event_type", event.Type)
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	return firstErr
}

// AsyncConfig sizes an AsyncEmitter.
type AsyncConfig struct {
	// Workers is the number of delivery goroutines. Values below 1 mean 1.
	Workers int

	// QueueSize is how many events may wait for a worker before EmitEvent
	// starts rejecting them.
	QueueSize int
}

// DefaultAsyncConfig returns an AsyncConfig with reasonable defaults.
func DefaultAsyncConfig() AsyncConfig {
	return AsyncConfig{Workers: 2, QueueSize: 100}
}

type queuedEvent struct {
	ctx   context.Context
	event *Event
}

// AsyncEmitter queues events and delivers them to the wrapped emitter from a
// fixed pool of workers, so EmitEvent returns immediately. Handler failures
// are logged and never reach the caller. Close drains the queue.
type AsyncEmitter struct {
	next   EventEmitter
	logger *slog.Logger
	queue  chan queuedEvent

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewAsyncEmitter wraps next and starts its workers.
func NewAsyncEmitter(next EventEmitter, cfg AsyncConfig, logger *slog.Logger) *AsyncEmitter {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "async_event_emitter")

	workers := cfg.Workers
	if workers <= 0 {
		logger.Warn("invalid worker count specified, using default",
			"specified_count", cfg.Workers,
			"default_count", 1)
		workers = 1
	}
	size := cfg.QueueSize
	if size < 0 {
		size = 0
	}

	a := &AsyncEmitter{
		next:   next,
		logger: logger,
		queue:  make(chan queuedEvent, size),
	}
	for i := 0; i < workers; i++ {
		a.wg.Add(1)
		go a.worker(i)
	}
	return a
}

func (a *AsyncEmitter) worker(id int) {
	defer a.wg.Done()
	for item := range a.queue {
		if err := a.next.EmitEvent(item.ctx, item.event); err != nil {
			a.logger.Warn("event delivery failed",
				"error", redact.Error(err),
				"worker_id", id,
				"event_id", item.event.ID,
				"event_type", item.event.Type)
		}
	}
}

// EmitEvent queues the event for delivery. The delivery outlives the
// caller's context but keeps its values (logger, trace id). It returns
// ErrQueueFull rather than block when every worker is busy and the queue
// is at capacity.
func (a *AsyncEmitter) EmitEvent(ctx context.Context, event *Event) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return ErrEmitterClosed
	}

	select {
	case a.queue <- queuedEvent{ctx: context.WithoutCancel(ctx), event: event}:
		return nil
	default:
		return fmt.Errorf("%w: capacity %d reached", ErrQueueFull, cap(a.queue))
	}
}

// Close stops accepting events and waits for queued deliveries or for ctx
// to end, whichever comes first.
func (a *AsyncEmitter) Close(ctx context.Context) error {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.queue)
	}
	a.mu.Unlock()

	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// LogHandler records events in the log. It is the notification sink when no
// broker is configured.
type LogHandler struct {
	logger *slog.Logger
}

// NewLogHandler creates a LogHandler.
func NewLogHandler(logger *slog.Logger) *LogHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogHandler{logger: logger.With("component", "notification_log")}
}

// HandleEvent implements EventHandler.
func (h *LogHandler) HandleEvent(ctx context.Context, event *Event) error {
	var payload AccountPayload
	if err := event.UnmarshalPayload(&payload); err != nil {
		return err
	}
	h.logger.InfoContext(ctx, "account notification",
		"event_id", event.ID,
		"event_type", event.Type,
		"user_id", payload.UserID)
	return nil
}
