package messaging

import (
	"context"
	"sync"

	"task-api/domain/ports"
	"task-api/pkg/logger"
)

// LocalBus delivers task events in-process. It stands in for NATS when no
// broker is configured, implementing both sides of the event ports.
type LocalBus struct {
	mu       sync.RWMutex
	handlers map[int]ports.TaskEventHandler
	nextID   int
}

func NewLocalBus() *LocalBus {
	return &LocalBus{handlers: make(map[int]ports.TaskEventHandler)}
}

var (
	_ ports.TaskEventPublisher  = (*LocalBus)(nil)
	_ ports.TaskEventSubscriber = (*LocalBus)(nil)
)

func (b *LocalBus) PublishTaskEvent(ctx context.Context, event *ports.TaskEvent) error {
	b.mu.RLock()
	handlers := make([]ports.TaskEventHandler, 0, len(b.handlers))
	for _, h := range b.handlers {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					logger.ErrorContext(ctx, "Task event handler panicked", "error", r)
				}
			}()
			h(event)
		}()
	}
	return nil
}

// Subscribe registers handler until ctx is done or Unsubscribe removes every handler.
func (b *LocalBus) Subscribe(ctx context.Context, handler ports.TaskEventHandler) error {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.handlers[id] = handler
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.handlers, id)
		b.mu.Unlock()
	}()
	return nil
}

func (b *LocalBus) Unsubscribe() error {
	b.mu.Lock()
	b.handlers = make(map[int]ports.TaskEventHandler)
	b.mu.Unlock()
	return nil
}

// NoopPublisher drops every event.
type NoopPublisher struct{}

func (NoopPublisher) PublishTaskEvent(ctx context.Context, event *ports.TaskEvent) error {
	return nil
}
