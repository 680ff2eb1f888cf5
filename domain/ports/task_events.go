package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type TaskEventType string

const (
	TaskCreated TaskEventType = "task.created"
	TaskUpdated TaskEventType = "task.updated"
	TaskDeleted TaskEventType = "task.deleted"
)

// TaskEvent is a change notification. Task is nil for deletions.
type TaskEvent struct {
	Type       TaskEventType `json:"type"`
	TaskID     uuid.UUID     `json:"taskId"`
	OwnerID    uuid.UUID     `json:"ownerId"`
	Task       any           `json:"task,omitempty"`
	OccurredAt time.Time     `json:"occurredAt"`
}

// TaskEventPublisher fans task changes out to live subscribers.
type TaskEventPublisher interface {
	PublishTaskEvent(ctx context.Context, event *TaskEvent) error
}

type TaskEventHandler func(event *TaskEvent)

// TaskEventSubscriber delivers published events to handler until ctx is done
// or Unsubscribe is called.
type TaskEventSubscriber interface {
	Subscribe(ctx context.Context, handler TaskEventHandler) error
	Unsubscribe() error
}
