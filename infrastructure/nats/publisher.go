package nats

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"task-api/domain/ports"
)

// Publisher sends task events on tasks.events.<ownerId>.
type Publisher struct {
	conn *nats.Conn
}

func NewPublisher(conn *nats.Conn) *Publisher {
	return &Publisher{conn: conn}
}

var _ ports.TaskEventPublisher = (*Publisher)(nil)

func (p *Publisher) PublishTaskEvent(ctx context.Context, event *ports.TaskEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal task event: %w", err)
	}

	subject := TaskEventSubject(event.OwnerID)
	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}
