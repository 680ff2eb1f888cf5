package nats

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/nats-io/nats.go"
	"task-api/domain/ports"
	"task-api/pkg/logger"
)

// Subscriber receives every task event and hands it to the registered handler.
type Subscriber struct {
	conn      *nats.Conn
	sub       *nats.Subscription
	runningMu sync.Mutex
}

func NewSubscriber(conn *nats.Conn) *Subscriber {
	return &Subscriber{conn: conn}
}

var _ ports.TaskEventSubscriber = (*Subscriber)(nil)

// Subscribe listens on tasks.events.> until ctx is done or Unsubscribe is called.
func (s *Subscriber) Subscribe(ctx context.Context, handler ports.TaskEventHandler) error {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	if s.sub != nil {
		return nil
	}

	sub, err := s.conn.Subscribe(SubjectTaskEvents+".>", func(msg *nats.Msg) {
		s.handleMessage(msg, handler)
	})
	if err != nil {
		return err
	}
	s.sub = sub

	go func() {
		<-ctx.Done()
		_ = s.Unsubscribe()
	}()

	logger.Info("NATS subscriber started", "subject", SubjectTaskEvents+".>")
	return nil
}

func (s *Subscriber) handleMessage(msg *nats.Msg, handler ports.TaskEventHandler) {
	var event ports.TaskEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		logger.Error("Failed to parse task event", "subject", msg.Subject, "error", err)
		return
	}

	// The subject is authoritative for routing.
	owner, ok := ownerFromSubject(msg.Subject)
	if !ok || owner != event.OwnerID {
		logger.Warn("Dropping task event with mismatched subject", "subject", msg.Subject)
		return
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Task event handler panicked", "error", r)
		}
	}()
	handler(&event)
}

func (s *Subscriber) Unsubscribe() error {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	if s.sub == nil {
		return nil
	}

	err := s.sub.Unsubscribe()
	s.sub = nil
	if err != nil && err != nats.ErrConnectionClosed && err != nats.ErrBadSubscription {
		logger.Warn("Failed to unsubscribe", "error", err)
		return err
	}

	logger.Info("NATS subscriber stopped")
	return nil
}
