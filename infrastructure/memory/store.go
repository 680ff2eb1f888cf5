// Package memory holds process-local implementations of the storage ports. It backs
// DB_DRIVER=memory and the service and handler tests.
package memory

import (
	"sync"

	"github.com/google/uuid"
	"task-api/domain/models"
)

// Store is shared by the user and task repositories so that deleting a user
// removes their tasks in the same critical section.
type Store struct {
	mu    sync.RWMutex
	users map[uuid.UUID]*models.User
	tasks map[uuid.UUID]*models.Task
	order []uuid.UUID // task ids in creation order
}

func NewStore() *Store {
	return &Store{
		users: make(map[uuid.UUID]*models.User),
		tasks: make(map[uuid.UUID]*models.Task),
	}
}

// deleteTasksLocked removes every task owned by ownerID. Callers hold mu.
func (s *Store) deleteTasksLocked(ownerID uuid.UUID) int64 {
	var removed int64
	kept := s.order[:0]
	for _, id := range s.order {
		if t := s.tasks[id]; t != nil && t.OwnerID == ownerID {
			delete(s.tasks, id)
			removed++
			continue
		}
		kept = append(kept, id)
	}
	s.order = kept
	return removed
}

func (s *Store) removeFromOrderLocked(id uuid.UUID) {
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}

func copyTask(t *models.Task) *models.Task {
	c := *t
	if t.Description != nil {
		d := *t.Description
		c.Description = &d
	}
	c.Owner = models.User{}
	return &c
}

func copyUser(u *models.User) *models.User {
	c := *u
	if u.GoogleID != nil {
		g := *u.GoogleID
		c.GoogleID = &g
	}
	return &c
}
