package memory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"task-api/domain/models"
	"task-api/domain/repositories"
)

type TaskRepository struct {
	store *Store
	now   func() time.Time
}

func NewTaskRepository(store *Store) repositories.TaskRepository {
	return &TaskRepository{store: store, now: time.Now}
}

func (r *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	if _, exists := r.store.tasks[task.ID]; exists {
		return repositories.ErrDuplicate
	}
	if _, ok := r.store.users[task.OwnerID]; !ok {
		return repositories.ErrNotFound
	}

	now := r.now()
	task.CreatedAt = now
	task.UpdatedAt = now
	r.store.tasks[task.ID] = copyTask(task)
	r.store.order = append(r.store.order, task.ID)
	return nil
}

func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	t, ok := r.store.tasks[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return copyTask(t), nil
}

func (r *TaskRepository) List(ctx context.Context) ([]*models.Task, error) {
	return r.filter(func(*models.Task) bool { return true }), nil
}

func (r *TaskRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Task, error) {
	return r.filter(func(t *models.Task) bool { return t.OwnerID == ownerID }), nil
}

func (r *TaskRepository) filter(keep func(*models.Task) bool) []*models.Task {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	tasks := make([]*models.Task, 0, len(r.store.order))
	for _, id := range r.store.order {
		if t := r.store.tasks[id]; t != nil && keep(t) {
			tasks = append(tasks, copyTask(t))
		}
	}
	return tasks
}

func (r *TaskRepository) Update(ctx context.Context, task *models.Task) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	existing, ok := r.store.tasks[task.ID]
	if !ok || existing.OwnerID != task.OwnerID {
		return repositories.ErrNotFound
	}

	updated := copyTask(task)
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = r.now()
	r.store.tasks[task.ID] = updated

	task.CreatedAt = updated.CreatedAt
	task.UpdatedAt = updated.UpdatedAt
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	existing, ok := r.store.tasks[id]
	if !ok || existing.OwnerID != ownerID {
		return repositories.ErrNotFound
	}
	delete(r.store.tasks, id)
	r.store.removeFromOrderLocked(id)
	return nil
}

func (r *TaskRepository) DeleteByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	return r.store.deleteTasksLocked(ownerID), nil
}
