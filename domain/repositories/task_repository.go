package repositories

import (
	"context"

	"github.com/google/uuid"
	"task-api/domain/models"
)

// TaskRepository stores tasks. Lists are returned in creation order.
type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error)
	List(ctx context.Context) ([]*models.Task, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Task, error)

	// Update replaces the mutable fields of the row matching task.ID and task.OwnerID.
	Update(ctx context.Context, task *models.Task) error
	// Delete removes the row matching id and ownerID.
	Delete(ctx context.Context, id, ownerID uuid.UUID) error
	DeleteByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error)
}
