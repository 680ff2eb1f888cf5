package services

import (
	"context"

	"task-api/domain/access"
	"task-api/domain/dto"
	"task-api/domain/models"
)

// TaskService applies the access policy around task storage. caller is nil for
// anonymous requests.
type TaskService interface {
	ListTasks(ctx context.Context, caller *access.Caller) ([]*models.Task, error)
	CreateTask(ctx context.Context, caller *access.Caller, req *dto.TaskRequest) (*models.Task, error)
	GetTask(ctx context.Context, caller *access.Caller, id string) (*models.Task, error)
	UpdateTask(ctx context.Context, caller *access.Caller, id string, req *dto.TaskRequest) (*models.Task, error)
	DeleteTask(ctx context.Context, caller *access.Caller, id string) error
}
