package serviceimpl

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"task-api/domain/access"
	"task-api/domain/dto"
	"task-api/domain/models"
	"task-api/domain/ports"
	"task-api/domain/repositories"
	"task-api/domain/services"
	"task-api/pkg/logger"
	"task-api/pkg/utils"
)

type TaskServiceImpl struct {
	taskRepo repositories.TaskRepository
	userRepo repositories.UserRepository
	policy   access.Policy
	events   ports.TaskEventPublisher
	today    func() time.Time
}

func NewTaskService(
	taskRepo repositories.TaskRepository,
	userRepo repositories.UserRepository,
	policy access.Policy,
	events ports.TaskEventPublisher,
) services.TaskService {
	return &TaskServiceImpl{
		taskRepo: taskRepo,
		userRepo: userRepo,
		policy:   policy,
		events:   events,
		today:    models.Today,
	}
}

func (s *TaskServiceImpl) ListTasks(ctx context.Context, caller *access.Caller) ([]*models.Task, error) {
	scope, ok := s.policy.ListScope(caller)
	if !ok {
		return nil, services.ErrUnauthenticated
	}

	var (
		tasks []*models.Task
		err   error
	)
	if scope != nil {
		tasks, err = s.taskRepo.ListByOwner(ctx, *scope)
	} else {
		tasks, err = s.taskRepo.List(ctx)
	}
	if err != nil {
		logger.ErrorContext(ctx, "Failed to list tasks", "error", err)
		return nil, err
	}

	if err := s.attachOwners(ctx, tasks...); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (s *TaskServiceImpl) CreateTask(ctx context.Context, caller *access.Caller, req *dto.TaskRequest) (*models.Task, error) {
	if !access.CanAccess(caller, uuid.Nil, access.OpCreate, s.policy.Mode) {
		return nil, services.ErrUnauthenticated
	}

	fields, err := s.validate(req)
	if err != nil {
		logger.WarnContext(ctx, "Task validation failed", "error", err)
		return nil, err
	}

	task := &models.Task{
		ID:          uuid.New(),
		Title:       fields.Title,
		Description: fields.Description,
		Date:        fields.Date,
		Checked:     fields.Checked,
		OwnerID:     caller.UserID,
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, services.ErrUnauthenticated
		}
		logger.ErrorContext(ctx, "Failed to create task", "owner_id", caller.UserID, "error", err)
		return nil, err
	}

	if err := s.attachOwners(ctx, task); err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "Task created", "task_id", task.ID, "owner_id", task.OwnerID)
	s.publish(ctx, ports.TaskCreated, task)

	return task, nil
}

func (s *TaskServiceImpl) GetTask(ctx context.Context, caller *access.Caller, id string) (*models.Task, error) {
	task, err := s.load(ctx, caller, id, access.OpRead)
	if err != nil {
		return nil, err
	}

	if err := s.attachOwners(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// UpdateTask replaces title, description, date and checked. Absent optional
// fields fall back to their defaults.
func (s *TaskServiceImpl) UpdateTask(ctx context.Context, caller *access.Caller, id string, req *dto.TaskRequest) (*models.Task, error) {
	task, err := s.load(ctx, caller, id, access.OpUpdate)
	if err != nil {
		return nil, err
	}

	fields, err := s.validate(req)
	if err != nil {
		logger.WarnContext(ctx, "Task validation failed", "task_id", task.ID, "error", err)
		return nil, err
	}

	task.Title = fields.Title
	task.Description = fields.Description
	task.Date = fields.Date
	task.Checked = fields.Checked

	if err := s.taskRepo.Update(ctx, task); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, services.ErrTaskNotFound
		}
		logger.ErrorContext(ctx, "Failed to update task", "task_id", task.ID, "error", err)
		return nil, err
	}

	if err := s.attachOwners(ctx, task); err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "Task updated", "task_id", task.ID)
	s.publish(ctx, ports.TaskUpdated, task)

	return task, nil
}

func (s *TaskServiceImpl) DeleteTask(ctx context.Context, caller *access.Caller, id string) error {
	task, err := s.load(ctx, caller, id, access.OpDelete)
	if err != nil {
		return err
	}

	if err := s.taskRepo.Delete(ctx, task.ID, task.OwnerID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return services.ErrTaskNotFound
		}
		logger.ErrorContext(ctx, "Failed to delete task", "task_id", task.ID, "error", err)
		return err
	}

	logger.InfoContext(ctx, "Task deleted", "task_id", task.ID)
	s.publish(ctx, ports.TaskDeleted, task)

	return nil
}

// load fetches the task named by id and applies the policy for op. The
// authentication requirement is checked before the id is even parsed.
func (s *TaskServiceImpl) load(ctx context.Context, caller *access.Caller, id string, op access.Operation) (*models.Task, error) {
	if s.policy.RequiresCaller(op) && caller == nil {
		return nil, services.ErrUnauthenticated
	}

	taskID, err := uuid.Parse(id)
	if err != nil {
		return nil, services.ErrTaskNotFound
	}

	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, services.ErrTaskNotFound
		}
		logger.ErrorContext(ctx, "Failed to load task", "task_id", taskID, "error", err)
		return nil, err
	}

	switch decision := s.policy.Decide(caller, task.OwnerID, op); decision {
	case access.Allow:
		return task, nil
	case access.DenyUnauthenticated:
		return nil, services.ErrUnauthenticated
	case access.DenyForbidden:
		logger.WarnContext(ctx, "Task access forbidden", "task_id", task.ID, "operation", op.String())
		return nil, services.ErrForbidden
	default:
		logger.WarnContext(ctx, "Task access hidden", "task_id", task.ID, "operation", op.String())
		return nil, services.ErrTaskNotFound
	}
}

func (s *TaskServiceImpl) validate(req *dto.TaskRequest) (dto.TaskFields, error) {
	if req == nil {
		req = &dto.TaskRequest{}
	}
	req.Normalize()

	if err := utils.ValidateStruct(req); err != nil {
		return dto.TaskFields{}, services.NewValidationError(utils.GetValidationErrors(err))
	}

	fields, err := dto.TaskRequestToFields(req, s.today())
	if err != nil {
		return dto.TaskFields{}, services.NewValidationError(map[string]string{"date": err.Error()})
	}
	return fields, nil
}

// attachOwners fills Task.Owner so responses can render the owner's email.
func (s *TaskServiceImpl) attachOwners(ctx context.Context, tasks ...*models.Task) error {
	owners := make(map[uuid.UUID]*models.User)
	for _, task := range tasks {
		owner, ok := owners[task.OwnerID]
		if !ok {
			user, err := s.userRepo.GetByID(ctx, task.OwnerID)
			if err != nil && !errors.Is(err, repositories.ErrNotFound) {
				return fmt.Errorf("load owner %s: %w", task.OwnerID, err)
			}
			owner = user
			owners[task.OwnerID] = owner
		}
		if owner != nil {
			task.Owner = *owner
		}
	}
	return nil
}

func (s *TaskServiceImpl) publish(ctx context.Context, eventType ports.TaskEventType, task *models.Task) {
	if s.events == nil {
		return
	}

	event := &ports.TaskEvent{
		Type:       eventType,
		TaskID:     task.ID,
		OwnerID:    task.OwnerID,
		OccurredAt: time.Now().UTC(),
	}
	if eventType != ports.TaskDeleted {
		event.Task = dto.TaskToTaskResponse(task)
	}

	if err := s.events.PublishTaskEvent(ctx, event); err != nil {
		logger.WarnContext(ctx, "Failed to publish task event", "type", eventType, "task_id", task.ID, "error", err)
	}
}
