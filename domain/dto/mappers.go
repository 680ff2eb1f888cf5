package dto

import (
	"fmt"
	"time"

	"task-api/domain/models"
)

func UserToUserResponse(user *models.User) *UserResponse {
	if user == nil {
		return nil
	}
	return &UserResponse{
		ID:           user.ID,
		Email:        user.Email,
		Username:     user.Username,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		Avatar:       user.Avatar,
		Role:         user.Role,
		IsActive:     user.IsActive,
		HasPassword:  user.HasPassword(),
		IsGoogleUser: user.IsGoogleUser(),
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}
}

// TaskToTaskResponse renders the owner as their email. Task.Owner must be populated.
func TaskToTaskResponse(task *models.Task) *TaskResponse {
	if task == nil {
		return nil
	}
	return &TaskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Date:        task.Date.Format(models.DateLayout),
		Checked:     task.Checked,
		Owner:       task.Owner.Email,
	}
}

func TasksToTaskResponses(tasks []*models.Task) []TaskResponse {
	out := make([]TaskResponse, len(tasks))
	for i, task := range tasks {
		out[i] = *TaskToTaskResponse(task)
	}
	return out
}

// TaskFields is a validated TaskRequest with defaults applied.
type TaskFields struct {
	Title       string
	Description *string
	Date        time.Time
	Checked     bool
}

// TaskRequestToFields applies the defaults: date falls back to today, checked to false.
func TaskRequestToFields(req *TaskRequest, today time.Time) (TaskFields, error) {
	fields := TaskFields{
		Title:       req.Title,
		Description: req.Description,
		Date:        models.TruncateDate(today),
	}

	if req.Date != nil {
		date, err := time.Parse(models.DateLayout, *req.Date)
		if err != nil {
			return TaskFields{}, fmt.Errorf("invalid date %q: %w", *req.Date, err)
		}
		fields.Date = date
	}

	if req.Checked != nil {
		fields.Checked = *req.Checked
	}

	return fields, nil
}
