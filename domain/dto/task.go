package dto

import (
	"strings"

	"github.com/google/uuid"
)

// TaskRequest is the body of POST /tasks and PUT /tasks/:id. Owner and id are never read
// from it. PUT replaces every field, so absent optional fields fall back to defaults.
type TaskRequest struct {
	Title       string  `json:"title" form:"title" validate:"required,max=50"`
	Description *string `json:"description" form:"description" validate:"omitempty,max=200"`
	Date        *string `json:"date" form:"date" validate:"omitempty,datetime=2006-01-02"`
	Checked     *bool   `json:"checked" form:"checked"`
}

// Normalize trims the title so a blank one fails the required rule.
func (r *TaskRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	if r.Date != nil && strings.TrimSpace(*r.Date) == "" {
		r.Date = nil
	}
}

type TaskResponse struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Date        string    `json:"date"`
	Checked     bool      `json:"checked"`
	Owner       string    `json:"owner"`
}
