package models

import (
	"time"

	"github.com/google/uuid"
)

// DateLayout is the wire and storage format of Task.Date.
const DateLayout = "2006-01-02"

type Task struct {
	ID          uuid.UUID `gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Title       string    `gorm:"size:50;not null"`
	Description *string   `gorm:"size:200"`
	Date        time.Time `gorm:"type:date;not null"`
	Checked     bool      `gorm:"not null"`
	OwnerID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Owner       User      `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time `gorm:"index"`
	UpdatedAt   time.Time
}

func (Task) TableName() string {
	return "tasks"
}

func (t *Task) String() string {
	return "Task " + t.ID.String() + ": " + t.Title
}

// IsOwnedBy reports whether userID owns the task.
func (t *Task) IsOwnedBy(userID uuid.UUID) bool {
	return t.OwnerID == userID
}

// Today is the calendar date used when a task is saved without one.
func Today() time.Time {
	return TruncateDate(time.Now().UTC())
}

// TruncateDate drops the clock part, keeping the date in UTC.
func TruncateDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
