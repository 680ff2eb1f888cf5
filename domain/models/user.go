package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID        uuid.UUID `gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	GoogleID  *string   `gorm:"size:255;index"` // nil for password-only accounts
	Email     string    `gorm:"uniqueIndex;not null"`
	Username  string    `gorm:"uniqueIndex;size:150;not null"`
	Password  string    // bcrypt hash; empty for Google-only accounts
	FirstName string
	LastName  string
	Avatar    string
	Role      string `gorm:"default:'user'"`
	IsActive  bool   `gorm:"default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsGoogleUser() bool {
	return u.GoogleID != nil && *u.GoogleID != ""
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) HasPassword() bool {
	return u.Password != ""
}
