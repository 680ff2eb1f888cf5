package dto

import (
	"time"

	"github.com/google/uuid"
)

type UpdateUserRequest struct {
	FirstName string `json:"firstName" form:"firstName" validate:"omitempty,max=50"`
	LastName  string `json:"lastName" form:"lastName" validate:"omitempty,max=50"`
	Avatar    string `json:"avatar" form:"avatar" validate:"omitempty,url,max=500"`
}

type UserResponse struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Avatar       string    `json:"avatar"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"isActive"`
	HasPassword  bool      `json:"hasPassword"`
	IsGoogleUser bool      `json:"isGoogleUser"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
