package services

import (
	"context"
	"io"

	"github.com/google/uuid"

	"task-api/domain/access"
	"task-api/domain/dto"
	"task-api/domain/models"
)

// IdentityResolver turns a bearer token into a caller. It is all the task
// controller knows about authentication.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, token string) (*access.Caller, error)
}

type UserService interface {
	IdentityResolver

	Register(ctx context.Context, req *dto.RegisterRequest) (string, *models.User, error)
	Login(ctx context.Context, req *dto.LoginRequest) (string, *models.User, error)
	Logout(ctx context.Context, token string) error
	VerifyToken(ctx context.Context, token string) error

	GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req *dto.UpdateUserRequest) (*models.User, error)
	DeleteUser(ctx context.Context, userID uuid.UUID) error
	UpdateAvatar(ctx context.Context, userID uuid.UUID, file io.Reader, size int64, contentType string) (*models.User, error)

	// Google OAuth
	GoogleEnabled() bool
	BeginGoogleLogin(ctx context.Context) (string, error)
	CompleteGoogleLogin(ctx context.Context, state, code string) (string, *models.User, error)
	LoginWithGoogle(ctx context.Context, req *dto.GoogleLoginRequest) (string, *models.User, error)
}
