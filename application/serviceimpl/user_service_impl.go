package serviceimpl

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"task-api/domain/access"
	"task-api/domain/dto"
	"task-api/domain/models"
	"task-api/domain/ports"
	"task-api/domain/repositories"
	"task-api/domain/services"
	"task-api/pkg/logger"
	"task-api/pkg/utils"
)

const oauthStateTTL = 5 * time.Minute

type UserServiceImpl struct {
	userRepo repositories.UserRepository
	taskRepo repositories.TaskRepository
	tokens   *utils.TokenManager
	revoked  ports.TokenRevocationStore
	states   ports.OAuthStateStore
	google   ports.GoogleIdentityProvider // nil when Google login is not configured
	avatars  ports.StoragePort
}

func NewUserService(
	userRepo repositories.UserRepository,
	taskRepo repositories.TaskRepository,
	tokens *utils.TokenManager,
	revoked ports.TokenRevocationStore,
	states ports.OAuthStateStore,
	google ports.GoogleIdentityProvider,
	avatars ports.StoragePort,
) services.UserService {
	return &UserServiceImpl{
		userRepo: userRepo,
		taskRepo: taskRepo,
		tokens:   tokens,
		revoked:  revoked,
		states:   states,
		google:   google,
		avatars:  avatars,
	}
}

func (s *UserServiceImpl) Register(ctx context.Context, req *dto.RegisterRequest) (string, *models.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	taken := map[string]string{}
	if existing, _ := s.userRepo.GetByUsername(ctx, req.Username); existing != nil {
		taken["username"] = "A user with that username already exists."
	}
	if existing, _ := s.userRepo.GetByEmail(ctx, req.Email); existing != nil {
		taken["email"] = "A user is already registered with this e-mail address."
	}
	if len(taken) > 0 {
		logger.WarnContext(ctx, "Registration rejected", "username", req.Username, "email", req.Email)
		return "", nil, services.NewValidationError(taken)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password1), bcrypt.DefaultCost)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to hash password", "error", err)
		return "", nil, err
	}

	user := &models.User{
		ID:        uuid.New(),
		Email:     req.Email,
		Username:  req.Username,
		Password:  string(hashedPassword),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      models.RoleUser,
		IsActive:  true,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return "", nil, services.ErrUserExists
		}
		logger.ErrorContext(ctx, "Failed to create user", "error", err)
		return "", nil, err
	}

	token, err := s.issueToken(user)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to generate JWT", "user_id", user.ID, "error", err)
		return "", nil, err
	}

	logger.InfoContext(ctx, "User registered", "user_id", user.ID, "username", user.Username)
	return token, user, nil
}

func (s *UserServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (string, *models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		logger.WarnContext(ctx, "Login failed - unknown username", "username", req.Username)
		return "", nil, services.ErrInvalidCredentials
	}

	if req.Email != "" && !strings.EqualFold(req.Email, user.Email) {
		logger.WarnContext(ctx, "Login failed - email mismatch", "user_id", user.ID)
		return "", nil, services.ErrInvalidCredentials
	}

	if !user.HasPassword() {
		logger.WarnContext(ctx, "Login failed - account has no password", "user_id", user.ID)
		return "", nil, services.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		logger.WarnContext(ctx, "Login failed - invalid password", "user_id", user.ID)
		return "", nil, services.ErrInvalidCredentials
	}

	if !user.IsActive {
		logger.WarnContext(ctx, "Login failed - account disabled", "user_id", user.ID)
		return "", nil, services.ErrAccountDisabled
	}

	token, err := s.issueToken(user)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to generate JWT", "user_id", user.ID, "error", err)
		return "", nil, err
	}

	logger.InfoContext(ctx, "User logged in", "user_id", user.ID)
	return token, user, nil
}

// Logout revokes the token's jti until the token would have expired anyway.
func (s *UserServiceImpl) Logout(ctx context.Context, token string) error {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return services.ErrInvalidToken
	}

	if err := s.revoked.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		logger.ErrorContext(ctx, "Failed to revoke token", "user_id", claims.UserID, "error", err)
		return err
	}

	logger.InfoContext(ctx, "User logged out", "user_id", claims.UserID)
	return nil
}

func (s *UserServiceImpl) VerifyToken(ctx context.Context, token string) error {
	_, err := s.parseActive(ctx, token)
	return err
}

func (s *UserServiceImpl) ResolveIdentity(ctx context.Context, token string) (*access.Caller, error) {
	claims, err := s.parseActive(ctx, token)
	if err != nil {
		return nil, err
	}

	caller, err := claims.Caller()
	if err != nil {
		return nil, services.ErrInvalidToken
	}

	user, err := s.userRepo.GetByID(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, services.ErrInvalidToken
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, services.ErrAccountDisabled
	}

	return &access.Caller{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
	}, nil
}

func (s *UserServiceImpl) parseActive(ctx context.Context, token string) (*utils.JWTClaims, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, services.ErrInvalidToken
	}

	revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to check token revocation", "error", err)
		return nil, err
	}
	if revoked {
		return nil, services.ErrInvalidToken
	}
	return claims, nil
}

func (s *UserServiceImpl) GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, services.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *UserServiceImpl) UpdateProfile(ctx context.Context, userID uuid.UUID, req *dto.UpdateUserRequest) (*models.User, error) {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		logger.WarnContext(ctx, "User not found for profile update", "user_id", userID)
		return nil, err
	}

	if req.FirstName != "" {
		user.FirstName = req.FirstName
	}
	if req.LastName != "" {
		user.LastName = req.LastName
	}
	if req.Avatar != "" {
		if err := s.checkAvatarURL(userID, req.Avatar); err != nil {
			return nil, err
		}
		user.Avatar = req.Avatar
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		logger.ErrorContext(ctx, "Failed to update user profile", "user_id", userID, "error", err)
		return nil, err
	}

	logger.InfoContext(ctx, "User profile updated", "user_id", userID)
	return user, nil
}

// DeleteUser removes the account together with every task it owns.
func (s *UserServiceImpl) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	removed, err := s.taskRepo.DeleteByOwner(ctx, userID)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to delete user tasks", "user_id", userID, "error", err)
		return err
	}

	if err := s.userRepo.Delete(ctx, userID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return services.ErrUserNotFound
		}
		logger.ErrorContext(ctx, "Failed to delete user", "user_id", userID, "error", err)
		return err
	}

	if err := s.avatars.DeleteFolder(ctx, avatarFolder(userID)); err != nil {
		logger.WarnContext(ctx, "Failed to delete user avatars", "user_id", userID, "error", err)
	}

	logger.InfoContext(ctx, "User deleted", "user_id", userID, "tasks_removed", removed)
	return nil
}

func (s *UserServiceImpl) issueToken(user *models.User) (string, error) {
	token, _, err := s.tokens.Issue(user.ID, user.Username, user.Email, user.Role)
	return token, err
}
