package serviceimpl

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"

	"task-api/domain/dto"
	"task-api/domain/models"
	"task-api/domain/repositories"
	"task-api/domain/services"
	"task-api/pkg/logger"
	"task-api/pkg/utils"
)

func (s *UserServiceImpl) GoogleEnabled() bool {
	return s.google != nil
}

// BeginGoogleLogin stores a fresh state and returns the consent URL carrying it.
func (s *UserServiceImpl) BeginGoogleLogin(ctx context.Context) (string, error) {
	if s.google == nil {
		return "", services.ErrGoogleDisabled
	}

	state := utils.GenerateOAuthState()
	if err := s.states.Save(ctx, state, oauthStateTTL); err != nil {
		logger.ErrorContext(ctx, "Failed to store oauth state", "error", err)
		return "", err
	}

	return s.google.AuthCodeURL(state), nil
}

func (s *UserServiceImpl) CompleteGoogleLogin(ctx context.Context, state, code string) (string, *models.User, error) {
	if s.google == nil {
		return "", nil, services.ErrGoogleDisabled
	}

	ok, err := s.states.Consume(ctx, state)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to read oauth state", "error", err)
		return "", nil, err
	}
	if !ok {
		logger.WarnContext(ctx, "Google callback with unknown state")
		return "", nil, services.ErrInvalidOAuthState
	}

	info, err := s.google.Exchange(ctx, code)
	if err != nil {
		logger.WarnContext(ctx, "Google code exchange failed", "error", err)
		return "", nil, services.ErrInvalidCredentials
	}

	return s.loginOrRegisterWithGoogle(ctx, info)
}

// LoginWithGoogle serves API clients that already hold a code or an id_token.
func (s *UserServiceImpl) LoginWithGoogle(ctx context.Context, req *dto.GoogleLoginRequest) (string, *models.User, error) {
	if s.google == nil {
		return "", nil, services.ErrGoogleDisabled
	}

	var (
		info *dto.GoogleUserInfo
		err  error
	)
	if req.IDToken != "" {
		info, err = s.google.VerifyIDToken(ctx, req.IDToken)
	} else {
		info, err = s.google.Exchange(ctx, req.Code)
	}
	if err != nil {
		logger.WarnContext(ctx, "Google login rejected", "error", err)
		return "", nil, services.ErrInvalidCredentials
	}

	return s.loginOrRegisterWithGoogle(ctx, info)
}

func (s *UserServiceImpl) loginOrRegisterWithGoogle(ctx context.Context, info *dto.GoogleUserInfo) (string, *models.User, error) {
	if !info.VerifiedEmail {
		logger.WarnContext(ctx, "Google login rejected - email not verified", "google_id", info.ID)
		return "", nil, services.ErrInvalidCredentials
	}

	user, err := s.userRepo.GetByGoogleID(ctx, info.ID)
	switch {
	case err == nil:
		logger.InfoContext(ctx, "Google login", "user_id", user.ID)
	case errors.Is(err, repositories.ErrNotFound):
		user, err = s.linkOrCreateGoogleUser(ctx, info)
		if err != nil {
			return "", nil, err
		}
	default:
		return "", nil, err
	}

	if !user.IsActive {
		logger.WarnContext(ctx, "Google login failed - account disabled", "user_id", user.ID)
		return "", nil, services.ErrAccountDisabled
	}

	token, err := s.issueToken(user)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to generate JWT for Google user", "user_id", user.ID, "error", err)
		return "", nil, err
	}
	return token, user, nil
}

func (s *UserServiceImpl) linkOrCreateGoogleUser(ctx context.Context, info *dto.GoogleUserInfo) (*models.User, error) {
	googleID := info.ID
	email := strings.ToLower(info.Email)

	if existing, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		existing.GoogleID = &googleID
		if existing.Avatar == "" {
			existing.Avatar = info.Picture
		}
		if err := s.userRepo.Update(ctx, existing); err != nil {
			logger.ErrorContext(ctx, "Failed to link Google account", "user_id", existing.ID, "error", err)
			return nil, err
		}
		logger.InfoContext(ctx, "Google account linked", "user_id", existing.ID)
		return existing, nil
	}

	user := &models.User{
		ID:        uuid.New(),
		GoogleID:  &googleID,
		Email:     email,
		Username:  generateUniqueUsername(email),
		FirstName: info.GivenName,
		LastName:  info.FamilyName,
		Avatar:    info.Picture,
		Role:      models.RoleUser,
		IsActive:  true,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		logger.ErrorContext(ctx, "Failed to create Google user", "google_id", googleID, "error", err)
		return nil, err
	}

	logger.InfoContext(ctx, "Google user registered", "user_id", user.ID)
	return user, nil
}

// generateUniqueUsername derives a username from the email's local part.
func generateUniqueUsername(email string) string {
	local, _, _ := strings.Cut(email, "@")
	base := strings.ReplaceAll(slug.Make(local), "-", "_")
	if base == "" {
		base = "user"
	}
	if len(base) > 140 {
		base = base[:140]
	}
	return base + "_" + utils.GenerateRandomString(6)
}
