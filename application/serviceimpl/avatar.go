package serviceimpl

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"task-api/domain/models"
	"task-api/domain/services"
	"task-api/pkg/logger"
)

const maxAvatarSize = 2 << 20

var avatarExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

func avatarFolder(userID uuid.UUID) string {
	return "avatars/" + userID.String()
}

func ownsAvatarKey(userID uuid.UUID, key string) bool {
	return strings.HasPrefix(key, avatarFolder(userID)+"/")
}

// checkAvatarURL rejects profile avatar URLs that point at another user's upload.
func (s *UserServiceImpl) checkAvatarURL(userID uuid.UUID, url string) error {
	if key, ok := s.avatars.PathFromURL(url); ok && !ownsAvatarKey(userID, key) {
		return services.NewValidationError(map[string]string{
			"avatar": "Avatar URL does not belong to this account.",
		})
	}
	return nil
}

// UpdateAvatar stores a new avatar image and points the profile at it. The
// previous upload is removed once the profile is saved.
func (s *UserServiceImpl) UpdateAvatar(ctx context.Context, userID uuid.UUID, file io.Reader, size int64, contentType string) (*models.User, error) {
	ext, ok := avatarExtensions[contentType]
	if !ok {
		return nil, services.NewValidationError(map[string]string{
			"avatar": "Upload a valid image. Supported formats: PNG, JPEG, GIF, WEBP.",
		})
	}
	if size <= 0 || size > maxAvatarSize {
		return nil, services.NewValidationError(map[string]string{
			"avatar": fmt.Sprintf("Ensure the file is between 1 byte and %d bytes.", maxAvatarSize),
		})
	}

	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	previous := user.Avatar

	key := avatarFolder(userID) + "/" + uuid.NewString() + ext
	url, err := s.avatars.UploadFile(ctx, file, size, key, contentType)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to store avatar", "user_id", userID, "error", err)
		return nil, err
	}

	user.Avatar = url
	if err := s.userRepo.Update(ctx, user); err != nil {
		logger.ErrorContext(ctx, "Failed to save avatar", "user_id", userID, "error", err)
		if delErr := s.avatars.DeleteFile(ctx, key); delErr != nil {
			logger.WarnContext(ctx, "Failed to remove orphaned avatar", "path", key, "error", delErr)
		}
		return nil, err
	}

	if oldKey, ok := s.avatars.PathFromURL(previous); ok && ownsAvatarKey(userID, oldKey) {
		if err := s.avatars.DeleteFile(ctx, oldKey); err != nil {
			logger.WarnContext(ctx, "Failed to remove previous avatar", "path", oldKey, "error", err)
		}
	}

	logger.InfoContext(ctx, "Avatar updated", "user_id", userID, "provider", s.avatars.GetProviderName())
	return user, nil
}
