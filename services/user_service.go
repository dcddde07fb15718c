package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/Dosada05/badminton-community/models"
	"github.com/Dosada05/badminton-community/repositories"
	"github.com/Dosada05/badminton-community/storage"
	"github.com/google/uuid"
)

const avatarKeyPrefix = "avatars/"

var ErrStorageUnavailable = errors.New("file storage is not configured")

type UserService interface {
	GetProfile(ctx context.Context, id int) (*models.User, error)
	UploadAvatar(ctx context.Context, userID int, contentType string, file io.Reader) (*models.User, error)
}

type userService struct {
	userRepo repositories.UserRepository
	uploader storage.FileUploader
	logger   *slog.Logger
}

func NewUserService(userRepo repositories.UserRepository, uploader storage.FileUploader, logger *slog.Logger) UserService {
	return &userService{userRepo: userRepo, uploader: uploader, logger: logger}
}

func (s *userService) GetProfile(ctx context.Context, id int) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	populateUserDetailsFunc(user, s.uploader)
	return user, nil
}

func (s *userService) UploadAvatar(ctx context.Context, userID int, contentType string, file io.Reader) (*models.User, error) {
	if s.uploader == nil {
		return nil, ErrStorageUnavailable
	}
	ext, err := GetExtensionFromContentType(contentType)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %d: %w", userID, err)
	}
	oldKey := derefString(user.AvatarKey)

	newKey := avatarKeyPrefix + uuid.NewString() + ext
	if _, err := s.uploader.Upload(ctx, newKey, contentType, file); err != nil {
		return nil, fmt.Errorf("failed to upload avatar: %w", err)
	}

	if err := s.userRepo.UpdateAvatarKey(ctx, userID, &newKey); err != nil {
		if delErr := s.uploader.Delete(context.WithoutCancel(ctx), newKey); delErr != nil {
			logIfErr(ctx, s.logger, "failed to remove orphaned avatar", delErr, slog.String("key", newKey))
		}
		return nil, fmt.Errorf("failed to save avatar key: %w", err)
	}

	if oldKey != "" && oldKey != newKey {
		if err := s.uploader.Delete(ctx, oldKey); err != nil {
			logIfErr(ctx, s.logger, "failed to delete previous avatar", err,
				slog.Int("user_id", userID), slog.String("key", oldKey))
		}
	}

	user.AvatarKey = &newKey
	populateUserDetailsFunc(user, s.uploader)
	return user, nil
}
