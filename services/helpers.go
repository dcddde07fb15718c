package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Dosada05/badminton-community/models"
	"github.com/Dosada05/badminton-community/repositories"
	"github.com/Dosada05/badminton-community/storage"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func publicURL(key *string, uploader storage.FileUploader) *string {
	if key == nil || *key == "" || uploader == nil {
		return nil
	}
	url := uploader.GetPublicURL(*key)
	if url == "" {
		return nil
	}
	return &url
}

func populateUserDetailsFunc(user *models.User, uploader storage.FileUploader) {
	if user == nil {
		return
	}
	user.AvatarURL = publicURL(user.AvatarKey, uploader)
}

func populateSummaryFunc(summary *models.UserSummary, uploader storage.FileUploader) {
	if summary == nil {
		return
	}
	summary.AvatarURL = publicURL(summary.AvatarKey, uploader)
}

// mapSessionRepoError переводит ошибки репозиториев сессий в ошибки сервиса.
func mapSessionRepoError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrSessionNotFound):
		return ErrSessionNotFound
	case errors.Is(err, repositories.ErrSessionStatusConflict):
		return fmt.Errorf("%w: session status changed concurrently", ErrInvalidState)
	case errors.Is(err, repositories.ErrParticipantNotFound):
		return ErrParticipantNotFound
	case errors.Is(err, repositories.ErrParticipantConflict):
		return fmt.Errorf("%w: user already participates in this session", ErrConflict)
	case errors.Is(err, repositories.ErrParticipantUserInvalid),
		errors.Is(err, repositories.ErrSessionCreatorInvalid),
		errors.Is(err, repositories.ErrUserNotFound):
		return ErrUserNotFound
	case errors.Is(err, repositories.ErrParticipantSessionInvalid):
		return ErrSessionNotFound
	}
	return err
}

// GetExtensionFromContentType возвращает расширение файла по MIME-типу изображения.
func GetExtensionFromContentType(contentType string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(contentType)) {
	case "image/jpeg", "image/jpg":
		return ".jpg", nil
	case "image/png":
		return ".png", nil
	case "image/gif":
		return ".gif", nil
	case "image/webp":
		return ".webp", nil
	}
	return "", fmt.Errorf("%w: unsupported image content type '%s'", ErrValidation, contentType)
}

func logIfErr(ctx context.Context, logger *slog.Logger, msg string, err error, attrs ...slog.Attr) {
	if err == nil || logger == nil {
		return
	}
	args := make([]any, 0, len(attrs)+1)
	for _, a := range attrs {
		args = append(args, a)
	}
	args = append(args, slog.Any("error", err))
	logger.ErrorContext(ctx, msg, args...)
}
