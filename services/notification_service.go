package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/badminton-community/hub"
	"github.com/Dosada05/badminton-community/models"
	"github.com/Dosada05/badminton-community/repositories"
)

const notificationMessageType = "NOTIFICATION"

// NotificationPublisher отправляет сообщение подключённому пользователю.
// Реализуется *hub.Hub.
type NotificationPublisher interface {
	SendToUser(userID int, message hub.Message)
}

type NotificationService interface {
	// Notify сохраняет уведомление и отправляет его в открытые соединения
	// пользователя. Ошибки только логируются.
	Notify(ctx context.Context, userID int, kind models.NotificationType, title, message string, link *string)
	List(ctx context.Context, userID int, unreadOnly bool, limit, offset int) ([]models.Notification, error)
	MarkRead(ctx context.Context, id, userID int) error
	MarkAllRead(ctx context.Context, userID int) (int64, error)
	PurgeRead(ctx context.Context, olderThan time.Duration) (int64, error)
}

type notificationService struct {
	repo      repositories.NotificationRepository
	publisher NotificationPublisher
	logger    *slog.Logger
}

func NewNotificationService(repo repositories.NotificationRepository, publisher NotificationPublisher, logger *slog.Logger) NotificationService {
	return &notificationService{repo: repo, publisher: publisher, logger: logger}
}

func (s *notificationService) Notify(ctx context.Context, userID int, kind models.NotificationType, title, message string, link *string) {
	ctx = context.WithoutCancel(ctx)
	n := &models.Notification{
		UserID:  userID,
		Type:    kind,
		Title:   title,
		Message: message,
		Link:    link,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		logIfErr(ctx, s.logger, "failed to store notification", err,
			slog.Int("user_id", userID), slog.String("type", string(kind)))
		return
	}
	if s.publisher != nil {
		s.publisher.SendToUser(userID, hub.Message{Type: notificationMessageType, Payload: n})
	}
}

func (s *notificationService) List(ctx context.Context, userID int, unreadOnly bool, limit, offset int) ([]models.Notification, error) {
	limit, offset = normalizePage(limit, offset)
	list, err := s.repo.ListByUser(ctx, userID, unreadOnly, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications for user %d: %w", userID, err)
	}
	return list, nil
}

func (s *notificationService) MarkRead(ctx context.Context, id, userID int) error {
	if err := s.repo.MarkRead(ctx, id, userID); err != nil {
		if errors.Is(err, repositories.ErrNotificationNotFound) {
			return ErrNotificationNotFound
		}
		return fmt.Errorf("failed to mark notification %d read: %w", id, err)
	}
	return nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID int) (int64, error) {
	n, err := s.repo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read for user %d: %w", userID, err)
	}
	return n, nil
}

func (s *notificationService) PurgeRead(ctx context.Context, olderThan time.Duration) (int64, error) {
	return s.repo.DeleteReadBefore(ctx, time.Now().Add(-olderThan))
}
