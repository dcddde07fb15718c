package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/badminton-community/repositories"
	"github.com/go-co-op/gocron/v2"
)

// NotificationRetention - сколько хранятся прочитанные уведомления.
const NotificationRetention = 90 * 24 * time.Hour

// MaintenanceScheduler периодически выполняет фоновое обслуживание.
type MaintenanceScheduler struct {
	scheduler     gocron.Scheduler
	repo          repositories.MaintenanceRepository
	notifications NotificationService
	logger        *slog.Logger
}

func NewMaintenanceScheduler(
	repo repositories.MaintenanceRepository,
	notifications NotificationService,
	interval time.Duration,
	logger *slog.Logger,
) (*MaintenanceScheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	m := &MaintenanceScheduler{
		scheduler:     sched,
		repo:          repo,
		notifications: notifications,
		logger:        logger,
	}
	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(m.RunOnce, context.Background()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, fmt.Errorf("failed to register maintenance job: %w", err)
	}
	return m, nil
}

func (m *MaintenanceScheduler) Start() {
	m.scheduler.Start()
}

func (m *MaintenanceScheduler) Shutdown() error {
	return m.scheduler.Shutdown()
}

// RunOnce выполняет все шаги обслуживания. Ошибка шага логируется
// и не останавливает остальные.
func (m *MaintenanceScheduler) RunOnce(ctx context.Context) {
	if err := m.repo.CleanupExpiredSubscriptions(ctx); err != nil {
		m.logger.ErrorContext(ctx, "subscription cleanup failed", slog.Any("error", err))
	}

	purged, err := m.notifications.PurgeRead(ctx, NotificationRetention)
	if err != nil {
		m.logger.ErrorContext(ctx, "notification purge failed", slog.Any("error", err))
		return
	}
	m.logger.InfoContext(ctx, "maintenance completed", slog.Int64("notifications_purged", purged))
}
