package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/badminton-community/models"
	"github.com/Dosada05/badminton-community/repositories"
)

// PointRule задаёт количество очков за действие и сколько раз в сутки (UTC)
// их можно получить. DailyLimit = 0 - без ограничения.
type PointRule struct {
	Points     int
	DailyLimit int
}

var DefaultPointRules = map[models.PointActionType]PointRule{
	models.PointActionMatchWin:      {Points: 10, DailyLimit: 10},
	models.PointActionSessionHosted: {Points: 5, DailyLimit: 3},
}

type PointsService interface {
	// Award начисляет очки по правилу для ключа (userID, action, sourceID)
	// и возвращает начисленную сумму. Повторный ключ или исчерпанный
	// дневной лимит дают 0.
	Award(ctx context.Context, userID int, action models.PointActionType, sourceID string) (int, error)
	Balance(ctx context.Context, userID int) (int, error)
	History(ctx context.Context, userID int, limit, offset int) ([]models.PointTransaction, error)
}

type pointsService struct {
	repo  repositories.PointsRepository
	tx    repositories.TxManager
	rules map[models.PointActionType]PointRule
	now   func() time.Time
}

func NewPointsService(repo repositories.PointsRepository, tx repositories.TxManager, rules map[models.PointActionType]PointRule) PointsService {
	if rules == nil {
		rules = DefaultPointRules
	}
	return &pointsService{repo: repo, tx: tx, rules: rules, now: time.Now}
}

func (s *pointsService) Award(ctx context.Context, userID int, action models.PointActionType, sourceID string) (int, error) {
	rule, ok := s.rules[action]
	if !ok {
		return 0, fmt.Errorf("%w: unknown point action '%s'", ErrValidation, action)
	}
	if sourceID == "" {
		return 0, fmt.Errorf("%w: point source id is required", ErrValidation)
	}

	awarded := 0
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.repo.LockUser(ctx, exec, userID); err != nil {
			return err
		}

		exists, err := s.repo.Exists(ctx, exec, userID, action, sourceID)
		if err != nil || exists {
			return err
		}

		// Лимит считается с начала текущих суток по UTC
		if rule.DailyLimit > 0 {
			now := s.now().UTC()
			dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
			count, err := s.repo.CountSince(ctx, exec, userID, action, dayStart)
			if err != nil {
				return err
			}
			if count >= rule.DailyLimit {
				return nil
			}
		}

		entry := &models.PointTransaction{
			UserID:     userID,
			ActionType: action,
			SourceID:   sourceID,
			Points:     rule.Points,
		}
		inserted, err := s.repo.Append(ctx, exec, entry)
		if err != nil || !inserted {
			return err
		}
		if err := s.repo.IncrementBalance(ctx, exec, userID, rule.Points); err != nil {
			return err
		}
		awarded = rule.Points
		return nil
	})
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return 0, ErrUserNotFound
		}
		return 0, fmt.Errorf("failed to award %s points to user %d: %w", action, userID, err)
	}
	return awarded, nil
}

func (s *pointsService) Balance(ctx context.Context, userID int) (int, error) {
	balance, err := s.repo.GetBalance(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return 0, ErrUserNotFound
		}
		return 0, fmt.Errorf("failed to get points balance for user %d: %w", userID, err)
	}
	return balance, nil
}

func (s *pointsService) History(ctx context.Context, userID int, limit, offset int) ([]models.PointTransaction, error) {
	limit, offset = normalizePage(limit, offset)
	history, err := s.repo.History(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get points history for user %d: %w", userID, err)
	}
	return history, nil
}
