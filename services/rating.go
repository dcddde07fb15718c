package services

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/Dosada05/badminton-community/models"
	"github.com/Dosada05/badminton-community/repositories"
)

// EloKFactor - максимальное изменение рейтинга за один матч.
const EloKFactor = 32

// ExpectedScore - вероятность победы игрока с рейтингом a над игроком с рейтингом b.
func ExpectedScore(a, b int) float64 {
	return 1 / (1 + math.Pow(10, float64(b-a)/400))
}

// EloUpdate возвращает новые рейтинги победителя и проигравшего.
// Сумма рейтингов сохраняется.
func EloUpdate(winner, loser, k int) (int, int) {
	delta := int(math.Round(float64(k) * (1 - ExpectedScore(winner, loser))))
	return winner + delta, loser - delta
}

type RatingService interface {
	// ApplyResult пересчитывает рейтинги обоих игроков. Для ничьей и уже
	// применённого результата ничего не делает.
	ApplyResult(ctx context.Context, result *models.MatchResult) ([]models.RatingChange, error)
}

type ratingService struct {
	repo repositories.RatingRepository
	tx   repositories.TxManager
	k    int
}

func NewRatingService(repo repositories.RatingRepository, tx repositories.TxManager) RatingService {
	return &ratingService{repo: repo, tx: tx, k: EloKFactor}
}

func (s *ratingService) ApplyResult(ctx context.Context, result *models.MatchResult) ([]models.RatingChange, error) {
	winnerID, decided := result.WinnerID()
	if !decided {
		return nil, nil
	}
	loserID := result.Player1ID
	if winnerID == result.Player1ID {
		loserID = result.Player2ID
	}

	var changes []models.RatingChange
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		// Блокируем по возрастанию id, иначе параллельные начисления словят deadlock
		first, second := winnerID, loserID
		if second < first {
			first, second = second, first
		}
		ratings := make(map[int]int, 2)
		for _, id := range []int{first, second} {
			r, err := s.repo.GetForUpdate(ctx, exec, id)
			if err != nil {
				return err
			}
			ratings[id] = r
		}

		newWinner, newLoser := EloUpdate(ratings[winnerID], ratings[loserID], s.k)
		pending := []models.RatingChange{
			{ResultID: result.ID, UserID: winnerID, RatingBefore: ratings[winnerID], RatingAfter: newWinner},
			{ResultID: result.ID, UserID: loserID, RatingBefore: ratings[loserID], RatingAfter: newLoser},
		}
		for i := range pending {
			recorded, err := s.repo.RecordChange(ctx, exec, &pending[i])
			if err != nil {
				return err
			}
			if !recorded {
				// Уже применено предыдущей попыткой
				return nil
			}
		}
		for _, c := range pending {
			if err := s.repo.SetRating(ctx, exec, c.UserID, c.RatingAfter); err != nil {
				return err
			}
		}
		changes = pending
		return nil
	})
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to apply rating for result %d: %w", result.ID, err)
	}
	return changes, nil
}
