package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/Dosada05/badminton-community/models"
	"github.com/Dosada05/badminton-community/repositories"
)

type SubmitResultInput struct {
	SessionID    *int                `json:"session_id,omitempty"`
	Player1ID    int                 `json:"player1_id"`
	Player2ID    int                 `json:"player2_id"`
	Player1Score int                 `json:"player1_score"`
	Player2Score int                 `json:"player2_score"`
	Outcome      models.MatchOutcome `json:"outcome"`
}

// ConfirmOutcome - состояние результата после вызова подтверждения.
// Confirmed становится true, когда подтвердили оба игрока.
type ConfirmOutcome struct {
	Result    *models.MatchResult
	Confirmed bool
	Message   string
}

type MatchResultService interface {
	SubmitResult(ctx context.Context, submitterID int, input SubmitResultInput) (*models.MatchResult, error)
	ConfirmResult(ctx context.Context, resultID, userID int) (*ConfirmOutcome, error)
	GetResult(ctx context.Context, id int) (*models.MatchResult, error)
	ListResults(ctx context.Context, userID int, limit, offset int) ([]*models.MatchResult, error)
}

type matchResultService struct {
	resultRepo repositories.MatchResultRepository
	tx         repositories.TxManager
	points     PointsService
	ratings    RatingService
	notifier   NotificationService
	logger     *slog.Logger
}

func NewMatchResultService(
	resultRepo repositories.MatchResultRepository,
	tx repositories.TxManager,
	points PointsService,
	ratings RatingService,
	notifier NotificationService,
	logger *slog.Logger,
) MatchResultService {
	return &matchResultService{
		resultRepo: resultRepo,
		tx:         tx,
		points:     points,
		ratings:    ratings,
		notifier:   notifier,
		logger:     logger,
	}
}

func validateResultInput(input SubmitResultInput) error {
	if input.Player1ID <= 0 || input.Player2ID <= 0 {
		return fmt.Errorf("%w: both players are required", ErrValidation)
	}
	if input.Player1ID == input.Player2ID {
		return fmt.Errorf("%w: players must be different users", ErrValidation)
	}
	if input.Player1Score < 0 || input.Player2Score < 0 {
		return fmt.Errorf("%w: scores cannot be negative", ErrValidation)
	}
	if !input.Outcome.Valid() {
		return fmt.Errorf("%w: unknown outcome '%s'", ErrValidation, input.Outcome)
	}
	consistent := false
	switch input.Outcome {
	case models.OutcomePlayer1Win:
		consistent = input.Player1Score > input.Player2Score
	case models.OutcomePlayer2Win:
		consistent = input.Player2Score > input.Player1Score
	case models.OutcomeDraw:
		consistent = input.Player1Score == input.Player2Score
	}
	if !consistent {
		return fmt.Errorf("%w: outcome %s does not match score %d:%d",
			ErrValidation, input.Outcome, input.Player1Score, input.Player2Score)
	}
	return nil
}

func (s *matchResultService) SubmitResult(ctx context.Context, submitterID int, input SubmitResultInput) (*models.MatchResult, error) {
	if submitterID != input.Player1ID && submitterID != input.Player2ID {
		return nil, fmt.Errorf("%w: only a player of the match can submit its result", ErrForbidden)
	}
	if err := validateResultInput(input); err != nil {
		return nil, err
	}

	result := &models.MatchResult{
		SessionID:    input.SessionID,
		Player1ID:    input.Player1ID,
		Player2ID:    input.Player2ID,
		Player1Score: input.Player1Score,
		Player2Score: input.Player2Score,
		Outcome:      input.Outcome,
	}
	if err := s.resultRepo.Create(ctx, result); err != nil {
		switch {
		case errors.Is(err, repositories.ErrSessionNotFound):
			return nil, ErrSessionNotFound
		case errors.Is(err, repositories.ErrMatchResultPlayerInvalid):
			return nil, ErrUserNotFound
		case errors.Is(err, repositories.ErrMatchResultSamePlayers):
			return nil, fmt.Errorf("%w: players must be different users", ErrValidation)
		}
		return nil, fmt.Errorf("failed to create match result: %w", err)
	}

	opponent := result.Player1ID
	if submitterID == result.Player1ID {
		opponent = result.Player2ID
	}
	s.notify(ctx, opponent, models.NotificationResultSubmitted, "Confirm match result",
		fmt.Sprintf("A result %d:%d was submitted for your match. Please confirm it.", result.Player1Score, result.Player2Score),
		resultLink(result.ID))
	return result, nil
}

func (s *matchResultService) ConfirmResult(ctx context.Context, resultID, userID int) (*ConfirmOutcome, error) {
	var (
		result           *models.MatchResult
		alreadyConfirmed bool
		transitioned     bool
	)
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		current, err := s.resultRepo.GetForUpdate(ctx, exec, resultID)
		if err != nil {
			return err
		}
		if !current.HasPlayer(userID) {
			return fmt.Errorf("%w: only a player of the match can confirm its result", ErrForbidden)
		}
		// Оба уже подтвердили: успех без изменений, ниже повторится незавершённое начисление
		if current.BothConfirmed() {
			result = current
			alreadyConfirmed = true
			return nil
		}

		p1, p2 := current.Player1Confirmed, current.Player2Confirmed
		if userID == current.Player1ID {
			p1 = true
		}
		if userID == current.Player2ID {
			p2 = true
		}
		if p1 == current.Player1Confirmed && p2 == current.Player2Confirmed {
			result = current
			return nil
		}

		result, err = s.resultRepo.SetConfirmations(ctx, exec, resultID, p1, p2)
		if err != nil {
			return err
		}
		transitioned = result.BothConfirmed()
		return nil
	})
	if err != nil {
		switch {
		case isServiceError(err):
			return nil, err
		case errors.Is(err, repositories.ErrMatchResultNotFound):
			return nil, ErrResultNotFound
		}
		return nil, fmt.Errorf("failed to confirm match result %d: %w", resultID, err)
	}

	out := &ConfirmOutcome{Result: result, Confirmed: result.BothConfirmed()}
	switch {
	case alreadyConfirmed:
		out.Message = "result already confirmed"
	case transitioned:
		out.Message = "result confirmed by both players"
	default:
		out.Message = "confirmation recorded, waiting for the opponent"
	}

	// Начисление идёт после commit, без удерживаемых блокировок
	if out.Confirmed && result.SettledAt == nil {
		if err := s.settle(ctx, result); err != nil {
			s.logger.ErrorContext(ctx, "match result settlement failed",
				slog.Int("result_id", result.ID), slog.Any("error", err))
			return out, fmt.Errorf("%w: %v", ErrSettlementPending, err)
		}
	}
	return out, nil
}

// settle начисляет очки победителю и пересчитывает рейтинги. Каждый шаг
// идемпотентен по id результата.
func (s *matchResultService) settle(ctx context.Context, result *models.MatchResult) error {
	awarded := 0
	if winnerID, decided := result.WinnerID(); decided {
		var err error
		awarded, err = s.points.Award(ctx, winnerID, models.PointActionMatchWin, strconv.Itoa(result.ID))
		if err != nil {
			return fmt.Errorf("award points: %w", err)
		}
		if _, err := s.ratings.ApplyResult(ctx, result); err != nil {
			return fmt.Errorf("apply rating: %w", err)
		}
	}
	marked, err := s.resultRepo.MarkSettled(ctx, result.ID)
	if err != nil {
		return fmt.Errorf("mark settled: %w", err)
	}
	if !marked {
		// Параллельный confirm уже закрыл результат и разослал уведомления.
		return nil
	}

	for _, uid := range []int{result.Player1ID, result.Player2ID} {
		s.notify(ctx, uid, models.NotificationResultConfirmed, "Result confirmed",
			fmt.Sprintf("The result %d:%d is confirmed.", result.Player1Score, result.Player2Score), resultLink(result.ID))
	}
	if awarded > 0 {
		winnerID, _ := result.WinnerID()
		s.notify(ctx, winnerID, models.NotificationPointsAwarded, "Points awarded",
			fmt.Sprintf("You earned %d points for winning a match.", awarded), resultLink(result.ID))
	}
	return nil
}

func (s *matchResultService) GetResult(ctx context.Context, id int) (*models.MatchResult, error) {
	result, err := s.resultRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchResultNotFound) {
			return nil, ErrResultNotFound
		}
		return nil, fmt.Errorf("failed to get match result %d: %w", id, err)
	}
	return result, nil
}

func (s *matchResultService) ListResults(ctx context.Context, userID int, limit, offset int) ([]*models.MatchResult, error) {
	limit, offset = normalizePage(limit, offset)
	results, err := s.resultRepo.ListByPlayer(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list match results for user %d: %w", userID, err)
	}
	return results, nil
}

func (s *matchResultService) notify(ctx context.Context, userID int, kind models.NotificationType, title, message string, link *string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, userID, kind, title, message, link)
}

func resultLink(resultID int) *string {
	link := "/results/" + strconv.Itoa(resultID)
	return &link
}
