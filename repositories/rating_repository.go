package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/badminton-community/models"
)

type RatingRepository interface {
	// GetForUpdate блокирует строку пользователя и возвращает текущий рейтинг.
	GetForUpdate(ctx context.Context, exec SQLExecutor, userID int) (int, error)
	// RecordChange сохраняет изменение рейтинга. Возвращает false, если пара
	// (result, user) уже записана.
	RecordChange(ctx context.Context, exec SQLExecutor, change *models.RatingChange) (bool, error)
	SetRating(ctx context.Context, exec SQLExecutor, userID int, rating int) error
	ListByResult(ctx context.Context, resultID int) ([]models.RatingChange, error)
}

type postgresRatingRepository struct {
	db *sql.DB
}

func NewPostgresRatingRepository(db *sql.DB) RatingRepository {
	return &postgresRatingRepository{db: db}
}

func (r *postgresRatingRepository) GetForUpdate(ctx context.Context, exec SQLExecutor, userID int) (int, error) {
	var rating int
	err := pick(exec, r.db).QueryRowContext(ctx,
		`SELECT elo_rating FROM users WHERE id = $1 FOR UPDATE`, userID).Scan(&rating)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrUserNotFound
		}
		return 0, fmt.Errorf("failed to lock user rating: %w", err)
	}
	return rating, nil
}

func (r *postgresRatingRepository) RecordChange(ctx context.Context, exec SQLExecutor, change *models.RatingChange) (bool, error) {
	query := `
		INSERT INTO rating_changes (result_id, user_id, rating_before, rating_after)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT ON CONSTRAINT rating_changes_pkey DO NOTHING
		RETURNING created_at`

	err := pick(exec, r.db).QueryRowContext(ctx, query,
		change.ResultID, change.UserID, change.RatingBefore, change.RatingAfter,
	).Scan(&change.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil // изменение по этому результату уже записано
		}
		return false, fmt.Errorf("failed to record rating change: %w", err)
	}
	return true, nil
}

func (r *postgresRatingRepository) SetRating(ctx context.Context, exec SQLExecutor, userID int, rating int) error {
	result, err := pick(exec, r.db).ExecContext(ctx,
		`UPDATE users SET elo_rating = $1 WHERE id = $2`, rating, userID)
	if err != nil {
		return fmt.Errorf("failed to update rating: %w", err)
	}
	return checkAffectedRows(result, ErrUserNotFound)
}

func (r *postgresRatingRepository) ListByResult(ctx context.Context, resultID int) ([]models.RatingChange, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT result_id, user_id, rating_before, rating_after, created_at
		FROM rating_changes WHERE result_id = $1 ORDER BY user_id`, resultID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rating changes: %w", err)
	}
	defer rows.Close()

	changes := make([]models.RatingChange, 0, 2)
	for rows.Next() {
		var c models.RatingChange
		if err := rows.Scan(&c.ResultID, &c.UserID, &c.RatingBefore, &c.RatingAfter, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan rating change row: %w", err)
		}
		changes = append(changes, c)
	}
	return changes, rows.Err()
}
