package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/badminton-community/models"
)

type PointsRepository interface {
	// Append добавляет запись в журнал. Возвращает false без ошибки, если запись
	// с тем же ключом (user, action, source) уже есть.
	Append(ctx context.Context, exec SQLExecutor, tx *models.PointTransaction) (bool, error)
	Exists(ctx context.Context, exec SQLExecutor, userID int, action models.PointActionType, sourceID string) (bool, error)
	CountSince(ctx context.Context, exec SQLExecutor, userID int, action models.PointActionType, since time.Time) (int, error)
	IncrementBalance(ctx context.Context, exec SQLExecutor, userID int, delta int) error
	// LockUser сериализует параллельные начисления одному пользователю.
	LockUser(ctx context.Context, exec SQLExecutor, userID int) error
	GetBalance(ctx context.Context, userID int) (int, error)
	History(ctx context.Context, userID int, limit, offset int) ([]models.PointTransaction, error)
}

type postgresPointsRepository struct {
	db *sql.DB
}

func NewPostgresPointsRepository(db *sql.DB) PointsRepository {
	return &postgresPointsRepository{db: db}
}

func (r *postgresPointsRepository) Append(ctx context.Context, exec SQLExecutor, t *models.PointTransaction) (bool, error) {
	query := `
		INSERT INTO point_transactions (user_id, action_type, source_id, points)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT ON CONSTRAINT point_transactions_key DO NOTHING
		RETURNING id, created_at`

	err := pick(exec, r.db).QueryRowContext(ctx, query, t.UserID, t.ActionType, t.SourceID, t.Points).
		Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil // ключ уже есть, DO NOTHING не вернул строку
		}
		if code, _, ok := pqErrorCode(err); ok && code == pqForeignKeyViolation {
			return false, ErrUserNotFound
		}
		return false, fmt.Errorf("failed to append point transaction: %w", err)
	}
	return true, nil
}

func (r *postgresPointsRepository) Exists(ctx context.Context, exec SQLExecutor, userID int, action models.PointActionType, sourceID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM point_transactions
			WHERE user_id = $1 AND action_type = $2 AND source_id = $3
		)`
	var exists bool
	if err := pick(exec, r.db).QueryRowContext(ctx, query, userID, action, sourceID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check point transaction: %w", err)
	}
	return exists, nil
}

func (r *postgresPointsRepository) CountSince(ctx context.Context, exec SQLExecutor, userID int, action models.PointActionType, since time.Time) (int, error) {
	query := `
		SELECT COUNT(*) FROM point_transactions
		WHERE user_id = $1 AND action_type = $2 AND created_at >= $3`
	var n int
	if err := pick(exec, r.db).QueryRowContext(ctx, query, userID, action, since).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count point transactions: %w", err)
	}
	return n, nil
}

func (r *postgresPointsRepository) IncrementBalance(ctx context.Context, exec SQLExecutor, userID int, delta int) error {
	result, err := pick(exec, r.db).ExecContext(ctx,
		`UPDATE users SET points_balance = points_balance + $1 WHERE id = $2`, delta, userID)
	if err != nil {
		return fmt.Errorf("failed to update points balance: %w", err)
	}
	return checkAffectedRows(result, ErrUserNotFound)
}

func (r *postgresPointsRepository) LockUser(ctx context.Context, exec SQLExecutor, userID int) error {
	var id int
	err := pick(exec, r.db).QueryRowContext(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, userID).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to lock user: %w", err)
	}
	return nil
}

func (r *postgresPointsRepository) GetBalance(ctx context.Context, userID int) (int, error) {
	var balance int
	err := r.db.QueryRowContext(ctx, `SELECT points_balance FROM users WHERE id = $1`, userID).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrUserNotFound
		}
		return 0, fmt.Errorf("failed to get points balance: %w", err)
	}
	return balance, nil
}

func (r *postgresPointsRepository) History(ctx context.Context, userID int, limit, offset int) ([]models.PointTransaction, error) {
	query := `
		SELECT id, user_id, action_type, source_id, points, created_at
		FROM point_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list point transactions: %w", err)
	}
	defer rows.Close()

	history := make([]models.PointTransaction, 0)
	for rows.Next() {
		var t models.PointTransaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.ActionType, &t.SourceID, &t.Points, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan point transaction row: %w", err)
		}
		history = append(history, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating point transaction rows: %w", err)
	}
	return history, nil
}
