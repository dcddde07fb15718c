package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/badminton-community/models"
)

var (
	ErrMatchResultNotFound      = errors.New("match result not found")
	ErrMatchResultPlayerInvalid = errors.New("match result player conflict or invalid")
	ErrMatchResultSamePlayers   = errors.New("match result players must differ")
)

type MatchResultRepository interface {
	Create(ctx context.Context, result *models.MatchResult) error
	GetByID(ctx context.Context, id int) (*models.MatchResult, error)
	// GetForUpdate блокирует строку результата до конца транзакции.
	GetForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.MatchResult, error)
	// SetConfirmations записывает оба флага подтверждения и ставит confirmed_at,
	// когда оба впервые стали true.
	SetConfirmations(ctx context.Context, exec SQLExecutor, id int, player1, player2 bool) (*models.MatchResult, error)
	// MarkSettled ставит settled_at один раз. Возвращает false, если результат
	// уже был закрыт другим запросом.
	MarkSettled(ctx context.Context, id int) (bool, error)
	ListByPlayer(ctx context.Context, userID int, limit, offset int) ([]*models.MatchResult, error)
	Count(ctx context.Context, unsettledOnly bool) (int, error)
}

type postgresMatchResultRepository struct {
	db *sql.DB
}

func NewPostgresMatchResultRepository(db *sql.DB) MatchResultRepository {
	return &postgresMatchResultRepository{db: db}
}

const matchResultColumns = `
	id, session_id, player1_id, player2_id, player1_score, player2_score, outcome,
	player1_confirmed, player2_confirmed, confirmed_at, settled_at, created_at`

func scanMatchResult(row rowScanner, m *models.MatchResult) error {
	return row.Scan(
		&m.ID, &m.SessionID, &m.Player1ID, &m.Player2ID, &m.Player1Score, &m.Player2Score, &m.Outcome,
		&m.Player1Confirmed, &m.Player2Confirmed, &m.ConfirmedAt, &m.SettledAt, &m.CreatedAt,
	)
}

func (r *postgresMatchResultRepository) Create(ctx context.Context, result *models.MatchResult) error {
	query := `
		INSERT INTO match_results (session_id, player1_id, player2_id, player1_score, player2_score, outcome)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING` + matchResultColumns

	err := scanMatchResult(r.db.QueryRowContext(ctx, query,
		result.SessionID,
		result.Player1ID,
		result.Player2ID,
		result.Player1Score,
		result.Player2Score,
		result.Outcome,
	), result)
	if err != nil {
		if code, constraint, ok := pqErrorCode(err); ok {
			switch code {
			case pqForeignKeyViolation:
				if constraint == "match_results_session_id_fkey" {
					return ErrSessionNotFound
				}
				return ErrMatchResultPlayerInvalid
			case pqCheckViolation:
				if constraint == "chk_match_results_players" {
					return ErrMatchResultSamePlayers
				}
			}
		}
		return fmt.Errorf("failed to create match result: %w", err)
	}
	return nil
}

func (r *postgresMatchResultRepository) GetByID(ctx context.Context, id int) (*models.MatchResult, error) {
	return r.findOne(ctx, r.db, `SELECT`+matchResultColumns+` FROM match_results WHERE id = $1`, id)
}

func (r *postgresMatchResultRepository) GetForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.MatchResult, error) {
	return r.findOne(ctx, pick(exec, r.db), `SELECT`+matchResultColumns+` FROM match_results WHERE id = $1 FOR UPDATE`, id)
}

func (r *postgresMatchResultRepository) findOne(ctx context.Context, exec SQLExecutor, query string, args ...interface{}) (*models.MatchResult, error) {
	m := &models.MatchResult{}
	if err := scanMatchResult(exec.QueryRowContext(ctx, query, args...), m); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchResultNotFound
		}
		return nil, fmt.Errorf("failed to get match result: %w", err)
	}
	return m, nil
}

func (r *postgresMatchResultRepository) SetConfirmations(ctx context.Context, exec SQLExecutor, id int, player1, player2 bool) (*models.MatchResult, error) {
	query := `
		UPDATE match_results SET
			player1_confirmed = $1,
			player2_confirmed = $2,
			confirmed_at = CASE WHEN $1 AND $2 AND confirmed_at IS NULL THEN NOW() ELSE confirmed_at END
		WHERE id = $3
		RETURNING` + matchResultColumns

	m := &models.MatchResult{}
	if err := scanMatchResult(pick(exec, r.db).QueryRowContext(ctx, query, player1, player2, id), m); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchResultNotFound
		}
		return nil, fmt.Errorf("failed to update match result confirmations: %w", err)
	}
	return m, nil
}

func (r *postgresMatchResultRepository) MarkSettled(ctx context.Context, id int) (bool, error) {
	query := `UPDATE match_results SET settled_at = NOW() WHERE id = $1 AND settled_at IS NULL`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("failed to mark match result settled: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check rows affected: %w", err)
	}
	return affected > 0, nil
}

func (r *postgresMatchResultRepository) ListByPlayer(ctx context.Context, userID int, limit, offset int) ([]*models.MatchResult, error) {
	query := `SELECT` + matchResultColumns + `
		FROM match_results
		WHERE player1_id = $1 OR player2_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list match results: %w", err)
	}
	defer rows.Close()

	results := make([]*models.MatchResult, 0)
	for rows.Next() {
		var m models.MatchResult
		if err := scanMatchResult(rows, &m); err != nil {
			return nil, fmt.Errorf("failed to scan match result row: %w", err)
		}
		results = append(results, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating match result rows: %w", err)
	}
	return results, nil
}

func (r *postgresMatchResultRepository) Count(ctx context.Context, unsettledOnly bool) (int, error) {
	query := `SELECT COUNT(*) FROM match_results`
	if unsettledOnly {
		query += ` WHERE player1_confirmed AND player2_confirmed AND settled_at IS NULL`
	}
	var n int
	if err := r.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count match results: %w", err)
	}
	return n, nil
}
