package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Dosada05/badminton-community/models"
)

var (
	ErrSessionNotFound       = errors.New("match session not found")
	ErrSessionStatusConflict = errors.New("match session status changed concurrently")
	ErrSessionCreatorInvalid = errors.New("match session creator conflict or invalid")
)

type SessionRepository interface {
	Create(ctx context.Context, exec SQLExecutor, session *models.MatchSession) error
	GetByID(ctx context.Context, id int) (*models.MatchSession, error)
	// GetForUpdate блокирует строку сессии до конца транзакции.
	GetForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.MatchSession, error)
	List(ctx context.Context, opts models.SessionListOptions) ([]*models.MatchSession, error)
	// TransitionStatus меняет статус, только если сессия всё ещё в ожидаемом
	// статусе, и проставляет соответствующую метку времени.
	TransitionStatus(ctx context.Context, exec SQLExecutor, id int, from, to models.SessionStatus) (*models.MatchSession, error)
	AdjustParticipantCount(ctx context.Context, exec SQLExecutor, id int, delta int) error
	Count(ctx context.Context, status *models.SessionStatus) (int, error)
}

type postgresSessionRepository struct {
	db *sql.DB
}

func NewPostgresSessionRepository(db *sql.DB) SessionRepository {
	return &postgresSessionRepository{db: db}
}

const sessionColumns = `
	s.id, s.creator_id, s.match_type, s.status, s.title, s.location, s.scheduled_at,
	s.entry_fee_points, s.entry_fee_feathers, s.current_participants,
	s.started_at, s.completed_at, s.cancelled_at, s.created_at`

func scanSession(row rowScanner, s *models.MatchSession) error {
	return row.Scan(
		&s.ID, &s.CreatorID, &s.MatchType, &s.Status, &s.Title, &s.Location, &s.ScheduledAt,
		&s.EntryFeePoints, &s.EntryFeeFeathers, &s.CurrentParticipants,
		&s.StartedAt, &s.CompletedAt, &s.CancelledAt, &s.CreatedAt,
	)
}

func (r *postgresSessionRepository) Create(ctx context.Context, exec SQLExecutor, session *models.MatchSession) error {
	query := `
		INSERT INTO match_sessions
			(creator_id, match_type, status, title, location, scheduled_at, entry_fee_points, entry_fee_feathers)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, current_participants, created_at`

	err := pick(exec, r.db).QueryRowContext(ctx, query,
		session.CreatorID,
		session.MatchType,
		session.Status,
		session.Title,
		session.Location,
		session.ScheduledAt,
		session.EntryFeePoints,
		session.EntryFeeFeathers,
	).Scan(&session.ID, &session.CurrentParticipants, &session.CreatedAt)
	if err != nil {
		if code, constraint, ok := pqErrorCode(err); ok && code == pqForeignKeyViolation &&
			constraint == "match_sessions_creator_id_fkey" {
			return ErrSessionCreatorInvalid
		}
		return fmt.Errorf("failed to create match session: %w", err)
	}
	return nil
}

func (r *postgresSessionRepository) GetByID(ctx context.Context, id int) (*models.MatchSession, error) {
	query := `SELECT` + sessionColumns + ` FROM match_sessions s WHERE s.id = $1`
	return r.findOne(ctx, r.db, query, id)
}

func (r *postgresSessionRepository) GetForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.MatchSession, error) {
	query := `SELECT` + sessionColumns + ` FROM match_sessions s WHERE s.id = $1 FOR UPDATE`
	return r.findOne(ctx, pick(exec, r.db), query, id)
}

func (r *postgresSessionRepository) findOne(ctx context.Context, exec SQLExecutor, query string, args ...interface{}) (*models.MatchSession, error) {
	s := &models.MatchSession{}
	if err := scanSession(exec.QueryRowContext(ctx, query, args...), s); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get match session: %w", err)
	}
	return s, nil
}

func (r *postgresSessionRepository) List(ctx context.Context, opts models.SessionListOptions) ([]*models.MatchSession, error) {
	var (
		where []string
		args  []interface{}
	)
	addArg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if opts.Status != nil {
		where = append(where, "s.status = "+addArg(*opts.Status))
	}
	if opts.MatchType != nil {
		where = append(where, "s.match_type = "+addArg(*opts.MatchType))
	}
	if opts.CreatorID != nil {
		where = append(where, "s.creator_id = "+addArg(*opts.CreatorID))
	}
	if opts.ParticipantID != nil {
		where = append(where, "EXISTS (SELECT 1 FROM match_participants mp WHERE mp.session_id = s.id AND mp.user_id = "+addArg(*opts.ParticipantID)+")")
	}

	var qb strings.Builder
	qb.WriteString(`SELECT` + sessionColumns + ` FROM match_sessions s`)
	if len(where) > 0 {
		qb.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	qb.WriteString(" ORDER BY s.scheduled_at DESC, s.id DESC")
	qb.WriteString(" LIMIT " + addArg(opts.Limit))
	qb.WriteString(" OFFSET " + addArg(opts.Offset))

	rows, err := r.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list match sessions: %w", err)
	}
	defer rows.Close()

	sessions := make([]*models.MatchSession, 0)
	for rows.Next() {
		var s models.MatchSession
		if err := scanSession(rows, &s); err != nil {
			return nil, fmt.Errorf("failed to scan match session row: %w", err)
		}
		sessions = append(sessions, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating match session rows: %w", err)
	}
	return sessions, nil
}

func (r *postgresSessionRepository) TransitionStatus(ctx context.Context, exec SQLExecutor, id int, from, to models.SessionStatus) (*models.MatchSession, error) {
	query := `
		UPDATE match_sessions s SET
			status = $1::varchar,
			started_at   = CASE WHEN $1::varchar = 'IN_PROGRESS' THEN NOW() ELSE s.started_at END,
			completed_at = CASE WHEN $1::varchar = 'COMPLETED'   THEN NOW() ELSE s.completed_at END,
			cancelled_at = CASE WHEN $1::varchar = 'CANCELLED'   THEN NOW() ELSE s.cancelled_at END
		WHERE s.id = $2 AND s.status = $3
		RETURNING` + sessionColumns

	s := &models.MatchSession{}
	err := scanSession(pick(exec, r.db).QueryRowContext(ctx, query, to, id, from), s)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionStatusConflict
		}
		return nil, fmt.Errorf("failed to update match session status: %w", err)
	}
	return s, nil
}

func (r *postgresSessionRepository) AdjustParticipantCount(ctx context.Context, exec SQLExecutor, id int, delta int) error {
	query := `UPDATE match_sessions SET current_participants = GREATEST(current_participants + $1, 0) WHERE id = $2`
	result, err := pick(exec, r.db).ExecContext(ctx, query, delta, id)
	if err != nil {
		return fmt.Errorf("failed to adjust participant count: %w", err)
	}
	return checkAffectedRows(result, ErrSessionNotFound)
}

func (r *postgresSessionRepository) Count(ctx context.Context, status *models.SessionStatus) (int, error) {
	query := `SELECT COUNT(*) FROM match_sessions`
	args := []interface{}{}
	if status != nil {
		query += ` WHERE status = $1`
		args = append(args, *status)
	}
	var n int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count match sessions: %w", err)
	}
	return n, nil
}
