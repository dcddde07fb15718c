package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/badminton-community/models"
)

var (
	ErrParticipantNotFound       = errors.New("participant not found")
	ErrParticipantConflict       = errors.New("participant conflict: user already joined this session")
	ErrParticipantUserInvalid    = errors.New("participant user conflict or invalid")
	ErrParticipantSessionInvalid = errors.New("participant session conflict or invalid")
)

type ParticipantRepository interface {
	Add(ctx context.Context, exec SQLExecutor, p *models.MatchParticipant) error
	Remove(ctx context.Context, exec SQLExecutor, sessionID, userID int) error
	Exists(ctx context.Context, exec SQLExecutor, sessionID, userID int) (bool, error)
	CountBySession(ctx context.Context, exec SQLExecutor, sessionID int) (int, error)
	ListBySession(ctx context.Context, sessionID int) ([]models.MatchParticipant, error)
	ListUserIDs(ctx context.Context, exec SQLExecutor, sessionID int) ([]int, error)
	// RemoveScheduleAttendance удаляет отметки посещения пользователя во всех
	// слотах расписания сессии.
	RemoveScheduleAttendance(ctx context.Context, exec SQLExecutor, sessionID, userID int) error
}

type postgresParticipantRepository struct {
	db *sql.DB
}

func NewPostgresParticipantRepository(db *sql.DB) ParticipantRepository {
	return &postgresParticipantRepository{db: db}
}

func (r *postgresParticipantRepository) Add(ctx context.Context, exec SQLExecutor, p *models.MatchParticipant) error {
	query := `
		INSERT INTO match_participants (session_id, user_id)
		VALUES ($1, $2)
		RETURNING joined_at`

	err := pick(exec, r.db).QueryRowContext(ctx, query, p.SessionID, p.UserID).Scan(&p.JoinedAt)
	if err != nil {
		if code, constraint, ok := pqErrorCode(err); ok {
			switch code {
			case pqUniqueViolation:
				if constraint == "match_participants_pkey" {
					return ErrParticipantConflict
				}
			case pqForeignKeyViolation:
				switch constraint {
				case "match_participants_user_id_fkey":
					return ErrParticipantUserInvalid
				case "match_participants_session_id_fkey":
					return ErrParticipantSessionInvalid
				}
			}
		}
		return fmt.Errorf("failed to add participant: %w", err)
	}
	return nil
}

func (r *postgresParticipantRepository) Remove(ctx context.Context, exec SQLExecutor, sessionID, userID int) error {
	query := `DELETE FROM match_participants WHERE session_id = $1 AND user_id = $2`
	result, err := pick(exec, r.db).ExecContext(ctx, query, sessionID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove participant: %w", err)
	}
	return checkAffectedRows(result, ErrParticipantNotFound)
}

func (r *postgresParticipantRepository) Exists(ctx context.Context, exec SQLExecutor, sessionID, userID int) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM match_participants WHERE session_id = $1 AND user_id = $2)`
	var exists bool
	if err := pick(exec, r.db).QueryRowContext(ctx, query, sessionID, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check participant: %w", err)
	}
	return exists, nil
}

func (r *postgresParticipantRepository) CountBySession(ctx context.Context, exec SQLExecutor, sessionID int) (int, error) {
	query := `SELECT COUNT(*) FROM match_participants WHERE session_id = $1`
	var n int
	if err := pick(exec, r.db).QueryRowContext(ctx, query, sessionID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count participants: %w", err)
	}
	return n, nil
}

func (r *postgresParticipantRepository) ListBySession(ctx context.Context, sessionID int) ([]models.MatchParticipant, error) {
	query := `
		SELECT p.session_id, p.user_id, p.joined_at, u.nickname, u.avatar_key
		FROM match_participants p
		JOIN users u ON u.id = p.user_id
		WHERE p.session_id = $1
		ORDER BY p.joined_at ASC`

	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants by session: %w", err)
	}
	defer rows.Close()

	participants := make([]models.MatchParticipant, 0)
	for rows.Next() {
		var (
			p models.MatchParticipant
			u models.UserSummary
		)
		if err := rows.Scan(&p.SessionID, &p.UserID, &p.JoinedAt, &u.Nickname, &u.AvatarKey); err != nil {
			return nil, fmt.Errorf("failed to scan participant row: %w", err)
		}
		u.ID = p.UserID
		p.User = &u
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating participant rows: %w", err)
	}
	return participants, nil
}

func (r *postgresParticipantRepository) ListUserIDs(ctx context.Context, exec SQLExecutor, sessionID int) ([]int, error) {
	rows, err := pick(exec, r.db).QueryContext(ctx, `SELECT user_id FROM match_participants WHERE session_id = $1`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participant ids: %w", err)
	}
	defer rows.Close()

	ids := make([]int, 0)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan participant id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *postgresParticipantRepository) RemoveScheduleAttendance(ctx context.Context, exec SQLExecutor, sessionID, userID int) error {
	query := `DELETE FROM schedule_participants WHERE session_id = $1 AND user_id = $2`
	if _, err := pick(exec, r.db).ExecContext(ctx, query, sessionID, userID); err != nil {
		return fmt.Errorf("failed to remove schedule attendance: %w", err)
	}
	return nil
}
