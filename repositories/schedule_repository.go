package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/badminton-community/models"
	"github.com/lib/pq"
)

var (
	ErrScheduleNotFound          = errors.New("session schedule not found")
	ErrScheduleAttendanceExists  = errors.New("schedule attendance already recorded")
	ErrScheduleAttendanceMissing = errors.New("schedule attendance not found")
	ErrScheduleNotParticipant    = errors.New("schedule attendee is not a session participant")
)

type ScheduleRepository interface {
	Create(ctx context.Context, schedule *models.SessionSchedule) error
	GetByID(ctx context.Context, id int) (*models.SessionSchedule, error)
	ListBySession(ctx context.Context, sessionID int) ([]models.SessionSchedule, error)
	AddAttendee(ctx context.Context, scheduleID, sessionID, userID int) error
	RemoveAttendee(ctx context.Context, scheduleID, userID int) error
}

type postgresScheduleRepository struct {
	db *sql.DB
}

func NewPostgresScheduleRepository(db *sql.DB) ScheduleRepository {
	return &postgresScheduleRepository{db: db}
}

func (r *postgresScheduleRepository) Create(ctx context.Context, schedule *models.SessionSchedule) error {
	query := `
		INSERT INTO session_schedules (session_id, starts_at, note)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, schedule.SessionID, schedule.StartsAt, schedule.Note).
		Scan(&schedule.ID, &schedule.CreatedAt)
	if err != nil {
		if code, _, ok := pqErrorCode(err); ok && code == pqForeignKeyViolation {
			return ErrSessionNotFound
		}
		return fmt.Errorf("failed to create session schedule: %w", err)
	}
	return nil
}

func (r *postgresScheduleRepository) GetByID(ctx context.Context, id int) (*models.SessionSchedule, error) {
	query := `SELECT id, session_id, starts_at, note, created_at FROM session_schedules WHERE id = $1`
	s := &models.SessionSchedule{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&s.ID, &s.SessionID, &s.StartsAt, &s.Note, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrScheduleNotFound
		}
		return nil, fmt.Errorf("failed to get session schedule: %w", err)
	}
	return s, nil
}

func (r *postgresScheduleRepository) ListBySession(ctx context.Context, sessionID int) ([]models.SessionSchedule, error) {
	query := `
		SELECT s.id, s.session_id, s.starts_at, s.note, s.created_at,
			COALESCE(array_agg(sp.user_id ORDER BY sp.created_at) FILTER (WHERE sp.user_id IS NOT NULL), '{}')
		FROM session_schedules s
		LEFT JOIN schedule_participants sp ON sp.schedule_id = s.id
		WHERE s.session_id = $1
		GROUP BY s.id
		ORDER BY s.starts_at ASC`

	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list session schedules: %w", err)
	}
	defer rows.Close()

	schedules := make([]models.SessionSchedule, 0)
	for rows.Next() {
		var (
			s         models.SessionSchedule
			attendees pq.Int64Array
		)
		if err := rows.Scan(&s.ID, &s.SessionID, &s.StartsAt, &s.Note, &s.CreatedAt, &attendees); err != nil {
			return nil, fmt.Errorf("failed to scan session schedule row: %w", err)
		}
		s.AttendeeIDs = make([]int, len(attendees))
		for i, id := range attendees {
			s.AttendeeIDs[i] = int(id)
		}
		schedules = append(schedules, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating session schedule rows: %w", err)
	}
	return schedules, nil
}

func (r *postgresScheduleRepository) AddAttendee(ctx context.Context, scheduleID, sessionID, userID int) error {
	query := `INSERT INTO schedule_participants (schedule_id, session_id, user_id) VALUES ($1, $2, $3)`
	if _, err := r.db.ExecContext(ctx, query, scheduleID, sessionID, userID); err != nil {
		if code, constraint, ok := pqErrorCode(err); ok {
			switch {
			case code == pqUniqueViolation && constraint == "schedule_participants_pkey":
				return ErrScheduleAttendanceExists
			case code == pqForeignKeyViolation && constraint == "schedule_participants_participant_fkey":
				return ErrScheduleNotParticipant
			}
		}
		return fmt.Errorf("failed to add schedule attendee: %w", err)
	}
	return nil
}

func (r *postgresScheduleRepository) RemoveAttendee(ctx context.Context, scheduleID, userID int) error {
	query := `DELETE FROM schedule_participants WHERE schedule_id = $1 AND user_id = $2`
	result, err := r.db.ExecContext(ctx, query, scheduleID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove schedule attendee: %w", err)
	}
	return checkAffectedRows(result, ErrScheduleAttendanceMissing)
}
