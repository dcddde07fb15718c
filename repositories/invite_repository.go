package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/badminton-community/models"
)

var (
	ErrInvitationNotFound       = errors.New("invitation not found")
	ErrInvitationPendingExists  = errors.New("invitee already holds a pending invitation for this session")
	ErrInvitationStatusConflict = errors.New("invitation status changed concurrently")
	ErrInvitationUserInvalid    = errors.New("invitation user conflict or invalid")
)

// InvitationRepository хранит приглашения в матчи. Строки не удаляются.
type InvitationRepository interface {
	// Create вставляет приглашение в статусе PENDING. Второе PENDING-приглашение
	// для той же пары (сессия, приглашённый) - ErrInvitationPendingExists.
	Create(ctx context.Context, invitation *models.MatchInvitation) error

	GetByID(ctx context.Context, id int) (*models.MatchInvitation, error)

	// GetForUpdate блокирует строку приглашения до конца транзакции.
	GetForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.MatchInvitation, error)

	// UpdateStatus переводит PENDING-приглашение в конечный статус.
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.InvitationStatus) (*models.MatchInvitation, error)

	// CancelPendingBySession отменяет все PENDING-приглашения сессии и
	// возвращает id приглашённых.
	CancelPendingBySession(ctx context.Context, exec SQLExecutor, sessionID int) ([]int, error)

	// ListForUser возвращает отправленные или полученные приглашения (новые первыми)
	// вместе с краткими данными пригласившего, приглашённого и сессии.
	ListForUser(ctx context.Context, userID int, opts models.InvitationListOptions) ([]*models.MatchInvitation, error)
}

type postgresInvitationRepository struct {
	db *sql.DB
}

func NewPostgresInvitationRepository(db *sql.DB) InvitationRepository {
	return &postgresInvitationRepository{db: db}
}

const invitationColumns = `id, inviter_id, invitee_id, session_id, status, created_at, responded_at`

func scanInvitation(row rowScanner, inv *models.MatchInvitation) error {
	return row.Scan(
		&inv.ID,
		&inv.InviterID,
		&inv.InviteeID,
		&inv.SessionID,
		&inv.Status,
		&inv.CreatedAt,
		&inv.RespondedAt,
	)
}

func (r *postgresInvitationRepository) Create(ctx context.Context, invitation *models.MatchInvitation) error {
	query := `
		INSERT INTO match_invitations (inviter_id, invitee_id, session_id, status)
		VALUES ($1, $2, $3, 'PENDING')
		RETURNING id, status, created_at`

	err := r.db.QueryRowContext(ctx, query,
		invitation.InviterID,
		invitation.InviteeID,
		invitation.SessionID,
	).Scan(&invitation.ID, &invitation.Status, &invitation.CreatedAt)

	if err != nil {
		if code, constraint, ok := pqErrorCode(err); ok {
			switch code {
			case pqUniqueViolation:
				if constraint == "match_invitations_one_pending_idx" {
					return ErrInvitationPendingExists
				}
			case pqForeignKeyViolation:
				switch constraint {
				case "match_invitations_inviter_id_fkey", "match_invitations_invitee_id_fkey":
					return ErrInvitationUserInvalid
				case "match_invitations_session_id_fkey":
					return ErrSessionNotFound
				}
			}
		}
		return fmt.Errorf("failed to create invitation: %w", err)
	}

	return nil
}

func (r *postgresInvitationRepository) GetByID(ctx context.Context, id int) (*models.MatchInvitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM match_invitations WHERE id = $1`
	return r.findOne(ctx, r.db, query, id)
}

func (r *postgresInvitationRepository) GetForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.MatchInvitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM match_invitations WHERE id = $1 FOR UPDATE`
	return r.findOne(ctx, pick(exec, r.db), query, id)
}

func (r *postgresInvitationRepository) findOne(ctx context.Context, exec SQLExecutor, query string, args ...interface{}) (*models.MatchInvitation, error) {
	inv := &models.MatchInvitation{}
	if err := scanInvitation(exec.QueryRowContext(ctx, query, args...), inv); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvitationNotFound
		}
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}
	return inv, nil
}

func (r *postgresInvitationRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.InvitationStatus) (*models.MatchInvitation, error) {
	query := `
		UPDATE match_invitations
		SET status = $1, responded_at = NOW()
		WHERE id = $2 AND status = 'PENDING'
		RETURNING ` + invitationColumns

	inv := &models.MatchInvitation{}
	if err := scanInvitation(pick(exec, r.db).QueryRowContext(ctx, query, status, id), inv); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvitationStatusConflict
		}
		return nil, fmt.Errorf("failed to update invitation status: %w", err)
	}
	return inv, nil
}

func (r *postgresInvitationRepository) CancelPendingBySession(ctx context.Context, exec SQLExecutor, sessionID int) ([]int, error) {
	query := `
		UPDATE match_invitations
		SET status = 'CANCELLED', responded_at = NOW()
		WHERE session_id = $1 AND status = 'PENDING'
		RETURNING invitee_id`

	rows, err := pick(exec, r.db).QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel pending invitations: %w", err)
	}
	defer rows.Close()

	invitees := make([]int, 0)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan cancelled invitation: %w", err)
		}
		invitees = append(invitees, id)
	}
	return invitees, rows.Err()
}

func (r *postgresInvitationRepository) ListForUser(ctx context.Context, userID int, opts models.InvitationListOptions) ([]*models.MatchInvitation, error) {
	column := "i.invitee_id"
	if opts.Direction == models.InvitationsSent {
		column = "i.inviter_id"
	}

	query := `
		SELECT
			i.id, i.inviter_id, i.invitee_id, i.session_id, i.status, i.created_at, i.responded_at,
			inviter.nickname, inviter.avatar_key,
			invitee.nickname, invitee.avatar_key,
			s.title, s.match_type, s.status, s.scheduled_at
		FROM match_invitations i
		JOIN users inviter ON inviter.id = i.inviter_id
		JOIN users invitee ON invitee.id = i.invitee_id
		JOIN match_sessions s ON s.id = i.session_id
		WHERE ` + column + ` = $1`
	args := []interface{}{userID}

	if opts.Status != nil {
		query += ` AND i.status = $2`
		args = append(args, *opts.Status)
	}
	query += ` ORDER BY i.created_at DESC, i.id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	defer rows.Close()

	invitations := make([]*models.MatchInvitation, 0)
	for rows.Next() {
		var (
			inv     models.MatchInvitation
			inviter models.UserSummary
			invitee models.UserSummary
			session models.SessionSummary
		)
		if err := rows.Scan(
			&inv.ID, &inv.InviterID, &inv.InviteeID, &inv.SessionID, &inv.Status, &inv.CreatedAt, &inv.RespondedAt,
			&inviter.Nickname, &inviter.AvatarKey,
			&invitee.Nickname, &invitee.AvatarKey,
			&session.Title, &session.MatchType, &session.Status, &session.ScheduledAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan invitation row: %w", err)
		}
		inviter.ID = inv.InviterID
		invitee.ID = inv.InviteeID
		session.ID = inv.SessionID
		inv.Inviter = &inviter
		inv.Invitee = &invitee
		inv.Session = &session
		invitations = append(invitations, &inv)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating invitation rows: %w", err)
	}

	return invitations, nil
}
