package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/Dosada05/badminton-community/models"
	"github.com/Dosada05/badminton-community/repositories"
	"github.com/Dosada05/badminton-community/storage"
	"golang.org/x/sync/errgroup"
)

type CreateSessionInput struct {
	MatchType        models.MatchType `json:"match_type"`
	Title            string           `json:"title"`
	Location         *string          `json:"location,omitempty"`
	ScheduledAt      time.Time        `json:"scheduled_at"`
	EntryFeePoints   int              `json:"entry_fee_points"`
	EntryFeeFeathers int              `json:"entry_fee_feathers"`
}

type AddScheduleInput struct {
	StartsAt time.Time `json:"starts_at"`
	Note     *string   `json:"note,omitempty"`
}

type SessionService interface {
	CreateSession(ctx context.Context, creatorID int, input CreateSessionInput) (*models.MatchSession, error)
	GetSession(ctx context.Context, id int) (*models.MatchSession, error)
	ListSessions(ctx context.Context, opts models.SessionListOptions) ([]*models.MatchSession, error)
	JoinSession(ctx context.Context, sessionID, userID int) error
	StartSession(ctx context.Context, sessionID int, actor models.Actor) (*models.MatchSession, error)
	CompleteSession(ctx context.Context, sessionID int, actor models.Actor) (*models.MatchSession, error)
	CancelSession(ctx context.Context, sessionID int, actor models.Actor) (*models.MatchSession, error)
	LeaveSession(ctx context.Context, sessionID, userID int) error
	KickParticipant(ctx context.Context, sessionID int, actor models.Actor, targetUserID int) error

	AddSchedule(ctx context.Context, sessionID int, actor models.Actor, input AddScheduleInput) (*models.SessionSchedule, error)
	AttendSchedule(ctx context.Context, scheduleID, userID int) error
	UnattendSchedule(ctx context.Context, scheduleID, userID int) error
}

type sessionService struct {
	sessionRepo     repositories.SessionRepository
	participantRepo repositories.ParticipantRepository
	scheduleRepo    repositories.ScheduleRepository
	invitationRepo  repositories.InvitationRepository
	tx              repositories.TxManager
	notifier        NotificationService
	points          PointsService
	uploader        storage.FileUploader
	logger          *slog.Logger
}

func NewSessionService(
	sessionRepo repositories.SessionRepository,
	participantRepo repositories.ParticipantRepository,
	scheduleRepo repositories.ScheduleRepository,
	invitationRepo repositories.InvitationRepository,
	tx repositories.TxManager,
	notifier NotificationService,
	points PointsService,
	uploader storage.FileUploader,
	logger *slog.Logger,
) SessionService {
	return &sessionService{
		sessionRepo:     sessionRepo,
		participantRepo: participantRepo,
		scheduleRepo:    scheduleRepo,
		invitationRepo:  invitationRepo,
		tx:              tx,
		notifier:        notifier,
		points:          points,
		uploader:        uploader,
		logger:          logger,
	}
}

func (s *sessionService) CreateSession(ctx context.Context, creatorID int, input CreateSessionInput) (*models.MatchSession, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if !input.MatchType.Valid() {
		return nil, fmt.Errorf("%w: unknown match type '%s'", ErrValidation, input.MatchType)
	}
	if input.ScheduledAt.IsZero() {
		return nil, fmt.Errorf("%w: scheduled_at is required", ErrValidation)
	}
	if input.EntryFeePoints < 0 || input.EntryFeeFeathers < 0 {
		return nil, fmt.Errorf("%w: entry fees cannot be negative", ErrValidation)
	}

	session := &models.MatchSession{
		CreatorID:        creatorID,
		MatchType:        input.MatchType,
		Status:           models.SessionStatusPending,
		Title:            title,
		Location:         input.Location,
		ScheduledAt:      input.ScheduledAt,
		EntryFeePoints:   input.EntryFeePoints,
		EntryFeeFeathers: input.EntryFeeFeathers,
	}

	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.sessionRepo.Create(ctx, exec, session); err != nil {
			return err
		}
		creator := &models.MatchParticipant{SessionID: session.ID, UserID: creatorID}
		if err := s.participantRepo.Add(ctx, exec, creator); err != nil {
			return err
		}
		if err := s.sessionRepo.AdjustParticipantCount(ctx, exec, session.ID, 1); err != nil {
			return err
		}
		session.CurrentParticipants++
		session.Participants = []models.MatchParticipant{*creator}
		return nil
	})
	if err != nil {
		if mapped := mapSessionRepoError(err); mapped != err {
			return nil, mapped
		}
		return nil, fmt.Errorf("failed to create match session: %w", err)
	}
	return session, nil
}

func (s *sessionService) GetSession(ctx context.Context, id int) (*models.MatchSession, error) {
	var (
		session      *models.MatchSession
		participants []models.MatchParticipant
		schedules    []models.SessionSchedule
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		session, err = s.sessionRepo.GetByID(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		participants, err = s.participantRepo.ListBySession(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		schedules, err = s.scheduleRepo.ListBySession(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		if errors.Is(err, repositories.ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load match session %d: %w", id, err)
	}

	for i := range participants {
		populateSummaryFunc(participants[i].User, s.uploader)
	}
	session.Participants = participants
	session.Schedules = schedules
	return session, nil
}

func (s *sessionService) ListSessions(ctx context.Context, opts models.SessionListOptions) ([]*models.MatchSession, error) {
	if opts.Status != nil {
		switch *opts.Status {
		case models.SessionStatusPending, models.SessionStatusInProgress,
			models.SessionStatusCompleted, models.SessionStatusCancelled:
		default:
			return nil, fmt.Errorf("%w: unknown session status '%s'", ErrValidation, *opts.Status)
		}
	}
	if opts.MatchType != nil && !opts.MatchType.Valid() {
		return nil, fmt.Errorf("%w: unknown match type '%s'", ErrValidation, *opts.MatchType)
	}
	opts.Limit, opts.Offset = normalizePage(opts.Limit, opts.Offset)

	sessions, err := s.sessionRepo.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list match sessions: %w", err)
	}
	return sessions, nil
}

func (s *sessionService) JoinSession(ctx context.Context, sessionID, userID int) error {
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		session, err := s.sessionRepo.GetForUpdate(ctx, exec, sessionID)
		if err != nil {
			return err
		}
		if session.Status != models.SessionStatusPending {
			return fmt.Errorf("%w: session is %s", ErrInvalidState, session.Status)
		}
		return s.addParticipantLocked(ctx, exec, session, userID)
	})
	return s.wrap(err, "join match session", sessionID)
}

// addParticipantLocked добавляет участника в сессию, строка которой уже
// заблокирована транзакцией вызывающего.
func (s *sessionService) addParticipantLocked(ctx context.Context, exec repositories.SQLExecutor, session *models.MatchSession, userID int) error {
	count, err := s.participantRepo.CountBySession(ctx, exec, session.ID)
	if err != nil {
		return err
	}
	if count >= session.MatchType.Quorum() {
		return fmt.Errorf("%w: session is full", ErrConflict)
	}
	if err := s.participantRepo.Add(ctx, exec, &models.MatchParticipant{SessionID: session.ID, UserID: userID}); err != nil {
		return err
	}
	return s.sessionRepo.AdjustParticipantCount(ctx, exec, session.ID, 1)
}

func (s *sessionService) StartSession(ctx context.Context, sessionID int, actor models.Actor) (*models.MatchSession, error) {
	var (
		started      *models.MatchSession
		participants []int
	)
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		session, err := s.sessionRepo.GetForUpdate(ctx, exec, sessionID)
		if err != nil {
			return err
		}
		if session.CreatorID != actor.UserID {
			return fmt.Errorf("%w: only the session creator can start it", ErrForbidden)
		}
		if session.Status != models.SessionStatusPending {
			return fmt.Errorf("%w: session is %s", ErrInvalidState, session.Status)
		}
		// Кворум проверяем под блокировкой сессии, чтобы никто не вышел между проверкой и стартом
		count, err := s.participantRepo.CountBySession(ctx, exec, sessionID)
		if err != nil {
			return err
		}
		if quorum := session.MatchType.Quorum(); count < quorum {
			return fmt.Errorf("%w: %d of %d participants", ErrQuorumNotMet, count, quorum)
		}

		started, err = s.sessionRepo.TransitionStatus(ctx, exec, sessionID, models.SessionStatusPending, models.SessionStatusInProgress)
		if err != nil {
			return err
		}
		if _, err := s.invitationRepo.CancelPendingBySession(ctx, exec, sessionID); err != nil {
			return err
		}
		participants, err = s.participantRepo.ListUserIDs(ctx, exec, sessionID)
		return err
	})
	if err != nil {
		return nil, s.wrap(err, "start match session", sessionID)
	}

	for _, uid := range participants {
		if uid == actor.UserID {
			continue
		}
		s.notify(ctx, uid, models.NotificationSessionStarted, "Match started",
			fmt.Sprintf("Session \"%s\" has started.", started.Title), sessionLink(sessionID))
	}
	return started, nil
}

func (s *sessionService) CompleteSession(ctx context.Context, sessionID int, actor models.Actor) (*models.MatchSession, error) {
	var completed *models.MatchSession
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		session, err := s.sessionRepo.GetForUpdate(ctx, exec, sessionID)
		if err != nil {
			return err
		}
		if session.CreatorID != actor.UserID {
			return fmt.Errorf("%w: only the session creator can complete it", ErrForbidden)
		}
		if session.Status != models.SessionStatusInProgress {
			return fmt.Errorf("%w: session is %s", ErrInvalidState, session.Status)
		}
		completed, err = s.sessionRepo.TransitionStatus(ctx, exec, sessionID, models.SessionStatusInProgress, models.SessionStatusCompleted)
		return err
	})
	if err != nil {
		return nil, s.wrap(err, "complete match session", sessionID)
	}

	if s.points != nil {
		awarded, err := s.points.Award(ctx, completed.CreatorID, models.PointActionSessionHosted, strconv.Itoa(sessionID))
		if err != nil {
			logIfErr(ctx, s.logger, "failed to award hosting points", err,
				slog.Int("session_id", sessionID), slog.Int("user_id", completed.CreatorID))
		} else if awarded > 0 {
			s.notify(ctx, completed.CreatorID, models.NotificationPointsAwarded, "Points awarded",
				fmt.Sprintf("You earned %d points for hosting \"%s\".", awarded, completed.Title), nil)
		}
	}
	return completed, nil
}

func (s *sessionService) CancelSession(ctx context.Context, sessionID int, actor models.Actor) (*models.MatchSession, error) {
	var (
		cancelled    *models.MatchSession
		participants []int
		invitees     []int
	)
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		session, err := s.sessionRepo.GetForUpdate(ctx, exec, sessionID)
		if err != nil {
			return err
		}
		if session.CreatorID != actor.UserID && !actor.Role.IsElevated() {
			return fmt.Errorf("%w: only the session creator or a moderator can cancel it", ErrForbidden)
		}
		if session.Status != models.SessionStatusPending && session.Status != models.SessionStatusInProgress {
			return fmt.Errorf("%w: session is %s", ErrInvalidState, session.Status)
		}
		cancelled, err = s.sessionRepo.TransitionStatus(ctx, exec, sessionID, session.Status, models.SessionStatusCancelled)
		if err != nil {
			return err
		}
		if invitees, err = s.invitationRepo.CancelPendingBySession(ctx, exec, sessionID); err != nil {
			return err
		}
		participants, err = s.participantRepo.ListUserIDs(ctx, exec, sessionID)
		return err
	})
	if err != nil {
		return nil, s.wrap(err, "cancel match session", sessionID)
	}

	msg := fmt.Sprintf("Session \"%s\" was cancelled.", cancelled.Title)
	for _, uid := range append(participants, invitees...) {
		if uid == actor.UserID {
			continue
		}
		s.notify(ctx, uid, models.NotificationSessionCancelled, "Match cancelled", msg, sessionLink(sessionID))
	}
	return cancelled, nil
}

func (s *sessionService) LeaveSession(ctx context.Context, sessionID, userID int) error {
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		session, err := s.sessionRepo.GetForUpdate(ctx, exec, sessionID)
		if err != nil {
			return err
		}
		if session.CreatorID == userID {
			return fmt.Errorf("%w: the creator cannot leave the session", ErrForbidden)
		}
		if session.Status != models.SessionStatusPending {
			return fmt.Errorf("%w: session is %s", ErrInvalidState, session.Status)
		}
		return s.removeParticipantLocked(ctx, exec, sessionID, userID)
	})
	return s.wrap(err, "leave match session", sessionID)
}

func (s *sessionService) KickParticipant(ctx context.Context, sessionID int, actor models.Actor, targetUserID int) error {
	var title string
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		session, err := s.sessionRepo.GetForUpdate(ctx, exec, sessionID)
		if err != nil {
			return err
		}
		if session.CreatorID != actor.UserID && !actor.Role.IsElevated() {
			return fmt.Errorf("%w: only the session creator or a moderator can remove participants", ErrForbidden)
		}
		if targetUserID == session.CreatorID {
			return fmt.Errorf("%w: the session creator cannot be removed", ErrInvalidTarget)
		}
		if session.Status != models.SessionStatusPending {
			return fmt.Errorf("%w: session is %s", ErrInvalidState, session.Status)
		}
		title = session.Title
		return s.removeParticipantLocked(ctx, exec, sessionID, targetUserID)
	})
	if err != nil {
		return s.wrap(err, "remove participant from match session", sessionID)
	}

	s.notify(ctx, targetUserID, models.NotificationParticipantKicked, "Removed from match",
		fmt.Sprintf("You were removed from session \"%s\".", title), sessionLink(sessionID))
	return nil
}

func (s *sessionService) removeParticipantLocked(ctx context.Context, exec repositories.SQLExecutor, sessionID, userID int) error {
	if err := s.participantRepo.RemoveScheduleAttendance(ctx, exec, sessionID, userID); err != nil {
		return err
	}
	if err := s.participantRepo.Remove(ctx, exec, sessionID, userID); err != nil {
		return err
	}
	return s.sessionRepo.AdjustParticipantCount(ctx, exec, sessionID, -1)
}

func (s *sessionService) AddSchedule(ctx context.Context, sessionID int, actor models.Actor, input AddScheduleInput) (*models.SessionSchedule, error) {
	if input.StartsAt.IsZero() {
		return nil, fmt.Errorf("%w: starts_at is required", ErrValidation)
	}
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, s.wrap(err, "add schedule", sessionID)
	}
	if session.CreatorID != actor.UserID {
		return nil, fmt.Errorf("%w: only the session creator can add schedules", ErrForbidden)
	}
	if session.Status == models.SessionStatusCompleted || session.Status == models.SessionStatusCancelled {
		return nil, fmt.Errorf("%w: session is %s", ErrInvalidState, session.Status)
	}

	schedule := &models.SessionSchedule{SessionID: sessionID, StartsAt: input.StartsAt, Note: input.Note}
	if err := s.scheduleRepo.Create(ctx, schedule); err != nil {
		return nil, s.wrap(err, "add schedule", sessionID)
	}
	return schedule, nil
}

func (s *sessionService) AttendSchedule(ctx context.Context, scheduleID, userID int) error {
	schedule, err := s.scheduleRepo.GetByID(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, repositories.ErrScheduleNotFound) {
			return ErrScheduleNotFound
		}
		return fmt.Errorf("failed to get schedule %d: %w", scheduleID, err)
	}
	if err := s.scheduleRepo.AddAttendee(ctx, scheduleID, schedule.SessionID, userID); err != nil {
		switch {
		case errors.Is(err, repositories.ErrScheduleNotParticipant):
			return fmt.Errorf("%w: only session participants can attend its schedules", ErrForbidden)
		case errors.Is(err, repositories.ErrScheduleAttendanceExists):
			return fmt.Errorf("%w: attendance already recorded", ErrConflict)
		}
		return fmt.Errorf("failed to record attendance for schedule %d: %w", scheduleID, err)
	}
	return nil
}

func (s *sessionService) UnattendSchedule(ctx context.Context, scheduleID, userID int) error {
	if err := s.scheduleRepo.RemoveAttendee(ctx, scheduleID, userID); err != nil {
		if errors.Is(err, repositories.ErrScheduleAttendanceMissing) {
			return fmt.Errorf("%w: attendance not recorded", ErrNotFound)
		}
		return fmt.Errorf("failed to remove attendance for schedule %d: %w", scheduleID, err)
	}
	return nil
}

// wrap пропускает ошибки сервиса как есть и переводит ошибки репозиториев.
func (s *sessionService) wrap(err error, op string, sessionID int) error {
	if err == nil {
		return nil
	}
	mapped := mapSessionRepoError(err)
	if mapped != err || isServiceError(err) {
		return mapped
	}
	return fmt.Errorf("failed to %s %d: %w", op, sessionID, err)
}

func (s *sessionService) notify(ctx context.Context, userID int, kind models.NotificationType, title, message string, link *string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, userID, kind, title, message, link)
}

func sessionLink(sessionID int) *string {
	link := "/sessions/" + strconv.Itoa(sessionID)
	return &link
}

func isServiceError(err error) bool {
	for _, target := range []error{
		ErrNotFound, ErrValidation, ErrInvalidState, ErrQuorumNotMet, ErrInvalidTarget,
		ErrConflict, ErrUnauthorized, ErrForbidden, ErrSettlementPending, ErrStorageUnavailable,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
