package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/badminton-community/models"
	"github.com/Dosada05/badminton-community/repositories"
	"github.com/Dosada05/badminton-community/storage"
)

type InvitationService interface {
	Invite(ctx context.Context, inviterID, inviteeID, sessionID int) (*models.MatchInvitation, error)
	Respond(ctx context.Context, invitationID, inviteeID int, decision models.InvitationStatus) (*models.MatchInvitation, error)
	Cancel(ctx context.Context, invitationID, inviterID int) (*models.MatchInvitation, error)
	List(ctx context.Context, userID int, opts models.InvitationListOptions) ([]*models.MatchInvitation, error)
}

type invitationService struct {
	invitationRepo  repositories.InvitationRepository
	sessionRepo     repositories.SessionRepository
	participantRepo repositories.ParticipantRepository
	tx              repositories.TxManager
	notifier        NotificationService
	uploader        storage.FileUploader
	logger          *slog.Logger
}

func NewInvitationService(
	invitationRepo repositories.InvitationRepository,
	sessionRepo repositories.SessionRepository,
	participantRepo repositories.ParticipantRepository,
	tx repositories.TxManager,
	notifier NotificationService,
	uploader storage.FileUploader,
	logger *slog.Logger,
) InvitationService {
	return &invitationService{
		invitationRepo:  invitationRepo,
		sessionRepo:     sessionRepo,
		participantRepo: participantRepo,
		tx:              tx,
		notifier:        notifier,
		uploader:        uploader,
		logger:          logger,
	}
}

func (s *invitationService) Invite(ctx context.Context, inviterID, inviteeID, sessionID int) (*models.MatchInvitation, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repositories.ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get match session %d: %w", sessionID, err)
	}
	if inviteeID <= 0 {
		return nil, fmt.Errorf("%w: invitee is required", ErrValidation)
	}
	if inviterID == inviteeID {
		return nil, fmt.Errorf("%w: cannot invite yourself", ErrValidation)
	}

	isParticipant, err := s.participantRepo.Exists(ctx, nil, sessionID, inviterID)
	if err != nil {
		return nil, fmt.Errorf("failed to check inviter participation: %w", err)
	}
	if !isParticipant {
		return nil, fmt.Errorf("%w: only session participants can invite", ErrForbidden)
	}
	if session.Status != models.SessionStatusPending {
		return nil, fmt.Errorf("%w: session is %s", ErrInvalidState, session.Status)
	}

	alreadyJoined, err := s.participantRepo.Exists(ctx, nil, sessionID, inviteeID)
	if err != nil {
		return nil, fmt.Errorf("failed to check invitee participation: %w", err)
	}
	if alreadyJoined {
		return nil, fmt.Errorf("%w: user already participates in this session", ErrConflict)
	}

	invitation := &models.MatchInvitation{
		InviterID: inviterID,
		InviteeID: inviteeID,
		SessionID: sessionID,
	}
	if err := s.invitationRepo.Create(ctx, invitation); err != nil {
		switch {
		case errors.Is(err, repositories.ErrInvitationPendingExists):
			return nil, fmt.Errorf("%w: user already has a pending invitation to this session", ErrConflict)
		case errors.Is(err, repositories.ErrInvitationUserInvalid):
			return nil, ErrUserNotFound
		case errors.Is(err, repositories.ErrSessionNotFound):
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to create invitation: %w", err)
	}

	s.notify(ctx, inviteeID, models.NotificationInvitationReceived, "New match invitation",
		fmt.Sprintf("You were invited to \"%s\".", session.Title), invitationsLink())
	return invitation, nil
}

func (s *invitationService) Respond(ctx context.Context, invitationID, inviteeID int, decision models.InvitationStatus) (*models.MatchInvitation, error) {
	if decision != models.InvitationAccepted && decision != models.InvitationDeclined {
		return nil, fmt.Errorf("%w: decision must be ACCEPTED or DECLINED", ErrValidation)
	}

	current, err := s.invitationRepo.GetByID(ctx, invitationID)
	if err != nil {
		return nil, s.wrap(err, "respond to invitation", invitationID)
	}
	if current.InviteeID != inviteeID {
		return nil, fmt.Errorf("%w: only the invitee can respond", ErrForbidden)
	}

	var updated *models.MatchInvitation
	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		// Сначала сессия, потом приглашение: тот же порядок блокировок, что и в переходах сессии.
		var session *models.MatchSession
		if decision == models.InvitationAccepted {
			var err error
			if session, err = s.sessionRepo.GetForUpdate(ctx, exec, current.SessionID); err != nil {
				return err
			}
		}

		inv, err := s.invitationRepo.GetForUpdate(ctx, exec, invitationID)
		if err != nil {
			return err
		}
		if inv.Status != models.InvitationPending {
			return fmt.Errorf("%w: invitation is %s", ErrInvalidState, inv.Status)
		}

		if session != nil {
			if session.Status != models.SessionStatusPending {
				return fmt.Errorf("%w: session is %s", ErrInvalidState, session.Status)
			}
			joined, err := s.participantRepo.Exists(ctx, exec, session.ID, inviteeID)
			if err != nil {
				return err
			}
			// Уже вступил напрямую: приглашение просто закрывается как принятое.
			if !joined {
				count, err := s.participantRepo.CountBySession(ctx, exec, session.ID)
				if err != nil {
					return err
				}
				if count >= session.MatchType.Quorum() {
					return fmt.Errorf("%w: session is full", ErrConflict)
				}
				if err := s.participantRepo.Add(ctx, exec, &models.MatchParticipant{SessionID: session.ID, UserID: inviteeID}); err != nil {
					return err
				}
				if err := s.sessionRepo.AdjustParticipantCount(ctx, exec, session.ID, 1); err != nil {
					return err
				}
			}
		}

		updated, err = s.invitationRepo.UpdateStatus(ctx, exec, invitationID, decision)
		return err
	})
	if err != nil {
		return nil, s.wrap(err, "respond to invitation", invitationID)
	}

	verb := "declined"
	if decision == models.InvitationAccepted {
		verb = "accepted"
	}
	s.notify(ctx, updated.InviterID, models.NotificationInvitationAnswered, "Invitation answered",
		fmt.Sprintf("Your invitation was %s.", verb), sessionLink(updated.SessionID))
	return updated, nil
}

func (s *invitationService) Cancel(ctx context.Context, invitationID, inviterID int) (*models.MatchInvitation, error) {
	var updated *models.MatchInvitation
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		inv, err := s.invitationRepo.GetForUpdate(ctx, exec, invitationID)
		if err != nil {
			return err
		}
		if inv.InviterID != inviterID {
			return fmt.Errorf("%w: only the inviter can cancel", ErrForbidden)
		}
		if inv.Status != models.InvitationPending {
			return fmt.Errorf("%w: invitation is %s", ErrInvalidState, inv.Status)
		}
		updated, err = s.invitationRepo.UpdateStatus(ctx, exec, invitationID, models.InvitationCancelled)
		return err
	})
	if err != nil {
		return nil, s.wrap(err, "cancel invitation", invitationID)
	}
	return updated, nil
}

func (s *invitationService) List(ctx context.Context, userID int, opts models.InvitationListOptions) ([]*models.MatchInvitation, error) {
	switch opts.Direction {
	case "":
		opts.Direction = models.InvitationsReceived
	case models.InvitationsSent, models.InvitationsReceived:
	default:
		return nil, fmt.Errorf("%w: type must be sent or received", ErrValidation)
	}
	if opts.Status != nil && !opts.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown invitation status '%s'", ErrValidation, *opts.Status)
	}

	invitations, err := s.invitationRepo.ListForUser(ctx, userID, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations for user %d: %w", userID, err)
	}
	for _, inv := range invitations {
		populateSummaryFunc(inv.Inviter, s.uploader)
		populateSummaryFunc(inv.Invitee, s.uploader)
	}
	return invitations, nil
}

func (s *invitationService) wrap(err error, op string, invitationID int) error {
	switch {
	case err == nil:
		return nil
	case isServiceError(err):
		return err
	case errors.Is(err, repositories.ErrInvitationNotFound):
		return ErrInvitationNotFound
	case errors.Is(err, repositories.ErrInvitationStatusConflict):
		return fmt.Errorf("%w: invitation was answered concurrently", ErrInvalidState)
	}
	if mapped := mapSessionRepoError(err); mapped != err {
		return mapped
	}
	return fmt.Errorf("failed to %s %d: %w", op, invitationID, err)
}

func (s *invitationService) notify(ctx context.Context, userID int, kind models.NotificationType, title, message string, link *string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, userID, kind, title, message, link)
}

func invitationsLink() *string {
	link := "/invitations"
	return &link
}
