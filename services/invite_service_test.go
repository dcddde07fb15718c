package services

import (
	"context"
	"errors"
	"testing"

	"github.com/Dosada05/badminton-community/models"
)

func TestInvite(t *testing.T) {
	env := newSessionEnv()
	ctx := context.Background()
	s := env.create(t, 1, models.MatchTypeDoublesMen)
	env.join(t, s.ID, 2)

	tests := []struct {
		name      string
		inviter   int
		invitee   int
		sessionID int
		want      error
	}{
		{"self invite", 1, 1, s.ID, ErrValidation},
		{"inviter not participant", 5, 6, s.ID, ErrForbidden},
		{"invitee already joined", 1, 2, s.ID, ErrConflict},
		{"missing session", 1, 6, 404, ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := env.invites.Invite(ctx, tt.inviter, tt.invitee, tt.sessionID); !errors.Is(err, tt.want) {
				t.Fatalf("Invite() error = %v, want %v", err, tt.want)
			}
		})
	}

	inv, err := env.invites.Invite(ctx, 2, 6, s.ID)
	if err != nil {
		t.Fatalf("Invite() error = %v", err)
	}
	if inv.Status != models.InvitationPending {
		t.Fatalf("Status = %s, want PENDING", inv.Status)
	}
	if env.notifier.count(6, models.NotificationInvitationReceived) != 1 {
		t.Fatalf("invitee not notified")
	}
	if _, err := env.invites.Invite(ctx, 1, 6, s.ID); !errors.Is(err, ErrConflict) {
		t.Fatalf("duplicate pending invite error = %v, want %v", err, ErrConflict)
	}

	if _, err := env.invites.Respond(ctx, inv.ID, 6, models.InvitationDeclined); err != nil {
		t.Fatalf("Respond(decline) error = %v", err)
	}
	if _, err := env.invites.Invite(ctx, 1, 6, s.ID); err != nil {
		t.Fatalf("re-invite after decline error = %v", err)
	}
}

func TestInviteRequiresPendingSession(t *testing.T) {
	env := newSessionEnv()
	ctx := context.Background()
	s := env.create(t, 1, models.MatchTypeSinglesMen)
	env.join(t, s.ID, 2)
	if _, err := env.svc.StartSession(ctx, s.ID, user(1)); err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}
	if _, err := env.invites.Invite(ctx, 1, 3, s.ID); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("Invite() error = %v, want %v", err, ErrInvalidState)
	}
}

func TestRespondAccept(t *testing.T) {
	env := newSessionEnv()
	ctx := context.Background()
	s := env.create(t, 1, models.MatchTypeSinglesWomen)
	inv, err := env.invites.Invite(ctx, 1, 2, s.ID)
	if err != nil {
		t.Fatalf("Invite() error = %v", err)
	}

	if _, err := env.invites.Respond(ctx, inv.ID, 3, models.InvitationAccepted); !errors.Is(err, ErrForbidden) {
		t.Fatalf("respond by stranger error = %v, want %v", err, ErrForbidden)
	}
	if _, err := env.invites.Respond(ctx, inv.ID, 2, models.InvitationCancelled); !errors.Is(err, ErrValidation) {
		t.Fatalf("respond with CANCELLED error = %v, want %v", err, ErrValidation)
	}

	accepted, err := env.invites.Respond(ctx, inv.ID, 2, models.InvitationAccepted)
	if err != nil {
		t.Fatalf("Respond() error = %v", err)
	}
	if accepted.Status != models.InvitationAccepted || accepted.RespondedAt == nil {
		t.Fatalf("invitation = %+v, want ACCEPTED with RespondedAt", accepted)
	}
	if ok, _ := env.participants.Exists(ctx, nil, s.ID, 2); !ok {
		t.Fatalf("invitee did not join the session")
	}
	got, _ := env.sessions.get(s.ID)
	if got.CurrentParticipants != 2 {
		t.Fatalf("CurrentParticipants = %d, want 2", got.CurrentParticipants)
	}
	if env.notifier.count(1, models.NotificationInvitationAnswered) != 1 {
		t.Fatalf("inviter not notified")
	}

	if _, err := env.invites.Respond(ctx, inv.ID, 2, models.InvitationDeclined); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("second respond error = %v, want %v", err, ErrInvalidState)
	}
	if _, err := env.invites.Cancel(ctx, inv.ID, 1); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("cancel accepted invitation error = %v, want %v", err, ErrInvalidState)
	}
}

func TestRespondAcceptIntoFullSessionKeepsInvitationPending(t *testing.T) {
	env := newSessionEnv()
	ctx := context.Background()
	s := env.create(t, 1, models.MatchTypeSinglesMen)
	inv, err := env.invites.Invite(ctx, 1, 3, s.ID)
	if err != nil {
		t.Fatalf("Invite() error = %v", err)
	}
	env.join(t, s.ID, 2)

	if _, err := env.invites.Respond(ctx, inv.ID, 3, models.InvitationAccepted); !errors.Is(err, ErrConflict) {
		t.Fatalf("Respond() error = %v, want %v", err, ErrConflict)
	}
	if got := env.invitations.status(inv.ID); got != models.InvitationPending {
		t.Fatalf("invitation status = %s, want PENDING", got)
	}
	if ok, _ := env.participants.Exists(ctx, nil, s.ID, 3); ok {
		t.Fatalf("invitee joined a full session")
	}
}

func TestCancelInvitation(t *testing.T) {
	env := newSessionEnv()
	ctx := context.Background()
	s := env.create(t, 1, models.MatchTypeDoublesMixed)
	inv, err := env.invites.Invite(ctx, 1, 4, s.ID)
	if err != nil {
		t.Fatalf("Invite() error = %v", err)
	}

	if _, err := env.invites.Cancel(ctx, inv.ID, 4); !errors.Is(err, ErrForbidden) {
		t.Fatalf("cancel by invitee error = %v, want %v", err, ErrForbidden)
	}
	cancelled, err := env.invites.Cancel(ctx, inv.ID, 1)
	if err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}
	if cancelled.Status != models.InvitationCancelled {
		t.Fatalf("Status = %s, want CANCELLED", cancelled.Status)
	}
	if _, err := env.invites.Respond(ctx, inv.ID, 4, models.InvitationAccepted); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("accept cancelled error = %v, want %v", err, ErrInvalidState)
	}
	if _, err := env.invites.Cancel(ctx, 404, 1); !errors.Is(err, ErrInvitationNotFound) {
		t.Fatalf("cancel missing error = %v, want %v", err, ErrInvitationNotFound)
	}
}

func TestListInvitations(t *testing.T) {
	env := newSessionEnv()
	ctx := context.Background()
	s := env.create(t, 1, models.MatchTypeDoublesMixed)
	for _, invitee := range []int{2, 3} {
		if _, err := env.invites.Invite(ctx, 1, invitee, s.ID); err != nil {
			t.Fatalf("Invite() error = %v", err)
		}
	}

	received, err := env.invites.List(ctx, 2, models.InvitationListOptions{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(received) != 1 {
		t.Fatalf("received = %d, want 1", len(received))
	}
	sent, err := env.invites.List(ctx, 1, models.InvitationListOptions{Direction: models.InvitationsSent})
	if err != nil {
		t.Fatalf("List(sent) error = %v", err)
	}
	if len(sent) != 2 {
		t.Fatalf("sent = %d, want 2", len(sent))
	}
	if _, err := env.invites.List(ctx, 1, models.InvitationListOptions{Direction: "all"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("List(all) error = %v, want %v", err, ErrValidation)
	}
}

func TestAcceptAfterDirectJoinClosesInvitation(t *testing.T) {
	env := newSessionEnv()
	ctx := context.Background()
	s := env.create(t, 1, models.MatchTypeDoublesWomen)
	inv, err := env.invites.Invite(ctx, 1, 2, s.ID)
	if err != nil {
		t.Fatalf("Invite() error = %v", err)
	}
	env.join(t, s.ID, 2)

	got, err := env.invites.Respond(ctx, inv.ID, 2, models.InvitationAccepted)
	if err != nil {
		t.Fatalf("Respond(accept) error = %v", err)
	}
	if got.Status != models.InvitationAccepted || env.invitations.status(inv.ID) != models.InvitationAccepted {
		t.Fatalf("invitation status = %s, want ACCEPTED", env.invitations.status(inv.ID))
	}
	count, _ := env.participants.CountBySession(ctx, nil, s.ID)
	if count != 2 {
		t.Fatalf("participants = %d, want 2", count)
	}
	stored, _ := env.sessions.GetByID(ctx, s.ID)
	if stored.CurrentParticipants != 2 {
		t.Fatalf("CurrentParticipants = %d, want 2", stored.CurrentParticipants)
	}
}
