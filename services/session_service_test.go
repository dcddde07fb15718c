package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Dosada05/badminton-community/models"
)

type sessionEnv struct {
	sessions     *fakeSessionRepo
	participants *fakeParticipantRepo
	schedules    *fakeScheduleRepo
	invitations  *fakeInvitationRepo
	pointsRepo   *fakePointsRepo
	notifier     *fakeNotifier
	svc          SessionService
	invites      InvitationService
}

func newSessionEnv() *sessionEnv {
	env := &sessionEnv{
		sessions:     newFakeSessionRepo(),
		participants: newFakeParticipantRepo(),
		invitations:  newFakeInvitationRepo(),
		pointsRepo:   newFakePointsRepo(),
		notifier:     &fakeNotifier{},
	}
	env.schedules = newFakeScheduleRepo(env.participants)
	tx := &fakeTx{}
	points := NewPointsService(env.pointsRepo, tx, nil)
	env.svc = NewSessionService(env.sessions, env.participants, env.schedules, env.invitations,
		tx, env.notifier, points, nil, discardLogger())
	env.invites = NewInvitationService(env.invitations, env.sessions, env.participants,
		tx, env.notifier, nil, discardLogger())
	return env
}

func (e *sessionEnv) create(t *testing.T, creatorID int, matchType models.MatchType) *models.MatchSession {
	t.Helper()
	s, err := e.svc.CreateSession(context.Background(), creatorID, CreateSessionInput{
		MatchType:   matchType,
		Title:       "Friday smash",
		ScheduledAt: time.Now().Add(24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	return s
}

func (e *sessionEnv) join(t *testing.T, sessionID int, userIDs ...int) {
	t.Helper()
	for _, uid := range userIDs {
		if err := e.svc.JoinSession(context.Background(), sessionID, uid); err != nil {
			t.Fatalf("JoinSession(%d, %d) error = %v", sessionID, uid, err)
		}
	}
}

func user(id int) models.Actor { return models.Actor{UserID: id, Role: models.RoleUser} }

func TestCreateSessionValidation(t *testing.T) {
	env := newSessionEnv()
	valid := CreateSessionInput{MatchType: models.MatchTypeSinglesMen, Title: "x", ScheduledAt: time.Now()}

	tests := []struct {
		name   string
		mutate func(*CreateSessionInput)
	}{
		{"blank title", func(in *CreateSessionInput) { in.Title = "   " }},
		{"unknown match type", func(in *CreateSessionInput) { in.MatchType = "triples" }},
		{"missing time", func(in *CreateSessionInput) { in.ScheduledAt = time.Time{} }},
		{"negative fee", func(in *CreateSessionInput) { in.EntryFeePoints = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			if _, err := env.svc.CreateSession(context.Background(), 1, in); !errors.Is(err, ErrValidation) {
				t.Fatalf("CreateSession() error = %v, want %v", err, ErrValidation)
			}
		})
	}
}

func TestCreateSessionAddsCreator(t *testing.T) {
	env := newSessionEnv()
	s := env.create(t, 1, models.MatchTypeDoublesMixed)

	if s.Status != models.SessionStatusPending {
		t.Fatalf("Status = %s, want PENDING", s.Status)
	}
	if s.CurrentParticipants != 1 {
		t.Fatalf("CurrentParticipants = %d, want 1", s.CurrentParticipants)
	}
	if ok, _ := env.participants.Exists(context.Background(), nil, s.ID, 1); !ok {
		t.Fatalf("creator is not a participant")
	}
}

func TestJoinSession(t *testing.T) {
	env := newSessionEnv()
	ctx := context.Background()
	s := env.create(t, 1, models.MatchTypeSinglesWomen)

	env.join(t, s.ID, 2)
	if err := env.svc.JoinSession(ctx, s.ID, 2); !errors.Is(err, ErrConflict) {
		t.Fatalf("second join error = %v, want %v", err, ErrConflict)
	}
	if err := env.svc.JoinSession(ctx, s.ID, 3); !errors.Is(err, ErrConflict) {
		t.Fatalf("join full session error = %v, want %v", err, ErrConflict)
	}
	if err := env.svc.JoinSession(ctx, 999, 3); !errors.Is(err, ErrNotFound) {
		t.Fatalf("join missing session error = %v, want %v", err, ErrNotFound)
	}

	got, _ := env.sessions.get(s.ID)
	if got.CurrentParticipants != 2 {
		t.Fatalf("CurrentParticipants = %d, want 2", got.CurrentParticipants)
	}

	if _, err := env.svc.StartSession(ctx, s.ID, user(1)); err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}
	if err := env.svc.JoinSession(ctx, s.ID, 3); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("join started session error = %v, want %v", err, ErrInvalidState)
	}
}

func TestStartSession(t *testing.T) {
	env := newSessionEnv()
	ctx := context.Background()
	s := env.create(t, 1, models.MatchTypeDoublesMen)
	env.join(t, s.ID, 2, 3)

	if _, err := env.svc.StartSession(ctx, s.ID, user(2)); !errors.Is(err, ErrForbidden) {
		t.Fatalf("start by non-creator error = %v, want %v", err, ErrForbidden)
	}
	if _, err := env.svc.StartSession(ctx, s.ID, user(1)); !errors.Is(err, ErrQuorumNotMet) {
		t.Fatalf("start below quorum error = %v, want %v", err, ErrQuorumNotMet)
	}
	if env.sessions.status(s.ID) != models.SessionStatusPending {
		t.Fatalf("status changed after failed start")
	}

	inv, err := env.invites.Invite(ctx, 1, 9, s.ID)
	if err != nil {
		t.Fatalf("Invite() error = %v", err)
	}
	env.join(t, s.ID, 4)

	started, err := env.svc.StartSession(ctx, s.ID, user(1))
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}
	if started.Status != models.SessionStatusInProgress || started.StartedAt == nil {
		t.Fatalf("started = %+v, want IN_PROGRESS with StartedAt", started)
	}
	if got := env.invitations.status(inv.ID); got != models.InvitationCancelled {
		t.Fatalf("pending invitation status = %s, want CANCELLED", got)
	}
	for _, uid := range []int{2, 3, 4} {
		if env.notifier.count(uid, models.NotificationSessionStarted) != 1 {
			t.Fatalf("participant %d not notified of start", uid)
		}
	}
	if env.notifier.count(1, models.NotificationSessionStarted) != 0 {
		t.Fatalf("creator notified of own start")
	}

	if _, err := env.svc.StartSession(ctx, s.ID, user(1)); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("second start error = %v, want %v", err, ErrInvalidState)
	}
}

func TestCompleteSessionAwardsHostOnce(t *testing.T) {
	env := newSessionEnv()
	ctx := context.Background()
	s := env.create(t, 1, models.MatchTypeSinglesMen)
	env.join(t, s.ID, 2)

	if _, err := env.svc.CompleteSession(ctx, s.ID, user(1)); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("complete pending error = %v, want %v", err, ErrInvalidState)
	}
	if _, err := env.svc.StartSession(ctx, s.ID, user(1)); err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}
	if _, err := env.svc.CompleteSession(ctx, s.ID, user(2)); !errors.Is(err, ErrForbidden) {
		t.Fatalf("complete by non-creator error = %v, want %v", err, ErrForbidden)
	}

	done, err := env.svc.CompleteSession(ctx, s.ID, user(1))
	if err != nil {
		t.Fatalf("CompleteSession() error = %v", err)
	}
	if done.Status != models.SessionStatusCompleted {
		t.Fatalf("Status = %s, want COMPLETED", done.Status)
	}
	want := DefaultPointRules[models.PointActionSessionHosted].Points
	if got := env.pointsRepo.balances[1]; got != want {
		t.Fatalf("host balance = %d, want %d", got, want)
	}

	if _, err := env.svc.CompleteSession(ctx, s.ID, user(1)); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("second complete error = %v, want %v", err, ErrInvalidState)
	}
	if got := env.pointsRepo.balances[1]; got != want {
		t.Fatalf("host balance after retry = %d, want %d", got, want)
	}
}

func TestCancelSession(t *testing.T) {
	env := newSessionEnv()
	ctx := context.Background()
	s := env.create(t, 1, models.MatchTypeDoublesWomen)
	env.join(t, s.ID, 2)
	inv, err := env.invites.Invite(ctx, 2, 7, s.ID)
	if err != nil {
		t.Fatalf("Invite() error = %v", err)
	}

	if _, err := env.svc.CancelSession(ctx, s.ID, user(2)); !errors.Is(err, ErrForbidden) {
		t.Fatalf("cancel by participant error = %v, want %v", err, ErrForbidden)
	}

	moderator := models.Actor{UserID: 50, Role: models.RoleModerator}
	cancelled, err := env.svc.CancelSession(ctx, s.ID, moderator)
	if err != nil {
		t.Fatalf("CancelSession() error = %v", err)
	}
	if cancelled.Status != models.SessionStatusCancelled || cancelled.CancelledAt == nil {
		t.Fatalf("cancelled = %+v, want CANCELLED with CancelledAt", cancelled)
	}
	if got := env.invitations.status(inv.ID); got != models.InvitationCancelled {
		t.Fatalf("invitation status = %s, want CANCELLED", got)
	}
	for _, uid := range []int{1, 2, 7} {
		if env.notifier.count(uid, models.NotificationSessionCancelled) != 1 {
			t.Fatalf("user %d not notified of cancellation", uid)
		}
	}

	if _, err := env.svc.CancelSession(ctx, s.ID, user(1)); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("cancel twice error = %v, want %v", err, ErrInvalidState)
	}
}

func TestLeaveSession(t *testing.T) {
	env := newSessionEnv()
	ctx := context.Background()
	s := env.create(t, 1, models.MatchTypeDoublesMixed)
	env.join(t, s.ID, 2)

	if err := env.svc.LeaveSession(ctx, s.ID, 1); !errors.Is(err, ErrForbidden) {
		t.Fatalf("creator leave error = %v, want %v", err, ErrForbidden)
	}
	if err := env.svc.LeaveSession(ctx, s.ID, 3); !errors.Is(err, ErrNotFound) {
		t.Fatalf("non-participant leave error = %v, want %v", err, ErrNotFound)
	}
	if err := env.svc.LeaveSession(ctx, s.ID, 2); err != nil {
		t.Fatalf("LeaveSession() error = %v", err)
	}

	got, _ := env.sessions.get(s.ID)
	if got.CurrentParticipants != 1 {
		t.Fatalf("CurrentParticipants = %d, want 1", got.CurrentParticipants)
	}
	wiped := false
	for _, uid := range env.participants.attendanceWiped {
		wiped = wiped || uid == 2
	}
	if !wiped {
		t.Fatalf("attendance of user 2 not removed: %v", env.participants.attendanceWiped)
	}
}

func TestKickParticipant(t *testing.T) {
	env := newSessionEnv()
	ctx := context.Background()
	s := env.create(t, 1, models.MatchTypeDoublesMixed)
	env.join(t, s.ID, 2, 3)

	if err := env.svc.KickParticipant(ctx, s.ID, user(2), 3); !errors.Is(err, ErrForbidden) {
		t.Fatalf("kick by participant error = %v, want %v", err, ErrForbidden)
	}
	if err := env.svc.KickParticipant(ctx, s.ID, user(1), 1); !errors.Is(err, ErrInvalidTarget) {
		t.Fatalf("kick creator error = %v, want %v", err, ErrInvalidTarget)
	}
	if err := env.svc.KickParticipant(ctx, s.ID, user(1), 3); err != nil {
		t.Fatalf("KickParticipant() error = %v", err)
	}
	if ok, _ := env.participants.Exists(ctx, nil, s.ID, 3); ok {
		t.Fatalf("kicked user still participates")
	}
	if env.notifier.count(3, models.NotificationParticipantKicked) != 1 {
		t.Fatalf("kicked user not notified")
	}
}

func TestSchedules(t *testing.T) {
	env := newSessionEnv()
	ctx := context.Background()
	s := env.create(t, 1, models.MatchTypeSinglesMen)
	env.join(t, s.ID, 2)

	if _, err := env.svc.AddSchedule(ctx, s.ID, user(2), AddScheduleInput{StartsAt: time.Now()}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("AddSchedule by participant error = %v, want %v", err, ErrForbidden)
	}
	if _, err := env.svc.AddSchedule(ctx, s.ID, user(1), AddScheduleInput{}); !errors.Is(err, ErrValidation) {
		t.Fatalf("AddSchedule without time error = %v, want %v", err, ErrValidation)
	}
	slot, err := env.svc.AddSchedule(ctx, s.ID, user(1), AddScheduleInput{StartsAt: time.Now()})
	if err != nil {
		t.Fatalf("AddSchedule() error = %v", err)
	}

	if err := env.svc.AttendSchedule(ctx, slot.ID, 2); err != nil {
		t.Fatalf("AttendSchedule() error = %v", err)
	}
	if err := env.svc.AttendSchedule(ctx, slot.ID, 2); !errors.Is(err, ErrConflict) {
		t.Fatalf("attend twice error = %v, want %v", err, ErrConflict)
	}
	if err := env.svc.AttendSchedule(ctx, slot.ID, 8); !errors.Is(err, ErrForbidden) {
		t.Fatalf("attend by outsider error = %v, want %v", err, ErrForbidden)
	}
	if err := env.svc.AttendSchedule(ctx, 404, 2); !errors.Is(err, ErrNotFound) {
		t.Fatalf("attend missing schedule error = %v, want %v", err, ErrNotFound)
	}
	if err := env.svc.UnattendSchedule(ctx, slot.ID, 2); err != nil {
		t.Fatalf("UnattendSchedule() error = %v", err)
	}
	if err := env.svc.UnattendSchedule(ctx, slot.ID, 2); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unattend twice error = %v, want %v", err, ErrNotFound)
	}

	full, err := env.svc.GetSession(ctx, s.ID)
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if len(full.Participants) != 2 || len(full.Schedules) != 1 {
		t.Fatalf("GetSession() participants = %d, schedules = %d; want 2, 1", len(full.Participants), len(full.Schedules))
	}
	if _, err := env.svc.GetSession(ctx, 404); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("GetSession(missing) error = %v, want %v", err, ErrSessionNotFound)
	}
}

func TestListSessionsRejectsUnknownFilters(t *testing.T) {
	env := newSessionEnv()
	bad := models.SessionStatus("DONE")
	if _, err := env.svc.ListSessions(context.Background(), models.SessionListOptions{Status: &bad}); !errors.Is(err, ErrValidation) {
		t.Fatalf("ListSessions() error = %v, want %v", err, ErrValidation)
	}
}
