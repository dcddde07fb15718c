package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/Dosada05/badminton-community/models"
	"github.com/Dosada05/badminton-community/repositories"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeTx struct{ calls int }

func (f *fakeTx) WithinTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	f.calls++
	return fn(nil)
}

// --- sessions ---

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[int]*models.MatchSession
	nextID   int
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: map[int]*models.MatchSession{}}
}

func (f *fakeSessionRepo) Create(_ context.Context, _ repositories.SQLExecutor, s *models.MatchSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	s.ID = f.nextID
	s.CreatedAt = time.Now()
	cp := *s
	f.sessions[s.ID] = &cp
	return nil
}

func (f *fakeSessionRepo) get(id int) (*models.MatchSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return nil, repositories.ErrSessionNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSessionRepo) GetByID(_ context.Context, id int) (*models.MatchSession, error) {
	return f.get(id)
}

func (f *fakeSessionRepo) GetForUpdate(_ context.Context, _ repositories.SQLExecutor, id int) (*models.MatchSession, error) {
	return f.get(id)
}

func (f *fakeSessionRepo) List(_ context.Context, opts models.SessionListOptions) ([]*models.MatchSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.MatchSession
	for _, s := range f.sessions {
		if opts.Status != nil && s.Status != *opts.Status {
			continue
		}
		cp := *s
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeSessionRepo) TransitionStatus(_ context.Context, _ repositories.SQLExecutor, id int, from, to models.SessionStatus) (*models.MatchSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return nil, repositories.ErrSessionNotFound
	}
	if s.Status != from {
		return nil, repositories.ErrSessionStatusConflict
	}
	s.Status = to
	now := time.Now()
	switch to {
	case models.SessionStatusInProgress:
		s.StartedAt = &now
	case models.SessionStatusCompleted:
		s.CompletedAt = &now
	case models.SessionStatusCancelled:
		s.CancelledAt = &now
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSessionRepo) AdjustParticipantCount(_ context.Context, _ repositories.SQLExecutor, id int, delta int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return repositories.ErrSessionNotFound
	}
	s.CurrentParticipants += delta
	return nil
}

func (f *fakeSessionRepo) Count(_ context.Context, status *models.SessionStatus) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, s := range f.sessions {
		if status == nil || s.Status == *status {
			n++
		}
	}
	return n, nil
}

func (f *fakeSessionRepo) status(id int) models.SessionStatus {
	s, _ := f.get(id)
	return s.Status
}

// --- participants ---

type fakeParticipantRepo struct {
	mu              sync.Mutex
	members         map[int][]int
	attendanceWiped []int
}

func newFakeParticipantRepo() *fakeParticipantRepo {
	return &fakeParticipantRepo{members: map[int][]int{}}
}

func (f *fakeParticipantRepo) Add(_ context.Context, _ repositories.SQLExecutor, p *models.MatchParticipant) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, uid := range f.members[p.SessionID] {
		if uid == p.UserID {
			return repositories.ErrParticipantConflict
		}
	}
	f.members[p.SessionID] = append(f.members[p.SessionID], p.UserID)
	p.JoinedAt = time.Now()
	return nil
}

func (f *fakeParticipantRepo) Remove(_ context.Context, _ repositories.SQLExecutor, sessionID, userID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	list := f.members[sessionID]
	for i, uid := range list {
		if uid == userID {
			f.members[sessionID] = append(list[:i:i], list[i+1:]...)
			return nil
		}
	}
	return repositories.ErrParticipantNotFound
}

func (f *fakeParticipantRepo) Exists(_ context.Context, _ repositories.SQLExecutor, sessionID, userID int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, uid := range f.members[sessionID] {
		if uid == userID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeParticipantRepo) CountBySession(_ context.Context, _ repositories.SQLExecutor, sessionID int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.members[sessionID]), nil
}

func (f *fakeParticipantRepo) ListBySession(_ context.Context, sessionID int) ([]models.MatchParticipant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.MatchParticipant
	for _, uid := range f.members[sessionID] {
		out = append(out, models.MatchParticipant{SessionID: sessionID, UserID: uid, User: &models.UserSummary{ID: uid}})
	}
	return out, nil
}

func (f *fakeParticipantRepo) ListUserIDs(_ context.Context, _ repositories.SQLExecutor, sessionID int) ([]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.members[sessionID]...), nil
}

func (f *fakeParticipantRepo) RemoveScheduleAttendance(_ context.Context, _ repositories.SQLExecutor, sessionID, userID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attendanceWiped = append(f.attendanceWiped, userID)
	return nil
}

// --- schedules ---

type fakeScheduleRepo struct {
	mu           sync.Mutex
	participants *fakeParticipantRepo
	schedules    map[int]*models.SessionSchedule
	attendees    map[int]map[int]bool
	nextID       int
}

func newFakeScheduleRepo(participants *fakeParticipantRepo) *fakeScheduleRepo {
	return &fakeScheduleRepo{
		participants: participants,
		schedules:    map[int]*models.SessionSchedule{},
		attendees:    map[int]map[int]bool{},
	}
}

func (f *fakeScheduleRepo) Create(_ context.Context, s *models.SessionSchedule) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	s.ID = f.nextID
	cp := *s
	f.schedules[s.ID] = &cp
	return nil
}

func (f *fakeScheduleRepo) GetByID(_ context.Context, id int) (*models.SessionSchedule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.schedules[id]
	if !ok {
		return nil, repositories.ErrScheduleNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeScheduleRepo) ListBySession(_ context.Context, sessionID int) ([]models.SessionSchedule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.SessionSchedule
	for _, s := range f.schedules {
		if s.SessionID == sessionID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeScheduleRepo) AddAttendee(ctx context.Context, scheduleID, sessionID, userID int) error {
	ok, _ := f.participants.Exists(ctx, nil, sessionID, userID)
	if !ok {
		return repositories.ErrScheduleNotParticipant
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.attendees[scheduleID] == nil {
		f.attendees[scheduleID] = map[int]bool{}
	}
	if f.attendees[scheduleID][userID] {
		return repositories.ErrScheduleAttendanceExists
	}
	f.attendees[scheduleID][userID] = true
	return nil
}

func (f *fakeScheduleRepo) RemoveAttendee(_ context.Context, scheduleID, userID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.attendees[scheduleID][userID] {
		return repositories.ErrScheduleAttendanceMissing
	}
	delete(f.attendees[scheduleID], userID)
	return nil
}

// --- invitations ---

type fakeInvitationRepo struct {
	mu          sync.Mutex
	invitations map[int]*models.MatchInvitation
	nextID      int
}

func newFakeInvitationRepo() *fakeInvitationRepo {
	return &fakeInvitationRepo{invitations: map[int]*models.MatchInvitation{}}
}

func (f *fakeInvitationRepo) Create(_ context.Context, inv *models.MatchInvitation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.invitations {
		if existing.SessionID == inv.SessionID && existing.InviteeID == inv.InviteeID && existing.Status == models.InvitationPending {
			return repositories.ErrInvitationPendingExists
		}
	}
	f.nextID++
	inv.ID = f.nextID
	inv.Status = models.InvitationPending
	inv.CreatedAt = time.Now()
	cp := *inv
	f.invitations[inv.ID] = &cp
	return nil
}

func (f *fakeInvitationRepo) get(id int) (*models.MatchInvitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv, ok := f.invitations[id]
	if !ok {
		return nil, repositories.ErrInvitationNotFound
	}
	cp := *inv
	return &cp, nil
}

func (f *fakeInvitationRepo) GetByID(_ context.Context, id int) (*models.MatchInvitation, error) {
	return f.get(id)
}

func (f *fakeInvitationRepo) GetForUpdate(_ context.Context, _ repositories.SQLExecutor, id int) (*models.MatchInvitation, error) {
	return f.get(id)
}

func (f *fakeInvitationRepo) UpdateStatus(_ context.Context, _ repositories.SQLExecutor, id int, status models.InvitationStatus) (*models.MatchInvitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv, ok := f.invitations[id]
	if !ok {
		return nil, repositories.ErrInvitationNotFound
	}
	if inv.Status != models.InvitationPending {
		return nil, repositories.ErrInvitationStatusConflict
	}
	now := time.Now()
	inv.Status = status
	inv.RespondedAt = &now
	cp := *inv
	return &cp, nil
}

func (f *fakeInvitationRepo) CancelPendingBySession(_ context.Context, _ repositories.SQLExecutor, sessionID int) ([]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var invitees []int
	for _, inv := range f.invitations {
		if inv.SessionID == sessionID && inv.Status == models.InvitationPending {
			inv.Status = models.InvitationCancelled
			invitees = append(invitees, inv.InviteeID)
		}
	}
	return invitees, nil
}

func (f *fakeInvitationRepo) ListForUser(_ context.Context, userID int, opts models.InvitationListOptions) ([]*models.MatchInvitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.MatchInvitation
	for _, inv := range f.invitations {
		mine := inv.InviteeID == userID
		if opts.Direction == models.InvitationsSent {
			mine = inv.InviterID == userID
		}
		if !mine || (opts.Status != nil && inv.Status != *opts.Status) {
			continue
		}
		cp := *inv
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeInvitationRepo) status(id int) models.InvitationStatus {
	inv, _ := f.get(id)
	return inv.Status
}

// --- results ---

type fakeResultRepo struct {
	mu          sync.Mutex
	results     map[int]*models.MatchResult
	nextID      int
	settleErr   error
	settleCalls int
	// settledElsewhere makes MarkSettled lose the race for these ids.
	settledElsewhere map[int]bool
}

func newFakeResultRepo() *fakeResultRepo {
	return &fakeResultRepo{results: map[int]*models.MatchResult{}}
}

func (f *fakeResultRepo) Create(_ context.Context, r *models.MatchResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	r.ID = f.nextID
	r.CreatedAt = time.Now()
	cp := *r
	f.results[r.ID] = &cp
	return nil
}

func (f *fakeResultRepo) get(id int) (*models.MatchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.results[id]
	if !ok {
		return nil, repositories.ErrMatchResultNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeResultRepo) GetByID(_ context.Context, id int) (*models.MatchResult, error) {
	return f.get(id)
}

func (f *fakeResultRepo) GetForUpdate(_ context.Context, _ repositories.SQLExecutor, id int) (*models.MatchResult, error) {
	return f.get(id)
}

func (f *fakeResultRepo) SetConfirmations(_ context.Context, _ repositories.SQLExecutor, id int, p1, p2 bool) (*models.MatchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.results[id]
	if !ok {
		return nil, repositories.ErrMatchResultNotFound
	}
	r.Player1Confirmed, r.Player2Confirmed = p1, p2
	if p1 && p2 && r.ConfirmedAt == nil {
		now := time.Now()
		r.ConfirmedAt = &now
	}
	cp := *r
	return &cp, nil
}

func (f *fakeResultRepo) MarkSettled(_ context.Context, id int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.settleCalls++
	if f.settleErr != nil {
		return false, f.settleErr
	}
	if f.settledElsewhere[id] {
		return false, nil
	}
	r, ok := f.results[id]
	if !ok {
		return false, repositories.ErrMatchResultNotFound
	}
	if r.SettledAt != nil {
		return false, nil
	}
	now := time.Now()
	r.SettledAt = &now
	return true, nil
}

func (f *fakeResultRepo) ListByPlayer(_ context.Context, userID int, limit, offset int) ([]*models.MatchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.MatchResult
	for _, r := range f.results {
		if r.HasPlayer(userID) {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeResultRepo) Count(_ context.Context, unsettledOnly bool) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.results {
		if !unsettledOnly || r.SettledAt == nil {
			n++
		}
	}
	return n, nil
}

// --- points ---

type fakePointsRepo struct {
	mu        sync.Mutex
	entries   []models.PointTransaction
	balances  map[int]int
	appendErr error
	clock     func() time.Time
}

func newFakePointsRepo() *fakePointsRepo {
	return &fakePointsRepo{balances: map[int]int{}, clock: time.Now}
}

func (f *fakePointsRepo) Append(_ context.Context, _ repositories.SQLExecutor, t *models.PointTransaction) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return false, f.appendErr
	}
	for _, e := range f.entries {
		if e.UserID == t.UserID && e.ActionType == t.ActionType && e.SourceID == t.SourceID {
			return false, nil
		}
	}
	t.ID = len(f.entries) + 1
	t.CreatedAt = f.clock()
	f.entries = append(f.entries, *t)
	return true, nil
}

func (f *fakePointsRepo) Exists(_ context.Context, _ repositories.SQLExecutor, userID int, action models.PointActionType, sourceID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.entries {
		if e.UserID == userID && e.ActionType == action && e.SourceID == sourceID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakePointsRepo) CountSince(_ context.Context, _ repositories.SQLExecutor, userID int, action models.PointActionType, since time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, e := range f.entries {
		if e.UserID == userID && e.ActionType == action && !e.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (f *fakePointsRepo) IncrementBalance(_ context.Context, _ repositories.SQLExecutor, userID int, delta int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.balances[userID] += delta
	return nil
}

func (f *fakePointsRepo) LockUser(context.Context, repositories.SQLExecutor, int) error { return nil }

func (f *fakePointsRepo) GetBalance(_ context.Context, userID int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.balances[userID], nil
}

func (f *fakePointsRepo) History(_ context.Context, userID int, limit, offset int) ([]models.PointTransaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.PointTransaction
	for _, e := range f.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

// --- ratings ---

type fakeRatingRepo struct {
	mu      sync.Mutex
	ratings map[int]int
	changes map[[2]int]models.RatingChange
	failSet error
}

func newFakeRatingRepo(ratings map[int]int) *fakeRatingRepo {
	return &fakeRatingRepo{ratings: ratings, changes: map[[2]int]models.RatingChange{}}
}

func (f *fakeRatingRepo) GetForUpdate(_ context.Context, _ repositories.SQLExecutor, userID int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.ratings[userID]
	if !ok {
		return 0, repositories.ErrUserNotFound
	}
	return r, nil
}

func (f *fakeRatingRepo) RecordChange(_ context.Context, _ repositories.SQLExecutor, c *models.RatingChange) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := [2]int{c.ResultID, c.UserID}
	if _, ok := f.changes[key]; ok {
		return false, nil
	}
	f.changes[key] = *c
	return true, nil
}

func (f *fakeRatingRepo) SetRating(_ context.Context, _ repositories.SQLExecutor, userID int, rating int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSet != nil {
		return f.failSet
	}
	f.ratings[userID] = rating
	return nil
}

func (f *fakeRatingRepo) ListByResult(_ context.Context, resultID int) ([]models.RatingChange, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.RatingChange
	for k, c := range f.changes {
		if k[0] == resultID {
			out = append(out, c)
		}
	}
	return out, nil
}

// --- notifications ---

type sentNotification struct {
	UserID int
	Type   models.NotificationType
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
}

func (f *fakeNotifier) Notify(_ context.Context, userID int, kind models.NotificationType, _, _ string, _ *string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentNotification{UserID: userID, Type: kind})
}

func (f *fakeNotifier) List(context.Context, int, bool, int, int) ([]models.Notification, error) {
	return nil, nil
}

func (f *fakeNotifier) MarkRead(context.Context, int, int) error { return nil }

func (f *fakeNotifier) MarkAllRead(context.Context, int) (int64, error) { return 0, nil }

func (f *fakeNotifier) PurgeRead(context.Context, time.Duration) (int64, error) { return 0, nil }

func (f *fakeNotifier) count(userID int, kind models.NotificationType) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, s := range f.sent {
		if s.UserID == userID && s.Type == kind {
			n++
		}
	}
	return n
}

// --- users ---

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[int]*models.User
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	f := &fakeUserRepo{users: map[int]*models.User{}}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) List(_ context.Context, filter models.UserFilter) ([]models.User, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.User
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, len(out), nil
}

func (f *fakeUserRepo) UpdateAvatarKey(_ context.Context, id int, key *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.AvatarKey = key
	return nil
}

func (f *fakeUserRepo) SetStatus(_ context.Context, id int, status models.UserStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.Status = status
	return nil
}

func (f *fakeUserRepo) Count(_ context.Context, status *models.UserStatus) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, u := range f.users {
		if status == nil || u.Status == *status {
			n++
		}
	}
	return n, nil
}

var errBoom = errors.New("boom")
