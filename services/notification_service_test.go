package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Dosada05/badminton-community/hub"
	"github.com/Dosada05/badminton-community/models"
	"github.com/Dosada05/badminton-community/repositories"
)

type fakeNotificationRepo struct {
	stored    []models.Notification
	createErr error
	purgedAt  time.Time
}

func (f *fakeNotificationRepo) Create(_ context.Context, n *models.Notification) error {
	if f.createErr != nil {
		return f.createErr
	}
	n.ID = len(f.stored) + 1
	f.stored = append(f.stored, *n)
	return nil
}

func (f *fakeNotificationRepo) ListByUser(_ context.Context, userID int, unreadOnly bool, limit, offset int) ([]models.Notification, error) {
	var out []models.Notification
	for _, n := range f.stored {
		if n.UserID == userID && (!unreadOnly || !n.IsRead) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeNotificationRepo) MarkRead(_ context.Context, id, userID int) error {
	for i := range f.stored {
		if f.stored[i].ID == id && f.stored[i].UserID == userID {
			f.stored[i].IsRead = true
			return nil
		}
	}
	return repositories.ErrNotificationNotFound
}

func (f *fakeNotificationRepo) MarkAllRead(_ context.Context, userID int) (int64, error) {
	var n int64
	for i := range f.stored {
		if f.stored[i].UserID == userID && !f.stored[i].IsRead {
			f.stored[i].IsRead = true
			n++
		}
	}
	return n, nil
}

func (f *fakeNotificationRepo) DeleteReadBefore(_ context.Context, before time.Time) (int64, error) {
	f.purgedAt = before
	return 3, nil
}

type fakePublisher struct {
	pushed map[int][]hub.Message
}

func (f *fakePublisher) SendToUser(userID int, message hub.Message) {
	if f.pushed == nil {
		f.pushed = map[int][]hub.Message{}
	}
	f.pushed[userID] = append(f.pushed[userID], message)
}

func TestNotifyPersistsThenPushes(t *testing.T) {
	repo := &fakeNotificationRepo{}
	pub := &fakePublisher{}
	svc := NewNotificationService(repo, pub, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	svc.Notify(ctx, 4, models.NotificationSessionStarted, "Match started", "go", nil)

	if len(repo.stored) != 1 {
		t.Fatalf("stored = %d, want 1", len(repo.stored))
	}
	msgs := pub.pushed[4]
	if len(msgs) != 1 || msgs[0].Type != "NOTIFICATION" {
		t.Fatalf("pushed = %+v, want one NOTIFICATION", msgs)
	}
}

func TestNotifySwallowsStorageErrors(t *testing.T) {
	repo := &fakeNotificationRepo{createErr: errBoom}
	pub := &fakePublisher{}
	svc := NewNotificationService(repo, pub, discardLogger())

	svc.Notify(context.Background(), 4, models.NotificationSessionStarted, "t", "m", nil)
	if len(pub.pushed[4]) != 0 {
		t.Fatalf("pushed a notification that was not stored")
	}
}

func TestMarkRead(t *testing.T) {
	repo := &fakeNotificationRepo{}
	svc := NewNotificationService(repo, nil, discardLogger())
	ctx := context.Background()
	svc.Notify(ctx, 1, models.NotificationPointsAwarded, "a", "b", nil)
	svc.Notify(ctx, 1, models.NotificationPointsAwarded, "c", "d", nil)

	if err := svc.MarkRead(ctx, 1, 2); !errors.Is(err, ErrNotificationNotFound) {
		t.Fatalf("MarkRead(other user) error = %v, want %v", err, ErrNotificationNotFound)
	}
	if err := svc.MarkRead(ctx, 1, 1); err != nil {
		t.Fatalf("MarkRead() error = %v", err)
	}
	unread, _ := svc.List(ctx, 1, true, 0, 0)
	if len(unread) != 1 {
		t.Fatalf("unread = %d, want 1", len(unread))
	}
	if n, _ := svc.MarkAllRead(ctx, 1); n != 1 {
		t.Fatalf("MarkAllRead() = %d, want 1", n)
	}
}
