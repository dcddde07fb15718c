package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Dosada05/badminton-community/models"
)

func newTestPoints(repo *fakePointsRepo, rules map[models.PointActionType]PointRule, now time.Time) *pointsService {
	svc := NewPointsService(repo, &fakeTx{}, rules).(*pointsService)
	svc.now = func() time.Time { return now }
	return svc
}

func TestAwardIsIdempotentPerKey(t *testing.T) {
	repo := newFakePointsRepo()
	svc := newTestPoints(repo, nil, time.Now())
	ctx := context.Background()

	got, err := svc.Award(ctx, 7, models.PointActionMatchWin, "result-1")
	if err != nil {
		t.Fatalf("Award() error = %v", err)
	}
	if got != 10 {
		t.Fatalf("Award() = %d, want 10", got)
	}

	got, err = svc.Award(ctx, 7, models.PointActionMatchWin, "result-1")
	if err != nil {
		t.Fatalf("repeat Award() error = %v", err)
	}
	if got != 0 {
		t.Fatalf("repeat Award() = %d, want 0", got)
	}
	if balance, _ := svc.Balance(ctx, 7); balance != 10 {
		t.Fatalf("Balance() = %d, want 10", balance)
	}
}

func TestAwardDailyLimit(t *testing.T) {
	today := time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)
	repo := newFakePointsRepo()
	rules := map[models.PointActionType]PointRule{
		models.PointActionMatchWin: {Points: 3, DailyLimit: 2},
	}
	svc := newTestPoints(repo, rules, today)
	ctx := context.Background()

	repo.clock = func() time.Time { return today.Add(-24 * time.Hour) }
	if got, _ := svc.Award(ctx, 1, models.PointActionMatchWin, "yesterday"); got != 3 {
		t.Fatalf("Award(yesterday) = %d, want 3", got)
	}

	repo.clock = func() time.Time { return today }
	want := []int{3, 3, 0}
	for i, w := range want {
		got, err := svc.Award(ctx, 1, models.PointActionMatchWin, "src-"+string(rune('a'+i)))
		if err != nil {
			t.Fatalf("Award #%d error = %v", i, err)
		}
		if got != w {
			t.Fatalf("Award #%d = %d, want %d", i, got, w)
		}
	}
	if balance := repo.balances[1]; balance != 9 {
		t.Fatalf("balance = %d, want 9", balance)
	}

	// Another user has an independent allowance.
	if got, _ := svc.Award(ctx, 2, models.PointActionMatchWin, "src-a"); got != 3 {
		t.Fatalf("Award(other user) = %d, want 3", got)
	}
}

func TestAwardRejectsBadInput(t *testing.T) {
	svc := newTestPoints(newFakePointsRepo(), nil, time.Now())
	if _, err := svc.Award(context.Background(), 1, "referral", "x"); !errors.Is(err, ErrValidation) {
		t.Fatalf("unknown action error = %v, want %v", err, ErrValidation)
	}
	if _, err := svc.Award(context.Background(), 1, models.PointActionMatchWin, ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("empty source error = %v, want %v", err, ErrValidation)
	}
}

func TestAwardStorageFailureCreditsNothing(t *testing.T) {
	repo := newFakePointsRepo()
	repo.appendErr = errBoom
	svc := newTestPoints(repo, nil, time.Now())
	if _, err := svc.Award(context.Background(), 1, models.PointActionMatchWin, "r1"); !errors.Is(err, errBoom) {
		t.Fatalf("Award() error = %v, want %v", err, errBoom)
	}
	if repo.balances[1] != 0 {
		t.Fatalf("balance = %d, want 0", repo.balances[1])
	}
}
