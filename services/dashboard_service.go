package services

import (
	"context"
	"fmt"

	"github.com/Dosada05/badminton-community/models"
	"github.com/Dosada05/badminton-community/repositories"
	"golang.org/x/sync/errgroup"
)

type DashboardService interface {
	GetStats(ctx context.Context) (models.DashboardStats, error)
}

type dashboardService struct {
	userRepo    repositories.UserRepository
	sessionRepo repositories.SessionRepository
	resultRepo  repositories.MatchResultRepository
}

func NewDashboardService(
	userRepo repositories.UserRepository,
	sessionRepo repositories.SessionRepository,
	resultRepo repositories.MatchResultRepository,
) DashboardService {
	return &dashboardService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		resultRepo:  resultRepo,
	}
}

func (s *dashboardService) GetStats(ctx context.Context) (models.DashboardStats, error) {
	var stats models.DashboardStats
	banned := models.UserStatusBanned
	active := models.SessionStatusInProgress

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.UsersTotal, err = s.userRepo.Count(gctx, nil)
		return
	})
	g.Go(func() (err error) {
		stats.BannedUsers, err = s.userRepo.Count(gctx, &banned)
		return
	})
	g.Go(func() (err error) {
		stats.SessionsTotal, err = s.sessionRepo.Count(gctx, nil)
		return
	})
	g.Go(func() (err error) {
		stats.ActiveSessions, err = s.sessionRepo.Count(gctx, &active)
		return
	})
	g.Go(func() (err error) {
		stats.ResultsTotal, err = s.resultRepo.Count(gctx, false)
		return
	})
	g.Go(func() (err error) {
		stats.UnsettledResults, err = s.resultRepo.Count(gctx, true)
		return
	})
	if err := g.Wait(); err != nil {
		return models.DashboardStats{}, fmt.Errorf("failed to collect dashboard stats: %w", err)
	}
	return stats, nil
}
