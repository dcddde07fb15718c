package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/badminton-community/models"
	"github.com/Dosada05/badminton-community/repositories"
	"github.com/Dosada05/badminton-community/storage"
)

type AdminUserService interface {
	ListUsers(ctx context.Context, filter models.UserFilter) (models.UserListResponse, error)
	// SetUserStatus банит или восстанавливает пользователя. Свой статус менять
	// нельзя, статус администратора меняет только администратор.
	SetUserStatus(ctx context.Context, actor models.Actor, userID int, status models.UserStatus) (*models.User, error)
}

type adminUserService struct {
	userRepo repositories.UserRepository
	uploader storage.FileUploader
}

func NewAdminUserService(userRepo repositories.UserRepository, uploader storage.FileUploader) AdminUserService {
	return &adminUserService{userRepo: userRepo, uploader: uploader}
}

func (s *adminUserService) ListUsers(ctx context.Context, filter models.UserFilter) (models.UserListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	filter.Limit, _ = normalizePage(filter.Limit, 0)

	users, total, err := s.userRepo.List(ctx, filter)
	if err != nil {
		return models.UserListResponse{}, fmt.Errorf("failed to list users: %w", err)
	}
	for i := range users {
		populateUserDetailsFunc(&users[i], s.uploader)
	}
	return models.UserListResponse{
		Users:      users,
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, nil
}

func (s *adminUserService) SetUserStatus(ctx context.Context, actor models.Actor, userID int, status models.UserStatus) (*models.User, error) {
	if status != models.UserStatusActive && status != models.UserStatusBanned {
		return nil, fmt.Errorf("%w: status must be active or banned", ErrValidation)
	}
	if !actor.Role.IsElevated() {
		return nil, ErrForbidden
	}
	if actor.UserID == userID {
		return nil, fmt.Errorf("%w: cannot change your own status", ErrInvalidTarget)
	}

	target, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %d: %w", userID, err)
	}
	if target.Role == models.RoleAdmin && actor.Role != models.RoleAdmin {
		return nil, fmt.Errorf("%w: only admins can change an admin's status", ErrForbidden)
	}

	if err := s.userRepo.SetStatus(ctx, userID, status); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to set status of user %d: %w", userID, err)
	}
	target.Status = status
	populateUserDetailsFunc(target, s.uploader)
	return target, nil
}
