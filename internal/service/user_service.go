package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jumakrk/IST-MOBILE-APP/internal/model"
	"github.com/jumakrk/IST-MOBILE-APP/internal/notify"
	"github.com/jumakrk/IST-MOBILE-APP/internal/repository"
	"github.com/jumakrk/IST-MOBILE-APP/pkg/logger"

	"github.com/jackc/pgx/v5"
)

// UserService covers the admin user-management screen and the profile view.
type UserService interface {
	ListUsers(ctx context.Context, roleFilter string) ([]model.User, error)
	ChangeUserRole(ctx context.Context, userID string) (*model.User, error)
	Profile(ctx context.Context, userID string) (*model.UserProfile, error)
	Changes() *notify.Bus
}

type userService struct {
	repo    repository.UserRepository
	changes *notify.Bus
	log     *logger.Logger
}

// NewUserService creates a new UserService
func NewUserService(repo repository.UserRepository, changes *notify.Bus, log *logger.Logger) UserService {
	return &userService{repo: repo, changes: changes, log: log}
}

// Changes exposes the bus signalled on every user write, feeding the live
// user-list subscription.
func (s *userService) Changes() *notify.Bus {
	return s.changes
}

// ListUsers fetches all users and filters by role in memory. An empty filter
// returns everyone.
func (s *userService) ListUsers(ctx context.Context, roleFilter string) ([]model.User, error) {
	users, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	if roleFilter == "" {
		return users, nil
	}
	filtered := []model.User{}
	for _, u := range users {
		if u.Role == roleFilter {
			filtered = append(filtered, u)
		}
	}
	return filtered, nil
}

// ChangeUserRole toggles a user between "user" and "admin". Applying it twice
// returns the role to its original value.
func (s *userService) ChangeUserRole(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user for role change: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	newRole := model.RoleAdmin
	if user.Role == model.RoleAdmin {
		newRole = model.RoleUser
	}

	if err := s.repo.UpdateRole(ctx, userID, newRole); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update role: %w", err)
	}

	s.log.Info().Str("user_id", userID).Str("from", user.Role).Str("to", newRole).Msg("user role changed")
	user.Role = newRole
	s.changes.Publish()
	return user, nil
}

// Profile returns the username and email the profile screen renders.
func (s *userService) Profile(ctx context.Context, userID string) (*model.UserProfile, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return &model.UserProfile{Username: user.Username, Email: user.Email}, nil
}
