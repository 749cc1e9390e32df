package service

import (
	"context"
	"net/http"

	"accounthub/internal/apperr"
	"accounthub/internal/dto"
	"accounthub/internal/entity"
	"accounthub/internal/repository"

	"github.com/google/uuid"
)

// UserService covers admin user management: listing, updates, deletion,
// status and role changes, account statistics.
type UserService struct {
	users repository.UserRepository
}

func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users}
}

func (s *UserService) ListUsers(ctx context.Context, filter repository.ListFilter) (*dto.UserListData, error) {
	users, total, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = 10
	}
	totalPages := (total + int64(limit) - 1) / int64(limit)

	return &dto.UserListData{
		Users:      dto.SafeUsersFromEntities(users),
		Total:      total,
		Page:       page,
		TotalPages: totalPages,
	}, nil
}

func (s *UserService) GetUserByID(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, userNotFound()
	}
	return user, nil
}

// UpdateUser patches the admin-editable fields. Status changes go through
// the same super-admin guard as ChangeUserStatus.
func (s *UserService) UpdateUser(ctx context.Context, userID uuid.UUID, updates dto.UpdateUserRequest) (*entity.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, userNotFound()
	}

	if updates.Name != nil {
		user.Name = *updates.Name
	}
	if updates.Avatar != nil {
		user.Avatar = updates.Avatar
	}
	if updates.Role != nil {
		user.Role = entity.UserRole(*updates.Role)
	}
	if updates.Status != nil {
		status := entity.UserStatus(*updates.Status)
		if err := guardStatusChange(user, status); err != nil {
			return nil, err
		}
		user.Status = status
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser removes an account. Super-admin accounts are never deleted.
func (s *UserService) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return userNotFound()
	}
	if user.Role == entity.RoleSuperAdmin {
		return apperr.New("Cannot delete super admin account", http.StatusForbidden, apperr.CodeCannotDeleteSuperAdmin)
	}
	return s.users.Delete(ctx, userID)
}

func (s *UserService) ChangeUserStatus(ctx context.Context, userID uuid.UUID, status entity.UserStatus) (*entity.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, userNotFound()
	}
	if err := guardStatusChange(user, status); err != nil {
		return nil, err
	}

	user.Status = status
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) ChangeUserRole(ctx context.Context, userID uuid.UUID, role entity.UserRole) (*entity.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, userNotFound()
	}

	user.Role = role
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) GetUserStats(ctx context.Context) (*dto.UserStatsData, error) {
	stats, err := s.users.Stats(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.UserStatsData{
		TotalUsers:      stats.Total,
		ActiveUsers:     stats.Active,
		BlockedUsers:    stats.Blocked,
		UsersByRole:     stats.ByRole,
		UsersByProvider: stats.ByProvider,
	}, nil
}

func guardStatusChange(user *entity.User, status entity.UserStatus) error {
	if user.Role == entity.RoleSuperAdmin && status == entity.StatusBlocked {
		return apperr.New("Cannot block super admin account", http.StatusForbidden, apperr.CodeCannotBlockSuperAdmin)
	}
	return nil
}
