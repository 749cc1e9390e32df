package repository

import (
	"context"
	"errors"
	"time"

	"accounthub/internal/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ListFilter narrows and pages the admin user listing.
type ListFilter struct {
	Role   *entity.UserRole
	Status *entity.UserStatus
	Page   int
	Limit  int
}

// UserStats aggregates account counts for the admin dashboard.
type UserStats struct {
	Total      int64
	Active     int64
	Blocked    int64
	ByRole     map[string]int64
	ByProvider map[string]int64
}

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByEmailOrProviderID(ctx context.Context, email, providerID string) (*entity.User, error)
	FindByResetTokenHash(ctx context.Context, tokenHash string, now time.Time) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter ListFilter) ([]entity.User, int64, error)
	Stats(ctx context.Context) (*UserStats, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var user entity.User
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&user).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var user entity.User
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&user).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmailOrProviderID(ctx context.Context, email, providerID string) (*entity.User, error) {
	var user entity.User
	err := r.db.WithContext(ctx).
		Where("email = ? OR provider_id = ?", email, providerID).
		First(&user).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByResetTokenHash(ctx context.Context, tokenHash string, now time.Time) (*entity.User, error) {
	var user entity.User
	err := r.db.WithContext(ctx).
		Where("password_reset_token_hash = ? AND password_reset_expires_at > ?", tokenHash, now).
		First(&user).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, user *entity.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *userRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entity.User{}, "id = ?", id).Error
}

func (r *userRepository) List(ctx context.Context, filter ListFilter) ([]entity.User, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.User{})
	if filter.Role != nil {
		query = query.Where("role = ?", *filter.Role)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	var users []entity.User
	err := query.
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *userRepository) Stats(ctx context.Context) (*UserStats, error) {
	stats := &UserStats{
		ByRole:     make(map[string]int64),
		ByProvider: make(map[string]int64),
	}

	model := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&entity.User{})
	}

	if err := model().Count(&stats.Total).Error; err != nil {
		return nil, err
	}
	if err := model().Where("status = ?", entity.StatusActive).Count(&stats.Active).Error; err != nil {
		return nil, err
	}
	if err := model().Where("status = ?", entity.StatusBlocked).Count(&stats.Blocked).Error; err != nil {
		return nil, err
	}

	type bucket struct {
		Key   string
		Count int64
	}

	var byRole []bucket
	if err := model().Select("role AS key, COUNT(*) AS count").Group("role").Scan(&byRole).Error; err != nil {
		return nil, err
	}
	for _, b := range byRole {
		stats.ByRole[b.Key] = b.Count
	}

	var byProvider []bucket
	if err := model().Select("provider AS key, COUNT(*) AS count").Group("provider").Scan(&byProvider).Error; err != nil {
		return nil, err
	}
	for _, b := range byProvider {
		stats.ByProvider[b.Key] = b.Count
	}

	return stats, nil
}
