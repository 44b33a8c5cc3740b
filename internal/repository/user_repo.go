package repository

import (
	"context"
	"errors"

	"daily-tasks-bot/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrUserExists   = errors.New("user already exists")
	ErrUserNotFound = errors.New("user not found")
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByChatID(ctx context.Context, chatID int64) (*models.User, error)
	GetAll(ctx context.Context) ([]*models.User, error)
	GetActiveByTeam(ctx context.Context, teamID string) ([]*models.User, error)
	UpdateTeam(ctx context.Context, chatID int64, teamID string) error
	UpdateRole(ctx context.Context, chatID int64, role string) error
	SetActive(ctx context.Context, id uint, active bool) error
}

type GormUserRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewGormUserRepository(db *gorm.DB) (*GormUserRepository, error) {
	logger := newLogger()

	if err := db.AutoMigrate(&models.User{}); err != nil {
		logger.WithError(err).Error("Failed to auto-migrate users table")
		return nil, err
	}

	return &GormUserRepository{db: db, logger: logger}, nil
}

func (r *GormUserRepository) Create(ctx context.Context, user *models.User) error {
	exists, err := r.exists(ctx, user.ChatID)
	if err != nil {
		return err
	}
	if exists {
		return ErrUserExists
	}

	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		r.logger.WithError(err).Error("Failed to create user")
		return err
	}

	r.logger.WithFields(logrus.Fields{
		"id":      user.ID,
		"chat_id": user.ChatID,
		"team_id": user.TeamID,
	}).Info("User created")

	return nil
}

func (r *GormUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	result := r.db.WithContext(ctx).First(&user, id)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if result.Error != nil {
		return nil, result.Error
	}

	return &user, nil
}

func (r *GormUserRepository) GetByChatID(ctx context.Context, chatID int64) (*models.User, error) {
	var user models.User
	result := r.db.WithContext(ctx).Where("chat_id = ?", chatID).First(&user)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if result.Error != nil {
		return nil, result.Error
	}

	return &user, nil
}

func (r *GormUserRepository) GetAll(ctx context.Context) ([]*models.User, error) {
	var users []*models.User
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *GormUserRepository) GetActiveByTeam(ctx context.Context, teamID string) ([]*models.User, error) {
	var users []*models.User
	result := r.db.WithContext(ctx).
		Where("team_id = ? AND active = ?", teamID, true).
		Order("id ASC").
		Find(&users)
	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to get team members")
		return nil, result.Error
	}
	return users, nil
}

func (r *GormUserRepository) UpdateTeam(ctx context.Context, chatID int64, teamID string) error {
	return r.updateByChatID(ctx, chatID, "team_id", teamID)
}

func (r *GormUserRepository) UpdateRole(ctx context.Context, chatID int64, role string) error {
	return r.updateByChatID(ctx, chatID, "role", role)
}

func (r *GormUserRepository) SetActive(ctx context.Context, id uint, active bool) error {
	result := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("active", active)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *GormUserRepository) updateByChatID(ctx context.Context, chatID int64, column string, value any) error {
	result := r.db.WithContext(ctx).Model(&models.User{}).
		Where("chat_id = ?", chatID).
		Update(column, value)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *GormUserRepository) exists(ctx context.Context, chatID int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("chat_id = ?", chatID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
