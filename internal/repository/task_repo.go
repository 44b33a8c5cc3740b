package repository

import (
	"context"
	"errors"

	"daily-tasks-bot/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var ErrTaskNotFound = errors.New("task not found")

type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	GetByID(ctx context.Context, id uint) (*models.Task, error)
	GetByUserID(ctx context.Context, userID uint) ([]*models.Task, error)
	UpdateStatus(ctx context.Context, id uint, status string) error
	Delete(ctx context.Context, id uint) error
}

type GormTaskRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewGormTaskRepository(db *gorm.DB) (*GormTaskRepository, error) {
	logger := newLogger()

	if err := db.AutoMigrate(&models.Task{}); err != nil {
		logger.WithError(err).Error("Failed to auto-migrate tasks table")
		return nil, err
	}

	return &GormTaskRepository{db: db, logger: logger}, nil
}

func (r *GormTaskRepository) Create(ctx context.Context, task *models.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		r.logger.WithError(err).Error("Failed to create task")
		return err
	}

	r.logger.WithFields(logrus.Fields{
		"id":       task.ID,
		"user_id":  task.UserID,
		"due_date": task.DueDate,
	}).Info("Task created")

	return nil
}

func (r *GormTaskRepository) GetByID(ctx context.Context, id uint) (*models.Task, error) {
	var task models.Task
	result := r.db.WithContext(ctx).First(&task, id)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if result.Error != nil {
		return nil, result.Error
	}

	return &task, nil
}

func (r *GormTaskRepository) GetByUserID(ctx context.Context, userID uint) ([]*models.Task, error) {
	var tasks []*models.Task
	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("due_date ASC, id ASC").
		Find(&tasks)
	if result.Error != nil {
		return nil, result.Error
	}
	return tasks, nil
}

func (r *GormTaskRepository) UpdateStatus(ctx context.Context, id uint, status string) error {
	result := r.db.WithContext(ctx).Model(&models.Task{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to update task status")
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func (r *GormTaskRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Task{}, id)
	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to delete task")
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}

	r.logger.WithField("id", id).Info("Task deleted")
	return nil
}
