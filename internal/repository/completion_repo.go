package repository

import (
	"context"
	"errors"

	"daily-tasks-bot/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type CompletionRepository interface {
	Create(ctx context.Context, record *models.TaskCompletionRecord) error
	// DeleteLatest removes the most recent record for the pair and reports whether one existed.
	DeleteLatest(ctx context.Context, taskID, userID uint) (bool, error)
	ListByTask(ctx context.Context, taskID uint) ([]*models.TaskCompletionRecord, error)
}

type GormCompletionRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewGormCompletionRepository(db *gorm.DB) (*GormCompletionRepository, error) {
	logger := newLogger()

	if err := db.AutoMigrate(&models.TaskCompletionRecord{}); err != nil {
		logger.WithError(err).Error("Failed to auto-migrate task_completion_records table")
		return nil, err
	}

	logger.Info("Completion repository initialized")

	return &GormCompletionRepository{db: db, logger: logger}, nil
}

func (r *GormCompletionRepository) Create(ctx context.Context, record *models.TaskCompletionRecord) error {
	result := r.db.WithContext(ctx).Create(record)
	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to create completion record")
		return result.Error
	}

	r.logger.WithFields(logrus.Fields{
		"id":      record.ID,
		"task_id": record.TaskID,
		"user_id": record.UserID,
	}).Info("Completion record created")

	return nil
}

func (r *GormCompletionRepository) DeleteLatest(ctx context.Context, taskID, userID uint) (bool, error) {
	var latest models.TaskCompletionRecord
	result := r.db.WithContext(ctx).
		Where("task_id = ? AND user_id = ?", taskID, userID).
		Order("completed_at DESC").
		First(&latest)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		r.logger.WithFields(logrus.Fields{
			"task_id": taskID,
			"user_id": userID,
		}).Debug("No completion record to delete")
		return false, nil
	}
	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to find latest completion record")
		return false, result.Error
	}

	if err := r.db.WithContext(ctx).Delete(&models.TaskCompletionRecord{}, "id = ?", latest.ID).Error; err != nil {
		r.logger.WithError(err).Error("Failed to delete completion record")
		return false, err
	}

	r.logger.WithField("id", latest.ID).Info("Completion record deleted")
	return true, nil
}

func (r *GormCompletionRepository) ListByTask(ctx context.Context, taskID uint) ([]*models.TaskCompletionRecord, error) {
	var records []*models.TaskCompletionRecord
	result := r.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("completed_at ASC").
		Find(&records)
	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to list completion records")
		return nil, result.Error
	}
	return records, nil
}
