package repository

import (
	"context"
	"errors"
	"time"

	"daily-tasks-bot/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EntryFilter narrows a work entry listing. Zero values mean "no constraint".
// A non-nil empty UserIDs matches nothing.
type EntryFilter struct {
	UserIDs  []uint
	DateFrom string
	DateTo   string
}

type WorkEntryRepository interface {
	GetByUserAndDate(ctx context.Context, userID uint, date string) (*models.WorkEntry, error)
	Upsert(ctx context.Context, entry *models.WorkEntry) error
	List(ctx context.Context, filter EntryFilter) ([]*models.WorkEntry, error)
}

type GormWorkEntryRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewGormWorkEntryRepository(db *gorm.DB) (*GormWorkEntryRepository, error) {
	logger := newLogger()

	if err := db.AutoMigrate(&models.WorkEntry{}); err != nil {
		logger.WithError(err).Error("Failed to auto-migrate work_entries table")
		return nil, err
	}

	logger.Info("Work entry repository initialized")

	return &GormWorkEntryRepository{
		db:     db,
		logger: logger,
	}, nil
}

func (r *GormWorkEntryRepository) GetByUserAndDate(ctx context.Context, userID uint, date string) (*models.WorkEntry, error) {
	var entry models.WorkEntry
	result := r.db.WithContext(ctx).Where("user_id = ? AND date = ?", userID, date).First(&entry)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		r.logger.WithFields(logrus.Fields{
			"user_id": userID,
			"date":    date,
		}).Debug("Work entry not found for user/date")
		return nil, nil
	}

	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to get work entry by user and date")
		return nil, result.Error
	}

	return &entry, nil
}

// Upsert inserts the entry or overwrites the row with the same (user_id, date).
func (r *GormWorkEntryRepository) Upsert(ctx context.Context, entry *models.WorkEntry) error {
	entry.Normalize()

	now := time.Now()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	entry.UpdatedAt = now

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"assigned_task_ids",
			"completed_task_ids",
			"check_in_time",
			"check_out_time",
			"is_absent",
			"updated_at",
		}),
	}).Create(entry)

	if result.Error != nil {
		r.logger.WithError(result.Error).WithFields(logrus.Fields{
			"user_id": entry.UserID,
			"date":    entry.Date,
		}).Error("Failed to save work entry")
		return result.Error
	}

	r.logger.WithFields(logrus.Fields{
		"id":        entry.ID,
		"assigned":  len(entry.AssignedTaskIDs),
		"completed": len(entry.CompletedTaskIDs),
	}).Debug("Work entry saved")

	return nil
}

func (r *GormWorkEntryRepository) List(ctx context.Context, filter EntryFilter) ([]*models.WorkEntry, error) {
	var entries []*models.WorkEntry

	if filter.UserIDs != nil && len(filter.UserIDs) == 0 {
		return entries, nil
	}

	query := r.db.WithContext(ctx).Model(&models.WorkEntry{})
	if len(filter.UserIDs) > 0 {
		query = query.Where("user_id IN ?", filter.UserIDs)
	}
	if filter.DateFrom != "" {
		query = query.Where("date >= ?", filter.DateFrom)
	}
	if filter.DateTo != "" {
		query = query.Where("date <= ?", filter.DateTo)
	}

	result := query.Order("user_id ASC, date ASC").Find(&entries)
	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to list work entries")
		return nil, result.Error
	}

	r.logger.WithFields(logrus.Fields{
		"users":     len(filter.UserIDs),
		"date_from": filter.DateFrom,
		"date_to":   filter.DateTo,
		"count":     len(entries),
	}).Debug("Listed work entries")

	return entries, nil
}
