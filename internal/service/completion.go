package service

import (
	"context"
	"errors"
	"time"

	"daily-tasks-bot/internal/models"
	"daily-tasks-bot/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// TaskStatusHook lets the task owner follow completion changes.
type TaskStatusHook interface {
	SetTaskStatus(ctx context.Context, taskID uint, status string) error
}

// CompletionTracker moves tasks between assigned and completed within one day
// and keeps the completion history.
type CompletionTracker struct {
	store       *EntryStore
	completions repository.CompletionRepository
	locks       *UserLocks
	hook        TaskStatusHook
	now         func() time.Time
	logger      *logrus.Logger
}

func NewCompletionTracker(store *EntryStore, completions repository.CompletionRepository, locks *UserLocks) *CompletionTracker {
	return &CompletionTracker{
		store:       store,
		completions: completions,
		locks:       locks,
		now:         time.Now,
		logger:      newLogger(),
	}
}

// SetStatusHook registers the collaborator notified on completion changes.
func (t *CompletionTracker) SetStatusHook(hook TaskStatusHook) {
	t.hook = hook
}

// MarkCompleted records the completion of taskID on date. Repeated calls are no-ops.
func (t *CompletionTracker) MarkCompleted(ctx context.Context, userID uint, date string, taskID uint, notes string) (*models.WorkEntry, error) {
	unlock := t.locks.Lock(userID)
	defer unlock()

	return t.markCompleted(ctx, userID, date, taskID, notes)
}

func (t *CompletionTracker) markCompleted(ctx context.Context, userID uint, date string, taskID uint, notes string) (*models.WorkEntry, error) {
	if err := validateTaskID(taskID); err != nil {
		return nil, err
	}

	entry, err := t.store.GetOrCreate(ctx, userID, date)
	if err != nil {
		return nil, err
	}

	if entry.IsCompleted(taskID) {
		t.logger.WithFields(logrus.Fields{
			"user_id": userID,
			"date":    date,
			"task_id": taskID,
		}).Debug("Task already completed")
		return entry, nil
	}

	record := &models.TaskCompletionRecord{
		ID:          uuid.NewString(),
		TaskID:      taskID,
		UserID:      userID,
		Date:        date,
		CompletedAt: t.now(),
		Notes:       notes,
	}
	if err := t.completions.Create(ctx, record); err != nil {
		return nil, storeErr("create completion", err)
	}

	entry.Unassign(taskID)
	entry.Complete(taskID)

	if _, err := t.store.Save(ctx, entry); err != nil {
		return nil, err
	}

	t.notify(ctx, taskID, models.TaskStatusCompleted)

	t.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"date":    date,
		"task_id": taskID,
	}).Info("Task marked completed")

	return entry, nil
}

// MarkUncompleted drops the latest completion record and puts taskID back on date's assigned list.
func (t *CompletionTracker) MarkUncompleted(ctx context.Context, userID uint, date string, taskID uint) (*models.WorkEntry, error) {
	unlock := t.locks.Lock(userID)
	defer unlock()

	return t.markUncompleted(ctx, userID, date, taskID)
}

func (t *CompletionTracker) markUncompleted(ctx context.Context, userID uint, date string, taskID uint) (*models.WorkEntry, error) {
	if err := validateTaskID(taskID); err != nil {
		return nil, err
	}
	if err := validateDate("date", date); err != nil {
		return nil, err
	}

	deleted, err := t.completions.DeleteLatest(ctx, taskID, userID)
	if err != nil {
		return nil, storeErr("delete completion", err)
	}

	entry, err := t.store.GetOrCreate(ctx, userID, date)
	if err != nil {
		return nil, err
	}

	uncompleted := entry.Uncomplete(taskID)
	assigned := entry.Assign(taskID)
	if uncompleted || assigned {
		if _, err := t.store.Save(ctx, entry); err != nil {
			return nil, err
		}
	}

	t.notify(ctx, taskID, models.TaskStatusInProgress)

	t.logger.WithFields(logrus.Fields{
		"user_id":        userID,
		"date":           date,
		"task_id":        taskID,
		"record_removed": deleted,
	}).Info("Task marked uncompleted")

	return entry, nil
}

// AssignTask puts taskID on the assigned list of date.
func (t *CompletionTracker) AssignTask(ctx context.Context, userID uint, date string, taskID uint) (*models.WorkEntry, error) {
	if err := validateTaskID(taskID); err != nil {
		return nil, err
	}

	unlock := t.locks.Lock(userID)
	defer unlock()

	entry, err := t.store.GetOrCreate(ctx, userID, date)
	if err != nil {
		return nil, err
	}

	if !entry.Assign(taskID) {
		return entry, nil
	}

	return t.store.Save(ctx, entry)
}

// RemoveTaskFromFuture strips taskID from the assigned lists of every entry dated fromDate or later.
// Completed lists and completion records are left alone. It returns the number of entries changed.
func (t *CompletionTracker) RemoveTaskFromFuture(ctx context.Context, taskID uint, fromDate string) (int, error) {
	if err := validateTaskID(taskID); err != nil {
		return 0, err
	}

	entries, err := t.store.List(ctx, EntryFilter{DateFrom: fromDate})
	if err != nil {
		return 0, err
	}

	var (
		changed int
		errs    []error
	)
	for _, candidate := range entries {
		if !candidate.IsAssigned(taskID) {
			continue
		}

		ok, err := t.unassignLocked(ctx, candidate.UserID, candidate.Date, taskID)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if ok {
			changed++
		}
	}

	t.logger.WithFields(logrus.Fields{
		"task_id":   taskID,
		"from_date": fromDate,
		"changed":   changed,
		"failed":    len(errs),
	}).Info("Task removed from future entries")

	return changed, errors.Join(errs...)
}

func (t *CompletionTracker) unassignLocked(ctx context.Context, userID uint, date string, taskID uint) (bool, error) {
	unlock := t.locks.Lock(userID)
	defer unlock()

	entry, err := t.store.Get(ctx, userID, date)
	if err != nil || entry == nil {
		return false, err
	}
	if !entry.Unassign(taskID) {
		return false, nil
	}
	if _, err := t.store.Save(ctx, entry); err != nil {
		return false, err
	}
	return true, nil
}

// History lists completion records for taskID, oldest first.
func (t *CompletionTracker) History(ctx context.Context, taskID uint) ([]*models.TaskCompletionRecord, error) {
	records, err := t.completions.ListByTask(ctx, taskID)
	if err != nil {
		return nil, storeErr("list completions", err)
	}
	return records, nil
}

func (t *CompletionTracker) notify(ctx context.Context, taskID uint, status string) {
	if t.hook == nil {
		return
	}
	if err := t.hook.SetTaskStatus(ctx, taskID, status); err != nil {
		t.logger.WithError(err).WithFields(logrus.Fields{
			"task_id": taskID,
			"status":  status,
		}).Warn("Task status hook failed")
	}
}
