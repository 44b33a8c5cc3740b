package service

import (
	"context"

	"daily-tasks-bot/internal/models"
	"daily-tasks-bot/pkg/calendar"

	"github.com/sirupsen/logrus"
)

const (
	// ReopenLookAheadDays bounds the scan range after a reopen.
	ReopenLookAheadDays = 14
	// ReopenCreateWindowDays bounds which missing days a reopen may create.
	// Days between this and ReopenLookAheadDays are only updated if they already exist.
	ReopenCreateWindowDays = 7
)

// PropagationResult lists the days touched beyond the action day itself.
type PropagationResult struct {
	Updated []string `json:"updated"`
	Created []string `json:"created"`
}

// Propagator keeps a task's presence across days consistent with its completion state.
type Propagator struct {
	store   *EntryStore
	tracker *CompletionTracker
	locks   *UserLocks
	logger  *logrus.Logger
}

func NewPropagator(store *EntryStore, tracker *CompletionTracker, locks *UserLocks) *Propagator {
	return &Propagator{
		store:   store,
		tracker: tracker,
		locks:   locks,
		logger:  newLogger(),
	}
}

// PropagateCompletion completes taskID on completionDate and removes it from every
// later existing entry. No entries are created and earlier days are not touched.
func (p *Propagator) PropagateCompletion(ctx context.Context, userID uint, completionDate string, taskID uint, taskDueDate string) (*PropagationResult, error) {
	if err := validateDate("completion_date", completionDate); err != nil {
		return nil, err
	}
	if taskDueDate != "" {
		if err := validateDate("due_date", taskDueDate); err != nil {
			return nil, err
		}
	}

	p.logger.WithFields(logrus.Fields{
		"user_id":         userID,
		"task_id":         taskID,
		"completion_date": completionDate,
		"due_date":        taskDueDate,
	}).Info("Propagating completion")

	unlock := p.locks.Lock(userID)
	defer unlock()

	if _, err := p.tracker.markCompleted(ctx, userID, completionDate, taskID, ""); err != nil {
		return nil, err
	}

	nextDay, err := calendar.AddDays(completionDate, 1)
	if err != nil {
		return nil, &ValidationError{Field: "completion_date", Reason: err.Error()}
	}

	later, err := p.store.List(ctx, EntryFilter{UserID: &userID, DateFrom: nextDay})
	if err != nil {
		return nil, err
	}

	result := &PropagationResult{}
	for _, entry := range later {
		if !entry.Unassign(taskID) {
			continue
		}
		if _, err := p.store.Save(ctx, entry); err != nil {
			return result, err
		}
		result.Updated = append(result.Updated, entry.Date)
	}

	p.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"task_id": taskID,
		"removed": len(result.Updated),
	}).Info("Completion propagated")

	return result, nil
}

// PropagateReopen reopens taskID on reopenDate and re-assigns it on every day from its due date
// through reopenDate+14. Existing entries get the task unless it is already assigned or completed
// there; missing entries are created only within 7 days of reopenDate.
func (p *Propagator) PropagateReopen(ctx context.Context, userID uint, reopenDate string, taskID uint, taskDueDate string) (*PropagationResult, error) {
	if err := validateDate("reopen_date", reopenDate); err != nil {
		return nil, err
	}
	if err := validateDate("due_date", taskDueDate); err != nil {
		return nil, err
	}

	rangeStart := calendar.Earlier(taskDueDate, reopenDate)
	rangeEnd, err := calendar.AddDays(reopenDate, ReopenLookAheadDays)
	if err != nil {
		return nil, &ValidationError{Field: "reopen_date", Reason: err.Error()}
	}
	p.logger.WithFields(logrus.Fields{
		"user_id":     userID,
		"task_id":     taskID,
		"reopen_date": reopenDate,
		"due_date":    taskDueDate,
		"range_end":   rangeEnd,
	}).Info("Propagating reopen")

	unlock := p.locks.Lock(userID)
	defer unlock()

	if _, err := p.tracker.markUncompleted(ctx, userID, reopenDate, taskID); err != nil {
		return nil, err
	}

	result := &PropagationResult{}
	// A due date past the look-ahead leaves nothing to propagate.
	if taskDueDate > rangeEnd {
		return result, nil
	}

	existing, err := p.store.List(ctx, EntryFilter{UserID: &userID, DateFrom: rangeStart, DateTo: rangeEnd})
	if err != nil {
		return nil, err
	}
	byDate := make(map[string]*models.WorkEntry, len(existing))
	for _, entry := range existing {
		byDate[entry.Date] = entry
	}

	days, err := calendar.Range(taskDueDate, rangeEnd)
	if err != nil {
		return nil, &ValidationError{Field: "due_date", Reason: err.Error()}
	}

	for _, day := range days {
		if entry, ok := byDate[day]; ok {
			if entry.IsAssigned(taskID) || entry.IsCompleted(taskID) {
				continue
			}
			entry.Assign(taskID)
			if _, err := p.store.Save(ctx, entry); err != nil {
				return result, err
			}
			result.Updated = append(result.Updated, day)
			continue
		}

		distance, err := calendar.DaysBetween(reopenDate, day)
		if err != nil {
			return result, &ValidationError{Field: "date", Reason: err.Error()}
		}
		if distance < -ReopenCreateWindowDays || distance > ReopenCreateWindowDays {
			continue
		}

		entry := models.NewWorkEntry(userID, day)
		entry.Assign(taskID)
		if _, err := p.store.Save(ctx, entry); err != nil {
			return result, err
		}
		result.Created = append(result.Created, day)
	}

	p.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"task_id": taskID,
		"updated": len(result.Updated),
		"created": len(result.Created),
	}).Info("Reopen propagated")

	return result, nil
}
