package service

import (
	"context"
	"errors"
	"fmt"

	"daily-tasks-bot/internal/models"
	"daily-tasks-bot/pkg/calendar"

	"github.com/sirupsen/logrus"
)

// DayTransition describes one rollover step.
type DayTransition struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Moved []uint `json:"moved"`
}

// DayError is a failed step of a bulk operation.
type DayError struct {
	Date string
	Err  error
}

func (e DayError) Error() string {
	return fmt.Sprintf("%s: %v", e.Date, e.Err)
}

func (e DayError) Unwrap() error {
	return e.Err
}

// WeekRolloverResult reports what a week rollover did, day by day.
type WeekRolloverResult struct {
	UserID      uint
	WeekStart   string
	Transitions []DayTransition
	Skipped     []string
	Errors      []DayError
}

// Err joins the per-day failures, nil when every day succeeded.
func (r *WeekRolloverResult) Err() error {
	errs := make([]error, 0, len(r.Errors))
	for _, e := range r.Errors {
		errs = append(errs, e)
	}
	return errors.Join(errs...)
}

// RolloverEngine carries unfinished tasks forward. It only runs when called.
type RolloverEngine struct {
	store  *EntryStore
	locks  *UserLocks
	logger *logrus.Logger
}

func NewRolloverEngine(store *EntryStore, locks *UserLocks) *RolloverEngine {
	return &RolloverEngine{
		store:  store,
		locks:  locks,
		logger: newLogger(),
	}
}

// RolloverDay moves the unfinished tasks of fromDate onto toDate and returns the moved ids.
// Nothing is written when fromDate has no unfinished task.
func (e *RolloverEngine) RolloverDay(ctx context.Context, userID uint, fromDate, toDate string) ([]uint, error) {
	if err := validateRollover(fromDate, toDate); err != nil {
		return nil, err
	}

	unlock := e.locks.Lock(userID)
	defer unlock()

	return e.rolloverDay(ctx, userID, fromDate, toDate)
}

func (e *RolloverEngine) rolloverDay(ctx context.Context, userID uint, fromDate, toDate string) ([]uint, error) {
	source, err := e.store.Get(ctx, userID, fromDate)
	if err != nil {
		return nil, err
	}
	if source == nil {
		return nil, nil
	}

	unfinished := source.Unfinished()
	if len(unfinished) == 0 {
		e.logger.WithFields(logrus.Fields{
			"user_id": userID,
			"from":    fromDate,
		}).Debug("Nothing to roll over")
		return nil, nil
	}

	dest, err := e.store.GetOrCreate(ctx, userID, toDate)
	if err != nil {
		return nil, err
	}
	for _, id := range unfinished {
		dest.Assign(id)
	}

	// Destination before source: a partial failure may duplicate tasks, never drop them.
	if _, err := e.store.Save(ctx, dest); err != nil {
		return nil, err
	}

	source.AssignedTaskIDs = keepCompleted(source)
	if _, err := e.store.Save(ctx, source); err != nil {
		return nil, err
	}

	e.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"from":    fromDate,
		"to":      toDate,
		"moved":   len(unfinished),
	}).Info("Tasks rolled over")

	return unfinished, nil
}

// RolloverWeek rolls each day of the week into the next, Monday→Tuesday through Saturday→Sunday
// for a Monday start. Days without unfinished tasks are skipped; a failed day does not stop the rest.
func (e *RolloverEngine) RolloverWeek(ctx context.Context, userID uint, weekStart string) (*WeekRolloverResult, error) {
	if err := validateDate("week_start", weekStart); err != nil {
		return nil, err
	}

	days, err := calendar.Week(weekStart)
	if err != nil {
		return nil, &ValidationError{Field: "week_start", Reason: err.Error()}
	}

	e.logger.WithFields(logrus.Fields{
		"user_id":    userID,
		"week_start": weekStart,
	}).Info("Rolling over week")

	unlock := e.locks.Lock(userID)
	defer unlock()

	result := &WeekRolloverResult{UserID: userID, WeekStart: weekStart}

	for i := 0; i < len(days)-1; i++ {
		from, to := days[i], days[i+1]

		source, err := e.store.Get(ctx, userID, from)
		if err != nil {
			result.Errors = append(result.Errors, DayError{Date: from, Err: err})
			continue
		}
		if source == nil || !source.HasUnfinished() {
			result.Skipped = append(result.Skipped, from)
			continue
		}

		moved, err := e.rolloverDay(ctx, userID, from, to)
		if err != nil {
			e.logger.WithError(err).WithField("date", from).Error("Rollover step failed")
			result.Errors = append(result.Errors, DayError{Date: from, Err: err})
			continue
		}
		result.Transitions = append(result.Transitions, DayTransition{From: from, To: to, Moved: moved})
	}

	e.logger.WithFields(logrus.Fields{
		"user_id":     userID,
		"week_start":  weekStart,
		"transitions": len(result.Transitions),
		"skipped":     len(result.Skipped),
		"errors":      len(result.Errors),
	}).Info("Week rollover finished")

	return result, nil
}

func validateRollover(fromDate, toDate string) error {
	if err := validateDate("from_date", fromDate); err != nil {
		return err
	}
	if err := validateDate("to_date", toDate); err != nil {
		return err
	}
	if toDate <= fromDate {
		return &RangeError{From: fromDate, To: toDate, Reason: "destination must be after source"}
	}
	return nil
}

// keepCompleted returns the assigned ids that are also completed: assigned ∩ completed.
func keepCompleted(entry *models.WorkEntry) []uint {
	kept := []uint{}
	for _, id := range entry.AssignedTaskIDs {
		if entry.IsCompleted(id) {
			kept = append(kept, id)
		}
	}
	return kept
}
