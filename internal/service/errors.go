package service

import (
	"errors"
	"fmt"

	"daily-tasks-bot/pkg/calendar"
)

// ErrNotFound is returned when a referenced record does not exist.
var ErrNotFound = errors.New("not found")

// StoreError wraps a failure of the underlying storage backend.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// ValidationError rejects input that can never succeed.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// RangeError rejects date ranges outside the supported bounds.
type RangeError struct {
	From   string
	To     string
	Reason string
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("date range %s..%s: %s", e.From, e.To, e.Reason)
}

// storeErr wraps err once; errors that already carry a StoreError pass through.
func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}

func validateDate(field, date string) error {
	if _, err := calendar.ParseDate(date); err != nil {
		return &ValidationError{Field: field, Reason: err.Error()}
	}
	return nil
}

func validateTaskID(taskID uint) error {
	if taskID == 0 {
		return &ValidationError{Field: "task_id", Reason: "must be positive"}
	}
	return nil
}
