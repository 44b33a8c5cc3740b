package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"daily-tasks-bot/internal/models"
	"daily-tasks-bot/internal/repository"

	"github.com/sirupsen/logrus"
)

// TaskService is the task-side collaborator of the engine: it supplies due dates,
// announces creation and deletion, and follows completion status.
type TaskService struct {
	repo       repository.TaskRepository
	tracker    *CompletionTracker
	propagator *Propagator
	logger     *logrus.Logger
}

func NewTaskService(repo repository.TaskRepository, tracker *CompletionTracker, propagator *Propagator) *TaskService {
	s := &TaskService{
		repo:       repo,
		tracker:    tracker,
		propagator: propagator,
		logger:     newLogger(),
	}
	tracker.SetStatusHook(s)
	return s
}

// CreateTask stores the task and assigns it on its due date
func (s *TaskService) CreateTask(ctx context.Context, userID uint, title, dueDate string) (*models.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if err := validateDate("due_date", dueDate); err != nil {
		return nil, err
	}

	task := &models.Task{
		UserID:  userID,
		Title:   title,
		DueDate: dueDate,
		Status:  models.TaskStatusTodo,
	}
	if err := s.repo.Create(ctx, task); err != nil {
		return nil, storeErr("create task", err)
	}

	if _, err := s.tracker.AssignTask(ctx, userID, dueDate, task.ID); err != nil {
		return task, fmt.Errorf("assign task %d: %w", task.ID, err)
	}

	return task, nil
}

// GetTask returns the task or ErrNotFound
func (s *TaskService) GetTask(ctx context.Context, id uint) (*models.Task, error) {
	task, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr("get task", err)
	}
	if task == nil {
		return nil, fmt.Errorf("task %d: %w", id, ErrNotFound)
	}
	return task, nil
}

// ListTasks returns the user's tasks ordered by due date
func (s *TaskService) ListTasks(ctx context.Context, userID uint) ([]*models.Task, error) {
	tasks, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, storeErr("list tasks", err)
	}
	return tasks, nil
}

// CompleteTask finishes the task on date and clears it from later days
func (s *TaskService) CompleteTask(ctx context.Context, userID, taskID uint, date string) (*PropagationResult, error) {
	task, err := s.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	return s.propagator.PropagateCompletion(ctx, userID, date, task.ID, task.DueDate)
}

// ReopenTask reopens the task on date and re-assigns it going forward
func (s *TaskService) ReopenTask(ctx context.Context, userID, taskID uint, date string) (*PropagationResult, error) {
	task, err := s.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	return s.propagator.PropagateReopen(ctx, userID, date, task.ID, task.DueDate)
}

// DeleteTask removes the task and strips it from pending lists from fromDate on.
// Completion history is kept.
func (s *TaskService) DeleteTask(ctx context.Context, taskID uint, fromDate string) (int, error) {
	if err := validateDate("from_date", fromDate); err != nil {
		return 0, err
	}

	if err := s.repo.Delete(ctx, taskID); err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return 0, fmt.Errorf("task %d: %w", taskID, ErrNotFound)
		}
		return 0, storeErr("delete task", err)
	}

	return s.tracker.RemoveTaskFromFuture(ctx, taskID, fromDate)
}

// History returns every completion recorded for the task, deleted tasks included
func (s *TaskService) History(ctx context.Context, taskID uint) ([]*models.TaskCompletionRecord, error) {
	return s.tracker.History(ctx, taskID)
}

// SetTaskStatus implements TaskStatusHook
func (s *TaskService) SetTaskStatus(ctx context.Context, taskID uint, status string) error {
	if !models.IsValidStatus(status) {
		return &ValidationError{Field: "status", Reason: status}
	}

	s.logger.WithFields(logrus.Fields{
		"task_id": taskID,
		"status":  status,
	}).Debug("Updating task status")

	return s.repo.UpdateStatus(ctx, taskID, status)
}
