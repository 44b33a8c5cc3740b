package service

import (
	"errors"
	"testing"
	"time"

	"daily-tasks-bot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompletionTracker_MarkCompleted(t *testing.T) {
	f := newFixture(t, nil)
	hook := &recordingHook{}
	f.tracker.SetStatusHook(hook)

	f.seed(t, 1, "2024-01-01", []uint{10, 11}, nil)

	entry, err := f.tracker.MarkCompleted(f.ctx, 1, "2024-01-01", 10, "shipped")
	require.NoError(t, err)
	assert.Equal(t, []uint{11}, entry.AssignedTaskIDs)
	assert.Equal(t, []uint{10}, entry.CompletedTaskIDs)

	stored := f.load(t, 1, "2024-01-01")
	assert.Equal(t, []uint{11}, stored.AssignedTaskIDs)
	assert.Equal(t, []uint{10}, stored.CompletedTaskIDs)

	records, err := f.tracker.History(f.ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "2024-01-01", records[0].Date)
	assert.Equal(t, "shipped", records[0].Notes)
	assert.Equal(t, uint(1), records[0].UserID)
	assert.Len(t, records[0].ID, 36)

	assert.Equal(t, []string{models.TaskStatusCompleted}, hook.statuses)
}

func TestCompletionTracker_MarkCompletedIsIdempotent(t *testing.T) {
	f := newFixture(t, nil)
	hook := &recordingHook{}
	f.tracker.SetStatusHook(hook)

	for i := 0; i < 3; i++ {
		_, err := f.tracker.MarkCompleted(f.ctx, 1, "2024-01-01", 10, "")
		require.NoError(t, err)
	}

	entry := f.load(t, 1, "2024-01-01")
	assert.Equal(t, []uint{10}, entry.CompletedTaskIDs)

	records, err := f.tracker.History(f.ctx, 10)
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Len(t, hook.statuses, 1)
}

func TestCompletionTracker_MarkUncompletedRemovesLatestRecordOnly(t *testing.T) {
	f := newFixture(t, nil)
	f.tracker.now = clock(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))

	_, err := f.tracker.MarkCompleted(f.ctx, 1, "2024-01-01", 10, "first")
	require.NoError(t, err)
	_, err = f.tracker.MarkCompleted(f.ctx, 1, "2024-01-02", 10, "second")
	require.NoError(t, err)

	entry, err := f.tracker.MarkUncompleted(f.ctx, 1, "2024-01-02", 10)
	require.NoError(t, err)
	assert.Equal(t, []uint{10}, entry.AssignedTaskIDs)
	assert.Empty(t, entry.CompletedTaskIDs)

	records, err := f.tracker.History(f.ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "first", records[0].Notes)

	// The earlier day keeps its completion.
	assert.Equal(t, []uint{10}, f.load(t, 1, "2024-01-01").CompletedTaskIDs)
}

func TestCompletionTracker_MarkUncompletedWithoutRecord(t *testing.T) {
	f := newFixture(t, nil)
	hook := &recordingHook{}
	f.tracker.SetStatusHook(hook)

	entry, err := f.tracker.MarkUncompleted(f.ctx, 1, "2024-01-05", 10)
	require.NoError(t, err)
	assert.Equal(t, []uint{10}, entry.AssignedTaskIDs)
	assert.Equal(t, []string{models.TaskStatusInProgress}, hook.statuses)
}

func TestCompletionTracker_HookFailureIsNotReturned(t *testing.T) {
	f := newFixture(t, nil)
	f.tracker.SetStatusHook(&recordingHook{err: errors.New("task service unavailable")})

	_, err := f.tracker.MarkCompleted(f.ctx, 1, "2024-01-01", 10, "")
	assert.NoError(t, err)
}

func TestCompletionTracker_RejectsZeroTaskID(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.tracker.MarkCompleted(f.ctx, 1, "2024-01-01", 0, "")
	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, "task_id", validationErr.Field)
}

func TestCompletionTracker_RemoveTaskFromFuture(t *testing.T) {
	f := newFixture(t, nil)

	f.seed(t, 1, "2024-01-01", []uint{10, 11}, nil)
	f.seed(t, 1, "2024-01-02", []uint{10}, nil)
	f.seed(t, 2, "2024-01-03", []uint{10, 12}, []uint{10})
	f.seed(t, 2, "2024-01-04", []uint{12}, nil)

	changed, err := f.tracker.RemoveTaskFromFuture(f.ctx, 10, "2024-01-02")
	require.NoError(t, err)
	assert.Equal(t, 2, changed)

	assert.Equal(t, []uint{10, 11}, f.load(t, 1, "2024-01-01").AssignedTaskIDs)
	assert.Empty(t, f.load(t, 1, "2024-01-02").AssignedTaskIDs)

	third := f.load(t, 2, "2024-01-03")
	assert.Equal(t, []uint{12}, third.AssignedTaskIDs)
	assert.Equal(t, []uint{10}, third.CompletedTaskIDs)
}

func TestTaskService_DeleteKeepsCompletionHistory(t *testing.T) {
	f := newFixture(t, nil)

	task, err := f.tasks.CreateTask(f.ctx, 1, "Write report", "2024-01-01")
	require.NoError(t, err)
	assert.Equal(t, []uint{task.ID}, f.load(t, 1, "2024-01-01").AssignedTaskIDs)

	_, err = f.tasks.CompleteTask(f.ctx, 1, task.ID, "2024-01-01")
	require.NoError(t, err)

	stored, err := f.tasks.GetTask(f.ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusCompleted, stored.Status)

	_, err = f.tasks.DeleteTask(f.ctx, task.ID, "2024-01-01")
	require.NoError(t, err)

	_, err = f.tasks.GetTask(f.ctx, task.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	records, err := f.tasks.History(f.ctx, task.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "2024-01-01", records[0].Date)

	assert.Equal(t, []uint{task.ID}, f.load(t, 1, "2024-01-01").CompletedTaskIDs)
}

func TestTaskService_DeleteStripsPendingDays(t *testing.T) {
	f := newFixture(t, nil)

	task, err := f.tasks.CreateTask(f.ctx, 1, "Migrate database", "2024-01-03")
	require.NoError(t, err)
	_, err = f.tracker.AssignTask(f.ctx, 1, "2024-01-01", task.ID)
	require.NoError(t, err)

	removed, err := f.tasks.DeleteTask(f.ctx, task.ID, "2024-01-02")
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	assert.Equal(t, []uint{task.ID}, f.load(t, 1, "2024-01-01").AssignedTaskIDs)
	assert.Empty(t, f.load(t, 1, "2024-01-03").AssignedTaskIDs)

	_, err = f.tasks.DeleteTask(f.ctx, task.ID, "2024-01-02")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTaskService_ReopenFollowsStatus(t *testing.T) {
	f := newFixture(t, nil)

	task, err := f.tasks.CreateTask(f.ctx, 1, "Review PR", "2024-01-01")
	require.NoError(t, err)

	_, err = f.tasks.CompleteTask(f.ctx, 1, task.ID, "2024-01-01")
	require.NoError(t, err)
	_, err = f.tasks.ReopenTask(f.ctx, 1, task.ID, "2024-01-01")
	require.NoError(t, err)

	stored, err := f.tasks.GetTask(f.ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusInProgress, stored.Status)

	_, err = f.tasks.CreateTask(f.ctx, 1, "   ", "2024-01-01")
	var validationErr *ValidationError
	assert.True(t, errors.As(err, &validationErr))
}
