package repository

import (
	"context"
	"testing"

	"daily-tasks-bot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}

func TestGormWorkEntryRepository_UpsertOverwritesKey(t *testing.T) {
	ctx := context.Background()
	repo, err := NewGormWorkEntryRepository(setupTestDB(t))
	require.NoError(t, err)

	entry := models.NewWorkEntry(1, "2024-05-06")
	entry.Assign(3)
	require.NoError(t, repo.Upsert(ctx, entry))

	// A second value with the same key replaces the row instead of adding one.
	replacement := models.NewWorkEntry(1, "2024-05-06")
	replacement.Assign(4)
	replacement.Complete(3)
	require.NoError(t, repo.Upsert(ctx, replacement))

	got, err := repo.GetByUserAndDate(ctx, 1, "2024-05-06")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "1_2024-05-06", got.ID)
	assert.Equal(t, []uint{4}, got.AssignedTaskIDs)
	assert.Equal(t, []uint{3}, got.CompletedTaskIDs)

	all, err := repo.List(ctx, EntryFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestGormWorkEntryRepository_AbsentEntryDropsTimes(t *testing.T) {
	ctx := context.Background()
	repo, err := NewGormWorkEntryRepository(setupTestDB(t))
	require.NoError(t, err)

	in := "09:00"
	entry := models.NewWorkEntry(2, "2024-05-06")
	entry.CheckInTime = &in
	entry.IsAbsent = true
	require.NoError(t, repo.Upsert(ctx, entry))

	got, err := repo.GetByUserAndDate(ctx, 2, "2024-05-06")
	require.NoError(t, err)
	assert.True(t, got.IsAbsent)
	assert.Nil(t, got.CheckInTime)
}

func TestGormWorkEntryRepository_List(t *testing.T) {
	ctx := context.Background()
	repo, err := NewGormWorkEntryRepository(setupTestDB(t))
	require.NoError(t, err)

	for _, e := range []*models.WorkEntry{
		models.NewWorkEntry(1, "2024-05-05"),
		models.NewWorkEntry(1, "2024-05-07"),
		models.NewWorkEntry(2, "2024-05-06"),
		models.NewWorkEntry(3, "2024-05-06"),
	} {
		require.NoError(t, repo.Upsert(ctx, e))
	}

	got, err := repo.List(ctx, EntryFilter{UserIDs: []uint{1, 2}, DateFrom: "2024-05-06", DateTo: "2024-05-07"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "1_2024-05-07", got[0].ID)
	assert.Equal(t, "2_2024-05-06", got[1].ID)

	none, err := repo.List(ctx, EntryFilter{UserIDs: []uint{}})
	require.NoError(t, err)
	assert.Empty(t, none)

	missing, err := repo.GetByUserAndDate(ctx, 9, "2024-05-06")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestGormUserRepository_ActiveByTeam(t *testing.T) {
	ctx := context.Background()
	repo, err := NewGormUserRepository(setupTestDB(t))
	require.NoError(t, err)

	users := []*models.User{
		{ChatID: 10, FirstName: "A", Role: models.RoleClient, TeamID: "core", Active: true},
		{ChatID: 20, FirstName: "B", Role: models.RoleClient, TeamID: "core", Active: true},
		{ChatID: 30, FirstName: "C", Role: models.RoleClient, TeamID: "ops", Active: true},
	}
	for _, u := range users {
		require.NoError(t, repo.Create(ctx, u))
	}
	assert.ErrorIs(t, repo.Create(ctx, &models.User{ChatID: 10, FirstName: "Dup"}), ErrUserExists)

	require.NoError(t, repo.SetActive(ctx, users[1].ID, false))

	members, err := repo.GetActiveByTeam(ctx, "core")
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, int64(10), members[0].ChatID)

	assert.ErrorIs(t, repo.UpdateRole(ctx, 999, models.RoleAdmin), ErrUserNotFound)
	assert.ErrorIs(t, repo.SetActive(ctx, 999, true), ErrUserNotFound)
}

func TestGormTaskRepository(t *testing.T) {
	ctx := context.Background()
	repo, err := NewGormTaskRepository(setupTestDB(t))
	require.NoError(t, err)

	task := &models.Task{UserID: 1, Title: "Ship", DueDate: "2024-05-06", Status: models.TaskStatusTodo}
	require.NoError(t, repo.Create(ctx, task))

	require.NoError(t, repo.UpdateStatus(ctx, task.ID, models.TaskStatusCompleted))
	got, err := repo.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusCompleted, got.Status)

	require.NoError(t, repo.Delete(ctx, task.ID))
	assert.ErrorIs(t, repo.Delete(ctx, task.ID), ErrTaskNotFound)

	gone, err := repo.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}
