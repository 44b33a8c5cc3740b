package service

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"daily-tasks-bot/internal/models"
	"daily-tasks-bot/internal/repository"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var errBackendDown = errors.New("backend down")

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// Every pooled connection would otherwise get its own empty database.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}

type fixture struct {
	ctx         context.Context
	entries     repository.WorkEntryRepository
	completions repository.CompletionRepository
	locks       *UserLocks
	users       *UserService
	store       *EntryStore
	tracker     *CompletionTracker
	propagator  *Propagator
	rollover    *RolloverEngine
	attendance  *AttendanceService
	analytics   *AnalyticsService
	tasks       *TaskService
}

// newFixture wires the services over a fresh database. wrap may decorate the entry repository.
func newFixture(t *testing.T, wrap func(repository.WorkEntryRepository) repository.WorkEntryRepository) *fixture {
	t.Helper()

	db := setupTestDB(t)

	entryRepo, err := repository.NewGormWorkEntryRepository(db)
	require.NoError(t, err)
	completionRepo, err := repository.NewGormCompletionRepository(db)
	require.NoError(t, err)
	userRepo, err := repository.NewGormUserRepository(db)
	require.NoError(t, err)
	taskRepo, err := repository.NewGormTaskRepository(db)
	require.NoError(t, err)

	var entries repository.WorkEntryRepository = entryRepo
	if wrap != nil {
		entries = wrap(entryRepo)
	}

	calc, err := NewAttendanceCalculator(DefaultLateThreshold)
	require.NoError(t, err)

	f := &fixture{
		ctx:         context.Background(),
		entries:     entries,
		completions: completionRepo,
		locks:       NewUserLocks(),
	}
	f.users = NewUserService(userRepo)
	f.store = NewEntryStore(entries, f.users)
	f.tracker = NewCompletionTracker(f.store, completionRepo, f.locks)
	f.propagator = NewPropagator(f.store, f.tracker, f.locks)
	f.rollover = NewRolloverEngine(f.store, f.locks)
	f.attendance = NewAttendanceService(f.store, calc, f.locks)
	f.analytics = NewAnalyticsService(f.store, f.users, calc, 2)
	f.tasks = NewTaskService(taskRepo, f.tracker, f.propagator)

	return f
}

// seed writes an entry with the given task lists.
func (f *fixture) seed(t *testing.T, userID uint, date string, assigned, completed []uint) {
	t.Helper()

	entry := models.NewWorkEntry(userID, date)
	entry.AssignedTaskIDs = append(entry.AssignedTaskIDs, assigned...)
	entry.CompletedTaskIDs = append(entry.CompletedTaskIDs, completed...)
	_, err := f.store.Save(f.ctx, entry)
	require.NoError(t, err)
}

// load reads an entry straight from the repository; nil when missing.
func (f *fixture) load(t *testing.T, userID uint, date string) *models.WorkEntry {
	t.Helper()

	entry, err := f.entries.GetByUserAndDate(f.ctx, userID, date)
	require.NoError(t, err)
	return entry
}

func (f *fixture) addUser(t *testing.T, chatID int64, name, team string) *models.User {
	t.Helper()

	user, err := f.users.CreateUser(f.ctx, chatID, "", name, "")
	require.NoError(t, err)
	if team != "" {
		require.NoError(t, f.users.JoinTeam(f.ctx, chatID, team))
		user.TeamID = team
	}
	return user
}

// clock returns a now func that advances one minute per call.
func clock(start time.Time) func() time.Time {
	current := start
	return func() time.Time {
		current = current.Add(time.Minute)
		return current
	}
}

// flakyEntries fails writes or reads for chosen keys and delegates everything else.
type flakyEntries struct {
	repository.WorkEntryRepository
	failUpsertDate string
	failGetDate    string
	failListUser   uint
}

func (r *flakyEntries) GetByUserAndDate(ctx context.Context, userID uint, date string) (*models.WorkEntry, error) {
	if date == r.failGetDate {
		return nil, errBackendDown
	}
	return r.WorkEntryRepository.GetByUserAndDate(ctx, userID, date)
}

func (r *flakyEntries) Upsert(ctx context.Context, entry *models.WorkEntry) error {
	if entry.Date == r.failUpsertDate {
		return errBackendDown
	}
	return r.WorkEntryRepository.Upsert(ctx, entry)
}

func (r *flakyEntries) List(ctx context.Context, filter repository.EntryFilter) ([]*models.WorkEntry, error) {
	if r.failListUser != 0 && slices.Contains(filter.UserIDs, r.failListUser) {
		return nil, errBackendDown
	}
	return r.WorkEntryRepository.List(ctx, filter)
}

// recordingHook remembers status changes pushed by the tracker.
type recordingHook struct {
	statuses []string
	err      error
}

func (h *recordingHook) SetTaskStatus(_ context.Context, _ uint, status string) error {
	h.statuses = append(h.statuses, status)
	return h.err
}
