package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"daily-tasks-bot/internal/config"
	"daily-tasks-bot/internal/repository"
	"daily-tasks-bot/internal/service"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// App holds the wired services shared by the bot and the CLI.
type App struct {
	Users      *service.UserService
	Tasks      *service.TaskService
	Attendance *service.AttendanceService
	Rollover   *service.RolloverEngine
	Analytics  *service.AnalyticsService
	Tracker    *service.CompletionTracker

	closers []func(context.Context) error
}

// New opens the configured stores and wires the services on top of them.
// Users and tasks always live in SQLite; work entries and completion history follow STORE_DRIVER.
func New(ctx context.Context, cfg *config.BotConfig) (*App, error) {
	db, err := OpenSQLite(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get database instance: %w", err)
	}

	a := &App{}
	a.closers = append(a.closers, func(context.Context) error { return sqlDB.Close() })

	var (
		entries     repository.WorkEntryRepository
		completions repository.CompletionRepository
	)

	switch cfg.StoreDriver {
	case config.StoreMongo:
		mdb, err := repository.NewMongoDB(cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			a.Close(ctx)
			return nil, err
		}
		a.closers = append(a.closers, mdb.Close)

		if entries, err = repository.NewMongoWorkEntryRepository(ctx, mdb); err != nil {
			a.Close(ctx)
			return nil, err
		}
		if completions, err = repository.NewMongoCompletionRepository(ctx, mdb); err != nil {
			a.Close(ctx)
			return nil, err
		}
	default:
		if entries, err = repository.NewGormWorkEntryRepository(db); err != nil {
			a.Close(ctx)
			return nil, err
		}
		if completions, err = repository.NewGormCompletionRepository(db); err != nil {
			a.Close(ctx)
			return nil, err
		}
	}

	if err := a.wire(db, entries, completions, cfg); err != nil {
		a.Close(ctx)
		return nil, err
	}

	logrus.WithField("store", cfg.StoreDriver).Info("Services initialized")

	return a, nil
}

// OpenSQLite opens the gorm SQLite database. In-memory databases are pinned to one connection.
func OpenSQLite(url string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(url), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   logger.Default.LogMode(logger.Silent),
		NowFunc:                                  func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get database instance: %w", err)
	}

	if strings.Contains(url, ":memory:") {
		sqlDB.SetMaxOpenConns(1)
	}

	if _, err := sqlDB.Exec("PRAGMA foreign_keys = ON"); err != nil {
		logrus.Warnf("Failed to enable foreign keys: %v", err)
	}

	return db, nil
}

func (a *App) wire(db *gorm.DB, entries repository.WorkEntryRepository, completions repository.CompletionRepository, cfg *config.BotConfig) error {
	userRepo, err := repository.NewGormUserRepository(db)
	if err != nil {
		return err
	}
	taskRepo, err := repository.NewGormTaskRepository(db)
	if err != nil {
		return err
	}

	calc, err := service.NewAttendanceCalculator(cfg.LateThreshold)
	if err != nil {
		return err
	}

	locks := service.NewUserLocks()

	a.Users = service.NewUserService(userRepo)
	store := service.NewEntryStore(entries, a.Users)

	a.Tracker = service.NewCompletionTracker(store, completions, locks)
	propagator := service.NewPropagator(store, a.Tracker, locks)

	a.Tasks = service.NewTaskService(taskRepo, a.Tracker, propagator)
	a.Attendance = service.NewAttendanceService(store, calc, locks)
	a.Rollover = service.NewRolloverEngine(store, locks)
	a.Analytics = service.NewAnalyticsService(store, a.Users, calc, cfg.AnalyticsWorkers)

	return nil
}

// Close releases the stores in reverse order of opening.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
