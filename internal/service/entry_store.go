package service

import (
	"context"

	"daily-tasks-bot/internal/models"
	"daily-tasks-bot/internal/repository"

	"github.com/sirupsen/logrus"
)

// TeamDirectory resolves team membership for entry listings and team analytics.
type TeamDirectory interface {
	ActiveMembers(ctx context.Context, teamID string) ([]*models.User, error)
}

// EntryFilter selects work entries. Empty fields are not applied.
type EntryFilter struct {
	UserID   *uint
	DateFrom string
	DateTo   string
	TeamID   string
}

// EntryStore is the engine's view of work entry storage: get-or-create semantics on top of a backend.
type EntryStore struct {
	repo   repository.WorkEntryRepository
	teams  TeamDirectory
	logger *logrus.Logger
}

func NewEntryStore(repo repository.WorkEntryRepository, teams TeamDirectory) *EntryStore {
	return &EntryStore{
		repo:   repo,
		teams:  teams,
		logger: newLogger(),
	}
}

// Get returns the entry for the key, or nil when none exists.
func (s *EntryStore) Get(ctx context.Context, userID uint, date string) (*models.WorkEntry, error) {
	if err := validateDate("date", date); err != nil {
		return nil, err
	}

	entry, err := s.repo.GetByUserAndDate(ctx, userID, date)
	if err != nil {
		return nil, storeErr("get", err)
	}
	return entry, nil
}

// GetOrEmpty returns the stored entry or an unsaved empty one. Read paths use it.
func (s *EntryStore) GetOrEmpty(ctx context.Context, userID uint, date string) (*models.WorkEntry, error) {
	entry, err := s.Get(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return models.NewWorkEntry(userID, date), nil
	}
	return entry, nil
}

// GetOrCreate returns the stored entry, persisting an empty one first if needed.
func (s *EntryStore) GetOrCreate(ctx context.Context, userID uint, date string) (*models.WorkEntry, error) {
	entry, err := s.Get(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	if entry != nil {
		return entry, nil
	}

	entry = models.NewWorkEntry(userID, date)
	if err := s.repo.Upsert(ctx, entry); err != nil {
		return nil, storeErr("create", err)
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"date":    date,
	}).Debug("Work entry created")

	return entry, nil
}

// Save upserts the entry and refreshes UpdatedAt.
func (s *EntryStore) Save(ctx context.Context, entry *models.WorkEntry) (*models.WorkEntry, error) {
	if err := validateDate("date", entry.Date); err != nil {
		return nil, err
	}
	if err := s.repo.Upsert(ctx, entry); err != nil {
		return nil, storeErr("save", err)
	}
	return entry, nil
}

func (s *EntryStore) List(ctx context.Context, filter EntryFilter) ([]*models.WorkEntry, error) {
	for field, date := range map[string]string{"date_from": filter.DateFrom, "date_to": filter.DateTo} {
		if date == "" {
			continue
		}
		if err := validateDate(field, date); err != nil {
			return nil, err
		}
	}

	repoFilter := repository.EntryFilter{
		DateFrom: filter.DateFrom,
		DateTo:   filter.DateTo,
	}

	if filter.TeamID != "" {
		if s.teams == nil {
			return nil, &ValidationError{Field: "team_id", Reason: "no team directory configured"}
		}
		members, err := s.teams.ActiveMembers(ctx, filter.TeamID)
		if err != nil {
			return nil, storeErr("list team members", err)
		}
		repoFilter.UserIDs = []uint{}
		for _, m := range members {
			if filter.UserID == nil || *filter.UserID == m.ID {
				repoFilter.UserIDs = append(repoFilter.UserIDs, m.ID)
			}
		}
	} else if filter.UserID != nil {
		repoFilter.UserIDs = []uint{*filter.UserID}
	}

	entries, err := s.repo.List(ctx, repoFilter)
	if err != nil {
		return nil, storeErr("list", err)
	}
	return entries, nil
}
