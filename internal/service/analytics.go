package service

import (
	"context"
	"fmt"
	"math"
	"sync"

	"daily-tasks-bot/internal/models"
	"daily-tasks-bot/pkg/calendar"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// MaxAnalyticsRangeDays caps team analytics ranges.
const MaxAnalyticsRangeDays = 366

type DayStats struct {
	Date      string    `json:"date"`
	Assigned  int       `json:"assigned"`
	Completed int       `json:"completed"`
	Status    DayStatus `json:"status"`
}

type WeeklyStats struct {
	UserID         uint       `json:"user_id"`
	WeekStart      string     `json:"week_start"`
	WeekEnd        string     `json:"week_end"`
	Days           []DayStats `json:"days"`
	Assigned       int        `json:"assigned"`
	Completed      int        `json:"completed"`
	PresentDays    int        `json:"present_days"`
	AbsentDays     int        `json:"absent_days"`
	CompletionRate float64    `json:"completion_rate"`
}

type MemberStats struct {
	UserID         uint    `json:"user_id"`
	Name           string  `json:"name"`
	Assigned       int     `json:"assigned"`
	Completed      int     `json:"completed"`
	PresentDays    int     `json:"present_days"`
	AbsentDays     int     `json:"absent_days"`
	LateDays       int     `json:"late_days"`
	CheckedOutDays int     `json:"checked_out_days"`
	TotalHours     float64 `json:"total_hours"`
	AverageHours   float64 `json:"average_hours"`
	CompletionRate float64 `json:"completion_rate"`
}

type MemberError struct {
	UserID uint
	Err    error
}

func (e MemberError) Error() string {
	return fmt.Sprintf("user %d: %v", e.UserID, e.Err)
}

func (e MemberError) Unwrap() error {
	return e.Err
}

type TeamStats struct {
	TeamID         string        `json:"team_id"`
	DateFrom       string        `json:"date_from"`
	DateTo         string        `json:"date_to"`
	Members        []MemberStats `json:"members"`
	Assigned       int           `json:"assigned"`
	Completed      int           `json:"completed"`
	PresentDays    int           `json:"present_days"`
	AbsentDays     int           `json:"absent_days"`
	LateDays       int           `json:"late_days"`
	CheckedOutDays int           `json:"checked_out_days"`
	TotalHours     float64       `json:"total_hours"`
	AverageHours   float64       `json:"average_hours"`
	CompletionRate float64       `json:"completion_rate"`
	Errors         []MemberError `json:"-"`
}

// AnalyticsService rolls work entries up into weekly and team statistics. It never writes.
type AnalyticsService struct {
	store   *EntryStore
	teams   TeamDirectory
	calc    *AttendanceCalculator
	workers int
	group   singleflight.Group
	logger  *logrus.Logger
}

func NewAnalyticsService(store *EntryStore, teams TeamDirectory, calc *AttendanceCalculator, workers int) *AnalyticsService {
	if workers <= 0 {
		workers = 4
	}
	return &AnalyticsService{
		store:   store,
		teams:   teams,
		calc:    calc,
		workers: workers,
		logger:  newLogger(),
	}
}

// WeeklyAnalytics sums the seven days starting at weekStart.
func (s *AnalyticsService) WeeklyAnalytics(ctx context.Context, userID uint, weekStart string) (*WeeklyStats, error) {
	if err := validateDate("week_start", weekStart); err != nil {
		return nil, err
	}

	// The shared call outlives any single caller's cancellation.
	shared := context.WithoutCancel(ctx)
	key := fmt.Sprintf("%d:%s", userID, weekStart)
	v, err, _ := s.group.Do(key, func() (any, error) {
		return s.weeklyAnalytics(shared, userID, weekStart)
	})
	if err != nil {
		return nil, err
	}

	// Shared callers must not see each other's mutations.
	stats := *v.(*WeeklyStats)
	stats.Days = append([]DayStats(nil), stats.Days...)
	return &stats, nil
}

func (s *AnalyticsService) weeklyAnalytics(ctx context.Context, userID uint, weekStart string) (*WeeklyStats, error) {
	days, err := calendar.Week(weekStart)
	if err != nil {
		return nil, &ValidationError{Field: "week_start", Reason: err.Error()}
	}

	entries, err := s.store.List(ctx, EntryFilter{UserID: &userID, DateFrom: days[0], DateTo: days[6]})
	if err != nil {
		return nil, err
	}
	byDate := indexByDate(entries)

	stats := &WeeklyStats{
		UserID:    userID,
		WeekStart: days[0],
		WeekEnd:   days[6],
		Days:      make([]DayStats, 0, len(days)),
	}

	for _, day := range days {
		entry := byDate[day]
		ds := DayStats{Date: day, Status: s.calc.DayStatus(entry)}
		if entry != nil {
			ds.Assigned = entry.Planned()
			ds.Completed = len(entry.CompletedTaskIDs)
		}

		stats.Days = append(stats.Days, ds)
		stats.Assigned += ds.Assigned
		stats.Completed += ds.Completed
		if ds.Status.Present {
			stats.PresentDays++
		} else {
			stats.AbsentDays++
		}
	}

	stats.CompletionRate = completionRate(stats.Completed, stats.Assigned)

	s.logger.WithFields(logrus.Fields{
		"user_id":    userID,
		"week_start": weekStart,
		"assigned":   stats.Assigned,
		"completed":  stats.Completed,
	}).Debug("Weekly analytics computed")

	return stats, nil
}

// TeamAnalytics aggregates every active member of teamID over dateFrom..dateTo.
// Members are read concurrently; a failing member is reported in Errors and left out of the totals.
func (s *AnalyticsService) TeamAnalytics(ctx context.Context, teamID, dateFrom, dateTo string) (*TeamStats, error) {
	if err := validateDate("date_from", dateFrom); err != nil {
		return nil, err
	}
	if err := validateDate("date_to", dateTo); err != nil {
		return nil, err
	}

	span, err := calendar.DaysBetween(dateFrom, dateTo)
	if err != nil {
		return nil, &ValidationError{Field: "date_range", Reason: err.Error()}
	}
	if span < 0 {
		return nil, &RangeError{From: dateFrom, To: dateTo, Reason: "start is after end"}
	}
	if span+1 > MaxAnalyticsRangeDays {
		return nil, &RangeError{From: dateFrom, To: dateTo, Reason: fmt.Sprintf("longer than %d days", MaxAnalyticsRangeDays)}
	}

	members, err := s.teams.ActiveMembers(ctx, teamID)
	if err != nil {
		return nil, storeErr("list team members", err)
	}

	days, err := calendar.Range(dateFrom, dateTo)
	if err != nil {
		return nil, &ValidationError{Field: "date_range", Reason: err.Error()}
	}

	s.logger.WithFields(logrus.Fields{
		"team_id":   teamID,
		"date_from": dateFrom,
		"date_to":   dateTo,
		"members":   len(members),
	}).Info("Computing team analytics")

	results := make([]*MemberStats, len(members))
	var (
		mu     sync.Mutex
		failed []MemberError
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, member := range members {
		i, member := i, member
		g.Go(func() error {
			ms, err := s.memberStats(gctx, member, days)
			if err != nil {
				mu.Lock()
				failed = append(failed, MemberError{UserID: member.ID, Err: err})
				mu.Unlock()
				return nil
			}
			results[i] = ms
			return nil
		})
	}
	_ = g.Wait()

	team := &TeamStats{TeamID: teamID, DateFrom: dateFrom, DateTo: dateTo, Members: []MemberStats{}}
	hourDays := 0
	for _, ms := range results {
		if ms == nil {
			continue
		}
		team.Members = append(team.Members, *ms)
		team.Assigned += ms.Assigned
		team.Completed += ms.Completed
		team.PresentDays += ms.PresentDays
		team.AbsentDays += ms.AbsentDays
		team.LateDays += ms.LateDays
		team.CheckedOutDays += ms.CheckedOutDays
		team.TotalHours += ms.TotalHours
		hourDays += ms.CheckedOutDays
	}
	team.TotalHours = round2(team.TotalHours)
	team.AverageHours = average(team.TotalHours, hourDays)
	team.CompletionRate = completionRate(team.Completed, team.Assigned)

	// Keep error order stable for callers.
	for _, m := range members {
		for _, f := range failed {
			if f.UserID == m.ID {
				team.Errors = append(team.Errors, f)
			}
		}
	}

	if len(team.Errors) > 0 {
		s.logger.WithFields(logrus.Fields{
			"team_id": teamID,
			"failed":  len(team.Errors),
		}).Warn("Team analytics finished with member errors")
	}

	return team, nil
}

func (s *AnalyticsService) memberStats(ctx context.Context, member *models.User, days []string) (*MemberStats, error) {
	userID := member.ID
	entries, err := s.store.List(ctx, EntryFilter{UserID: &userID, DateFrom: days[0], DateTo: days[len(days)-1]})
	if err != nil {
		return nil, err
	}
	byDate := indexByDate(entries)

	ms := &MemberStats{UserID: member.ID, Name: member.DisplayName()}
	hourDays := 0
	for _, day := range days {
		entry := byDate[day]
		status := s.calc.DayStatus(entry)
		if entry != nil {
			ms.Assigned += entry.Planned()
			ms.Completed += len(entry.CompletedTaskIDs)
		}
		if status.Absent {
			ms.AbsentDays++
			continue
		}
		ms.PresentDays++
		if status.Late {
			ms.LateDays++
		}
		if status.CheckedOut {
			ms.CheckedOutDays++
		}
		if status.Hours != nil {
			ms.TotalHours += *status.Hours
			hourDays++
		}
	}

	ms.TotalHours = round2(ms.TotalHours)
	ms.AverageHours = average(ms.TotalHours, hourDays)
	ms.CompletionRate = completionRate(ms.Completed, ms.Assigned)
	return ms, nil
}

func indexByDate(entries []*models.WorkEntry) map[string]*models.WorkEntry {
	byDate := make(map[string]*models.WorkEntry, len(entries))
	for _, e := range entries {
		byDate[e.Date] = e
	}
	return byDate
}

func completionRate(completed, assigned int) float64 {
	if assigned == 0 {
		return 0
	}
	return round2(float64(completed) / float64(assigned))
}

func average(total float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return round2(total / float64(n))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
