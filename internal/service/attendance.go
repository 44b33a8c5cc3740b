package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"daily-tasks-bot/internal/models"
	"daily-tasks-bot/pkg/calendar"

	"github.com/sirupsen/logrus"
)

// DefaultLateThreshold is the check-in time from which a day counts as late.
const DefaultLateThreshold = "10:00"

// DayStatus is the attendance picture of a single entry.
type DayStatus struct {
	Present    bool     `json:"present"`
	Absent     bool     `json:"absent"`
	Late       bool     `json:"late"`
	CheckedOut bool     `json:"checked_out"`
	Hours      *float64 `json:"hours,omitempty"`
}

// AttendanceCalculator derives hours, lateness and presence from check-in/out fields.
type AttendanceCalculator struct {
	lateThreshold int
}

func NewAttendanceCalculator(lateThreshold string) (*AttendanceCalculator, error) {
	if lateThreshold == "" {
		lateThreshold = DefaultLateThreshold
	}
	minutes, err := calendar.ParseClock(lateThreshold)
	if err != nil {
		return nil, &ValidationError{Field: "late_threshold", Reason: err.Error()}
	}
	return &AttendanceCalculator{lateThreshold: minutes}, nil
}

// ComputeHours returns the worked hours between two HH:mm times, rounded to 2 decimals.
// A check-out earlier than the check-in is taken to be on the following day.
func ComputeHours(checkIn, checkOut string) (float64, error) {
	in, err := calendar.ParseClock(checkIn)
	if err != nil {
		return 0, &ValidationError{Field: "check_in", Reason: err.Error()}
	}
	out, err := calendar.ParseClock(checkOut)
	if err != nil {
		return 0, &ValidationError{Field: "check_out", Reason: err.Error()}
	}

	if out < in {
		out += calendar.MinutesPerDay
	}

	hours := float64(out-in) / 60
	return math.Round(hours*100) / 100, nil
}

// IsLate reports whether checkIn is at or after the threshold. Unparseable times are not late.
func (c *AttendanceCalculator) IsLate(checkIn string) bool {
	minutes, err := calendar.ParseClock(checkIn)
	if err != nil {
		return false
	}
	return minutes >= c.lateThreshold
}

func (c *AttendanceCalculator) DayStatus(entry *models.WorkEntry) DayStatus {
	if entry == nil || entry.IsAbsent || entry.CheckInTime == nil {
		return DayStatus{Absent: true}
	}

	status := DayStatus{
		Present: true,
		Late:    c.IsLate(*entry.CheckInTime),
	}

	if entry.CheckOutTime != nil {
		status.CheckedOut = true
		if hours, err := ComputeHours(*entry.CheckInTime, *entry.CheckOutTime); err == nil {
			status.Hours = &hours
		}
	}

	return status
}

// AttendanceService records check-in, check-out and absence on work entries.
type AttendanceService struct {
	store  *EntryStore
	calc   *AttendanceCalculator
	locks  *UserLocks
	logger *logrus.Logger
}

func NewAttendanceService(store *EntryStore, calc *AttendanceCalculator, locks *UserLocks) *AttendanceService {
	return &AttendanceService{
		store:  store,
		calc:   calc,
		locks:  locks,
		logger: newLogger(),
	}
}

// CheckIn records the arrival time and clears an absence mark.
func (s *AttendanceService) CheckIn(ctx context.Context, userID uint, date, clock string) (*models.WorkEntry, error) {
	s.logger.WithFields(logrus.Fields{
		"user_id":  userID,
		"date":     date,
		"check_in": clock,
	}).Info("User checking in")

	minutes, err := calendar.ParseClock(clock)
	if err != nil {
		return nil, &ValidationError{Field: "check_in", Reason: err.Error()}
	}
	clock = calendar.FormatClock(minutes)

	unlock := s.locks.Lock(userID)
	defer unlock()

	entry, err := s.store.GetOrCreate(ctx, userID, date)
	if err != nil {
		return nil, err
	}

	entry.IsAbsent = false
	entry.CheckInTime = &clock

	return s.store.Save(ctx, entry)
}

// CheckOut records the departure time. A day without a check-in is rejected.
func (s *AttendanceService) CheckOut(ctx context.Context, userID uint, date, clock string) (*models.WorkEntry, error) {
	s.logger.WithFields(logrus.Fields{
		"user_id":   userID,
		"date":      date,
		"check_out": clock,
	}).Info("User checking out")

	minutes, err := calendar.ParseClock(clock)
	if err != nil {
		return nil, &ValidationError{Field: "check_out", Reason: err.Error()}
	}
	clock = calendar.FormatClock(minutes)

	unlock := s.locks.Lock(userID)
	defer unlock()

	entry, err := s.store.Get(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	if entry == nil || entry.CheckInTime == nil {
		s.logger.WithField("user_id", userID).Warn("Check-out without check-in")
		return nil, &ValidationError{Field: "check_out", Reason: "no check-in recorded for " + date}
	}

	entry.CheckOutTime = &clock

	return s.store.Save(ctx, entry)
}

// UpdateCheckInOut overwrites whichever of the two times is given.
func (s *AttendanceService) UpdateCheckInOut(ctx context.Context, userID uint, date string, checkIn, checkOut *string) (*models.WorkEntry, error) {
	checkIn, err := normalizeClock("check_in", checkIn)
	if err != nil {
		return nil, err
	}
	checkOut, err = normalizeClock("check_out", checkOut)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(userID)
	defer unlock()

	entry, err := s.store.GetOrCreate(ctx, userID, date)
	if err != nil {
		return nil, err
	}

	if checkIn != nil {
		entry.CheckInTime = checkIn
	}
	if checkOut != nil {
		if entry.CheckInTime == nil {
			return nil, &ValidationError{Field: "check_out", Reason: "no check-in recorded for " + date}
		}
		entry.CheckOutTime = checkOut
	}
	if checkIn != nil || checkOut != nil {
		entry.IsAbsent = false
	}

	return s.store.Save(ctx, entry)
}

// normalizeClock rewrites a non-nil time as HH:mm.
func normalizeClock(field string, clock *string) (*string, error) {
	if clock == nil {
		return nil, nil
	}
	minutes, err := calendar.ParseClock(*clock)
	if err != nil {
		return nil, &ValidationError{Field: field, Reason: err.Error()}
	}
	formatted := calendar.FormatClock(minutes)
	return &formatted, nil
}

// MarkAbsent sets or clears the absence flag. Marking absent drops both times.
func (s *AttendanceService) MarkAbsent(ctx context.Context, userID uint, date string, absent bool) (*models.WorkEntry, error) {
	s.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"date":    date,
		"absent":  absent,
	}).Info("Updating absence")

	unlock := s.locks.Lock(userID)
	defer unlock()

	entry, err := s.store.GetOrCreate(ctx, userID, date)
	if err != nil {
		return nil, err
	}

	entry.IsAbsent = absent
	if absent {
		entry.CheckInTime = nil
		entry.CheckOutTime = nil
	}

	return s.store.Save(ctx, entry)
}

// MaxAbsenceRangeDays caps a single MarkAbsentRange call.
const MaxAbsenceRangeDays = 62

// MarkAbsentRange marks every day of dateFrom..dateTo absent, e.g. a vacation or sick leave.
// Days that fail are collected; the rest are still written.
func (s *AttendanceService) MarkAbsentRange(ctx context.Context, userID uint, dateFrom, dateTo string) ([]string, error) {
	span, err := calendar.DaysBetween(dateFrom, dateTo)
	if err != nil {
		return nil, &ValidationError{Field: "date", Reason: err.Error()}
	}
	if span < 0 {
		return nil, &RangeError{From: dateFrom, To: dateTo, Reason: "end is before start"}
	}
	if span+1 > MaxAbsenceRangeDays {
		return nil, &RangeError{From: dateFrom, To: dateTo, Reason: fmt.Sprintf("longer than %d days", MaxAbsenceRangeDays)}
	}

	days, err := calendar.Range(dateFrom, dateTo)
	if err != nil {
		return nil, &ValidationError{Field: "date", Reason: err.Error()}
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"from":    dateFrom,
		"to":      dateTo,
	}).Info("Marking absence period")

	unlock := s.locks.Lock(userID)
	defer unlock()

	marked := make([]string, 0, len(days))
	var errs []error
	for _, day := range days {
		entry, err := s.store.GetOrCreate(ctx, userID, day)
		if err == nil {
			entry.IsAbsent = true
			entry.CheckInTime = nil
			entry.CheckOutTime = nil
			_, err = s.store.Save(ctx, entry)
		}
		if err != nil {
			errs = append(errs, DayError{Date: day, Err: err})
			continue
		}
		marked = append(marked, day)
	}

	return marked, errors.Join(errs...)
}

// GetDayStatus reads the day without creating it.
func (s *AttendanceService) GetDayStatus(ctx context.Context, userID uint, date string) (*models.WorkEntry, DayStatus, error) {
	entry, err := s.store.GetOrEmpty(ctx, userID, date)
	if err != nil {
		return nil, DayStatus{}, err
	}
	return entry, s.calc.DayStatus(entry), nil
}
