package calendar

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// DateLayout is the calendar-day format used for work entries.
	DateLayout = "2006-01-02"
	// ClockLayout is the time-of-day format used for check-in/out.
	ClockLayout = "15:04"

	MinutesPerDay = 24 * 60
)

// ParseDate parses a YYYY-MM-DD day into midnight UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return t, nil
}

// FormatDate formats the calendar day of t, ignoring its clock.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// Today returns the current local calendar day.
func Today() string {
	return FormatDate(time.Now())
}

// AddDays shifts a day by n calendar days.
func AddDays(date string, n int) (string, error) {
	t, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return FormatDate(t.AddDate(0, 0, n)), nil
}

// DaysBetween returns to - from in whole days.
func DaysBetween(from, to string) (int, error) {
	f, err := ParseDate(from)
	if err != nil {
		return 0, err
	}
	t, err := ParseDate(to)
	if err != nil {
		return 0, err
	}
	return int(t.Sub(f).Hours() / 24), nil
}

// Range lists every day from..to inclusive. An inverted range yields nil.
func Range(from, to string) ([]string, error) {
	f, err := ParseDate(from)
	if err != nil {
		return nil, err
	}
	t, err := ParseDate(to)
	if err != nil {
		return nil, err
	}

	var days []string
	for d := f; !d.After(t); d = d.AddDate(0, 0, 1) {
		days = append(days, FormatDate(d))
	}
	return days, nil
}

// Week returns the seven consecutive days starting at start.
func Week(start string) ([]string, error) {
	end, err := AddDays(start, 6)
	if err != nil {
		return nil, err
	}
	return Range(start, end)
}

// WeekStart returns the Monday of the ISO week containing date.
func WeekStart(date string) (string, error) {
	t, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	wd := int(t.Weekday())
	if wd == 0 {
		wd = 7
	}
	return FormatDate(t.AddDate(0, 0, -(wd - 1))), nil
}

// Earlier returns the earlier of two YYYY-MM-DD days.
func Earlier(a, b string) string {
	if a < b {
		return a
	}
	return b
}

// ParseClock converts HH:mm into minutes since midnight.
func ParseClock(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q: expected HH:mm", s)
	}

	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 || hours > 23 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 || len(parts[1]) != 2 {
		return 0, fmt.Errorf("invalid minutes in %q", s)
	}

	return hours*60 + minutes, nil
}

// FormatClock renders minutes since midnight as HH:mm.
func FormatClock(minutes int) string {
	minutes = ((minutes % MinutesPerDay) + MinutesPerDay) % MinutesPerDay
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// NowClock returns the current local time of day as HH:mm.
func NowClock() string {
	return time.Now().Format(ClockLayout)
}
