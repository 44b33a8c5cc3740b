package handler

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"daily-tasks-bot/pkg/calendar"
)

var dateLayouts = []string{calendar.DateLayout, "02.01.2006", "02-01-2006"}

// parseDateArg accepts YYYY-MM-DD, dd.mm.yyyy, dd-mm-yyyy, dd.mm and the words today/tomorrow/yesterday.
func parseDateArg(arg, today string) (string, error) {
	arg = strings.ToLower(strings.TrimSpace(arg))

	switch arg {
	case "", "today":
		return today, nil
	case "tomorrow":
		return calendar.AddDays(today, 1)
	case "yesterday":
		return calendar.AddDays(today, -1)
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, arg); err == nil {
			return calendar.FormatDate(t), nil
		}
	}

	if t, err := time.Parse("02.01", arg); err == nil {
		base, err := calendar.ParseDate(today)
		if err != nil {
			return "", err
		}
		return calendar.FormatDate(time.Date(base.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)), nil
	}

	return "", fmt.Errorf("unrecognised date %q", arg)
}

// parseClockArg accepts hh:mm, hh.mm and hh-mm and normalises to HH:mm.
func parseClockArg(arg string) (string, error) {
	normalized := strings.NewReplacer(".", ":", "-", ":").Replace(strings.TrimSpace(arg))
	minutes, err := calendar.ParseClock(normalized)
	if err != nil {
		return "", err
	}
	return calendar.FormatClock(minutes), nil
}

// parseDateClockArgs reads an optional date and an optional time in any order.
// A token with a colon is always a time; otherwise a date reading wins over a time reading.
func parseDateClockArgs(args, today, now string) (date, clock string, err error) {
	date, clock = today, now

	for _, field := range strings.Fields(args) {
		if !strings.Contains(field, ":") {
			if d, derr := parseDateArg(field, today); derr == nil {
				date = d
				continue
			}
		}
		c, cerr := parseClockArg(field)
		if cerr != nil {
			return "", "", fmt.Errorf("cannot read %q as a date or a time", field)
		}
		clock = c
	}

	return date, clock, nil
}

func parseTaskID(arg string) (uint, error) {
	id, err := strconv.ParseUint(strings.TrimPrefix(strings.TrimSpace(arg), "#"), 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid task id %q", arg)
	}
	return uint(id), nil
}

// parseTaskDateArgs reads "<id> [date]".
func parseTaskDateArgs(args, today string) (uint, string, error) {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return 0, "", fmt.Errorf("task id is required")
	}

	taskID, err := parseTaskID(fields[0])
	if err != nil {
		return 0, "", err
	}

	date := today
	if len(fields) > 1 {
		if date, err = parseDateArg(fields[1], today); err != nil {
			return 0, "", err
		}
	}

	return taskID, date, nil
}

const doneCallbackPrefix = "done:"

func doneCallbackData(taskID uint, date string) string {
	return fmt.Sprintf("%s%d:%s", doneCallbackPrefix, taskID, date)
}

func parseDoneCallback(data string) (uint, string, bool) {
	rest, ok := strings.CutPrefix(data, doneCallbackPrefix)
	if !ok {
		return 0, "", false
	}

	idPart, date, ok := strings.Cut(rest, ":")
	if !ok {
		return 0, "", false
	}

	taskID, err := parseTaskID(idPart)
	if err != nil {
		return 0, "", false
	}
	if _, err := calendar.ParseDate(date); err != nil {
		return 0, "", false
	}

	return taskID, date, true
}
