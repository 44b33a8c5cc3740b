package calendar_test

import (
	"testing"

	"daily-tasks-bot/pkg/calendar"
)

func TestAddDays(t *testing.T) {
	tests := []struct {
		date string
		n    int
		want string
	}{
		{"2024-01-01", 1, "2024-01-02"},
		{"2024-01-31", 1, "2024-02-01"},
		{"2024-02-28", 1, "2024-02-29"},
		{"2024-12-31", 1, "2025-01-01"},
		{"2024-01-05", 14, "2024-01-19"},
		{"2024-01-05", -7, "2023-12-29"},
	}
	for _, tt := range tests {
		got, err := calendar.AddDays(tt.date, tt.n)
		if err != nil {
			t.Fatalf("AddDays(%q, %d): %v", tt.date, tt.n, err)
		}
		if got != tt.want {
			t.Errorf("AddDays(%q, %d) = %q, want %q", tt.date, tt.n, got, tt.want)
		}
	}
}

func TestParseDateRejectsGarbage(t *testing.T) {
	for _, s := range []string{"", "2024-13-01", "01.01.2024", "2024-01-01T10:00"} {
		if _, err := calendar.ParseDate(s); err == nil {
			t.Errorf("ParseDate(%q): expected error", s)
		}
	}
}

func TestDaysBetween(t *testing.T) {
	got, err := calendar.DaysBetween("2024-02-25", "2024-03-03")
	if err != nil {
		t.Fatal(err)
	}
	if got != 7 {
		t.Errorf("DaysBetween = %d, want 7", got)
	}

	got, _ = calendar.DaysBetween("2024-03-03", "2024-02-25")
	if got != -7 {
		t.Errorf("DaysBetween reversed = %d, want -7", got)
	}
}

func TestWeek(t *testing.T) {
	days, err := calendar.Week("2024-01-29")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"2024-01-29", "2024-01-30", "2024-01-31", "2024-02-01", "2024-02-02", "2024-02-03", "2024-02-04"}
	if len(days) != len(want) {
		t.Fatalf("Week len = %d, want %d", len(days), len(want))
	}
	for i := range want {
		if days[i] != want[i] {
			t.Errorf("Week[%d] = %q, want %q", i, days[i], want[i])
		}
	}
}

func TestWeekStart(t *testing.T) {
	// 2024-01-07 is a Sunday.
	tests := map[string]string{
		"2024-01-01": "2024-01-01",
		"2024-01-03": "2024-01-01",
		"2024-01-07": "2024-01-01",
		"2024-01-08": "2024-01-08",
	}
	for in, want := range tests {
		got, err := calendar.WeekStart(in)
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Errorf("WeekStart(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRangeInverted(t *testing.T) {
	days, err := calendar.Range("2024-01-05", "2024-01-01")
	if err != nil {
		t.Fatal(err)
	}
	if len(days) != 0 {
		t.Errorf("Range inverted = %v, want empty", days)
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"00:00", 0},
		{"09:30", 570},
		{"23:59", 1439},
		{"7:05", 425},
	}
	for _, tt := range tests {
		got, err := calendar.ParseClock(tt.in)
		if err != nil {
			t.Fatalf("ParseClock(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseClock(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}

	for _, bad := range []string{"24:00", "12:60", "12", "ab:cd", "12:5"} {
		if _, err := calendar.ParseClock(bad); err == nil {
			t.Errorf("ParseClock(%q): expected error", bad)
		}
	}
}

func TestFormatClock(t *testing.T) {
	if got := calendar.FormatClock(570); got != "09:30" {
		t.Errorf("FormatClock(570) = %q, want %q", got, "09:30")
	}
	if got := calendar.FormatClock(1440 + 60); got != "01:00" {
		t.Errorf("FormatClock(1500) = %q, want %q", got, "01:00")
	}
}
