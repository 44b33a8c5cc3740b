package service

import (
	"errors"
	"testing"

	"daily-tasks-bot/internal/models"
	"daily-tasks-bot/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeHours(t *testing.T) {
	tests := []struct {
		in, out string
		want    float64
	}{
		{"09:00", "17:30", 8.5},
		{"22:00", "06:00", 8},
		{"09:00", "09:00", 0},
		{"08:10", "17:00", 8.83},
		{"23:59", "00:01", 0.03},
	}

	for _, tt := range tests {
		t.Run(tt.in+"-"+tt.out, func(t *testing.T) {
			got, err := ComputeHours(tt.in, tt.out)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestComputeHoursRejectsBadTimes(t *testing.T) {
	_, err := ComputeHours("9am", "17:00")
	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, "check_in", validationErr.Field)

	_, err = ComputeHours("09:00", "24:00")
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, "check_out", validationErr.Field)
}

func TestAttendanceCalculator_IsLate(t *testing.T) {
	calc, err := NewAttendanceCalculator("")
	require.NoError(t, err)

	assert.False(t, calc.IsLate("09:59"))
	assert.True(t, calc.IsLate("10:00"))
	assert.True(t, calc.IsLate("10:01"))
	assert.False(t, calc.IsLate("garbage"))

	early, err := NewAttendanceCalculator("09:15")
	require.NoError(t, err)
	assert.True(t, early.IsLate("09:15"))
	assert.False(t, early.IsLate("09:14"))

	_, err = NewAttendanceCalculator("25:00")
	assert.Error(t, err)
}

func TestAttendanceCalculator_DayStatus(t *testing.T) {
	calc, err := NewAttendanceCalculator(DefaultLateThreshold)
	require.NoError(t, err)

	in, out := "10:30", "18:00"

	assert.Equal(t, DayStatus{Absent: true}, calc.DayStatus(nil))
	assert.Equal(t, DayStatus{Absent: true}, calc.DayStatus(models.NewWorkEntry(1, "2024-01-01")))

	absent := models.NewWorkEntry(1, "2024-01-01")
	absent.CheckInTime = &in
	absent.IsAbsent = true
	assert.Equal(t, DayStatus{Absent: true}, calc.DayStatus(absent))

	present := models.NewWorkEntry(1, "2024-01-01")
	present.CheckInTime = &in
	status := calc.DayStatus(present)
	assert.True(t, status.Present)
	assert.True(t, status.Late)
	assert.False(t, status.CheckedOut)
	assert.Nil(t, status.Hours)

	present.CheckOutTime = &out
	status = calc.DayStatus(present)
	assert.True(t, status.CheckedOut)
	require.NotNil(t, status.Hours)
	assert.InDelta(t, 7.5, *status.Hours, 1e-9)
}

func TestAttendanceService_CheckInOut(t *testing.T) {
	f := newFixture(t, nil)

	entry, err := f.attendance.CheckIn(f.ctx, 1, "2024-01-01", "09:00")
	require.NoError(t, err)
	require.NotNil(t, entry.CheckInTime)
	assert.Equal(t, "09:00", *entry.CheckInTime)

	_, err = f.attendance.CheckOut(f.ctx, 1, "2024-01-01", "17:30")
	require.NoError(t, err)

	_, status, err := f.attendance.GetDayStatus(f.ctx, 1, "2024-01-01")
	require.NoError(t, err)
	assert.True(t, status.Present)
	assert.False(t, status.Late)
	require.NotNil(t, status.Hours)
	assert.InDelta(t, 8.5, *status.Hours, 1e-9)
}

func TestAttendanceService_CheckOutNeedsCheckIn(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.attendance.CheckOut(f.ctx, 1, "2024-01-01", "17:30")

	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, "check_out", validationErr.Field)
	assert.Nil(t, f.load(t, 1, "2024-01-01"))
}

func TestAttendanceService_MarkAbsentClearsTimes(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.attendance.CheckIn(f.ctx, 1, "2024-01-01", "09:00")
	require.NoError(t, err)
	_, err = f.attendance.CheckOut(f.ctx, 1, "2024-01-01", "18:00")
	require.NoError(t, err)

	_, err = f.attendance.MarkAbsent(f.ctx, 1, "2024-01-01", true)
	require.NoError(t, err)

	entry := f.load(t, 1, "2024-01-01")
	require.NotNil(t, entry)
	assert.True(t, entry.IsAbsent)
	assert.Nil(t, entry.CheckInTime)
	assert.Nil(t, entry.CheckOutTime)

	// Checking in again brings the day back.
	_, err = f.attendance.CheckIn(f.ctx, 1, "2024-01-01", "11:00")
	require.NoError(t, err)

	_, status, err := f.attendance.GetDayStatus(f.ctx, 1, "2024-01-01")
	require.NoError(t, err)
	assert.True(t, status.Present)
	assert.True(t, status.Late)
}

func TestAttendanceService_AbsenceKeepsTasks(t *testing.T) {
	f := newFixture(t, nil)
	f.seed(t, 1, "2024-01-01", []uint{4, 5}, []uint{3})

	_, err := f.attendance.MarkAbsent(f.ctx, 1, "2024-01-01", true)
	require.NoError(t, err)

	entry := f.load(t, 1, "2024-01-01")
	assert.Equal(t, []uint{4, 5}, entry.AssignedTaskIDs)
	assert.Equal(t, []uint{3}, entry.CompletedTaskIDs)
}

func TestAttendanceService_UpdateCheckInOut(t *testing.T) {
	f := newFixture(t, nil)

	in, out := "08:00", "16:15"

	_, err := f.attendance.UpdateCheckInOut(f.ctx, 1, "2024-01-02", nil, &out)
	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))

	entry, err := f.attendance.UpdateCheckInOut(f.ctx, 1, "2024-01-02", &in, &out)
	require.NoError(t, err)
	assert.Equal(t, "08:00", *entry.CheckInTime)
	assert.Equal(t, "16:15", *entry.CheckOutTime)

	later := "08:30"
	entry, err = f.attendance.UpdateCheckInOut(f.ctx, 1, "2024-01-02", &later, nil)
	require.NoError(t, err)
	assert.Equal(t, "08:30", *entry.CheckInTime)
	assert.Equal(t, "16:15", *entry.CheckOutTime)

	bad := "8:3"
	_, err = f.attendance.UpdateCheckInOut(f.ctx, 1, "2024-01-02", &bad, nil)
	assert.True(t, errors.As(err, &validationErr))
}

func TestAttendanceService_StoresPaddedClock(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.attendance.CheckIn(f.ctx, 1, "2024-02-01", "9:05")
	require.NoError(t, err)
	_, err = f.attendance.CheckOut(f.ctx, 1, "2024-02-01", "7:30")
	require.NoError(t, err)

	entry := f.load(t, 1, "2024-02-01")
	require.NotNil(t, entry.CheckInTime)
	require.NotNil(t, entry.CheckOutTime)
	assert.Equal(t, "09:05", *entry.CheckInTime)
	assert.Equal(t, "07:30", *entry.CheckOutTime)

	_, err = f.attendance.UpdateCheckInOut(f.ctx, 1, "2024-02-02", strPtr("8:00"), strPtr("16:45"))
	require.NoError(t, err)

	entry = f.load(t, 1, "2024-02-02")
	assert.Equal(t, "08:00", *entry.CheckInTime)
	assert.Equal(t, "16:45", *entry.CheckOutTime)
}

func TestAttendanceService_MarkAbsentRange(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.attendance.CheckIn(f.ctx, 1, "2024-07-02", "09:00")
	require.NoError(t, err)

	marked, err := f.attendance.MarkAbsentRange(f.ctx, 1, "2024-07-01", "2024-07-05")
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-07-01", "2024-07-02", "2024-07-03", "2024-07-04", "2024-07-05"}, marked)

	entry := f.load(t, 1, "2024-07-02")
	assert.True(t, entry.IsAbsent)
	assert.Nil(t, entry.CheckInTime)

	_, err = f.attendance.MarkAbsentRange(f.ctx, 1, "2024-07-05", "2024-07-01")
	var rangeErr *RangeError
	assert.True(t, errors.As(err, &rangeErr))

	_, err = f.attendance.MarkAbsentRange(f.ctx, 1, "2024-01-01", "2024-12-31")
	assert.True(t, errors.As(err, &rangeErr))
}

func TestAttendanceService_MarkAbsentRangeCollectsFailures(t *testing.T) {
	f := newFixture(t, func(r repository.WorkEntryRepository) repository.WorkEntryRepository {
		return &flakyEntries{WorkEntryRepository: r, failUpsertDate: "2024-07-02"}
	})

	marked, err := f.attendance.MarkAbsentRange(f.ctx, 1, "2024-07-01", "2024-07-03")
	require.Error(t, err)
	assert.ErrorIs(t, err, errBackendDown)
	assert.Equal(t, []string{"2024-07-01", "2024-07-03"}, marked)

	var dayErr DayError
	require.True(t, errors.As(err, &dayErr))
	assert.Equal(t, "2024-07-02", dayErr.Date)
}
