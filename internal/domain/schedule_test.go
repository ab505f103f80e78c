package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/m04kA/agenda-core/pkg/types"
)

func mondayHours(start, end string) []BusinessHour {
	return []BusinessHour{
		{DayOfWeek: time.Monday, StartTime: types.TimeString(start), EndTime: types.TimeString(end), IsActive: true},
	}
}

// 2026-03-16 - понедельник
var monday = time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)

func TestEffectiveHours_RegularDay(t *testing.T) {
	win := EffectiveHours(monday, mondayHours("09:00", "18:00"), nil)
	assert.False(t, win.Closed)
	assert.Equal(t, types.TimeString("09:00"), win.Open)
	assert.Equal(t, types.TimeString("18:00"), win.Close)
}

func TestEffectiveHours_NoHoursMeansClosed(t *testing.T) {
	// Вторник не настроен
	tuesday := monday.AddDate(0, 0, 1)
	win := EffectiveHours(tuesday, mondayHours("09:00", "18:00"), nil)
	assert.True(t, win.Closed)
}

func TestEffectiveHours_InactiveDayIsClosed(t *testing.T) {
	hours := mondayHours("09:00", "18:00")
	hours[0].IsActive = false
	win := EffectiveHours(monday, hours, nil)
	assert.True(t, win.Closed)
}

func TestEffectiveHours_ClosureExceptionWins(t *testing.T) {
	exceptions := []ScheduleException{
		{StartDate: monday, EndDate: monday.AddDate(0, 0, 6), Type: ExceptionVacation},
	}
	win := EffectiveHours(monday, mondayHours("09:00", "18:00"), exceptions)
	assert.True(t, win.Closed)
}

func TestEffectiveHours_SpecialHoursOverride(t *testing.T) {
	start := types.TimeString("12:00")
	end := types.TimeString("15:00")
	exceptions := []ScheduleException{
		{StartDate: monday, EndDate: monday, Type: ExceptionSpecialHours, SpecialStartTime: &start, SpecialEndTime: &end},
	}
	win := EffectiveHours(monday, mondayHours("09:00", "18:00"), exceptions)
	assert.False(t, win.Closed)
	assert.Equal(t, start, win.Open)
	assert.Equal(t, end, win.Close)
}

func TestEffectiveHours_ExceptionOutsideRangeIgnored(t *testing.T) {
	exceptions := []ScheduleException{
		{StartDate: monday.AddDate(0, 0, 1), EndDate: monday.AddDate(0, 0, 2), Type: ExceptionDayOff},
	}
	win := EffectiveHours(monday, mondayHours("09:00", "18:00"), exceptions)
	assert.False(t, win.Closed)
}

func TestBreaksFor(t *testing.T) {
	breaks := []RecurringBreak{
		{ID: 1, StartTime: "13:00", EndTime: "14:00", RecurrenceType: RecurrenceDaily},
		{ID: 2, StartTime: "10:00", EndTime: "10:30", RecurrenceType: RecurrenceSpecificDays, SpecificDays: []time.Weekday{time.Friday}},
		{ID: 3, StartTime: "16:00", EndTime: "16:15", RecurrenceType: RecurrenceSpecificDays, SpecificDays: []time.Weekday{time.Monday, time.Wednesday}},
	}

	applicable := BreaksFor(monday, breaks)
	ids := make([]int64, 0, len(applicable))
	for _, b := range applicable {
		ids = append(ids, b.ID)
	}
	assert.Equal(t, []int64{1, 3}, ids)
}

func TestGroupFromItems(t *testing.T) {
	_, err := GroupFromItems(nil)
	assert.ErrorIs(t, err, ErrEmptyGroup)

	items := []*Appointment{
		{GroupID: "g1", Status: StatusPendiente, StartTime: "10:00", DurationMinutes: 30, Amount: 20},
		{GroupID: "g1", Status: StatusPendiente, StartTime: "10:30", DurationMinutes: 45, Amount: 35},
	}
	group, err := GroupFromItems(items)
	assert.NoError(t, err)
	assert.Equal(t, "g1", group.GroupID)
	assert.Equal(t, types.TimeString("10:00"), group.StartTime)
	assert.Equal(t, 75, group.TotalDurationMinutes())
	assert.Equal(t, 55.0, group.TotalAmount())
	assert.True(t, group.IsActive())
}
