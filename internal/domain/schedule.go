package domain

import (
	"time"

	"github.com/m04kA/agenda-core/pkg/types"
)

// BusinessHour defines the opening window for one weekday.
// At most one row exists per weekday.
type BusinessHour struct {
	ID        int64
	DayOfWeek time.Weekday
	StartTime types.TimeString
	EndTime   types.TimeString
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// BreakRecurrence defines on which days a recurring break applies
type BreakRecurrence string

const (
	RecurrenceDaily        BreakRecurrence = "daily"
	RecurrenceSpecificDays BreakRecurrence = "specific_days"
)

// RecurringBreak blocks a time window on recurring days (e.g. lunch)
type RecurringBreak struct {
	ID             int64
	StartTime      types.TimeString
	EndTime        types.TimeString
	RecurrenceType BreakRecurrence
	SpecificDays   []time.Weekday // used when RecurrenceType == specific_days
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// AppliesOn reports whether the break applies on the given weekday
func (b *RecurringBreak) AppliesOn(day time.Weekday) bool {
	if b.RecurrenceType == RecurrenceDaily {
		return true
	}
	for _, d := range b.SpecificDays {
		if d == day {
			return true
		}
	}
	return false
}

// DurationMinutes returns the break length in minutes
func (b *RecurringBreak) DurationMinutes() (int, error) {
	start, err := b.StartTime.Minutes()
	if err != nil {
		return 0, err
	}
	end, err := b.EndTime.Minutes()
	if err != nil {
		return 0, err
	}
	return end - start, nil
}

// ExceptionType categorizes a dated schedule exception
type ExceptionType string

const (
	ExceptionDayOff       ExceptionType = "day_off"
	ExceptionVacation     ExceptionType = "vacation"
	ExceptionHoliday      ExceptionType = "holiday"
	ExceptionSpecialHours ExceptionType = "special_hours"
)

// ClosesDay reports whether the exception type closes the day entirely
func (t ExceptionType) ClosesDay() bool {
	return t == ExceptionDayOff || t == ExceptionVacation || t == ExceptionHoliday
}

// ScheduleException overrides business hours for a date range.
// Closure types shut the day; special_hours replaces the opening window.
type ScheduleException struct {
	ID               int64
	StartDate        time.Time
	EndDate          time.Time
	Type             ExceptionType
	SpecialStartTime *types.TimeString // set when Type == special_hours
	SpecialEndTime   *types.TimeString
	Reason           *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Covers reports whether the exception's date range includes the date (inclusive)
func (e *ScheduleException) Covers(date time.Time) bool {
	d := dateOnly(date)
	return !d.Before(dateOnly(e.StartDate)) && !d.After(dateOnly(e.EndDate))
}

// DayWindow is the effective opening window for a concrete date
type DayWindow struct {
	Open   types.TimeString
	Close  types.TimeString
	Closed bool
}

// EffectiveHours resolves the opening window for a date: a covering
// exception overrides the weekday business hour; closure exceptions win.
// A missing or inactive business hour means the day is closed.
func EffectiveHours(date time.Time, hours []BusinessHour, exceptions []ScheduleException) DayWindow {
	for i := range exceptions {
		exc := &exceptions[i]
		if !exc.Covers(date) {
			continue
		}
		if exc.Type.ClosesDay() {
			return DayWindow{Closed: true}
		}
		if exc.Type == ExceptionSpecialHours && exc.SpecialStartTime != nil && exc.SpecialEndTime != nil {
			return DayWindow{Open: *exc.SpecialStartTime, Close: *exc.SpecialEndTime}
		}
	}

	weekday := date.Weekday()
	for i := range hours {
		bh := &hours[i]
		if bh.DayOfWeek != weekday {
			continue
		}
		if !bh.IsActive {
			return DayWindow{Closed: true}
		}
		return DayWindow{Open: bh.StartTime, Close: bh.EndTime}
	}

	return DayWindow{Closed: true}
}

// BreaksFor filters the recurring breaks applicable on the given date
func BreaksFor(date time.Time, breaks []RecurringBreak) []RecurringBreak {
	applicable := make([]RecurringBreak, 0, len(breaks))
	for _, b := range breaks {
		if b.AppliesOn(date.Weekday()) {
			applicable = append(applicable, b)
		}
	}
	return applicable
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
