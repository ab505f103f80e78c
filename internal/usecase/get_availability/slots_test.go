package get_availability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/agenda-core/internal/domain"
	"github.com/m04kA/agenda-core/pkg/ptr"
	"github.com/m04kA/agenda-core/pkg/types"
)

func window(open, close string) domain.DayWindow {
	return domain.DayWindow{Open: types.TimeString(open), Close: types.TimeString(close)}
}

func slotByStart(t *testing.T, slots []Slot, start string) *Slot {
	t.Helper()
	for i := range slots {
		if slots[i].StartTime == types.TimeString(start) {
			return &slots[i]
		}
	}
	t.Fatalf("slot %s not found", start)
	return nil
}

func TestGenerateSlots_FixedCadence(t *testing.T) {
	slots, err := generateSlots(window("09:00", "12:00"), nil, 30, 30, false, "")
	require.NoError(t, err)

	starts := make([]types.TimeString, 0, len(slots))
	for _, s := range slots {
		starts = append(starts, s.StartTime)
	}
	assert.Equal(t, []types.TimeString{"09:00", "09:30", "10:00", "10:30", "11:00", "11:30"}, starts)
	for _, s := range slots {
		assert.True(t, s.Available)
	}
}

func TestGenerateSlots_ServiceMustFitBeforeClose(t *testing.T) {
	// 90-минутная услуга: последний кандидат 10:30, слота 11:00 нет
	slots, err := generateSlots(window("09:00", "12:00"), nil, 90, 30, false, "")
	require.NoError(t, err)

	last := slots[len(slots)-1]
	assert.Equal(t, types.TimeString("10:30"), last.StartTime)
}

func TestGenerateSlots_BreakExclusion(t *testing.T) {
	breaks := []domain.RecurringBreak{
		{StartTime: "12:00", EndTime: "13:00", RecurrenceType: domain.RecurrenceDaily},
	}

	// 60-минутная услуга при часах 09:00-17:00: слоты, задевающие перерыв
	// 12:00-13:00, недоступны; граничные 11:00 и 13:00 доступны
	slots, err := generateSlots(window("09:00", "17:00"), breaks, 60, 30, false, "")
	require.NoError(t, err)

	assert.True(t, slotByStart(t, slots, "11:00").Available)
	assert.False(t, slotByStart(t, slots, "11:30").Available)
	assert.Equal(t, ReasonBreak, slotByStart(t, slots, "11:30").Reason)
	assert.False(t, slotByStart(t, slots, "12:00").Available)
	assert.False(t, slotByStart(t, slots, "12:30").Available)
	assert.True(t, slotByStart(t, slots, "13:00").Available)
}

func TestGenerateSlots_PastSlotsOnSameDay(t *testing.T) {
	slots, err := generateSlots(window("09:00", "12:00"), nil, 30, 30, true, "10:15")
	require.NoError(t, err)

	assert.False(t, slotByStart(t, slots, "09:00").Available)
	assert.Equal(t, ReasonPast, slotByStart(t, slots, "09:00").Reason)
	assert.False(t, slotByStart(t, slots, "10:00").Available)
	assert.True(t, slotByStart(t, slots, "10:30").Available)
}

func TestGenerateSlots_ClosedDay(t *testing.T) {
	slots, err := generateSlots(domain.DayWindow{Closed: true}, nil, 30, 30, false, "")
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestMarkBookedForResource(t *testing.T) {
	slots, err := generateSlots(window("09:00", "12:00"), nil, 30, 30, false, "")
	require.NoError(t, err)

	appointments := []*domain.Appointment{
		{StartTime: "10:00", DurationMinutes: 60, Status: domain.StatusConfirmada},
		// Отмененная запись не занимает интервал
		{StartTime: "09:00", DurationMinutes: 60, Status: domain.StatusCancelada},
	}

	markBookedForResource(slots, 30, appointments)

	assert.True(t, slotByStart(t, slots, "09:00").Available)
	assert.True(t, slotByStart(t, slots, "09:30").Available)
	assert.False(t, slotByStart(t, slots, "10:00").Available)
	assert.False(t, slotByStart(t, slots, "10:30").Available)
	assert.Equal(t, ReasonBooked, slotByStart(t, slots, "10:30").Reason)
	assert.True(t, slotByStart(t, slots, "11:00").Available)
}

func TestMarkBookedAnyResource(t *testing.T) {
	slots, err := generateSlots(window("09:00", "11:00"), nil, 30, 30, false, "")
	require.NoError(t, err)

	resources := []*domain.Resource{
		{ID: 1, IsActive: true},
		{ID: 2, IsActive: true},
	}
	appointments := []*domain.Appointment{
		{ResourceID: ptr.Ptr(int64(1)), StartTime: "09:00", DurationMinutes: 60, Status: domain.StatusConfirmada},
		{ResourceID: ptr.Ptr(int64(2)), StartTime: "09:30", DurationMinutes: 60, Status: domain.StatusPendiente},
	}

	markBookedAnyResource(slots, 30, resources, appointments)

	// 09:00: занят только ресурс 1
	assert.True(t, slotByStart(t, slots, "09:00").Available)
	assert.Equal(t, []int64{2}, slotByStart(t, slots, "09:00").FreeResourceIDs)

	// 09:30: заняты оба
	assert.False(t, slotByStart(t, slots, "09:30").Available)
	assert.Empty(t, slotByStart(t, slots, "09:30").FreeResourceIDs)

	// 10:00: ресурс 1 освободился ровно в 10:00, граница не пересечение
	assert.True(t, slotByStart(t, slots, "10:00").Available)
	assert.Equal(t, []int64{1}, slotByStart(t, slots, "10:00").FreeResourceIDs)
}
