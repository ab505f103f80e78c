package get_availability

import (
	"time"

	"github.com/m04kA/agenda-core/internal/domain"
	"github.com/m04kA/agenda-core/pkg/types"
)

// generateSlots генерирует кандидатов с фиксированным шагом cadence от
// открытия до закрытия. Кандидат, чей интервал не помещается до закрытия,
// не генерируется. Слоты, пересекающие перерыв, помечаются ReasonBreak;
// на сегодняшнюю дату слоты раньше minAllowed помечаются ReasonPast.
//
// Функция чистая: "сейчас" передается снаружи через sameDay/minAllowed.
func generateSlots(
	win domain.DayWindow,
	breaks []domain.RecurringBreak,
	durationMinutes int,
	cadenceMinutes int,
	sameDay bool,
	minAllowed types.TimeString,
) ([]Slot, error) {
	slots := make([]Slot, 0)
	if win.Closed {
		return slots, nil
	}

	current := win.Open
	for current.IsBefore(win.Close) {
		slotEnd, err := current.AddMinutes(durationMinutes)
		if err != nil {
			return nil, err
		}
		if slotEnd.IsAfter(win.Close) {
			break
		}

		slot := Slot{
			StartTime:       current,
			DurationMinutes: durationMinutes,
			Available:       true,
		}

		switch {
		case sameDay && current.IsBefore(minAllowed):
			slot.Available = false
			slot.Reason = ReasonPast
		case overlapsAnyBreak(current, durationMinutes, breaks):
			slot.Available = false
			slot.Reason = ReasonBreak
		}

		slots = append(slots, slot)

		current, err = current.AddMinutes(cadenceMinutes)
		if err != nil {
			return nil, err
		}
	}

	return slots, nil
}

// overlapsAnyBreak проверяет пересечение интервала слота с перерывами.
// Граничные случаи (слот заканчивается ровно в начале перерыва и наоборот)
// пересечением не считаются.
func overlapsAnyBreak(start types.TimeString, durationMinutes int, breaks []domain.RecurringBreak) bool {
	for i := range breaks {
		b := &breaks[i]
		breakDur, err := b.DurationMinutes()
		if err != nil || breakDur <= 0 {
			continue
		}
		if domain.IntervalsOverlap(start, durationMinutes, b.StartTime, breakDur) {
			return true
		}
	}
	return false
}

// markBookedForResource помечает слоты, пересекающиеся с активными записями.
// Пересечение считается по собственной длительности существующей записи.
func markBookedForResource(slots []Slot, durationMinutes int, appointments []*domain.Appointment) {
	for i := range slots {
		if !slots[i].Available {
			continue
		}
		if hasOverlap(slots[i].StartTime, durationMinutes, appointments) {
			slots[i].Available = false
			slots[i].Reason = ReasonBooked
		}
	}
}

// markBookedAnyResource для каждого слота вычисляет подмножество активных
// ресурсов без пересекающихся записей. Слот доступен, если подмножество
// непусто; оно возвращается наружу для прозрачности.
func markBookedAnyResource(slots []Slot, durationMinutes int, resources []*domain.Resource, appointments []*domain.Appointment) {
	byResource := make(map[int64][]*domain.Appointment, len(resources))
	for _, appt := range appointments {
		if appt.ResourceID == nil {
			continue
		}
		byResource[*appt.ResourceID] = append(byResource[*appt.ResourceID], appt)
	}

	for i := range slots {
		if !slots[i].Available {
			continue
		}

		free := make([]int64, 0, len(resources))
		for _, res := range resources {
			if !hasOverlap(slots[i].StartTime, durationMinutes, byResource[res.ID]) {
				free = append(free, res.ID)
			}
		}

		slots[i].FreeResourceIDs = free
		if len(free) == 0 {
			slots[i].Available = false
			slots[i].Reason = ReasonBooked
		}
	}
}

// hasOverlap проверяет пересечение интервала с активными записями
func hasOverlap(start types.TimeString, durationMinutes int, appointments []*domain.Appointment) bool {
	for _, appt := range appointments {
		if !appt.IsActive() {
			continue
		}
		if appt.Overlaps(start, durationMinutes) {
			return true
		}
	}
	return false
}

// isSameDay проверяет, что две даты относятся к одному и тому же дню
func isSameDay(date1, date2 time.Time) bool {
	y1, m1, d1 := date1.Date()
	y2, m2, d2 := date2.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// isDateInPast проверяет, что дата в прошлом (раньше сегодняшнего дня)
func isDateInPast(date, now time.Time) bool {
	// Обнуляем время, чтобы сравнивать только даты
	dateOnly := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	nowOnly := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return dateOnly.Before(nowOnly)
}
