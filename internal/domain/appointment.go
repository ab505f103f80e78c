package domain

import (
	"time"

	"github.com/m04kA/agenda-core/pkg/types"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusPendiente     AppointmentStatus = "pendiente"
	StatusEsperandoPago AppointmentStatus = "esperando_pago"
	StatusConfirmada    AppointmentStatus = "confirmada"
	StatusCompletada    AppointmentStatus = "completada"
	StatusCancelada     AppointmentStatus = "cancelada"
	StatusNoAsistio     AppointmentStatus = "no_asistio"
	StatusExpirada      AppointmentStatus = "expirada"
)

// Appointment represents a single service line-item of a booking group.
// All line-items sharing a GroupID always carry identical status, hold
// fields and cancellation fields; they are mutated only as a group.
type Appointment struct {
	ID              int64
	GroupID         string
	ServiceID       int64
	ResourceID      *int64 // nil in single-implicit-resource mode
	Date            time.Time
	StartTime       types.TimeString
	DurationMinutes int
	Status          AppointmentStatus

	// Hold fields, non-nil iff Status == StatusEsperandoPago
	HoldExpiresAt *time.Time
	PaymentToken  *string

	Amount     float64
	PaidAmount float64

	// Denormalized for history
	ServiceName string

	ClientName  string
	ClientPhone string
	Notes       *string

	CancellationReason *string
	CancelledAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive returns true if the appointment still occupies its time interval.
// Cancelled and expired appointments release the slot.
func (a *Appointment) IsActive() bool {
	return a.Status != StatusCancelada && a.Status != StatusExpirada
}

// End returns the end time of the appointment interval
func (a *Appointment) End() (types.TimeString, error) {
	return a.StartTime.AddMinutes(a.DurationMinutes)
}

// Overlaps reports whether the appointment interval intersects
// [start, start+duration). Boundary touch is not an overlap.
func (a *Appointment) Overlaps(start types.TimeString, durationMinutes int) bool {
	return IntervalsOverlap(a.StartTime, a.DurationMinutes, start, durationMinutes)
}

// IntervalsOverlap reports whether [aStart, aStart+aDur) and
// [bStart, bStart+bDur) intersect. Intervals that merely touch
// (one ends exactly where the other starts) do not overlap.
func IntervalsOverlap(aStart types.TimeString, aDur int, bStart types.TimeString, bDur int) bool {
	aEnd, err := aStart.AddMinutes(aDur)
	if err != nil {
		return false
	}
	bEnd, err := bStart.AddMinutes(bDur)
	if err != nil {
		return false
	}
	return aStart.IsBefore(bEnd) && aEnd.IsAfter(bStart)
}
