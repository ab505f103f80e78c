package domain

import (
	"errors"
	"time"

	"github.com/m04kA/agenda-core/pkg/types"
)

var ErrEmptyGroup = errors.New("domain: booking group has no line-items")

// BookingGroup is the aggregate of line-items booked together: one
// appointment per selected service, sharing date, start time, resource
// and status. The group occupies a single contiguous time block equal
// to the sum of its items' durations.
type BookingGroup struct {
	GroupID    string
	Date       time.Time
	StartTime  types.TimeString
	ResourceID *int64
	Status     AppointmentStatus

	HoldExpiresAt *time.Time
	PaymentToken  *string

	CancellationReason *string
	CancelledAt        *time.Time

	Items []*Appointment
}

// GroupFromItems assembles the aggregate from its line-items.
// The shared fields are read from the first item; the storage layer
// guarantees they are identical across the group.
func GroupFromItems(items []*Appointment) (*BookingGroup, error) {
	if len(items) == 0 {
		return nil, ErrEmptyGroup
	}

	head := items[0]
	return &BookingGroup{
		GroupID:            head.GroupID,
		Date:               head.Date,
		StartTime:          head.StartTime,
		ResourceID:         head.ResourceID,
		Status:             head.Status,
		HoldExpiresAt:      head.HoldExpiresAt,
		PaymentToken:       head.PaymentToken,
		CancellationReason: head.CancellationReason,
		CancelledAt:        head.CancelledAt,
		Items:              items,
	}, nil
}

// TotalDurationMinutes returns the length of the contiguous block the group occupies
func (g *BookingGroup) TotalDurationMinutes() int {
	total := 0
	for _, it := range g.Items {
		total += it.DurationMinutes
	}
	return total
}

// TotalAmount returns the summed price of all line-items
func (g *BookingGroup) TotalAmount() float64 {
	total := 0.0
	for _, it := range g.Items {
		total += it.Amount
	}
	return total
}

// IsActive returns true if the group still occupies its time interval
func (g *BookingGroup) IsActive() bool {
	return g.Status != StatusCancelada && g.Status != StatusExpirada
}
