package domain

import "errors"

// BookingMode determines which state-machine path new bookings take
type BookingMode string

const (
	// ModeLibre - bookings are created pending and confirmed by the owner
	ModeLibre BookingMode = "libre"
	// ModePrepago - payment is verified synchronously at creation
	ModePrepago BookingMode = "prepago"
	// ModePagoPostAprobacion - owner approval opens a time-limited payment hold
	ModePagoPostAprobacion BookingMode = "pago_post_aprobacion"
)

// Valid reports whether the mode is one of the known booking modes
func (m BookingMode) Valid() bool {
	switch m {
	case ModeLibre, ModePrepago, ModePagoPostAprobacion:
		return true
	}
	return false
}

// TransitionEvent is an action applied to a booking group
type TransitionEvent string

const (
	EventApprove   TransitionEvent = "approve"
	EventReject    TransitionEvent = "reject"
	EventPay       TransitionEvent = "pay"
	EventHoldLapse TransitionEvent = "hold_lapse"
	EventComplete  TransitionEvent = "complete"
	EventCancel    TransitionEvent = "cancel"
	EventNoShow    TransitionEvent = "no_show"
)

// ErrInvalidTransition is returned when an event does not apply to the
// current status under the active booking mode
var ErrInvalidTransition = errors.New("domain: invalid state transition")

type transitionKey struct {
	mode  BookingMode
	from  AppointmentStatus
	event TransitionEvent
}

// transitions is the single closed transition table. Every mutation path
// (owner action, client payment, sweeper expiry) goes through NextStatus,
// so no call site can set an undeclared status.
var transitions = map[transitionKey]AppointmentStatus{
	// libre: owner confirms or rejects pending bookings
	{ModeLibre, StatusPendiente, EventApprove}: StatusConfirmada,
	{ModeLibre, StatusPendiente, EventReject}:  StatusCancelada,

	// pago_post_aprobacion: approval opens a payment hold
	{ModePagoPostAprobacion, StatusPendiente, EventApprove}:      StatusEsperandoPago,
	{ModePagoPostAprobacion, StatusPendiente, EventReject}:       StatusCancelada,
	{ModePagoPostAprobacion, StatusEsperandoPago, EventPay}:      StatusConfirmada,
	{ModePagoPostAprobacion, StatusEsperandoPago, EventHoldLapse}: StatusExpirada,

	// owner-driven transitions from confirmed, valid in every mode
	{ModeLibre, StatusConfirmada, EventComplete}:               StatusCompletada,
	{ModeLibre, StatusConfirmada, EventCancel}:                 StatusCancelada,
	{ModeLibre, StatusConfirmada, EventNoShow}:                 StatusNoAsistio,
	{ModePrepago, StatusConfirmada, EventComplete}:             StatusCompletada,
	{ModePrepago, StatusConfirmada, EventCancel}:               StatusCancelada,
	{ModePrepago, StatusConfirmada, EventNoShow}:               StatusNoAsistio,
	{ModePagoPostAprobacion, StatusConfirmada, EventComplete}:  StatusCompletada,
	{ModePagoPostAprobacion, StatusConfirmada, EventCancel}:    StatusCancelada,
	{ModePagoPostAprobacion, StatusConfirmada, EventNoShow}:    StatusNoAsistio,

	// a pending booking can always be cancelled by its client
	{ModeLibre, StatusPendiente, EventCancel}:               StatusCancelada,
	{ModePagoPostAprobacion, StatusPendiente, EventCancel}:  StatusCancelada,
	{ModePagoPostAprobacion, StatusEsperandoPago, EventCancel}: StatusCancelada,
}

// NextStatus resolves the transition table for (mode, current, event).
// Returns ErrInvalidTransition when the event does not apply.
func NextStatus(mode BookingMode, current AppointmentStatus, event TransitionEvent) (AppointmentStatus, error) {
	next, ok := transitions[transitionKey{mode, current, event}]
	if !ok {
		return "", ErrInvalidTransition
	}
	return next, nil
}

// InitialStatus returns the status a newly created booking group gets
// under the given mode. Prepago groups are created already confirmed
// because payment is verified before the insert.
func InitialStatus(mode BookingMode) AppointmentStatus {
	if mode == ModePrepago {
		return StatusConfirmada
	}
	return StatusPendiente
}

// EventForStatus maps an owner-requested target status to the transition
// event that produces it. Used by the updateStatus operation; approval is
// a separate operation because under pago_post_aprobacion it does not lead
// to confirmada directly.
func EventForStatus(target AppointmentStatus) (TransitionEvent, error) {
	switch target {
	case StatusCompletada:
		return EventComplete, nil
	case StatusCancelada:
		return EventCancel, nil
	case StatusNoAsistio:
		return EventNoShow, nil
	default:
		return "", ErrInvalidTransition
	}
}
