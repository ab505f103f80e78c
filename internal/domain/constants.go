package domain

// Default configuration values
const (
	DefaultSlotCadenceMinutes  = 30
	DefaultHoldDurationMinutes = 15
	DefaultMinNoticeMinutes    = 0
)

// Business validation constants
const (
	MinSlotCadenceMinutes       = 5
	MaxSlotCadenceMinutes       = 240
	MaxServicesPerBooking       = 10
	MaxNotesLength              = 500
	MaxCancellationReasonLength = 500
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// InactiveStatuses список статусов, не занимающих временной интервал.
// Используется при фильтрации для проверки пересечений.
var InactiveStatuses = []AppointmentStatus{
	StatusCancelada,
	StatusExpirada,
}

// ActiveStatuses список статусов, занимающих временной интервал
var ActiveStatuses = []AppointmentStatus{
	StatusPendiente,
	StatusEsperandoPago,
	StatusConfirmada,
	StatusCompletada,
	StatusNoAsistio,
}
