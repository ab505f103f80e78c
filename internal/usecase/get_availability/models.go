package get_availability

import (
	"time"

	"github.com/m04kA/agenda-core/pkg/types"
)

// Причины недоступности слота
const (
	ReasonPast   = "past"   // время слота уже прошло (с учетом буфера)
	ReasonBreak  = "break"  // слот пересекается с перерывом
	ReasonBooked = "booked" // интервал занят (или нет свободного ресурса)
)

// Request модель запроса доступных слотов.
// ResourceID = nil означает режим "любой свободный ресурс".
type Request struct {
	Date       time.Time
	ResourceID *int64
	ServiceIDs []int64 // выбранные услуги; длительности суммируются
}

// Slot кандидат временного слота
type Slot struct {
	StartTime       types.TimeString
	DurationMinutes int
	Available       bool
	Reason          string // пусто для доступных слотов

	// FreeResourceIDs заполняется в режиме "любой ресурс": подмножество
	// активных ресурсов, свободных в этом интервале
	FreeResourceIDs []int64
}

// Response модель ответа со списком слотов
type Response struct {
	Date            time.Time
	ResourceID      *int64
	ServiceIDs      []int64
	DurationMinutes int  // суммарная длительность выбранных услуг
	Closed          bool // день полностью закрыт (выходной или исключение)
	Slots           []Slot
}
