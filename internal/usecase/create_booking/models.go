package create_booking

import (
	"time"

	"github.com/m04kA/agenda-core/internal/domain"
	"github.com/m04kA/agenda-core/pkg/types"
)

// Request модель запроса на создание бронирования.
// ResourceID = nil означает авто-назначение ("любой свободный ресурс").
type Request struct {
	ServiceIDs  []int64
	Date        time.Time
	StartTime   types.TimeString
	ResourceID  *int64
	ClientName  string
	ClientPhone string
	Notes       *string

	// PaymentToken обязателен в режиме prepago: оплата проверяется
	// синхронно до вставки
	PaymentToken *string
}

// Response модель ответа с созданной группой бронирования
type Response struct {
	Group *domain.BookingGroup
}
