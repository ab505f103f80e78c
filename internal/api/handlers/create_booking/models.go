package create_booking

import (
	"time"

	"github.com/m04kA/agenda-core/internal/domain"
	svcmodels "github.com/m04kA/agenda-core/internal/service/reservations/models"
	createBooking "github.com/m04kA/agenda-core/internal/usecase/create_booking"
	"github.com/m04kA/agenda-core/pkg/types"
)

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	ServiceIDs   []int64 `json:"serviceIds"`
	Date         string  `json:"date"`      // "2026-03-15"
	StartTime    string  `json:"startTime"` // "10:00"
	ResourceID   *int64  `json:"resourceId,omitempty"` // пусто = авто-назначение
	ClientName   string  `json:"clientName"`
	ClientPhone  string  `json:"clientPhone"`
	Notes        *string `json:"notes,omitempty"`
	PaymentToken *string `json:"paymentToken,omitempty"` // обязателен в режиме prepago
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest() (*createBooking.Request, error) {
	date, err := time.Parse(domain.DateFormat, r.Date)
	if err != nil {
		return nil, err
	}

	startTime, err := types.NewTimeStringFromString(r.StartTime)
	if err != nil {
		return nil, err
	}

	return &createBooking.Request{
		ServiceIDs:   r.ServiceIDs,
		Date:         date,
		StartTime:    startTime,
		ResourceID:   r.ResourceID,
		ClientName:   r.ClientName,
		ClientPhone:  r.ClientPhone,
		Notes:        r.Notes,
		PaymentToken: r.PaymentToken,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createBooking.Response) *svcmodels.GroupResponse {
	return svcmodels.FromDomainGroup(resp.Group)
}
