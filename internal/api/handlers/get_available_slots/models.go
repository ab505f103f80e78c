package get_available_slots

import (
	"strconv"
	"strings"
	"time"

	"github.com/m04kA/agenda-core/internal/domain"
	getAvailability "github.com/m04kA/agenda-core/internal/usecase/get_availability"
)

// AvailableSlotsResponse HTTP response model
type AvailableSlotsResponse struct {
	Date            string          `json:"date"`
	ResourceID      *int64          `json:"resourceId,omitempty"`
	ServiceIDs      []int64         `json:"serviceIds"`
	DurationMinutes int             `json:"durationMinutes"`
	Closed          bool            `json:"closed"`
	Slots           []AvailableSlot `json:"slots"`
}

// AvailableSlot модель временного слота
type AvailableSlot struct {
	StartTime       string  `json:"startTime"`
	DurationMinutes int     `json:"durationMinutes"`
	Available       bool    `json:"available"`
	Reason          string  `json:"reason,omitempty"`
	FreeResourceIDs []int64 `json:"freeResourceIds,omitempty"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailability.Response) *AvailableSlotsResponse {
	slots := make([]AvailableSlot, len(resp.Slots))
	for i, slot := range resp.Slots {
		slots[i] = AvailableSlot{
			StartTime:       slot.StartTime.String(),
			DurationMinutes: slot.DurationMinutes,
			Available:       slot.Available,
			Reason:          slot.Reason,
			FreeResourceIDs: slot.FreeResourceIDs,
		}
	}

	return &AvailableSlotsResponse{
		Date:            resp.Date.Format(domain.DateFormat),
		ResourceID:      resp.ResourceID,
		ServiceIDs:      resp.ServiceIDs,
		DurationMinutes: resp.DurationMinutes,
		Closed:          resp.Closed,
		Slots:           slots,
	}
}

// ToUseCaseRequest создает запрос use case из query параметров
func ToUseCaseRequest(dateStr, serviceIDsStr, resourceIDStr string) (*getAvailability.Request, error) {
	date, err := time.Parse(domain.DateFormat, dateStr)
	if err != nil {
		return nil, err
	}

	serviceIDs := make([]int64, 0)
	for _, part := range strings.Split(serviceIDsStr, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, err
		}
		serviceIDs = append(serviceIDs, id)
	}

	var resourceID *int64
	if resourceIDStr != "" {
		id, err := strconv.ParseInt(resourceIDStr, 10, 64)
		if err != nil {
			return nil, err
		}
		resourceID = &id
	}

	return &getAvailability.Request{
		Date:       date,
		ServiceIDs: serviceIDs,
		ResourceID: resourceID,
	}, nil
}
