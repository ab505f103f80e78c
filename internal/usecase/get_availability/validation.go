package get_availability

import (
	"fmt"

	"github.com/m04kA/agenda-core/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	if len(req.ServiceIDs) == 0 {
		return fmt.Errorf("%w: at least one service is required", ErrInvalidInput)
	}
	if len(req.ServiceIDs) > domain.MaxServicesPerBooking {
		return fmt.Errorf("%w: too many services, max %d", ErrInvalidInput, domain.MaxServicesPerBooking)
	}
	for _, id := range req.ServiceIDs {
		if id <= 0 {
			return fmt.Errorf("%w: serviceID must be positive", ErrInvalidInput)
		}
	}

	if req.ResourceID != nil && *req.ResourceID <= 0 {
		return fmt.Errorf("%w: resourceID must be positive", ErrInvalidInput)
	}

	return nil
}

// validateServices проверяет, что все услуги активны, и суммирует длительности
func validateServices(services []*domain.Service) (int, error) {
	total := 0
	for _, s := range services {
		if !s.IsActive {
			return 0, fmt.Errorf("%w: id=%d", ErrServiceInactive, s.ID)
		}
		total += s.DurationMinutes
	}
	return total, nil
}
