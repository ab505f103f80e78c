package get_booking

import (
	"context"

	"github.com/m04kA/agenda-core/internal/service/reservations/models"
)

type ReservationsService interface {
	GetByGroupID(ctx context.Context, groupID string) (*models.GroupResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
