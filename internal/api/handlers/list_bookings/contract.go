package list_bookings

import (
	"context"

	"github.com/m04kA/agenda-core/internal/service/reservations/models"
)

type ReservationsService interface {
	ListByDate(ctx context.Context, req *models.ListRequest) (*models.GroupListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
