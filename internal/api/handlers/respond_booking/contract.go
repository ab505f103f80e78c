package respond_booking

import (
	"context"

	"github.com/m04kA/agenda-core/internal/service/reservations/models"
)

type ReservationsService interface {
	Respond(ctx context.Context, groupID string, req *models.RespondRequest) (*models.GroupResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
