package confirm_payment

import (
	"context"

	"github.com/m04kA/agenda-core/internal/service/reservations/models"
)

type ReservationsService interface {
	ConfirmPayment(ctx context.Context, token string) (*models.GroupResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
