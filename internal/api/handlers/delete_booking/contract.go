package delete_booking

import "context"

type ReservationsService interface {
	Delete(ctx context.Context, groupID string) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
