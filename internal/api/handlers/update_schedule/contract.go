package update_schedule

import (
	"context"

	"github.com/m04kA/agenda-core/internal/service/schedule/models"
)

type ScheduleService interface {
	UpsertBusinessHour(ctx context.Context, req *models.UpsertBusinessHourRequest) (*models.BusinessHourResponse, error)
	CreateBreak(ctx context.Context, req *models.CreateBreakRequest) (*models.BreakResponse, error)
	DeleteBreak(ctx context.Context, id int64) error
	CreateException(ctx context.Context, req *models.CreateExceptionRequest) (*models.ExceptionResponse, error)
	DeleteException(ctx context.Context, id int64) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
