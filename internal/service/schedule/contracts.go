package schedule

import (
	"context"

	"github.com/m04kA/agenda-core/internal/domain"
)

// ScheduleRepository интерфейс репозитория конфигурации календаря
type ScheduleRepository interface {
	GetBusinessHours(ctx context.Context) ([]domain.BusinessHour, error)
	UpsertBusinessHour(ctx context.Context, bh *domain.BusinessHour) (*domain.BusinessHour, error)
	ListBreaks(ctx context.Context) ([]domain.RecurringBreak, error)
	CreateBreak(ctx context.Context, b *domain.RecurringBreak) (*domain.RecurringBreak, error)
	DeleteBreak(ctx context.Context, id int64) error
	ListExceptions(ctx context.Context) ([]domain.ScheduleException, error)
	CreateException(ctx context.Context, e *domain.ScheduleException) (*domain.ScheduleException, error)
	DeleteException(ctx context.Context, id int64) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
