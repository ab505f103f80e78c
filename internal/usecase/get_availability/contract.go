package get_availability

import (
	"context"
	"time"

	"github.com/m04kA/agenda-core/internal/domain"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	ListByDate(ctx context.Context, date time.Time, resourceID *int64, includeInactive bool) ([]*domain.Appointment, error)
}

// ScheduleRepository интерфейс репозитория конфигурации календаря
type ScheduleRepository interface {
	GetBusinessHours(ctx context.Context) ([]domain.BusinessHour, error)
	ListBreaks(ctx context.Context) ([]domain.RecurringBreak, error)
	ListExceptionsCovering(ctx context.Context, date time.Time) ([]domain.ScheduleException, error)
}

// ResourceRepository интерфейс репозитория ресурсов
type ResourceRepository interface {
	ListActive(ctx context.Context) ([]*domain.Resource, error)
	GetByID(ctx context.Context, id int64) (*domain.Resource, error)
}

// ServiceRepository интерфейс репозитория каталога услуг
type ServiceRepository interface {
	GetByIDs(ctx context.Context, ids []int64) ([]*domain.Service, error)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
