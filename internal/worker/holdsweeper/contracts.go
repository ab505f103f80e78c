package holdsweeper

import (
	"context"
	"time"

	"github.com/m04kA/agenda-core/internal/domain"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	ListExpiredHoldGroupIDs(ctx context.Context, now time.Time) ([]string, error)
	ExpireGroup(ctx context.Context, groupID string, now time.Time) ([]*domain.Appointment, error)
}

// EventPublisher интерфейс публикации событий об освобожденных слотах.
// Публикация fire-and-forget: ошибки логируются и не влияют на результат.
type EventPublisher interface {
	HoldReleased(ctx context.Context, group *domain.BookingGroup)
}

// Metrics интерфейс счетчиков sweeper'а
type Metrics interface {
	IncSweeperRuns()
	AddExpiredHolds(n int)
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

// NopMetrics заглушка метрик для выключенного мониторинга и тестов
type NopMetrics struct{}

func (NopMetrics) IncSweeperRuns()     {}
func (NopMetrics) AddExpiredHolds(int) {}
