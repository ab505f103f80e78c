package reservations

import (
	"context"
	"time"

	"github.com/m04kA/agenda-core/internal/domain"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	GetGroup(ctx context.Context, groupID string) ([]*domain.Appointment, error)
	GetGroupByToken(ctx context.Context, token string) ([]*domain.Appointment, error)
	ListByDate(ctx context.Context, date time.Time, resourceID *int64, includeInactive bool) ([]*domain.Appointment, error)
	MarkAwaitingPayment(ctx context.Context, groupID string, holdExpiresAt time.Time, token string) error
	SetGroupStatus(ctx context.Context, groupID string, from, to domain.AppointmentStatus, markPaid bool) error
	CancelGroup(ctx context.Context, groupID string, from domain.AppointmentStatus, reason string) error
	DeleteGroup(ctx context.Context, groupID string) error
}

// PaymentGateway интерфейс платежного шлюза
type PaymentGateway interface {
	// CreateHold регистрирует платежную сессию под сгенерированный токен
	// и возвращает URL страницы оплаты
	CreateHold(ctx context.Context, token string, amount float64, description string) (string, error)
	// Verify проверяет, что платеж по токену подтвержден
	Verify(ctx context.Context, token string) (bool, error)
}

// EventPublisher интерфейс публикации событий жизненного цикла.
// Публикация fire-and-forget: ошибки логируются и не влияют на результат.
type EventPublisher interface {
	BookingStatusChanged(ctx context.Context, group *domain.BookingGroup, event domain.TransitionEvent)
	PaymentHoldOpened(ctx context.Context, group *domain.BookingGroup)
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
