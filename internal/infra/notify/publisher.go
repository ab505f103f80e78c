// Package notify публикует события жизненного цикла бронирований в Redis.
// Подписчики (напоминания, панель владельца) получают JSON-сообщения
// через Pub/Sub; доставка best-effort, ошибки публикации только логируются.
package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/m04kA/agenda-core/internal/domain"
)

const (
	// ChannelBookings канал событий создания и смены статуса
	ChannelBookings = "agenda:bookings"
	// ChannelHolds канал событий платежных hold'ов
	ChannelHolds = "agenda:holds"

	publishTimeout = 2 * time.Second
)

// Logger интерфейс для логирования
type Logger interface {
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Event структура сообщения в канале
type Event struct {
	Type       string    `json:"type"`
	GroupID    string    `json:"groupId"`
	Status     string    `json:"status"`
	Date       string    `json:"date"`
	StartTime  string    `json:"startTime"`
	ResourceID *int64    `json:"resourceId,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Publisher публикатор событий поверх Redis Pub/Sub
type Publisher struct {
	client *redis.Client
	logger Logger
}

// NewPublisher создает публикатор на готовом клиенте Redis
func NewPublisher(client *redis.Client, logger Logger) *Publisher {
	return &Publisher{client: client, logger: logger}
}

// BookingCreated публикует событие о созданной группе
func (p *Publisher) BookingCreated(ctx context.Context, group *domain.BookingGroup) {
	p.publish(ctx, ChannelBookings, "booking.created", group)
}

// BookingStatusChanged публикует событие о переходе группы
func (p *Publisher) BookingStatusChanged(ctx context.Context, group *domain.BookingGroup, event domain.TransitionEvent) {
	p.publish(ctx, ChannelBookings, "booking."+string(event), group)
}

// PaymentHoldOpened публикует событие об открытом платежном hold
func (p *Publisher) PaymentHoldOpened(ctx context.Context, group *domain.BookingGroup) {
	p.publish(ctx, ChannelHolds, "hold.opened", group)
}

// HoldReleased публикует событие об истекшем hold и освобожденном слоте
func (p *Publisher) HoldReleased(ctx context.Context, group *domain.BookingGroup) {
	p.publish(ctx, ChannelHolds, "hold.released", group)
}

func (p *Publisher) publish(ctx context.Context, channel, eventType string, group *domain.BookingGroup) {
	event := Event{
		Type:       eventType,
		GroupID:    group.GroupID,
		Status:     string(group.Status),
		Date:       group.Date.Format(domain.DateFormat),
		StartTime:  string(group.StartTime),
		ResourceID: group.ResourceID,
		OccurredAt: time.Now(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("notify: failed to marshal event %s for group=%s: %v", eventType, group.GroupID, err)
		return
	}

	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := p.client.Publish(pubCtx, channel, payload).Err(); err != nil {
		p.logger.Warn("notify: failed to publish %s for group=%s: %v", eventType, group.GroupID, err)
	}
}

// NopPublisher заглушка для выключенных уведомлений и тестов
type NopPublisher struct{}

func (NopPublisher) BookingCreated(context.Context, *domain.BookingGroup)                              {}
func (NopPublisher) BookingStatusChanged(context.Context, *domain.BookingGroup, domain.TransitionEvent) {}
func (NopPublisher) PaymentHoldOpened(context.Context, *domain.BookingGroup)                           {}
func (NopPublisher) HoldReleased(context.Context, *domain.BookingGroup)                                {}
