package models

import (
	"errors"
	"time"

	"github.com/m04kA/agenda-core/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid appointment status")
)

// Request модели

// RespondRequest запрос владельца на одобрение или отклонение группы
type RespondRequest struct {
	Approve bool    `json:"approve"`
	Reason  *string `json:"reason,omitempty"` // причина при отклонении
}

// UpdateStatusRequest запрос на перевод группы в терминальный статус
type UpdateStatusRequest struct {
	Status string  `json:"status"`
	Reason *string `json:"reason,omitempty"` // причина при отмене
}

// CancelRequest запрос на отмену группы
type CancelRequest struct {
	CancellationReason string `json:"cancellationReason"`
}

// ListRequest запрос списка групп за дату
type ListRequest struct {
	Date            time.Time `json:"date"`
	ResourceID      *int64    `json:"resourceId,omitempty"`
	IncludeInactive bool      `json:"includeInactive,omitempty"`
}

// ToDomainStatus конвертирует строковый статус в domain.AppointmentStatus
func ToDomainStatus(s string) (domain.AppointmentStatus, error) {
	status := domain.AppointmentStatus(s)
	switch status {
	case domain.StatusPendiente, domain.StatusEsperandoPago, domain.StatusConfirmada,
		domain.StatusCompletada, domain.StatusCancelada, domain.StatusNoAsistio, domain.StatusExpirada:
		return status, nil
	}
	return "", ErrInvalidStatus
}

// Response модели

// ItemResponse строка группы: одна запись на услугу
type ItemResponse struct {
	ID              int64   `json:"id"`
	ServiceID       int64   `json:"serviceId"`
	ServiceName     string  `json:"serviceName"`
	StartTime       string  `json:"startTime"` // "10:00"
	DurationMinutes int     `json:"durationMinutes"`
	Amount          float64 `json:"amount"`
	PaidAmount      float64 `json:"paidAmount"`
}

// GroupResponse ответ с данными группы бронирования
type GroupResponse struct {
	GroupID            string         `json:"groupId"`
	Date               string         `json:"date"` // "2026-03-15"
	StartTime          string         `json:"startTime"`
	DurationMinutes    int            `json:"durationMinutes"`
	ResourceID         *int64         `json:"resourceId,omitempty"`
	Status             string         `json:"status"`
	TotalAmount        float64        `json:"totalAmount"`
	HoldExpiresAt      *time.Time     `json:"holdExpiresAt,omitempty"`
	PaymentURL         *string        `json:"paymentUrl,omitempty"` // только в ответе на одобрение
	ClientName         string         `json:"clientName"`
	ClientPhone        string         `json:"clientPhone"`
	Notes              *string        `json:"notes,omitempty"`
	CancellationReason *string        `json:"cancellationReason,omitempty"`
	CancelledAt        *time.Time     `json:"cancelledAt,omitempty"`
	CreatedAt          time.Time      `json:"createdAt"`
	Items              []ItemResponse `json:"items"`
}

// GroupListResponse ответ со списком групп
type GroupListResponse struct {
	Groups []GroupResponse `json:"groups"`
	Total  int             `json:"total"`
}

// FromDomainGroup конвертирует domain группу в response модель
func FromDomainGroup(g *domain.BookingGroup) *GroupResponse {
	items := make([]ItemResponse, 0, len(g.Items))
	for _, it := range g.Items {
		items = append(items, ItemResponse{
			ID:              it.ID,
			ServiceID:       it.ServiceID,
			ServiceName:     it.ServiceName,
			StartTime:       string(it.StartTime),
			DurationMinutes: it.DurationMinutes,
			Amount:          it.Amount,
			PaidAmount:      it.PaidAmount,
		})
	}

	head := g.Items[0]
	return &GroupResponse{
		GroupID:            g.GroupID,
		Date:               g.Date.Format(domain.DateFormat),
		StartTime:          string(g.StartTime),
		DurationMinutes:    g.TotalDurationMinutes(),
		ResourceID:         g.ResourceID,
		Status:             string(g.Status),
		TotalAmount:        g.TotalAmount(),
		HoldExpiresAt:      g.HoldExpiresAt,
		ClientName:         head.ClientName,
		ClientPhone:        head.ClientPhone,
		Notes:              head.Notes,
		CancellationReason: g.CancellationReason,
		CancelledAt:        g.CancelledAt,
		CreatedAt:          head.CreatedAt,
		Items:              items,
	}
}

// FromDomainGroupList группирует записи дня по groupId и конвертирует
// в список response моделей, сохраняя порядок первого появления
func FromDomainGroupList(appointments []*domain.Appointment) (*GroupListResponse, error) {
	order := make([]string, 0)
	byGroup := make(map[string][]*domain.Appointment)
	for _, appt := range appointments {
		if _, ok := byGroup[appt.GroupID]; !ok {
			order = append(order, appt.GroupID)
		}
		byGroup[appt.GroupID] = append(byGroup[appt.GroupID], appt)
	}

	groups := make([]GroupResponse, 0, len(order))
	for _, id := range order {
		g, err := domain.GroupFromItems(byGroup[id])
		if err != nil {
			return nil, err
		}
		groups = append(groups, *FromDomainGroup(g))
	}

	return &GroupListResponse{Groups: groups, Total: len(groups)}, nil
}
