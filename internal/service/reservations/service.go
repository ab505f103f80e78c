package reservations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/agenda-core/internal/domain"
	apptRepo "github.com/m04kA/agenda-core/internal/infra/storage/appointment"
	"github.com/m04kA/agenda-core/internal/service/reservations/models"
)

// Service сервис жизненного цикла групп бронирования: одобрение и отклонение
// владельцем, подтверждение оплаты, терминальные статусы, отмена и удаление.
// Все переходы идут через закрытую таблицу domain.NextStatus.
type Service struct {
	apptRepo     AppointmentRepository
	gateway      PaymentGateway
	publisher    EventPublisher
	timeProvider TimeProvider
	mode         domain.BookingMode
	holdDuration time.Duration
	logger       Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	apptRepo AppointmentRepository,
	gateway PaymentGateway,
	publisher EventPublisher,
	mode domain.BookingMode,
	holdDurationMinutes int,
	logger Logger,
) *Service {
	return &Service{
		apptRepo:     apptRepo,
		gateway:      gateway,
		publisher:    publisher,
		timeProvider: &RealTimeProvider{},
		mode:         mode,
		holdDuration: time.Duration(holdDurationMinutes) * time.Minute,
		logger:       logger,
	}
}

// GetByGroupID получает группу бронирования по её идентификатору
func (s *Service) GetByGroupID(ctx context.Context, groupID string) (*models.GroupResponse, error) {
	s.logger.Info("GetByGroupID: fetching group=%s", groupID)

	group, err := s.fetchGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	return models.FromDomainGroup(group), nil
}

// ListByDate получает группы бронирования за дату, опционально по ресурсу
func (s *Service) ListByDate(ctx context.Context, req *models.ListRequest) (*models.GroupListResponse, error) {
	s.logger.Info("ListByDate: date=%s, resource=%v, includeInactive=%v",
		req.Date.Format(domain.DateFormat), req.ResourceID, req.IncludeInactive)

	if req.Date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	appointments, err := s.apptRepo.ListByDate(ctx, req.Date, req.ResourceID, req.IncludeInactive)
	if err != nil {
		s.logger.Error("ListByDate: repository error: %v", err)
		return nil, fmt.Errorf("%w: ListByDate - repository error: %v", ErrInternal, err)
	}

	resp, err := models.FromDomainGroupList(appointments)
	if err != nil {
		s.logger.Error("ListByDate: failed to assemble groups: %v", err)
		return nil, fmt.Errorf("%w: ListByDate - %v", ErrInternal, err)
	}

	s.logger.Info("ListByDate: fetched %d groups for %s", resp.Total, req.Date.Format(domain.DateFormat))
	return resp, nil
}

// Respond обрабатывает решение владельца по ожидающей группе.
// Отклонение всегда ведет в cancelada. Одобрение в режиме libre ведет в
// confirmada; в режиме pago_post_aprobacion открывает платежный hold
// с ограниченным временем жизни.
func (s *Service) Respond(ctx context.Context, groupID string, req *models.RespondRequest) (*models.GroupResponse, error) {
	s.logger.Info("Respond: group=%s, approve=%v", groupID, req.Approve)

	group, err := s.fetchGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	event := domain.EventApprove
	if !req.Approve {
		event = domain.EventReject
	}

	next, err := domain.NextStatus(s.mode, group.Status, event)
	if err != nil {
		s.logger.Warn("Respond: event=%s not applicable to group=%s in status=%s", event, groupID, group.Status)
		return nil, ErrInvalidState
	}

	var paymentURL string
	switch next {
	case domain.StatusCancelada:
		reason := "rechazada por el negocio"
		if req.Reason != nil && *req.Reason != "" {
			reason = *req.Reason
		}
		err = s.apptRepo.CancelGroup(ctx, groupID, group.Status, reason)
	case domain.StatusEsperandoPago:
		paymentURL, err = s.openPaymentHold(ctx, group)
	default:
		err = s.apptRepo.SetGroupStatus(ctx, groupID, group.Status, next, false)
	}
	if err != nil {
		return nil, s.mapUpdateError("Respond", groupID, err)
	}

	s.logger.Info("Respond: group=%s moved %s -> %s", groupID, group.Status, next)

	updated, err := s.fetchGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	s.publisher.BookingStatusChanged(ctx, updated, event)
	if next == domain.StatusEsperandoPago {
		s.publisher.PaymentHoldOpened(ctx, updated)
	}

	resp := models.FromDomainGroup(updated)
	if paymentURL != "" {
		resp.PaymentURL = &paymentURL
	}
	return resp, nil
}

// ConfirmPayment подтверждает оплату по платежному токену.
// Срок hold проверяется по holdExpiresAt независимо от sweeper: даже если
// фоновая очистка еще не прошла, просроченный hold оплатить нельзя.
func (s *Service) ConfirmPayment(ctx context.Context, token string) (*models.GroupResponse, error) {
	s.logger.Info("ConfirmPayment: token=%s", token)

	if token == "" {
		return nil, fmt.Errorf("%w: token is required", ErrInvalidInput)
	}

	items, err := s.apptRepo.GetGroupByToken(ctx, token)
	if err != nil {
		if errors.Is(err, apptRepo.ErrGroupNotFound) {
			s.logger.Warn("ConfirmPayment: no group for token=%s", token)
			return nil, ErrGroupNotFound
		}
		s.logger.Error("ConfirmPayment: repository error: %v", err)
		return nil, fmt.Errorf("%w: ConfirmPayment - repository error: %v", ErrInternal, err)
	}

	group, err := domain.GroupFromItems(items)
	if err != nil {
		return nil, fmt.Errorf("%w: ConfirmPayment - %v", ErrInternal, err)
	}

	if group.Status != domain.StatusEsperandoPago {
		s.logger.Warn("ConfirmPayment: group=%s is in status=%s", group.GroupID, group.Status)
		return nil, ErrInvalidState
	}

	now := s.timeProvider.Now()
	if group.HoldExpiresAt == nil || !now.Before(*group.HoldExpiresAt) {
		s.logger.Warn("ConfirmPayment: hold expired for group=%s", group.GroupID)
		return nil, ErrExpiredHold
	}

	ok, err := s.gateway.Verify(ctx, token)
	if err != nil {
		s.logger.Error("ConfirmPayment: gateway error for group=%s: %v", group.GroupID, err)
		return nil, fmt.Errorf("%w: ConfirmPayment - gateway error: %v", ErrInternal, err)
	}
	if !ok {
		s.logger.Warn("ConfirmPayment: payment not confirmed for group=%s", group.GroupID)
		return nil, ErrPaymentNotConfirmed
	}

	if err := s.apptRepo.SetGroupStatus(ctx, group.GroupID, domain.StatusEsperandoPago, domain.StatusConfirmada, true); err != nil {
		return nil, s.mapUpdateError("ConfirmPayment", group.GroupID, err)
	}

	s.logger.Info("ConfirmPayment: group=%s confirmed", group.GroupID)

	updated, err := s.fetchGroup(ctx, group.GroupID)
	if err != nil {
		return nil, err
	}

	s.publisher.BookingStatusChanged(ctx, updated, domain.EventPay)
	return models.FromDomainGroup(updated), nil
}

// UpdateStatus переводит группу в запрошенный терминальный статус
// (completada, cancelada, no_asistio) через таблицу переходов
func (s *Service) UpdateStatus(ctx context.Context, groupID string, req *models.UpdateStatusRequest) (*models.GroupResponse, error) {
	s.logger.Info("UpdateStatus: group=%s, target=%s", groupID, req.Status)

	target, err := models.ToDomainStatus(req.Status)
	if err != nil {
		s.logger.Warn("UpdateStatus: invalid status=%s", req.Status)
		return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
	}

	if req.Reason != nil && len(*req.Reason) > domain.MaxCancellationReasonLength {
		return nil, fmt.Errorf("%w: reason too long, max %d", ErrInvalidInput, domain.MaxCancellationReasonLength)
	}

	event, err := domain.EventForStatus(target)
	if err != nil {
		s.logger.Warn("UpdateStatus: status=%s is not a valid target", target)
		return nil, ErrInvalidState
	}

	group, err := s.fetchGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	next, err := domain.NextStatus(s.mode, group.Status, event)
	if err != nil {
		s.logger.Warn("UpdateStatus: event=%s not applicable to group=%s in status=%s", event, groupID, group.Status)
		return nil, ErrInvalidState
	}

	if next == domain.StatusCancelada {
		reason := "cancelada por el negocio"
		if req.Reason != nil && *req.Reason != "" {
			reason = *req.Reason
		}
		err = s.apptRepo.CancelGroup(ctx, groupID, group.Status, reason)
	} else {
		err = s.apptRepo.SetGroupStatus(ctx, groupID, group.Status, next, false)
	}
	if err != nil {
		return nil, s.mapUpdateError("UpdateStatus", groupID, err)
	}

	s.logger.Info("UpdateStatus: group=%s moved %s -> %s", groupID, group.Status, next)

	updated, err := s.fetchGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	s.publisher.BookingStatusChanged(ctx, updated, event)
	return models.FromDomainGroup(updated), nil
}

// Cancel отменяет группу бронирования с указанием причины
func (s *Service) Cancel(ctx context.Context, groupID string, req *models.CancelRequest) error {
	s.logger.Info("Cancel: cancelling group=%s", groupID)

	if len(req.CancellationReason) > domain.MaxCancellationReasonLength {
		return fmt.Errorf("%w: cancellation reason too long, max %d", ErrInvalidInput, domain.MaxCancellationReasonLength)
	}

	group, err := s.fetchGroup(ctx, groupID)
	if err != nil {
		return err
	}

	if _, err := domain.NextStatus(s.mode, group.Status, domain.EventCancel); err != nil {
		s.logger.Warn("Cancel: group=%s cannot be cancelled from status=%s", groupID, group.Status)
		return ErrInvalidState
	}

	if err := s.apptRepo.CancelGroup(ctx, groupID, group.Status, req.CancellationReason); err != nil {
		return s.mapUpdateError("Cancel", groupID, err)
	}

	s.logger.Info("Cancel: group=%s cancelled", groupID)

	if updated, err := s.fetchGroup(ctx, groupID); err == nil {
		s.publisher.BookingStatusChanged(ctx, updated, domain.EventCancel)
	}

	return nil
}

// Delete удаляет группу бронирования целиком
func (s *Service) Delete(ctx context.Context, groupID string) error {
	s.logger.Info("Delete: deleting group=%s", groupID)

	if err := s.apptRepo.DeleteGroup(ctx, groupID); err != nil {
		if errors.Is(err, apptRepo.ErrGroupNotFound) {
			s.logger.Warn("Delete: group=%s not found", groupID)
			return ErrGroupNotFound
		}
		s.logger.Error("Delete: repository error for group=%s: %v", groupID, err)
		return fmt.Errorf("%w: Delete - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Delete: group=%s deleted", groupID)
	return nil
}

// Вспомогательные методы

// openPaymentHold генерирует платежный токен, регистрирует сессию в шлюзе
// и переводит группу в esperando_pago с дедлайном оплаты.
// Возвращает URL страницы оплаты.
func (s *Service) openPaymentHold(ctx context.Context, group *domain.BookingGroup) (string, error) {
	token := uuid.NewString()
	holdExpiresAt := s.timeProvider.Now().Add(s.holdDuration)

	description := fmt.Sprintf("Reserva %s, %s %s",
		group.GroupID, group.Date.Format(domain.DateFormat), group.StartTime)
	paymentURL, err := s.gateway.CreateHold(ctx, token, group.TotalAmount(), description)
	if err != nil {
		s.logger.Error("openPaymentHold: gateway error for group=%s: %v", group.GroupID, err)
		return "", fmt.Errorf("%w: openPaymentHold - gateway error: %v", ErrInternal, err)
	}

	if err := s.apptRepo.MarkAwaitingPayment(ctx, group.GroupID, holdExpiresAt, token); err != nil {
		return "", err
	}
	return paymentURL, nil
}

// fetchGroup загружает группу и собирает агрегат
func (s *Service) fetchGroup(ctx context.Context, groupID string) (*domain.BookingGroup, error) {
	items, err := s.apptRepo.GetGroup(ctx, groupID)
	if err != nil {
		if errors.Is(err, apptRepo.ErrGroupNotFound) {
			s.logger.Warn("fetchGroup: group=%s not found", groupID)
			return nil, ErrGroupNotFound
		}
		s.logger.Error("fetchGroup: repository error for group=%s: %v", groupID, err)
		return nil, fmt.Errorf("%w: fetchGroup - repository error: %v", ErrInternal, err)
	}

	group, err := domain.GroupFromItems(items)
	if err != nil {
		return nil, fmt.Errorf("%w: fetchGroup - %v", ErrInternal, err)
	}
	return group, nil
}

// mapUpdateError переводит ошибки условных групповых апдейтов в ошибки сервиса.
// Ноль затронутых строк означает проигранную гонку: статус уже изменился.
func (s *Service) mapUpdateError(method, groupID string, err error) error {
	if errors.Is(err, apptRepo.ErrGroupStateChanged) {
		s.logger.Warn("%s: group=%s state changed concurrently", method, groupID)
		return ErrInvalidState
	}
	if errors.Is(err, apptRepo.ErrGroupNotFound) {
		s.logger.Warn("%s: group=%s not found", method, groupID)
		return ErrGroupNotFound
	}
	s.logger.Error("%s: repository error for group=%s: %v", method, groupID, err)
	return fmt.Errorf("%w: %s - repository error: %v", ErrInternal, method, err)
}
