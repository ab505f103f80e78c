package create_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/agenda-core/internal/domain"
	catalogRepo "github.com/m04kA/agenda-core/internal/infra/storage/catalog"
	resourceRepo "github.com/m04kA/agenda-core/internal/infra/storage/resource"
	"github.com/m04kA/agenda-core/pkg/types"
)

// UseCase use case создания бронирования.
// Создает группу записей (по одной на услугу) одним непрерывным блоком,
// с проверкой пересечений внутри serializable-транзакции.
type UseCase struct {
	apptRepo     AppointmentRepository
	scheduleRepo ScheduleRepository
	resourceRepo ResourceRepository
	catalogRepo  ServiceRepository
	txManager    TransactionManager
	gateway      PaymentGateway
	publisher    EventPublisher
	timeProvider TimeProvider
	location     *time.Location
	mode         domain.BookingMode
	minNotice    int
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	apptRepo AppointmentRepository,
	scheduleRepo ScheduleRepository,
	resourceRepo ResourceRepository,
	catalogRepo ServiceRepository,
	txManager TransactionManager,
	gateway PaymentGateway,
	publisher EventPublisher,
	location *time.Location,
	mode domain.BookingMode,
	minNoticeMinutes int,
	logger Logger,
) *UseCase {
	return &UseCase{
		apptRepo:     apptRepo,
		scheduleRepo: scheduleRepo,
		resourceRepo: resourceRepo,
		catalogRepo:  catalogRepo,
		txManager:    txManager,
		gateway:      gateway,
		publisher:    publisher,
		timeProvider: &RealTimeProvider{},
		location:     location,
		mode:         mode,
		minNotice:    minNoticeMinutes,
		logger:       logger,
	}
}

// Execute выполняет use case создания бронирования
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: date=%s, start=%s, resource=%v, services=%v",
		req.Date.Format(domain.DateFormat), req.StartTime, req.ResourceID, req.ServiceIDs)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Услуги: существование, активность, суммарная длительность и цена
	services, err := uc.catalogRepo.GetByIDs(ctx, req.ServiceIDs)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrServiceNotFound) {
			uc.logger.Warn("CreateBooking: service not found: %v", err)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("CreateBooking: failed to get services: %v", err)
		return nil, fmt.Errorf("%w: failed to get services: %v", ErrInternal, err)
	}

	totalDuration, err := validateServices(services)
	if err != nil {
		uc.logger.Warn("CreateBooking: %v", err)
		return nil, err
	}

	// 3. Окно дня и перерывы: интервал должен помещаться целиком
	if err := uc.checkWindow(ctx, req, totalDuration); err != nil {
		return nil, err
	}

	// 4. Минимальный буфер до начала
	if err := uc.checkNotice(req); err != nil {
		return nil, err
	}

	// 5. Prepago: оплата подтверждается синхронно до вставки
	if uc.mode == domain.ModePrepago {
		if err := uc.verifyPayment(ctx, req); err != nil {
			return nil, err
		}
	}

	// 6. Serializable-транзакция: чтение дня с блокировкой, повторная
	// проверка пересечений, назначение ресурса и вставка группы
	var created []*domain.Appointment
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		items, txErr := uc.reserveInTx(txCtx, req, services, totalDuration)
		if txErr != nil {
			return txErr
		}
		created = items
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrOverlapConflict) || errors.Is(err, ErrNoResourceAvailable) || errors.Is(err, ErrResourceNotFound) {
			uc.logger.Warn("CreateBooking: %v", err)
			return nil, err
		}
		uc.logger.Error("CreateBooking: transaction failed: %v", err)
		return nil, fmt.Errorf("%w: transaction failed: %v", ErrInternal, err)
	}

	group, err := domain.GroupFromItems(created)
	if err != nil {
		uc.logger.Error("CreateBooking: failed to assemble group: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	uc.logger.Info("CreateBooking: created group=%s, status=%s, items=%d",
		group.GroupID, group.Status, len(group.Items))

	uc.publisher.BookingCreated(ctx, group)

	return &Response{Group: group}, nil
}

// checkWindow проверяет, что интервал [start, start+duration) целиком
// внутри эффективного окна дня и не пересекает перерывы
func (uc *UseCase) checkWindow(ctx context.Context, req *Request, totalDuration int) error {
	hours, err := uc.scheduleRepo.GetBusinessHours(ctx)
	if err != nil {
		uc.logger.Error("CreateBooking: failed to get business hours: %v", err)
		return fmt.Errorf("%w: failed to get business hours: %v", ErrInternal, err)
	}

	exceptions, err := uc.scheduleRepo.ListExceptionsCovering(ctx, req.Date)
	if err != nil {
		uc.logger.Error("CreateBooking: failed to get exceptions: %v", err)
		return fmt.Errorf("%w: failed to get exceptions: %v", ErrInternal, err)
	}

	window := domain.EffectiveHours(req.Date, hours, exceptions)
	if window.Closed {
		uc.logger.Warn("CreateBooking: closed on %s", req.Date.Format(domain.DateFormat))
		return ErrClosedDay
	}

	end, err := req.StartTime.AddMinutes(totalDuration)
	if err != nil {
		return fmt.Errorf("%w: interval runs past midnight", ErrInvalidTimeSlot)
	}
	if req.StartTime.IsBefore(window.Open) || end.IsAfter(window.Close) {
		uc.logger.Warn("CreateBooking: %s+%dm outside window %s-%s",
			req.StartTime, totalDuration, window.Open, window.Close)
		return ErrInvalidTimeSlot
	}

	allBreaks, err := uc.scheduleRepo.ListBreaks(ctx)
	if err != nil {
		uc.logger.Error("CreateBooking: failed to list breaks: %v", err)
		return fmt.Errorf("%w: failed to list breaks: %v", ErrInternal, err)
	}
	dayBreaks := domain.BreaksFor(req.Date, allBreaks)
	for i := range dayBreaks {
		br := &dayBreaks[i]
		breakDur, err := br.DurationMinutes()
		if err != nil || breakDur <= 0 {
			continue
		}
		if domain.IntervalsOverlap(req.StartTime, totalDuration, br.StartTime, breakDur) {
			uc.logger.Warn("CreateBooking: %s+%dm overlaps break at %s", req.StartTime, totalDuration, br.StartTime)
			return ErrInvalidTimeSlot
		}
	}

	return nil
}

// checkNotice проверяет дату и минимальный буфер до начала
func (uc *UseCase) checkNotice(req *Request) error {
	now := uc.timeProvider.Now().In(uc.location)

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	reqDay := time.Date(req.Date.Year(), req.Date.Month(), req.Date.Day(), 0, 0, 0, 0, now.Location())

	if reqDay.Before(today) {
		uc.logger.Warn("CreateBooking: date %s is in the past", req.Date.Format(domain.DateFormat))
		return ErrInvalidDate
	}
	if reqDay.After(today) {
		return nil
	}

	minAllowed, err := types.NewTimeString(now).AddMinutes(uc.minNotice)
	if err != nil {
		// Буфер ушел за полночь: сегодня бронировать уже нельзя
		minAllowed = types.TimeString("24:00")
	}
	if req.StartTime.IsBefore(minAllowed) {
		uc.logger.Warn("CreateBooking: start %s is before min allowed %s", req.StartTime, minAllowed)
		return ErrTooLateToBook
	}

	return nil
}

// verifyPayment синхронно проверяет платежный токен через шлюз
func (uc *UseCase) verifyPayment(ctx context.Context, req *Request) error {
	if req.PaymentToken == nil || *req.PaymentToken == "" {
		uc.logger.Warn("CreateBooking: prepago mode requires a payment token")
		return ErrPaymentRequired
	}

	ok, err := uc.gateway.Verify(ctx, *req.PaymentToken)
	if err != nil {
		uc.logger.Error("CreateBooking: payment verification failed: %v", err)
		return fmt.Errorf("%w: payment verification: %v", ErrInternal, err)
	}
	if !ok {
		uc.logger.Warn("CreateBooking: payment not confirmed for token=%s", *req.PaymentToken)
		return ErrPaymentNotConfirmed
	}

	return nil
}

// reserveInTx выполняется внутри serializable-транзакции: читает записи дня
// с блокировкой, назначает ресурс, перепроверяет пересечения и вставляет группу
func (uc *UseCase) reserveInTx(ctx context.Context, req *Request, services []*domain.Service, totalDuration int) ([]*domain.Appointment, error) {
	resourceID, err := uc.assignResource(ctx, req, totalDuration)
	if err != nil {
		return nil, err
	}

	items := uc.buildItems(req, services, resourceID)
	return uc.apptRepo.CreateGroup(ctx, items)
}

// assignResource возвращает ресурс для группы: запрошенный после проверки
// занятости, либо авто-назначенный по наименьшей загрузке дня.
// nil означает режим одного неявного ресурса.
func (uc *UseCase) assignResource(ctx context.Context, req *Request, totalDuration int) (*int64, error) {
	if req.ResourceID != nil {
		res, err := uc.resourceRepo.GetByID(ctx, *req.ResourceID)
		if err != nil {
			if errors.Is(err, resourceRepo.ErrResourceNotFound) {
				return nil, ErrResourceNotFound
			}
			return nil, fmt.Errorf("failed to get resource: %w", err)
		}
		if !res.IsActive {
			return nil, ErrResourceNotFound
		}

		appointments, err := uc.apptRepo.ListByDate(ctx, req.Date, req.ResourceID, false)
		if err != nil {
			return nil, fmt.Errorf("failed to list appointments: %w", err)
		}
		if overlapsAny(appointments, req.StartTime, totalDuration) {
			return nil, ErrOverlapConflict
		}
		return req.ResourceID, nil
	}

	resources, err := uc.resourceRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list resources: %w", err)
	}

	appointments, err := uc.apptRepo.ListByDate(ctx, req.Date, nil, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}

	// Без настроенных ресурсов салон работает как один неявный ресурс
	if len(resources) == 0 {
		if overlapsAny(appointments, req.StartTime, totalDuration) {
			return nil, ErrOverlapConflict
		}
		return nil, nil
	}

	return pickLeastLoaded(resources, appointments, req.StartTime, totalDuration)
}

// buildItems собирает строки группы: по одной записи на услугу,
// последовательно в один непрерывный блок
func (uc *UseCase) buildItems(req *Request, services []*domain.Service, resourceID *int64) []*domain.Appointment {
	groupID := uuid.NewString()
	status := domain.InitialStatus(uc.mode)

	var token *string
	if uc.mode == domain.ModePrepago {
		token = req.PaymentToken
	}

	items := make([]*domain.Appointment, 0, len(services))
	cursor := req.StartTime
	for _, svc := range services {
		item := &domain.Appointment{
			GroupID:         groupID,
			ServiceID:       svc.ID,
			ResourceID:      resourceID,
			Date:            req.Date,
			StartTime:       cursor,
			DurationMinutes: svc.DurationMinutes,
			Status:          status,
			PaymentToken:    token,
			Amount:          svc.Price,
			ServiceName:     svc.Name,
			ClientName:      req.ClientName,
			ClientPhone:     req.ClientPhone,
			Notes:           req.Notes,
		}
		if uc.mode == domain.ModePrepago {
			item.PaidAmount = svc.Price
		}
		items = append(items, item)

		// Длительности валидированы: за полночь блок не выходит
		next, err := cursor.AddMinutes(svc.DurationMinutes)
		if err != nil {
			next = types.TimeString("24:00")
		}
		cursor = next
	}

	return items
}

// overlapsAny проверяет пересечение интервала с активными записями
func overlapsAny(appointments []*domain.Appointment, start types.TimeString, durationMinutes int) bool {
	for _, appt := range appointments {
		if !appt.IsActive() {
			continue
		}
		if appt.Overlaps(start, durationMinutes) {
			return true
		}
	}
	return false
}

// pickLeastLoaded выбирает свободный на интервал ресурс с наименьшей
// суммарной загрузкой дня; при равенстве побеждает порядок выдачи
// (sort_order, затем id)
func pickLeastLoaded(resources []*domain.Resource, appointments []*domain.Appointment, start types.TimeString, durationMinutes int) (*int64, error) {
	byResource := make(map[int64][]*domain.Appointment, len(resources))
	for _, appt := range appointments {
		if appt.ResourceID == nil || !appt.IsActive() {
			continue
		}
		byResource[*appt.ResourceID] = append(byResource[*appt.ResourceID], appt)
	}

	var best *int64
	bestLoad := -1
	for _, res := range resources {
		own := byResource[res.ID]
		if overlapsAny(own, start, durationMinutes) {
			continue
		}

		load := 0
		for _, appt := range own {
			load += appt.DurationMinutes
		}
		if best == nil || load < bestLoad {
			id := res.ID
			best = &id
			bestLoad = load
		}
	}

	if best == nil {
		return nil, ErrNoResourceAvailable
	}
	return best, nil
}
