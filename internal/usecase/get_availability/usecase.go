package get_availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/agenda-core/internal/domain"
	catalogRepo "github.com/m04kA/agenda-core/internal/infra/storage/catalog"
	resourceRepo "github.com/m04kA/agenda-core/internal/infra/storage/resource"
	"github.com/m04kA/agenda-core/pkg/types"
)

// UseCase use case получения доступных слотов.
// Объединяет генератор слотов (рабочие часы, перерывы, исключения) и
// резолвер занятости по одному или всем ресурсам.
type UseCase struct {
	apptRepo     AppointmentRepository
	scheduleRepo ScheduleRepository
	resourceRepo ResourceRepository
	catalogRepo  ServiceRepository
	timeProvider TimeProvider
	location     *time.Location
	cadence      int // шаг сетки слотов в минутах
	minNotice    int // буфер "уже поздно" для сегодняшних слотов
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	apptRepo AppointmentRepository,
	scheduleRepo ScheduleRepository,
	resourceRepo ResourceRepository,
	catalogRepo ServiceRepository,
	location *time.Location,
	cadenceMinutes int,
	minNoticeMinutes int,
	logger Logger,
) *UseCase {
	return &UseCase{
		apptRepo:     apptRepo,
		scheduleRepo: scheduleRepo,
		resourceRepo: resourceRepo,
		catalogRepo:  catalogRepo,
		timeProvider: &RealTimeProvider{},
		location:     location,
		cadence:      cadenceMinutes,
		minNotice:    minNoticeMinutes,
		logger:       logger,
	}
}

// Execute выполняет use case получения доступных слотов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailability: date=%s, resource=%v, services=%v",
		req.Date.Format(domain.DateFormat), req.ResourceID, req.ServiceIDs)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailability: validation failed: %v", err)
		return nil, err
	}

	// 2. Текущее время в таймзоне бизнеса
	now := uc.timeProvider.Now().In(uc.location)

	if isDateInPast(req.Date, now) {
		uc.logger.Warn("GetAvailability: date %s is in the past", req.Date.Format(domain.DateFormat))
		return nil, ErrInvalidDate
	}

	// 3. Услуги: существование, активность, суммарная длительность
	services, err := uc.catalogRepo.GetByIDs(ctx, req.ServiceIDs)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrServiceNotFound) {
			uc.logger.Warn("GetAvailability: service not found: %v", err)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("GetAvailability: failed to get services: %v", err)
		return nil, fmt.Errorf("%w: failed to get services: %v", ErrInternal, err)
	}

	totalDuration, err := validateServices(services)
	if err != nil {
		uc.logger.Warn("GetAvailability: %v", err)
		return nil, err
	}

	// 4. Эффективное окно дня: исключения перекрывают рабочие часы
	window, err := uc.effectiveWindow(ctx, req.Date)
	if err != nil {
		return nil, err
	}
	if window.Closed {
		uc.logger.Info("GetAvailability: closed on %s", req.Date.Format(domain.DateFormat))
		return &Response{
			Date:            req.Date,
			ResourceID:      req.ResourceID,
			ServiceIDs:      req.ServiceIDs,
			DurationMinutes: totalDuration,
			Closed:          true,
			Slots:           []Slot{},
		}, nil
	}

	// 5. Применимые перерывы дня
	allBreaks, err := uc.scheduleRepo.ListBreaks(ctx)
	if err != nil {
		uc.logger.Error("GetAvailability: failed to list breaks: %v", err)
		return nil, fmt.Errorf("%w: failed to list breaks: %v", ErrInternal, err)
	}
	dayBreaks := domain.BreaksFor(req.Date, allBreaks)

	// 6. Генерация кандидатов
	minAllowed, err := types.NewTimeString(now).AddMinutes(uc.minNotice)
	if err != nil {
		// Буфер ушел за полночь: все сегодняшние слоты уже в прошлом
		minAllowed = types.TimeString("24:00")
	}

	slots, err := generateSlots(window, dayBreaks, totalDuration, uc.cadence, isSameDay(req.Date, now), minAllowed)
	if err != nil {
		uc.logger.Error("GetAvailability: failed to generate slots: %v", err)
		return nil, fmt.Errorf("%w: failed to generate slots: %v", ErrInternal, err)
	}

	// 7. Разрешение занятости по записям
	if err := uc.resolveOccupancy(ctx, req, totalDuration, slots); err != nil {
		return nil, err
	}

	uc.logger.Info("GetAvailability: generated %d slots for %s", len(slots), req.Date.Format(domain.DateFormat))

	return &Response{
		Date:            req.Date,
		ResourceID:      req.ResourceID,
		ServiceIDs:      req.ServiceIDs,
		DurationMinutes: totalDuration,
		Slots:           slots,
	}, nil
}

func (uc *UseCase) effectiveWindow(ctx context.Context, date time.Time) (domain.DayWindow, error) {
	hours, err := uc.scheduleRepo.GetBusinessHours(ctx)
	if err != nil {
		uc.logger.Error("GetAvailability: failed to get business hours: %v", err)
		return domain.DayWindow{}, fmt.Errorf("%w: failed to get business hours: %v", ErrInternal, err)
	}

	exceptions, err := uc.scheduleRepo.ListExceptionsCovering(ctx, date)
	if err != nil {
		uc.logger.Error("GetAvailability: failed to get exceptions: %v", err)
		return domain.DayWindow{}, fmt.Errorf("%w: failed to get exceptions: %v", ErrInternal, err)
	}

	return domain.EffectiveHours(date, hours, exceptions), nil
}

func (uc *UseCase) resolveOccupancy(ctx context.Context, req *Request, totalDuration int, slots []Slot) error {
	// Именованный ресурс: фильтруем только по его записям
	if req.ResourceID != nil {
		res, err := uc.resourceRepo.GetByID(ctx, *req.ResourceID)
		if err != nil {
			if errors.Is(err, resourceRepo.ErrResourceNotFound) {
				uc.logger.Warn("GetAvailability: resource id=%d not found", *req.ResourceID)
				return ErrResourceNotFound
			}
			uc.logger.Error("GetAvailability: failed to get resource id=%d: %v", *req.ResourceID, err)
			return fmt.Errorf("%w: failed to get resource: %v", ErrInternal, err)
		}
		if !res.IsActive {
			uc.logger.Warn("GetAvailability: resource id=%d is inactive", *req.ResourceID)
			return ErrResourceNotFound
		}

		appointments, err := uc.apptRepo.ListByDate(ctx, req.Date, req.ResourceID, false)
		if err != nil {
			uc.logger.Error("GetAvailability: failed to list appointments: %v", err)
			return fmt.Errorf("%w: failed to list appointments: %v", ErrInternal, err)
		}

		markBookedForResource(slots, totalDuration, appointments)
		return nil
	}

	// Режим "любой ресурс"
	resources, err := uc.resourceRepo.ListActive(ctx)
	if err != nil {
		uc.logger.Error("GetAvailability: failed to list resources: %v", err)
		return fmt.Errorf("%w: failed to list resources: %v", ErrInternal, err)
	}

	appointments, err := uc.apptRepo.ListByDate(ctx, req.Date, nil, false)
	if err != nil {
		uc.logger.Error("GetAvailability: failed to list appointments: %v", err)
		return fmt.Errorf("%w: failed to list appointments: %v", ErrInternal, err)
	}

	// Без настроенных ресурсов салон работает как один неявный ресурс
	if len(resources) == 0 {
		markBookedForResource(slots, totalDuration, appointments)
		return nil
	}

	markBookedAnyResource(slots, totalDuration, resources, appointments)
	return nil
}
