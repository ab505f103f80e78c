package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/agenda-core/internal/domain"
	scheduleRepo "github.com/m04kA/agenda-core/internal/infra/storage/schedule"
	"github.com/m04kA/agenda-core/internal/service/schedule/models"
	"github.com/m04kA/agenda-core/pkg/types"
)

// Service сервис конфигурации календаря: рабочие часы по дням недели,
// повторяющиеся перерывы и датированные исключения
type Service struct {
	scheduleRepo ScheduleRepository
	logger       Logger
}

// NewService создает новый экземпляр сервиса календаря
func NewService(scheduleRepo ScheduleRepository, logger Logger) *Service {
	return &Service{
		scheduleRepo: scheduleRepo,
		logger:       logger,
	}
}

// Get возвращает полную конфигурацию календаря
func (s *Service) Get(ctx context.Context) (*models.ScheduleResponse, error) {
	s.logger.Info("Get: fetching schedule configuration")

	hours, err := s.scheduleRepo.GetBusinessHours(ctx)
	if err != nil {
		s.logger.Error("Get: failed to get business hours: %v", err)
		return nil, fmt.Errorf("%w: Get - business hours: %v", ErrInternal, err)
	}

	breaks, err := s.scheduleRepo.ListBreaks(ctx)
	if err != nil {
		s.logger.Error("Get: failed to list breaks: %v", err)
		return nil, fmt.Errorf("%w: Get - breaks: %v", ErrInternal, err)
	}

	exceptions, err := s.scheduleRepo.ListExceptions(ctx)
	if err != nil {
		s.logger.Error("Get: failed to list exceptions: %v", err)
		return nil, fmt.Errorf("%w: Get - exceptions: %v", ErrInternal, err)
	}

	return models.FromDomainSchedule(hours, breaks, exceptions), nil
}

// UpsertBusinessHour устанавливает рабочие часы для дня недели
func (s *Service) UpsertBusinessHour(ctx context.Context, req *models.UpsertBusinessHourRequest) (*models.BusinessHourResponse, error) {
	s.logger.Info("UpsertBusinessHour: day=%d, %s-%s, active=%v", req.DayOfWeek, req.StartTime, req.EndTime, req.IsActive)

	if req.DayOfWeek < 0 || req.DayOfWeek > 6 {
		return nil, fmt.Errorf("%w: dayOfWeek must be 0..6", ErrInvalidInput)
	}
	if err := validateTimeWindow(req.StartTime, req.EndTime); err != nil {
		s.logger.Warn("UpsertBusinessHour: %v", err)
		return nil, err
	}

	saved, err := s.scheduleRepo.UpsertBusinessHour(ctx, req.ToDomain())
	if err != nil {
		s.logger.Error("UpsertBusinessHour: repository error: %v", err)
		return nil, fmt.Errorf("%w: UpsertBusinessHour - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("UpsertBusinessHour: saved day=%d id=%d", req.DayOfWeek, saved.ID)
	return models.FromDomainBusinessHour(saved), nil
}

// CreateBreak создает повторяющийся перерыв
func (s *Service) CreateBreak(ctx context.Context, req *models.CreateBreakRequest) (*models.BreakResponse, error) {
	s.logger.Info("CreateBreak: %s-%s, recurrence=%s", req.StartTime, req.EndTime, req.RecurrenceType)

	if err := validateTimeWindow(req.StartTime, req.EndTime); err != nil {
		s.logger.Warn("CreateBreak: %v", err)
		return nil, err
	}

	switch domain.BreakRecurrence(req.RecurrenceType) {
	case domain.RecurrenceDaily:
	case domain.RecurrenceSpecificDays:
		if len(req.SpecificDays) == 0 {
			return nil, fmt.Errorf("%w: specificDays is required for specific_days recurrence", ErrInvalidInput)
		}
		for _, d := range req.SpecificDays {
			if d < 0 || d > 6 {
				return nil, fmt.Errorf("%w: specificDays values must be 0..6", ErrInvalidInput)
			}
		}
	default:
		return nil, fmt.Errorf("%w: unknown recurrence type %q", ErrInvalidInput, req.RecurrenceType)
	}

	created, err := s.scheduleRepo.CreateBreak(ctx, req.ToDomain())
	if err != nil {
		s.logger.Error("CreateBreak: repository error: %v", err)
		return nil, fmt.Errorf("%w: CreateBreak - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("CreateBreak: created id=%d", created.ID)
	return models.FromDomainBreak(created), nil
}

// DeleteBreak удаляет повторяющийся перерыв
func (s *Service) DeleteBreak(ctx context.Context, id int64) error {
	s.logger.Info("DeleteBreak: id=%d", id)

	if err := s.scheduleRepo.DeleteBreak(ctx, id); err != nil {
		if errors.Is(err, scheduleRepo.ErrNotFound) {
			s.logger.Warn("DeleteBreak: id=%d not found", id)
			return ErrNotFound
		}
		s.logger.Error("DeleteBreak: repository error for id=%d: %v", id, err)
		return fmt.Errorf("%w: DeleteBreak - repository error: %v", ErrInternal, err)
	}
	return nil
}

// CreateException создает датированное исключение
func (s *Service) CreateException(ctx context.Context, req *models.CreateExceptionRequest) (*models.ExceptionResponse, error) {
	s.logger.Info("CreateException: %s..%s, type=%s", req.StartDate, req.EndDate, req.Type)

	exc, err := s.buildException(req)
	if err != nil {
		s.logger.Warn("CreateException: %v", err)
		return nil, err
	}

	created, err := s.scheduleRepo.CreateException(ctx, exc)
	if err != nil {
		s.logger.Error("CreateException: repository error: %v", err)
		return nil, fmt.Errorf("%w: CreateException - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("CreateException: created id=%d", created.ID)
	return models.FromDomainException(created), nil
}

// DeleteException удаляет датированное исключение
func (s *Service) DeleteException(ctx context.Context, id int64) error {
	s.logger.Info("DeleteException: id=%d", id)

	if err := s.scheduleRepo.DeleteException(ctx, id); err != nil {
		if errors.Is(err, scheduleRepo.ErrNotFound) {
			s.logger.Warn("DeleteException: id=%d not found", id)
			return ErrNotFound
		}
		s.logger.Error("DeleteException: repository error for id=%d: %v", id, err)
		return fmt.Errorf("%w: DeleteException - repository error: %v", ErrInternal, err)
	}
	return nil
}

// Вспомогательные методы

func (s *Service) buildException(req *models.CreateExceptionRequest) (*domain.ScheduleException, error) {
	startDate, err := time.Parse(domain.DateFormat, req.StartDate)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid startDate", ErrInvalidInput)
	}
	endDate, err := time.Parse(domain.DateFormat, req.EndDate)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid endDate", ErrInvalidInput)
	}
	if endDate.Before(startDate) {
		return nil, fmt.Errorf("%w: endDate before startDate", ErrInvalidInput)
	}

	excType := domain.ExceptionType(req.Type)
	exc := &domain.ScheduleException{
		StartDate: startDate,
		EndDate:   endDate,
		Type:      excType,
		Reason:    req.Reason,
	}

	switch {
	case excType.ClosesDay():
		// Закрывающие типы игнорируют special-часы
	case excType == domain.ExceptionSpecialHours:
		if req.SpecialStartTime == nil || req.SpecialEndTime == nil {
			return nil, fmt.Errorf("%w: special_hours requires specialStartTime and specialEndTime", ErrInvalidInput)
		}
		if err := validateTimeWindow(*req.SpecialStartTime, *req.SpecialEndTime); err != nil {
			return nil, err
		}
		start := types.TimeString(*req.SpecialStartTime)
		end := types.TimeString(*req.SpecialEndTime)
		exc.SpecialStartTime = &start
		exc.SpecialEndTime = &end
	default:
		return nil, fmt.Errorf("%w: unknown exception type %q", ErrInvalidInput, req.Type)
	}

	return exc, nil
}

func validateTimeWindow(start, end string) error {
	startTS := types.TimeString(start)
	endTS := types.TimeString(end)
	if err := startTS.Validate(); err != nil {
		return fmt.Errorf("%w: startTime: %v", ErrInvalidInput, err)
	}
	// "24:00" допускается как конец дня
	if endTS != types.TimeString("24:00") {
		if err := endTS.Validate(); err != nil {
			return fmt.Errorf("%w: endTime: %v", ErrInvalidInput, err)
		}
	}
	if !startTS.IsBefore(endTS) {
		return fmt.Errorf("%w: startTime must be before endTime", ErrInvalidInput)
	}
	return nil
}
