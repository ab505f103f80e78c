package models

import (
	"time"

	"github.com/m04kA/agenda-core/internal/domain"
	"github.com/m04kA/agenda-core/pkg/types"
)

// Request модели

// UpsertBusinessHourRequest запрос на установку рабочих часов дня недели
type UpsertBusinessHourRequest struct {
	DayOfWeek int    `json:"dayOfWeek"` // 0 = воскресенье ... 6 = суббота
	StartTime string `json:"startTime"` // "09:00"
	EndTime   string `json:"endTime"`   // "18:00"
	IsActive  bool   `json:"isActive"`
}

// ToDomain конвертирует request в domain модель
func (r *UpsertBusinessHourRequest) ToDomain() *domain.BusinessHour {
	return &domain.BusinessHour{
		DayOfWeek: time.Weekday(r.DayOfWeek),
		StartTime: types.TimeString(r.StartTime),
		EndTime:   types.TimeString(r.EndTime),
		IsActive:  r.IsActive,
	}
}

// CreateBreakRequest запрос на создание повторяющегося перерыва
type CreateBreakRequest struct {
	StartTime      string `json:"startTime"`
	EndTime        string `json:"endTime"`
	RecurrenceType string `json:"recurrenceType"`         // daily | specific_days
	SpecificDays   []int  `json:"specificDays,omitempty"` // для specific_days
}

// ToDomain конвертирует request в domain модель
func (r *CreateBreakRequest) ToDomain() *domain.RecurringBreak {
	days := make([]time.Weekday, 0, len(r.SpecificDays))
	for _, d := range r.SpecificDays {
		days = append(days, time.Weekday(d))
	}
	return &domain.RecurringBreak{
		StartTime:      types.TimeString(r.StartTime),
		EndTime:        types.TimeString(r.EndTime),
		RecurrenceType: domain.BreakRecurrence(r.RecurrenceType),
		SpecificDays:   days,
	}
}

// CreateExceptionRequest запрос на создание датированного исключения
type CreateExceptionRequest struct {
	StartDate        string  `json:"startDate"` // "2026-03-15"
	EndDate          string  `json:"endDate"`
	Type             string  `json:"type"` // day_off | vacation | holiday | special_hours
	SpecialStartTime *string `json:"specialStartTime,omitempty"`
	SpecialEndTime   *string `json:"specialEndTime,omitempty"`
	Reason           *string `json:"reason,omitempty"`
}

// Response модели

// BusinessHourResponse рабочие часы одного дня недели
type BusinessHourResponse struct {
	ID        int64  `json:"id"`
	DayOfWeek int    `json:"dayOfWeek"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	IsActive  bool   `json:"isActive"`
}

// BreakResponse повторяющийся перерыв
type BreakResponse struct {
	ID             int64  `json:"id"`
	StartTime      string `json:"startTime"`
	EndTime        string `json:"endTime"`
	RecurrenceType string `json:"recurrenceType"`
	SpecificDays   []int  `json:"specificDays,omitempty"`
}

// ExceptionResponse датированное исключение
type ExceptionResponse struct {
	ID               int64   `json:"id"`
	StartDate        string  `json:"startDate"`
	EndDate          string  `json:"endDate"`
	Type             string  `json:"type"`
	SpecialStartTime *string `json:"specialStartTime,omitempty"`
	SpecialEndTime   *string `json:"specialEndTime,omitempty"`
	Reason           *string `json:"reason,omitempty"`
}

// ScheduleResponse полная конфигурация календаря
type ScheduleResponse struct {
	BusinessHours []BusinessHourResponse `json:"businessHours"`
	Breaks        []BreakResponse        `json:"breaks"`
	Exceptions    []ExceptionResponse    `json:"exceptions"`
}

// FromDomainBusinessHour конвертирует domain модель в response
func FromDomainBusinessHour(bh *domain.BusinessHour) *BusinessHourResponse {
	return &BusinessHourResponse{
		ID:        bh.ID,
		DayOfWeek: int(bh.DayOfWeek),
		StartTime: string(bh.StartTime),
		EndTime:   string(bh.EndTime),
		IsActive:  bh.IsActive,
	}
}

// FromDomainBreak конвертирует domain модель в response
func FromDomainBreak(b *domain.RecurringBreak) *BreakResponse {
	days := make([]int, 0, len(b.SpecificDays))
	for _, d := range b.SpecificDays {
		days = append(days, int(d))
	}
	return &BreakResponse{
		ID:             b.ID,
		StartTime:      string(b.StartTime),
		EndTime:        string(b.EndTime),
		RecurrenceType: string(b.RecurrenceType),
		SpecificDays:   days,
	}
}

// FromDomainException конвертирует domain модель в response
func FromDomainException(e *domain.ScheduleException) *ExceptionResponse {
	resp := &ExceptionResponse{
		ID:        e.ID,
		StartDate: e.StartDate.Format(domain.DateFormat),
		EndDate:   e.EndDate.Format(domain.DateFormat),
		Type:      string(e.Type),
		Reason:    e.Reason,
	}
	if e.SpecialStartTime != nil {
		s := string(*e.SpecialStartTime)
		resp.SpecialStartTime = &s
	}
	if e.SpecialEndTime != nil {
		s := string(*e.SpecialEndTime)
		resp.SpecialEndTime = &s
	}
	return resp
}

// FromDomainSchedule собирает полный response конфигурации календаря
func FromDomainSchedule(hours []domain.BusinessHour, breaks []domain.RecurringBreak, exceptions []domain.ScheduleException) *ScheduleResponse {
	resp := &ScheduleResponse{
		BusinessHours: make([]BusinessHourResponse, 0, len(hours)),
		Breaks:        make([]BreakResponse, 0, len(breaks)),
		Exceptions:    make([]ExceptionResponse, 0, len(exceptions)),
	}
	for i := range hours {
		resp.BusinessHours = append(resp.BusinessHours, *FromDomainBusinessHour(&hours[i]))
	}
	for i := range breaks {
		resp.Breaks = append(resp.Breaks, *FromDomainBreak(&breaks[i]))
	}
	for i := range exceptions {
		resp.Exceptions = append(resp.Exceptions, *FromDomainException(&exceptions[i]))
	}
	return resp
}
