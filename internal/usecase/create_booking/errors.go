package create_booking

import "errors"

var (
	// ErrServiceNotFound возвращается, когда услуга не найдена
	ErrServiceNotFound = errors.New("create_booking: service not found")

	// ErrServiceInactive возвращается, когда услуга отключена
	ErrServiceInactive = errors.New("create_booking: service is inactive")

	// ErrResourceNotFound возвращается, когда запрошенный ресурс не найден или неактивен
	ErrResourceNotFound = errors.New("create_booking: resource not found")

	// ErrInvalidDate возвращается при некорректной дате бронирования
	ErrInvalidDate = errors.New("create_booking: invalid booking date")

	// ErrClosedDay возвращается, когда салон закрыт в указанную дату
	// (нерабочий день или датированное исключение)
	ErrClosedDay = errors.New("create_booking: closed on this date")

	// ErrInvalidTimeSlot возвращается, когда время вне рабочего окна
	// или пересекается с перерывом
	ErrInvalidTimeSlot = errors.New("create_booking: invalid time slot")

	// ErrTooLateToBook возвращается, когда нарушен минимальный буфер до начала
	ErrTooLateToBook = errors.New("create_booking: too late to book this slot")

	// ErrOverlapConflict возвращается при проигранной гонке за интервал:
	// выбранный ресурс уже занят в запрошенное время
	ErrOverlapConflict = errors.New("create_booking: interval overlaps an existing appointment")

	// ErrNoResourceAvailable возвращается, когда авто-назначение не нашло
	// свободного ресурса на интервал
	ErrNoResourceAvailable = errors.New("create_booking: no resource available for the interval")

	// ErrPaymentRequired возвращается в режиме prepago без платежного токена
	ErrPaymentRequired = errors.New("create_booking: payment token required")

	// ErrPaymentNotConfirmed возвращается, когда шлюз не подтвердил оплату
	ErrPaymentNotConfirmed = errors.New("create_booking: payment not confirmed")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)
