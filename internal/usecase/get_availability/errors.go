package get_availability

import "errors"

var (
	// ErrServiceNotFound возвращается, когда услуга не найдена
	ErrServiceNotFound = errors.New("get_availability: service not found")

	// ErrServiceInactive возвращается, когда услуга отключена
	ErrServiceInactive = errors.New("get_availability: service is inactive")

	// ErrResourceNotFound возвращается, когда ресурс не найден или неактивен
	ErrResourceNotFound = errors.New("get_availability: resource not found")

	// ErrInvalidDate возвращается при запросе слотов на прошедшую дату
	ErrInvalidDate = errors.New("get_availability: invalid date")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("get_availability: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("get_availability: internal error")
)
