package reservations

import "errors"

var (
	// ErrGroupNotFound возвращается, когда группа бронирования не найдена
	ErrGroupNotFound = errors.New("booking group not found")

	// ErrInvalidState возвращается, когда событие неприменимо к текущему
	// статусу группы в активном режиме бронирования
	ErrInvalidState = errors.New("invalid state for this operation")

	// ErrExpiredHold возвращается при попытке оплатить истекший hold
	ErrExpiredHold = errors.New("payment hold has expired")

	// ErrPaymentNotConfirmed возвращается, когда шлюз не подтвердил оплату
	ErrPaymentNotConfirmed = errors.New("payment not confirmed")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
