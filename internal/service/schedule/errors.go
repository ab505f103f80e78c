package schedule

import "errors"

var (
	// ErrNotFound возвращается, когда запись календаря не найдена
	ErrNotFound = errors.New("schedule entry not found")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
