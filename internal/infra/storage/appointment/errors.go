package appointment

import "errors"

var (
	// ErrGroupNotFound возвращается, когда группа бронирования не найдена
	ErrGroupNotFound = errors.New("appointment.repository: booking group not found")

	// ErrGroupStateChanged возвращается, когда условное обновление не затронуло
	// ни одной строки: статус группы изменился между чтением и записью
	ErrGroupStateChanged = errors.New("appointment.repository: group state changed")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("appointment.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("appointment.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("appointment.repository: failed to scan row")
)
