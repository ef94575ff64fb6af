package paymentevent

import "errors"

var (
	// ErrDuplicateEvent возвращается при повторной вставке события с тем же
	// event_id (unique constraint) - шлюз доставил событие повторно
	ErrDuplicateEvent = errors.New("paymentevent.repository: event already recorded")

	// ErrEventNotFound возвращается, когда событие не найдено
	ErrEventNotFound = errors.New("paymentevent.repository: event not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("paymentevent.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("paymentevent.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("paymentevent.repository: failed to scan row")
)
