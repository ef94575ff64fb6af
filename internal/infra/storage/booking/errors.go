package booking

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("booking.repository: booking not found")

	// ErrRangeConflict возвращается, когда диапазон дат уже занят активным
	// бронированием (exclusion constraint на уровне БД)
	ErrRangeConflict = errors.New("booking.repository: date range conflicts with an active booking")

	// ErrStaleState возвращается, когда условный UPDATE не изменил ни одной строки:
	// переход нелегален из текущего состояния брони
	ErrStaleState = errors.New("booking.repository: transition not legal from current state")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("booking.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("booking.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("booking.repository: failed to scan row")
)
