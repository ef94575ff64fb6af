package create_booking

import "errors"

var (
	// ErrPropertyNotFound возвращается, когда объект не найден или неактивен
	ErrPropertyNotFound = errors.New("create_booking: property not found")

	// ErrDatesUnavailable возвращается, когда запрошенный диапазон пересекается
	// с существующей бронью, держащей календарь
	ErrDatesUnavailable = errors.New("create_booking: dates are not available")

	// ErrInvalidRange возвращается при некорректном диапазоне дат
	ErrInvalidRange = errors.New("create_booking: invalid date range")

	// ErrGuestCountExceeded возвращается при превышении вместимости объекта
	ErrGuestCountExceeded = errors.New("create_booking: guest count exceeds property capacity")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)

// DatesUnavailableError несет занятые поддиапазоны вместе с отказом,
// чтобы вызывающая сторона могла предложить альтернативные даты.
// Разворачивается в ErrDatesUnavailable
type DatesUnavailableError struct {
	Conflicts []ConflictingRange
}

func (e *DatesUnavailableError) Error() string {
	return ErrDatesUnavailable.Error()
}

func (e *DatesUnavailableError) Unwrap() error {
	return ErrDatesUnavailable
}
