package create_quote

import "errors"

var (
	// ErrPropertyNotFound возвращается, когда объект не найден или неактивен
	ErrPropertyNotFound = errors.New("create_quote: property not found")

	// ErrInvalidRange возвращается при некорректном диапазоне дат
	ErrInvalidRange = errors.New("create_quote: invalid date range")

	// ErrGuestCountExceeded возвращается при превышении вместимости объекта
	ErrGuestCountExceeded = errors.New("create_quote: guest count exceeds property capacity")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_quote: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_quote: internal error")
)
