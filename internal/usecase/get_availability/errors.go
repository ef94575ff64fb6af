package get_availability

import "errors"

var (
	// ErrPropertyNotFound возвращается, когда объект не найден или неактивен
	ErrPropertyNotFound = errors.New("get_availability: property not found")

	// ErrInvalidRange возвращается при некорректном диапазоне дат
	ErrInvalidRange = errors.New("get_availability: invalid date range")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("get_availability: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("get_availability: internal error")
)
