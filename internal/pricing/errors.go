package pricing

import "errors"

var (
	// ErrInvalidRange возвращается при некорректном диапазоне дат
	// (check-in >= check-out, ночей меньше минимума или больше максимума, заезд в прошлом)
	ErrInvalidRange = errors.New("pricing: invalid date range")

	// ErrGuestCountExceeded возвращается, когда гостей больше, чем допускает объект
	ErrGuestCountExceeded = errors.New("pricing: guest count exceeds property maximum")
)
