package catalog

import "errors"

var (
	// ErrPropertyNotFound возвращается, когда объект не найден в каталоге
	ErrPropertyNotFound = errors.New("catalog client: property not found")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("catalog client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("catalog client: invalid response")
)
