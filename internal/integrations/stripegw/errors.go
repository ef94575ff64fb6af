package stripegw

import "errors"

var (
	// ErrInvalidSignature возвращается, когда подпись вебхука не прошла проверку
	ErrInvalidSignature = errors.New("stripegw: webhook signature verification failed")

	// ErrInvalidPayload возвращается при нечитаемом теле события
	ErrInvalidPayload = errors.New("stripegw: invalid event payload")

	// ErrGateway возвращается при ошибках вызова Stripe API
	ErrGateway = errors.New("stripegw: gateway request failed")
)
