package process_webhook

import "errors"

var (
	// ErrInvalidSignature возвращается при невалидной подписи вебхука.
	// Событие не записывается в журнал
	ErrInvalidSignature = errors.New("process_webhook: invalid webhook signature")

	// ErrInvalidPayload возвращается, когда тело события не парсится
	ErrInvalidPayload = errors.New("process_webhook: invalid event payload")

	// ErrRetryable возвращается, когда событие записано, но применить его
	// сейчас нельзя (бронь не найдена, временная ошибка БД). Шлюзу отдается
	// 5xx, чтобы он доставил событие повторно
	ErrRetryable = errors.New("process_webhook: transient failure, retry delivery")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("process_webhook: internal error")
)
