package lifecycle

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("lifecycle: booking not found")

	// ErrAmountMismatch возвращается, когда оплаченная сумма не совпадает
	// с зафиксированной квотой. Никогда не разрешается автоматически:
	// бронь остаётся в прежнем состоянии до ручного разбора
	ErrAmountMismatch = errors.New("lifecycle: paid amount does not match booking total")

	// ErrStaleTransition возвращается, когда запрошенный переход нелегален
	// из текущего состояния (например, failPayment после succeeded).
	// Для вебхуков это не ошибка доставки: событие логируется и отбрасывается
	ErrStaleTransition = errors.New("lifecycle: transition not legal from current state")

	// ErrRefundRequired возвращается при попытке отменить оплаченную бронь
	// без шага возврата
	ErrRefundRequired = errors.New("lifecycle: paid booking requires a refund before cancellation")

	// ErrCannotCancel возвращается, когда бронирование не может быть отменено
	ErrCannotCancel = errors.New("lifecycle: booking cannot be cancelled")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("lifecycle: internal error")
)
