package cancel_booking

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("cancel_booking: booking not found")

	// ErrAccessDenied возвращается, когда бронирование принадлежит другому гостю
	ErrAccessDenied = errors.New("cancel_booking: booking belongs to another guest")

	// ErrCannotCancel возвращается, когда бронирование уже завершено
	// или отменено
	ErrCannotCancel = errors.New("cancel_booking: booking cannot be cancelled")

	// ErrGateway возвращается при ошибке возврата на стороне шлюза.
	// Отмена в этом случае не применяется: бронь остаётся оплаченной
	ErrGateway = errors.New("cancel_booking: payment gateway error")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("cancel_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("cancel_booking: internal error")
)
