package begin_payment

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("begin_payment: booking not found")

	// ErrAccessDenied возвращается, когда бронирование принадлежит другому гостю
	ErrAccessDenied = errors.New("begin_payment: booking belongs to another guest")

	// ErrAlreadyPaid возвращается, когда оплата уже прошла
	ErrAlreadyPaid = errors.New("begin_payment: booking is already paid")

	// ErrNotPayable возвращается, когда бронирование не в состоянии,
	// допускающем оплату (отменено, завершено)
	ErrNotPayable = errors.New("begin_payment: booking is not payable")

	// ErrGateway возвращается при ошибке платёжного шлюза
	ErrGateway = errors.New("begin_payment: payment gateway error")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("begin_payment: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("begin_payment: internal error")
)
