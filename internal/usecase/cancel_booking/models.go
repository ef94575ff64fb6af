package cancel_booking

import "github.com/staypoint/STP-ReservationService/internal/domain"

// Request модель запроса на отмену бронирования
type Request struct {
	BookingID int64              // ID бронирования
	GuestID   int64              // ID гостя; проверяется только при Actor=guest
	Actor     domain.CancelActor // Кто инициировал отмену
	Reason    string             // Причина отмены
}

// Response результат отмены
type Response struct {
	BookingID    int64
	Status       string
	Payment      string
	RefundAmount *int64 // Сумма возврата в центах, если возврат был
	RefundRef    *string
}
