package begin_payment

// Request модель запроса на старт оплаты
type Request struct {
	BookingID int64 // ID бронирования
	GuestID   int64 // ID гостя (владельца брони)
}

// Response платёжная сессия для редиректа гостя
type Response struct {
	BookingID  int64
	SessionRef string
	SessionURL string
	Amount     int64 // Сумма к оплате в центах
	Currency   string
}
