package begin_payment

import (
	beginPayment "github.com/staypoint/STP-ReservationService/internal/usecase/begin_payment"
)

// PaymentSessionResponse HTTP response model
type PaymentSessionResponse struct {
	BookingID  int64  `json:"bookingId"`
	SessionRef string `json:"sessionRef"`
	SessionURL string `json:"sessionUrl"`
	Amount     int64  `json:"amount"` // Сумма к оплате в центах
	Currency   string `json:"currency"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *beginPayment.Response) *PaymentSessionResponse {
	return &PaymentSessionResponse{
		BookingID:  resp.BookingID,
		SessionRef: resp.SessionRef,
		SessionURL: resp.SessionURL,
		Amount:     resp.Amount,
		Currency:   resp.Currency,
	}
}
