package cancel_booking

import (
	cancelBooking "github.com/staypoint/STP-ReservationService/internal/usecase/cancel_booking"
)

// CancelBookingRequest HTTP request model
type CancelBookingRequest struct {
	Reason string `json:"reason"`
}

// CancelBookingResponse HTTP response model
type CancelBookingResponse struct {
	BookingID    int64   `json:"bookingId"`
	Status       string  `json:"status"`
	Payment      string  `json:"payment"`
	RefundAmount *int64  `json:"refundAmount,omitempty"` // Центы
	RefundRef    *string `json:"refundRef,omitempty"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *cancelBooking.Response) *CancelBookingResponse {
	return &CancelBookingResponse{
		BookingID:    resp.BookingID,
		Status:       resp.Status,
		Payment:      resp.Payment,
		RefundAmount: resp.RefundAmount,
		RefundRef:    resp.RefundRef,
	}
}
