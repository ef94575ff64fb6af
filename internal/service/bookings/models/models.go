package models

import (
	"fmt"
	"time"

	"github.com/staypoint/STP-ReservationService/internal/domain"
)

// GetGuestBookingsRequest запрос истории бронирований гостя
type GetGuestBookingsRequest struct {
	GuestID int64
	Status  *string // Опциональный фильтр по статусу
}

// BookingResponse модель бронирования для выдачи клиенту
type BookingResponse struct {
	ID         int64  `json:"id"`
	PropertyID int64  `json:"propertyId"`
	GuestID    int64  `json:"guestId"`
	GuestName  string `json:"guestName"`
	CheckIn    string `json:"checkIn"`  // "2026-09-01"
	CheckOut   string `json:"checkOut"` // "2026-09-04"
	Guests     int    `json:"guests"`

	Status  string `json:"status"`
	Payment string `json:"payment"`

	// Зафиксированная квота, суммы в центах
	NightlyRate int64  `json:"nightlyRate"`
	CleaningFee int64  `json:"cleaningFee"`
	ServiceFee  int64  `json:"serviceFee"`
	TotalAmount int64  `json:"totalAmount"`
	Currency    string `json:"currency"`

	RefundAmount       *int64  `json:"refundAmount,omitempty"`
	CancellationReason *string `json:"cancellationReason,omitempty"`

	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// BookingListResponse список бронирований гостя
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

// FromDomainBooking конвертирует доменную модель в ответ API
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	return &BookingResponse{
		ID:                 b.ID,
		PropertyID:         b.PropertyID,
		GuestID:            b.GuestID,
		GuestName:          b.GuestName,
		CheckIn:            b.CheckIn.Format(domain.DateFormat),
		CheckOut:           b.CheckOut.Format(domain.DateFormat),
		Guests:             b.Guests,
		Status:             string(b.Status),
		Payment:            string(b.PaymentStatus),
		NightlyRate:        b.NightlyRate,
		CleaningFee:        b.CleaningFee,
		ServiceFee:         b.ServiceFee,
		TotalAmount:        b.TotalAmount,
		Currency:           b.Currency,
		RefundAmount:       b.RefundAmount,
		CancellationReason: b.CancellationReason,
		CreatedAt:          b.CreatedAt.Format(time.RFC3339),
		UpdatedAt:          b.UpdatedAt.Format(time.RFC3339),
	}
}

// FromDomainBookings конвертирует список доменных моделей
func FromDomainBookings(list []*domain.Booking) *BookingListResponse {
	out := make([]BookingResponse, 0, len(list))
	for _, b := range list {
		out = append(out, *FromDomainBooking(b))
	}
	return &BookingListResponse{Bookings: out}
}

// ToDomainBookingStatus конвертирует строку в доменный статус бронирования
func ToDomainBookingStatus(status string) (domain.BookingStatus, error) {
	switch domain.BookingStatus(status) {
	case domain.StatusPending, domain.StatusConfirmed, domain.StatusCancelled, domain.StatusCompleted:
		return domain.BookingStatus(status), nil
	default:
		return "", fmt.Errorf("unknown booking status: %s", status)
	}
}
