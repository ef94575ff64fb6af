package create_booking

import (
	"net/http"
	"time"

	"github.com/staypoint/STP-ReservationService/internal/domain"
	createBooking "github.com/staypoint/STP-ReservationService/internal/usecase/create_booking"
)

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	PropertyID int64  `json:"propertyId"`
	GuestName  string `json:"guestName"`
	GuestEmail string `json:"guestEmail"`
	CheckIn    string `json:"checkIn"`  // "2026-09-01"
	CheckOut   string `json:"checkOut"` // "2026-09-04"
	Guests     int    `json:"guests"`
}

// BookingResponse HTTP response model
type BookingResponse struct {
	ID         int64  `json:"id"`
	PropertyID int64  `json:"propertyId"`
	GuestID    int64  `json:"guestId"`
	CheckIn    string `json:"checkIn"`
	CheckOut   string `json:"checkOut"`
	Guests     int    `json:"guests"`
	Status     string `json:"status"`
	Payment    string `json:"payment"`

	// Зафиксированная квота, суммы в центах
	Nights      int    `json:"nights"`
	NightlyRate int64  `json:"nightlyRate"`
	CleaningFee int64  `json:"cleaningFee"`
	ServiceFee  int64  `json:"serviceFee"`
	TotalAmount int64  `json:"totalAmount"`
	Currency    string `json:"currency"`

	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// ConflictingRangeResponse занятый поддиапазон в ответе 409
type ConflictingRangeResponse struct {
	CheckIn  string `json:"checkIn"`
	CheckOut string `json:"checkOut"`
}

// DatesUnavailableResponse тело ответа 409: стандартная ошибка плюс
// занятые поддиапазоны, чтобы клиент мог предложить другие даты
type DatesUnavailableResponse struct {
	Code      int                        `json:"code"`
	Message   string                     `json:"message"`
	Conflicts []ConflictingRangeResponse `json:"conflicts"`
}

// FromConflicts конвертирует занятые поддиапазоны use case в ответ 409
func FromConflicts(conflicts []createBooking.ConflictingRange) *DatesUnavailableResponse {
	out := make([]ConflictingRangeResponse, 0, len(conflicts))
	for _, c := range conflicts {
		out = append(out, ConflictingRangeResponse{
			CheckIn:  c.CheckIn.Format(domain.DateFormat),
			CheckOut: c.CheckOut.Format(domain.DateFormat),
		})
	}
	return &DatesUnavailableResponse{
		Code:      http.StatusConflict,
		Message:   msgDatesUnavailable,
		Conflicts: out,
	}
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
// guestID приходит из контекста аутентификации, не из тела
func (r *CreateBookingRequest) ToUseCaseRequest(guestID int64) (*createBooking.Request, error) {
	checkIn, err := time.Parse(domain.DateFormat, r.CheckIn)
	if err != nil {
		return nil, err
	}

	checkOut, err := time.Parse(domain.DateFormat, r.CheckOut)
	if err != nil {
		return nil, err
	}

	return &createBooking.Request{
		PropertyID: r.PropertyID,
		GuestID:    guestID,
		GuestName:  r.GuestName,
		GuestEmail: r.GuestEmail,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		Guests:     r.Guests,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createBooking.Response) *BookingResponse {
	return &BookingResponse{
		ID:          resp.ID,
		PropertyID:  resp.PropertyID,
		GuestID:     resp.GuestID,
		CheckIn:     resp.CheckIn.Format(domain.DateFormat),
		CheckOut:    resp.CheckOut.Format(domain.DateFormat),
		Guests:      resp.Guests,
		Status:      resp.Status,
		Payment:     resp.Payment,
		Nights:      resp.Nights,
		NightlyRate: resp.NightlyRate,
		CleaningFee: resp.CleaningFee,
		ServiceFee:  resp.ServiceFee,
		TotalAmount: resp.TotalAmount,
		Currency:    resp.Currency,
		CreatedAt:   resp.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   resp.UpdatedAt.Format(time.RFC3339),
	}
}
