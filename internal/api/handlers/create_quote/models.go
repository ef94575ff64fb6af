package create_quote

import (
	"time"

	"github.com/staypoint/STP-ReservationService/internal/domain"
	createQuote "github.com/staypoint/STP-ReservationService/internal/usecase/create_quote"
)

// CreateQuoteRequest HTTP request model
type CreateQuoteRequest struct {
	PropertyID int64  `json:"propertyId"`
	CheckIn    string `json:"checkIn"`  // "2026-09-01"
	CheckOut   string `json:"checkOut"` // "2026-09-04"
	Guests     int    `json:"guests"`
}

// QuoteResponse HTTP response model, суммы в центах
type QuoteResponse struct {
	PropertyID  int64  `json:"propertyId"`
	CheckIn     string `json:"checkIn"`
	CheckOut    string `json:"checkOut"`
	Nights      int    `json:"nights"`
	NightlyRate int64  `json:"nightlyRate"`
	Subtotal    int64  `json:"subtotal"`
	CleaningFee int64  `json:"cleaningFee"`
	ServiceFee  int64  `json:"serviceFee"`
	Total       int64  `json:"total"`
	Currency    string `json:"currency"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateQuoteRequest) ToUseCaseRequest() (*createQuote.Request, error) {
	checkIn, err := time.Parse(domain.DateFormat, r.CheckIn)
	if err != nil {
		return nil, err
	}

	checkOut, err := time.Parse(domain.DateFormat, r.CheckOut)
	if err != nil {
		return nil, err
	}

	return &createQuote.Request{
		PropertyID: r.PropertyID,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		Guests:     r.Guests,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createQuote.Response) *QuoteResponse {
	return &QuoteResponse{
		PropertyID:  resp.PropertyID,
		CheckIn:     resp.CheckIn.Format(domain.DateFormat),
		CheckOut:    resp.CheckOut.Format(domain.DateFormat),
		Nights:      resp.Nights,
		NightlyRate: resp.NightlyRate,
		Subtotal:    resp.Subtotal,
		CleaningFee: resp.CleaningFee,
		ServiceFee:  resp.ServiceFee,
		Total:       resp.Total,
		Currency:    resp.Currency,
	}
}
