package catalog

import "github.com/staypoint/STP-ReservationService/internal/domain"

// Property модель объекта размещения из каталога
// Суммы приходят в центах
type Property struct {
	ID            int64  `json:"id"`
	HostID        int64  `json:"host_id"`
	NightlyRate   int64  `json:"nightly_rate"`
	CleaningFee   int64  `json:"cleaning_fee"`
	ServiceFeeBps int64  `json:"service_fee_bps"`
	Currency      string `json:"currency"`
	MaxGuests     int    `json:"max_guests"`
	MinNights     int    `json:"min_nights"`
	MaxNights     int    `json:"max_nights"`
	IsActive      bool   `json:"is_active"`
}

// ToDomain конвертирует модель каталога в доменную
func (p *Property) ToDomain() *domain.Property {
	return &domain.Property{
		ID:            p.ID,
		HostID:        p.HostID,
		NightlyRate:   p.NightlyRate,
		CleaningFee:   p.CleaningFee,
		ServiceFeeBps: p.ServiceFeeBps,
		Currency:      p.Currency,
		MaxGuests:     p.MaxGuests,
		MinNights:     p.MinNights,
		MaxNights:     p.MaxNights,
	}
}

// ErrorResponse модель ошибки от каталога
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
