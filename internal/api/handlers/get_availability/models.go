package get_availability

import (
	"github.com/staypoint/STP-ReservationService/internal/domain"
	getAvailability "github.com/staypoint/STP-ReservationService/internal/usecase/get_availability"
)

// ConflictingRange занятый поддиапазон в ответе
type ConflictingRange struct {
	CheckIn  string `json:"checkIn"`
	CheckOut string `json:"checkOut"`
}

// AvailabilityResponse HTTP response model
type AvailabilityResponse struct {
	PropertyID int64              `json:"propertyId"`
	CheckIn    string             `json:"checkIn"`
	CheckOut   string             `json:"checkOut"`
	Available  bool               `json:"available"`
	Conflicts  []ConflictingRange `json:"conflicts"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailability.Response) *AvailabilityResponse {
	conflicts := make([]ConflictingRange, 0, len(resp.Conflicts))
	for _, c := range resp.Conflicts {
		conflicts = append(conflicts, ConflictingRange{
			CheckIn:  c.CheckIn.Format(domain.DateFormat),
			CheckOut: c.CheckOut.Format(domain.DateFormat),
		})
	}

	return &AvailabilityResponse{
		PropertyID: resp.PropertyID,
		CheckIn:    resp.CheckIn.Format(domain.DateFormat),
		CheckOut:   resp.CheckOut.Format(domain.DateFormat),
		Available:  resp.Available,
		Conflicts:  conflicts,
	}
}
