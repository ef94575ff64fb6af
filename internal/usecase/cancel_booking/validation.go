package cancel_booking

import (
	"fmt"
	"strings"

	"github.com/staypoint/STP-ReservationService/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.BookingID <= 0 {
		return fmt.Errorf("%w: bookingID must be positive", ErrInvalidInput)
	}

	switch req.Actor {
	case domain.CancelledByGuest:
		if req.GuestID <= 0 {
			return fmt.Errorf("%w: guestID must be positive", ErrInvalidInput)
		}
	case domain.CancelledByHost, domain.CancelledBySystem:
		// Владелец не проверяется
	default:
		return fmt.Errorf("%w: unknown cancel actor %q", ErrInvalidInput, req.Actor)
	}

	if strings.TrimSpace(req.Reason) == "" {
		return fmt.Errorf("%w: reason is required", ErrInvalidInput)
	}

	return nil
}
