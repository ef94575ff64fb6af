package create_booking

import (
	"fmt"
	"strings"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.PropertyID <= 0 {
		return fmt.Errorf("%w: propertyID must be positive", ErrInvalidInput)
	}

	if req.GuestID <= 0 {
		return fmt.Errorf("%w: guestID must be positive", ErrInvalidInput)
	}

	if strings.TrimSpace(req.GuestName) == "" {
		return fmt.Errorf("%w: guestName is required", ErrInvalidInput)
	}

	if !strings.Contains(req.GuestEmail, "@") {
		return fmt.Errorf("%w: guestEmail is invalid", ErrInvalidInput)
	}

	if req.CheckIn.IsZero() {
		return fmt.Errorf("%w: checkIn is required", ErrInvalidInput)
	}

	if req.CheckOut.IsZero() {
		return fmt.Errorf("%w: checkOut is required", ErrInvalidInput)
	}

	if req.Guests <= 0 {
		return fmt.Errorf("%w: guests must be positive", ErrInvalidInput)
	}

	return nil
}
