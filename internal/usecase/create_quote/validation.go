package create_quote

import "fmt"

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.PropertyID <= 0 {
		return fmt.Errorf("%w: propertyID must be positive", ErrInvalidInput)
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
