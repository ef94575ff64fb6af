// Package pricing чистый калькулятор стоимости бронирования
//
// Единственный источник правды для суммы бронирования: и выдача квоты,
// и сверка суммы платежа в вебхуке считают через Calculate, поэтому
// округление всегда совпадает бит в бит.
package pricing

import (
	"fmt"
	"time"

	"github.com/staypoint/STP-ReservationService/internal/domain"
)

// ValidateRange проверяет диапазон дат кандидата на бронирование
// maxNights - платформенный потолок длительности (domain.DefaultMaxStayNights)
func ValidateRange(r domain.DateRange, now time.Time, maxNights int) error {
	if !r.IsOrdered() {
		return fmt.Errorf("%w: check-in must be before check-out", ErrInvalidRange)
	}

	if r.StartsInPast(now) {
		return fmt.Errorf("%w: check-in is in the past", ErrInvalidRange)
	}

	nights := r.Nights()
	if nights < 1 {
		return fmt.Errorf("%w: stay must be at least one night", ErrInvalidRange)
	}
	if nights > maxNights {
		return fmt.Errorf("%w: stay exceeds %d nights", ErrInvalidRange, maxNights)
	}

	return nil
}

// Calculate считает детерминированную квоту для (объект, диапазон, гости)
//
// Все суммы в центах. Сервисный сбор округляется half-up до целого цента
// ДО суммирования: fee = round(subtotal * bps / 10000)
func Calculate(property *domain.Property, r domain.DateRange, guests int, now time.Time) (*domain.Quote, error) {
	if err := ValidateRange(r, now, property.EffectiveMaxNights(domain.DefaultMaxStayNights)); err != nil {
		return nil, err
	}

	nights := r.Nights()
	if property.MinNights > 0 && nights < property.MinNights {
		return nil, fmt.Errorf("%w: property requires at least %d nights", ErrInvalidRange, property.MinNights)
	}

	if guests < 1 {
		return nil, fmt.Errorf("%w: at least one guest required", ErrInvalidRange)
	}
	if guests > property.MaxGuests {
		return nil, fmt.Errorf("%w: property allows at most %d guests", ErrGuestCountExceeded, property.MaxGuests)
	}

	subtotal := property.NightlyRate * int64(nights)
	serviceFee := roundHalfUpBps(subtotal, property.ServiceFeeBps)

	return &domain.Quote{
		Nights:      nights,
		NightlyRate: property.NightlyRate,
		Subtotal:    subtotal,
		CleaningFee: property.CleaningFee,
		ServiceFee:  serviceFee,
		Total:       subtotal + property.CleaningFee + serviceFee,
		Currency:    property.Currency,
	}, nil
}

// roundHalfUpBps считает amount * bps / 10000 с округлением half-up
// Целочисленная арифметика, без float - результат воспроизводим всегда
func roundHalfUpBps(amount, bps int64) int64 {
	return (amount*bps + 5000) / 10000
}
