package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staypoint/STP-ReservationService/internal/domain"
)

var testNow = time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)

func testProperty() *domain.Property {
	return &domain.Property{
		ID:            42,
		HostID:        7,
		NightlyRate:   10000, // $100.00
		CleaningFee:   5000,  // $50.00
		ServiceFeeBps: 1200,  // 12%
		Currency:      "USD",
		MaxGuests:     4,
		MinNights:     1,
		MaxNights:     30,
	}
}

func rangeOf(checkIn, checkOut string) domain.DateRange {
	in, _ := time.Parse(domain.DateFormat, checkIn)
	out, _ := time.Parse(domain.DateFormat, checkOut)
	return domain.NewDateRange(in, out)
}

func TestCalculate_ThreeNightStay(t *testing.T) {
	// $100/night x 3 nights, $50 cleaning, 12% service fee
	quote, err := Calculate(testProperty(), rangeOf("2024-03-01", "2024-03-04"), 2, testNow)
	require.NoError(t, err)

	assert.Equal(t, 3, quote.Nights)
	assert.Equal(t, int64(30000), quote.Subtotal)
	assert.Equal(t, int64(5000), quote.CleaningFee)
	assert.Equal(t, int64(3600), quote.ServiceFee) // round(30000 * 0.12)
	assert.Equal(t, int64(38600), quote.Total)
	assert.Equal(t, "USD", quote.Currency)
}

func TestCalculate_ServiceFeeRoundsHalfUp(t *testing.T) {
	p := testProperty()
	p.NightlyRate = 10417 // subtotal 10417, 12% = 1250.04 -> 1250
	p.ServiceFeeBps = 1200

	quote, err := Calculate(p, rangeOf("2024-03-01", "2024-03-02"), 1, testNow)
	require.NoError(t, err)
	assert.Equal(t, int64(1250), quote.ServiceFee)

	// 12.5% от 10417 = 1302.125 -> 1302
	p.ServiceFeeBps = 1250
	quote, err = Calculate(p, rangeOf("2024-03-01", "2024-03-02"), 1, testNow)
	require.NoError(t, err)
	assert.Equal(t, int64(1302), quote.ServiceFee)

	// Ровно .5 округляется вверх: 10001 * 5% = 500.05... возьмём 10010 * 5% = 500.5 -> 501
	p.NightlyRate = 10010
	p.ServiceFeeBps = 500
	quote, err = Calculate(p, rangeOf("2024-03-01", "2024-03-02"), 1, testNow)
	require.NoError(t, err)
	assert.Equal(t, int64(501), quote.ServiceFee)
}

func TestCalculate_Deterministic(t *testing.T) {
	// Два независимых вычисления с одинаковыми входами совпадают бит в бит
	p := testProperty()
	r := rangeOf("2024-03-10", "2024-03-17")

	first, err := Calculate(p, r, 3, testNow)
	require.NoError(t, err)
	second, err := Calculate(p, r, 3, testNow)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestCalculate_GuestCountExceeded(t *testing.T) {
	_, err := Calculate(testProperty(), rangeOf("2024-03-01", "2024-03-04"), 5, testNow)
	assert.ErrorIs(t, err, ErrGuestCountExceeded)
}

func TestCalculate_InvalidRanges(t *testing.T) {
	tests := []struct {
		name     string
		checkIn  string
		checkOut string
	}{
		{"reversed", "2024-03-04", "2024-03-01"},
		{"zero nights", "2024-03-01", "2024-03-01"},
		{"check-in in the past", "2024-01-10", "2024-01-12"},
		{"longer than max stay", "2024-03-01", "2024-04-15"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Calculate(testProperty(), rangeOf(tt.checkIn, tt.checkOut), 2, testNow)
			assert.ErrorIs(t, err, ErrInvalidRange)
		})
	}
}

func TestCalculate_MinNights(t *testing.T) {
	p := testProperty()
	p.MinNights = 3

	_, err := Calculate(p, rangeOf("2024-03-01", "2024-03-03"), 2, testNow)
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = Calculate(p, rangeOf("2024-03-01", "2024-03-04"), 2, testNow)
	assert.NoError(t, err)
}

func TestValidateRange_BackToBackIsNotOverlap(t *testing.T) {
	// Смежные диапазоны (checkout == checkin) не пересекаются
	a := rangeOf("2024-03-01", "2024-03-04")
	b := rangeOf("2024-03-04", "2024-03-07")

	assert.False(t, a.Overlaps(b))
	assert.False(t, b.Overlaps(a))

	c := rangeOf("2024-03-03", "2024-03-05")
	assert.True(t, a.Overlaps(c))
	assert.True(t, c.Overlaps(a))
}
