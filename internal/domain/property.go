package domain

// Property is the rate configuration of a listed property as seen by the
// reservation core. The catalog service owns the full record; only the
// pricing inputs and stay limits matter here.
type Property struct {
	ID     int64
	HostID int64

	// Pricing inputs, amounts in cents
	NightlyRate   int64
	CleaningFee   int64
	ServiceFeeBps int64 // service fee percentage in basis points (1200 = 12%)
	Currency      string

	MaxGuests int
	MinNights int
	MaxNights int
}

// EffectiveMaxNights returns the stay ceiling for this property,
// falling back to the platform-wide maximum when the property has none.
func (p *Property) EffectiveMaxNights(platformMax int) int {
	if p.MaxNights > 0 && p.MaxNights < platformMax {
		return p.MaxNights
	}
	return platformMax
}
