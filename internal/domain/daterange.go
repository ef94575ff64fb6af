package domain

import (
	"fmt"
	"time"
)

// DateRange represents a stay as a half-open interval [CheckIn, CheckOut).
// Check-out day is excluded, so back-to-back stays (checkout == next checkin)
// do not overlap.
type DateRange struct {
	CheckIn  time.Time
	CheckOut time.Time
}

// NewDateRange builds a DateRange from check-in and check-out dates,
// truncating both to midnight UTC.
func NewDateRange(checkIn, checkOut time.Time) DateRange {
	return DateRange{
		CheckIn:  DateOnly(checkIn),
		CheckOut: DateOnly(checkOut),
	}
}

// Nights returns the number of nights in the range.
func (r DateRange) Nights() int {
	return int(r.CheckOut.Sub(r.CheckIn).Hours() / 24)
}

// Overlaps reports whether two half-open ranges intersect.
func (r DateRange) Overlaps(other DateRange) bool {
	return r.CheckIn.Before(other.CheckOut) && r.CheckOut.After(other.CheckIn)
}

// IsOrdered reports whether check-in is strictly before check-out.
func (r DateRange) IsOrdered() bool {
	return r.CheckIn.Before(r.CheckOut)
}

// StartsInPast reports whether check-in is before today relative to now.
func (r DateRange) StartsInPast(now time.Time) bool {
	return r.CheckIn.Before(DateOnly(now))
}

// String returns the range in "YYYY-MM-DD/YYYY-MM-DD" form.
func (r DateRange) String() string {
	return fmt.Sprintf("%s/%s", r.CheckIn.Format(DateFormat), r.CheckOut.Format(DateFormat))
}

// DateOnly truncates a timestamp to midnight UTC.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
