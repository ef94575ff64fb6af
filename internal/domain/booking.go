package domain

import "time"

// BookingStatus represents the reservation lifecycle status of a booking
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
	StatusCompleted BookingStatus = "completed"
)

// PaymentStatus represents the payment lifecycle status, tracked
// independently of BookingStatus on the same row
type PaymentStatus string

const (
	PaymentPending    PaymentStatus = "pending"
	PaymentProcessing PaymentStatus = "processing"
	PaymentSucceeded  PaymentStatus = "succeeded"
	PaymentFailed     PaymentStatus = "failed"
	PaymentRefunded   PaymentStatus = "refunded"
)

// CancelActor identifies who initiated a cancellation
type CancelActor string

const (
	CancelledByGuest  CancelActor = "guest"
	CancelledByHost   CancelActor = "host"
	CancelledBySystem CancelActor = "system"
)

// Booking represents a property reservation.
//
// Amounts are integer cents; the itemized quote is denormalized onto the row
// so that the binding price survives later catalog changes and so webhook
// reconciliation can compare the paid amount exactly.
type Booking struct {
	ID         int64
	PropertyID int64
	GuestID    int64
	GuestName  string
	GuestEmail string

	CheckIn  time.Time
	CheckOut time.Time
	Guests   int

	// Denormalized quote breakdown (cents)
	NightlyRate int64
	CleaningFee int64
	ServiceFee  int64
	TotalAmount int64
	Currency    string

	Status        BookingStatus
	PaymentStatus PaymentStatus

	PaymentSessionRef *string
	PaymentIntentRef  *string

	RefundAmount *int64
	RefundReason *string
	RefundedAt   *time.Time

	CancellationReason *string
	CancelledAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Range returns the booked date range.
func (b *Booking) Range() DateRange {
	return DateRange{CheckIn: b.CheckIn, CheckOut: b.CheckOut}
}

// HoldsCalendar returns true if the booking blocks its date range
// for other reservations.
func (b *Booking) HoldsCalendar() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// CanBeCancelled returns true if the booking can still be cancelled.
func (b *Booking) CanBeCancelled() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// PaymentResolved returns true once the payment reached a terminal state.
func (b *Booking) PaymentResolved() bool {
	return b.PaymentStatus == PaymentSucceeded || b.PaymentStatus == PaymentRefunded
}

// NeedsRefundOnCancel returns true if cancelling this booking must first
// route through a refund.
func (b *Booking) NeedsRefundOnCancel() bool {
	return b.PaymentStatus == PaymentSucceeded
}
