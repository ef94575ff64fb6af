package domain

import "time"

// PaymentEvent is one inbound gateway notification, recorded before any
// business logic runs. EventID is the gateway's id and is unique, which makes
// redelivery detectable. Rows are append-only except for the processed flag
// and the attempt/error bookkeeping.
type PaymentEvent struct {
	ID        int64
	EventID   string
	EventType string
	Payload   []byte

	BookingID *int64

	Processed          bool
	ProcessingAttempts int
	LastError          *string

	CreatedAt time.Time
	UpdatedAt time.Time
}
