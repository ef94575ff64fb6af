package domain

// Default configuration values
const (
	DefaultMaxStayNights      = 30
	DefaultPendingTTLMinutes  = 30
	DefaultSweepIntervalSec   = 60
	DefaultMaxWebhookAttempts = 5
)

// Time format constants
const (
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// CalendarStatuses список статусов, при которых бронирование занимает календарь
// Используется в проверке доступности и в exclusion constraint БД
var CalendarStatuses = []BookingStatus{
	StatusPending,
	StatusConfirmed,
}

// ValidBookingStatuses все допустимые статусы бронирования
var ValidBookingStatuses = []BookingStatus{
	StatusPending,
	StatusConfirmed,
	StatusCancelled,
	StatusCompleted,
}

// ValidPaymentStatuses все допустимые статусы оплаты
var ValidPaymentStatuses = []PaymentStatus{
	PaymentPending,
	PaymentProcessing,
	PaymentSucceeded,
	PaymentFailed,
	PaymentRefunded,
}
