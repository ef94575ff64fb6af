package process_webhook

import (
	"context"

	"github.com/staypoint/STP-ReservationService/internal/domain"
	"github.com/staypoint/STP-ReservationService/internal/integrations/stripegw"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByPaymentRef(ctx context.Context, ref string) (*domain.Booking, error)
}

// PaymentEventRepository интерфейс журнала платёжных событий
type PaymentEventRepository interface {
	Insert(ctx context.Context, e *domain.PaymentEvent) (*domain.PaymentEvent, error)
	GetByEventID(ctx context.Context, eventID string) (*domain.PaymentEvent, error)
	MarkProcessed(ctx context.Context, eventID string, bookingID *int64) error
	RecordFailure(ctx context.Context, eventID string, lastError string) (int, error)
}

// LifecycleService интерфейс машины состояний бронирования
type LifecycleService interface {
	ConfirmPayment(ctx context.Context, id int64, paidAmount int64, intentRef *string) error
	FailPayment(ctx context.Context, id int64, reason string) error
	CompleteRefund(ctx context.Context, id int64, amount int64, reason string) error
}

// PaymentGateway интерфейс адаптера платёжного шлюза
type PaymentGateway interface {
	VerifyEvent(payload []byte, sigHeader string) (*stripegw.Event, error)
}

// Metrics интерфейс метрик реконсайлера
type Metrics interface {
	ObserveWebhookEvent(eventType, outcome string)
	ObserveWebhookUnresolved(eventType string)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
