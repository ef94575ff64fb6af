package begin_payment

import (
	"context"

	"github.com/staypoint/STP-ReservationService/internal/domain"
	"github.com/staypoint/STP-ReservationService/internal/integrations/stripegw"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
}

// LifecycleService интерфейс машины состояний бронирования
type LifecycleService interface {
	BeginPayment(ctx context.Context, id int64, sessionRef string) error
}

// PaymentGateway интерфейс адаптера платёжного шлюза
type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, b *domain.Booking) (*stripegw.CheckoutSession, error)
	SessionURL(sessionRef string) string
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
