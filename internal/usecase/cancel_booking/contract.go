package cancel_booking

import (
	"context"

	"github.com/staypoint/STP-ReservationService/internal/domain"
	"github.com/staypoint/STP-ReservationService/internal/integrations/stripegw"
	"github.com/staypoint/STP-ReservationService/internal/service/lifecycle"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
}

// LifecycleService интерфейс машины состояний бронирования
type LifecycleService interface {
	Cancel(ctx context.Context, id int64, actor domain.CancelActor, reason string, refund *lifecycle.RefundDetails) error
}

// PaymentGateway интерфейс адаптера платёжного шлюза
type PaymentGateway interface {
	CreateRefund(ctx context.Context, intentRef string, amount int64, reason string) (*stripegw.Refund, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
