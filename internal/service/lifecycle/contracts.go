package lifecycle

import (
	"context"
	"time"

	"github.com/staypoint/STP-ReservationService/internal/domain"
	"github.com/staypoint/STP-ReservationService/internal/integrations/notifier"
)

// BookingRepository интерфейс репозитория бронирований
// Все мутации - условные UPDATE'ы с guard'ом по текущему состоянию
type BookingRepository interface {
	Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error)
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	BeginPayment(ctx context.Context, id int64, sessionRef string) error
	ConfirmPayment(ctx context.Context, id int64, intentRef *string) error
	FailPayment(ctx context.Context, id int64) error
	Cancel(ctx context.Context, id int64, reason string) error
	RecordRefund(ctx context.Context, id int64, amount int64, reason string) error
	ExpirePending(ctx context.Context, olderThan time.Time, reason string) ([]int64, error)
	CompleteElapsed(ctx context.Context, today time.Time) ([]int64, error)
}

// Notifier интерфейс клиента сервиса уведомлений
type Notifier interface {
	Notify(ctx context.Context, n notifier.Notification) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
