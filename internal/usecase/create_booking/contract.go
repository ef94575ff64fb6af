package create_booking

import (
	"context"
	"time"

	"github.com/staypoint/STP-ReservationService/internal/domain"
	"github.com/staypoint/STP-ReservationService/internal/integrations/catalog"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetOverlapping(ctx context.Context, propertyID int64, r domain.DateRange) ([]*domain.Booking, error)
}

// LifecycleService интерфейс машины состояний бронирования
type LifecycleService interface {
	Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error)
}

// CatalogClient интерфейс клиента каталога объектов
type CatalogClient interface {
	GetProperty(ctx context.Context, propertyID int64) (*catalog.Property, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now().UTC()
}
