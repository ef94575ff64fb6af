package create_quote

import (
	"context"
	"time"

	"github.com/staypoint/STP-ReservationService/internal/integrations/catalog"
)

// CatalogClient интерфейс клиента каталога объектов
type CatalogClient interface {
	GetProperty(ctx context.Context, propertyID int64) (*catalog.Property, error)
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
