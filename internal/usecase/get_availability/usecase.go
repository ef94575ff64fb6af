package get_availability

import (
	"context"
	"errors"
	"fmt"

	"github.com/staypoint/STP-ReservationService/internal/domain"
	catalogClient "github.com/staypoint/STP-ReservationService/internal/integrations/catalog"
	"github.com/staypoint/STP-ReservationService/internal/pricing"
)

// UseCase use case проверки доступности диапазона дат
type UseCase struct {
	bookingRepo   BookingRepository
	catalogClient CatalogClient
	timeProvider  TimeProvider
	logger        Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	catalogClient CatalogClient,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:   bookingRepo,
		catalogClient: catalogClient,
		timeProvider:  &RealTimeProvider{},
		logger:        logger,
	}
}

// Execute выполняет проверку доступности
//
// Читает без транзакции: ответ - снимок на момент запроса, гарантия
// отсутствия двойного бронирования даётся только на create-пути
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailability: validation failed: %v", err)
		return nil, err
	}

	r := domain.NewDateRange(req.CheckIn, req.CheckOut)

	// 2. Проверяем существование объекта
	property, err := uc.catalogClient.GetProperty(ctx, req.PropertyID)
	if err != nil {
		if errors.Is(err, catalogClient.ErrPropertyNotFound) {
			uc.logger.Warn("GetAvailability: property id=%d not found", req.PropertyID)
			return nil, ErrPropertyNotFound
		}
		uc.logger.Error("GetAvailability: failed to get property id=%d: %v", req.PropertyID, err)
		return nil, fmt.Errorf("%w: failed to get property: %v", ErrInternal, err)
	}

	// 3. Валидация диапазона с учетом потолка длительности объекта
	maxNights := property.ToDomain().EffectiveMaxNights(domain.DefaultMaxStayNights)
	if err := pricing.ValidateRange(r, uc.timeProvider.Now(), maxNights); err != nil {
		uc.logger.Warn("GetAvailability: range validation failed for property id=%d: %v", req.PropertyID, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidRange, err)
	}

	// 4. Ищем пересекающиеся брони, держащие календарь
	overlapping, err := uc.bookingRepo.GetOverlapping(ctx, req.PropertyID, r)
	if err != nil {
		uc.logger.Error("GetAvailability: failed to get overlapping bookings: %v", err)
		return nil, fmt.Errorf("%w: failed to get overlapping bookings: %v", ErrInternal, err)
	}

	conflicts := make([]ConflictingRange, 0, len(overlapping))
	for _, b := range overlapping {
		conflicts = append(conflicts, ConflictingRange{
			CheckIn:  b.CheckIn,
			CheckOut: b.CheckOut,
		})
	}

	uc.logger.Info("GetAvailability: property id=%d range=%s available=%t conflicts=%d",
		req.PropertyID, r, len(conflicts) == 0, len(conflicts))

	return &Response{
		PropertyID: req.PropertyID,
		CheckIn:    r.CheckIn,
		CheckOut:   r.CheckOut,
		Available:  len(conflicts) == 0,
		Conflicts:  conflicts,
	}, nil
}
