package create_quote

import (
	"context"
	"errors"
	"fmt"

	"github.com/staypoint/STP-ReservationService/internal/domain"
	catalogClient "github.com/staypoint/STP-ReservationService/internal/integrations/catalog"
	"github.com/staypoint/STP-ReservationService/internal/pricing"
)

// UseCase use case расчета квоты
type UseCase struct {
	catalogClient CatalogClient
	timeProvider  TimeProvider
	logger        Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(catalogClient CatalogClient, logger Logger) *UseCase {
	return &UseCase{
		catalogClient: catalogClient,
		timeProvider:  &RealTimeProvider{},
		logger:        logger,
	}
}

// Execute считает детализированную квоту
//
// Квота детерминирована: один и тот же (объект, диапазон, гости) при
// неизменном каталоге всегда даёт одну и ту же разбивку. Доступность
// здесь не проверяется - квота информационная, цену фиксирует createBooking
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateQuote: validation failed: %v", err)
		return nil, err
	}

	r := domain.NewDateRange(req.CheckIn, req.CheckOut)

	// 2. Получаем ценовую конфигурацию объекта
	property, err := uc.catalogClient.GetProperty(ctx, req.PropertyID)
	if err != nil {
		if errors.Is(err, catalogClient.ErrPropertyNotFound) {
			uc.logger.Warn("CreateQuote: property id=%d not found", req.PropertyID)
			return nil, ErrPropertyNotFound
		}
		uc.logger.Error("CreateQuote: failed to get property id=%d: %v", req.PropertyID, err)
		return nil, fmt.Errorf("%w: failed to get property: %v", ErrInternal, err)
	}

	// 3. Считаем квоту
	quote, err := pricing.Calculate(property.ToDomain(), r, req.Guests, uc.timeProvider.Now())
	if err != nil {
		if errors.Is(err, pricing.ErrGuestCountExceeded) {
			uc.logger.Warn("CreateQuote: guest count %d exceeds capacity of property id=%d", req.Guests, req.PropertyID)
			return nil, fmt.Errorf("%w: %v", ErrGuestCountExceeded, err)
		}
		uc.logger.Warn("CreateQuote: range validation failed for property id=%d: %v", req.PropertyID, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidRange, err)
	}

	uc.logger.Info("CreateQuote: property id=%d range=%s guests=%d total=%d %s",
		req.PropertyID, r, req.Guests, quote.Total, quote.Currency)

	return &Response{
		PropertyID:  req.PropertyID,
		CheckIn:     r.CheckIn,
		CheckOut:    r.CheckOut,
		Nights:      quote.Nights,
		NightlyRate: quote.NightlyRate,
		Subtotal:    quote.Subtotal,
		CleaningFee: quote.CleaningFee,
		ServiceFee:  quote.ServiceFee,
		Total:       quote.Total,
		Currency:    quote.Currency,
	}, nil
}
