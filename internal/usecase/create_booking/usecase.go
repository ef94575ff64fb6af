package create_booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/staypoint/STP-ReservationService/internal/domain"
	bookingRepo "github.com/staypoint/STP-ReservationService/internal/infra/storage/booking"
	catalogClient "github.com/staypoint/STP-ReservationService/internal/integrations/catalog"
	"github.com/staypoint/STP-ReservationService/internal/pricing"
)

// UseCase use case создания бронирования
type UseCase struct {
	bookingRepo   BookingRepository
	lifecycle     LifecycleService
	catalogClient CatalogClient
	txManager     TransactionManager
	timeProvider  TimeProvider
	logger        Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	lifecycle LifecycleService,
	catalogClient CatalogClient,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:   bookingRepo,
		lifecycle:     lifecycle,
		catalogClient: catalogClient,
		txManager:     txManager,
		timeProvider:  &RealTimeProvider{},
		logger:        logger,
	}
}

// Execute выполняет use case создания бронирования
//
// Проверка доступности и вставка идут в одной сериализуемой транзакции
// с блокировкой пересекающихся строк (FOR UPDATE). Exclusion constraint
// в схеме - последний рубеж: даже при обходе этого пути два бронирования
// на пересекающийся диапазон не пройдут
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: property=%d, guest=%d, checkin=%s, checkout=%s, guests=%d",
		req.PropertyID, req.GuestID, req.CheckIn.Format(domain.DateFormat),
		req.CheckOut.Format(domain.DateFormat), req.Guests)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	r := domain.NewDateRange(req.CheckIn, req.CheckOut)
	now := uc.timeProvider.Now()

	// 2. Получаем ценовую конфигурацию объекта
	property, err := uc.catalogClient.GetProperty(ctx, req.PropertyID)
	if err != nil {
		if errors.Is(err, catalogClient.ErrPropertyNotFound) {
			uc.logger.Warn("CreateBooking: property id=%d not found", req.PropertyID)
			return nil, ErrPropertyNotFound
		}
		uc.logger.Error("CreateBooking: failed to get property id=%d: %v", req.PropertyID, err)
		return nil, fmt.Errorf("%w: failed to get property: %v", ErrInternal, err)
	}

	// 3. Считаем и фиксируем квоту до входа в транзакцию
	quote, err := pricing.Calculate(property.ToDomain(), r, req.Guests, now)
	if err != nil {
		if errors.Is(err, pricing.ErrGuestCountExceeded) {
			uc.logger.Warn("CreateBooking: guest count %d exceeds capacity of property id=%d",
				req.Guests, req.PropertyID)
			return nil, fmt.Errorf("%w: %v", ErrGuestCountExceeded, err)
		}
		uc.logger.Warn("CreateBooking: range validation failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidRange, err)
	}

	var result *domain.Booking
	var conflicts []ConflictingRange

	// 4. Проверка доступности и вставка в одной сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 4.1. Блокируем пересекающиеся брони (FOR UPDATE внутри транзакции)
		overlapping, err := uc.bookingRepo.GetOverlapping(txCtx, req.PropertyID, r)
		if err != nil {
			uc.logger.Error("CreateBooking: failed to get overlapping bookings: %v", err)
			return fmt.Errorf("%w: failed to get overlapping bookings: %v", ErrInternal, err)
		}

		if len(overlapping) > 0 {
			uc.logger.Warn("CreateBooking: range %s conflicts with %d booking(s) for property id=%d",
				r, len(overlapping), req.PropertyID)
			conflicts = conflictingRanges(overlapping)
			return ErrDatesUnavailable
		}

		// 4.2. Создаем бронирование с денормализованной квотой
		booking := &domain.Booking{
			PropertyID:  req.PropertyID,
			GuestID:     req.GuestID,
			GuestName:   req.GuestName,
			GuestEmail:  req.GuestEmail,
			CheckIn:     r.CheckIn,
			CheckOut:    r.CheckOut,
			Guests:      req.Guests,
			NightlyRate: quote.NightlyRate,
			CleaningFee: quote.CleaningFee,
			ServiceFee:  quote.ServiceFee,
			TotalAmount: quote.Total,
			Currency:    quote.Currency,
		}

		created, err := uc.lifecycle.Create(txCtx, booking)
		if err != nil {
			// Гонка, дошедшая до exclusion constraint
			if errors.Is(err, bookingRepo.ErrRangeConflict) {
				uc.logger.Warn("CreateBooking: range conflict at insert for property id=%d", req.PropertyID)
				return ErrDatesUnavailable
			}
			uc.logger.Error("CreateBooking: failed to create booking: %v", err)
			return fmt.Errorf("%w: failed to create booking: %v", ErrInternal, err)
		}

		result = created
		return nil
	})

	if err != nil {
		// 5. Отказ по занятости отдаем с занятыми поддиапазонами
		if errors.Is(err, ErrDatesUnavailable) {
			if len(conflicts) == 0 {
				// Гонка на exclusion constraint откатила транзакцию,
				// перечитываем конфликтующие брони вне её
				overlapping, qErr := uc.bookingRepo.GetOverlapping(ctx, req.PropertyID, r)
				if qErr != nil {
					uc.logger.Warn("CreateBooking: failed to reread overlapping bookings: %v", qErr)
				} else {
					conflicts = conflictingRanges(overlapping)
				}
			}
			return nil, &DatesUnavailableError{Conflicts: conflicts}
		}
		return nil, err
	}

	uc.logger.Info("CreateBooking: successfully created booking id=%d total=%d %s",
		result.ID, result.TotalAmount, result.Currency)

	return &Response{
		ID:          result.ID,
		PropertyID:  result.PropertyID,
		GuestID:     result.GuestID,
		CheckIn:     result.CheckIn,
		CheckOut:    result.CheckOut,
		Guests:      result.Guests,
		Status:      string(result.Status),
		Payment:     string(result.PaymentStatus),
		Nights:      quote.Nights,
		NightlyRate: result.NightlyRate,
		CleaningFee: result.CleaningFee,
		ServiceFee:  result.ServiceFee,
		TotalAmount: result.TotalAmount,
		Currency:    result.Currency,
		CreatedAt:   result.CreatedAt,
		UpdatedAt:   result.UpdatedAt,
	}, nil
}

func conflictingRanges(bookings []*domain.Booking) []ConflictingRange {
	out := make([]ConflictingRange, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, ConflictingRange{CheckIn: b.CheckIn, CheckOut: b.CheckOut})
	}
	return out
}
