package begin_payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/staypoint/STP-ReservationService/internal/domain"
	bookingRepo "github.com/staypoint/STP-ReservationService/internal/infra/storage/booking"
	"github.com/staypoint/STP-ReservationService/internal/integrations/stripegw"
)

// UseCase use case старта оплаты бронирования
type UseCase struct {
	bookingRepo BookingRepository
	lifecycle   LifecycleService
	gateway     PaymentGateway
	logger      Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	lifecycle LifecycleService,
	gateway PaymentGateway,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo: bookingRepo,
		lifecycle:   lifecycle,
		gateway:     gateway,
		logger:      logger,
	}
}

// Execute создает платёжную сессию на зафиксированную сумму брони
//
// Повторный вызов для брони с уже открытой сессией не создает новую:
// возвращается существующая ссылка. После неуспешной оплаты (failed)
// создается новая сессия - слот держится за гостем до TTL-свипа и оплату
// можно повторить. Сумма сессии всегда берётся из строки брони, не из запроса
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	// 1. Валидация входных данных
	if req.BookingID <= 0 || req.GuestID <= 0 {
		return nil, fmt.Errorf("%w: bookingID and guestID must be positive", ErrInvalidInput)
	}

	// 2. Загружаем бронирование
	b, err := uc.bookingRepo.GetByID(ctx, req.BookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			uc.logger.Warn("BeginPayment: booking id=%d not found", req.BookingID)
			return nil, ErrBookingNotFound
		}
		uc.logger.Error("BeginPayment: failed to get booking id=%d: %v", req.BookingID, err)
		return nil, fmt.Errorf("%w: failed to get booking: %v", ErrInternal, err)
	}

	// 3. Проверяем владельца
	if b.GuestID != req.GuestID {
		uc.logger.Warn("BeginPayment: guest id=%d requested foreign booking id=%d", req.GuestID, req.BookingID)
		return nil, ErrAccessDenied
	}

	// 4. Проверяем состояние оплаты
	switch {
	case b.Status != domain.StatusPending:
		uc.logger.Warn("BeginPayment: booking id=%d is %s, not payable", req.BookingID, b.Status)
		return nil, ErrNotPayable

	case b.PaymentStatus == domain.PaymentSucceeded || b.PaymentStatus == domain.PaymentRefunded:
		uc.logger.Warn("BeginPayment: booking id=%d payment is %s", req.BookingID, b.PaymentStatus)
		return nil, ErrAlreadyPaid

	case b.PaymentStatus == domain.PaymentProcessing && b.PaymentSessionRef != nil:
		// Повторный запрос: отдаём существующую сессию
		uc.logger.Info("BeginPayment: booking id=%d already has session=%s, reusing",
			req.BookingID, *b.PaymentSessionRef)
		return &Response{
			BookingID:  b.ID,
			SessionRef: *b.PaymentSessionRef,
			SessionURL: uc.gateway.SessionURL(*b.PaymentSessionRef),
			Amount:     b.TotalAmount,
			Currency:   b.Currency,
		}, nil
	}

	// 5. Создаем платёжную сессию на сумму из строки брони
	// Для payment_status=failed это повторная попытка с новой сессией
	if b.PaymentStatus == domain.PaymentFailed {
		uc.logger.Info("BeginPayment: booking id=%d retries after failed payment", req.BookingID)
	}

	session, err := uc.gateway.CreateCheckoutSession(ctx, b)
	if err != nil {
		if errors.Is(err, stripegw.ErrGateway) {
			uc.logger.Error("BeginPayment: gateway error for booking id=%d: %v", req.BookingID, err)
			return nil, fmt.Errorf("%w: %v", ErrGateway, err)
		}
		return nil, fmt.Errorf("%w: create checkout session: %v", ErrInternal, err)
	}

	// 6. Переводим оплату в processing
	if err := uc.lifecycle.BeginPayment(ctx, b.ID, session.SessionRef); err != nil {
		uc.logger.Error("BeginPayment: failed to transition booking id=%d: %v", req.BookingID, err)
		return nil, fmt.Errorf("%w: begin payment transition: %v", ErrInternal, err)
	}

	uc.logger.Info("BeginPayment: booking id=%d session=%s amount=%d %s",
		b.ID, session.SessionRef, b.TotalAmount, b.Currency)

	return &Response{
		BookingID:  b.ID,
		SessionRef: session.SessionRef,
		SessionURL: session.SessionURL,
		Amount:     b.TotalAmount,
		Currency:   b.Currency,
	}, nil
}
