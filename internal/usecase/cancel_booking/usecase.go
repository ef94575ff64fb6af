package cancel_booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/staypoint/STP-ReservationService/internal/domain"
	bookingRepo "github.com/staypoint/STP-ReservationService/internal/infra/storage/booking"
	"github.com/staypoint/STP-ReservationService/internal/service/lifecycle"
	"github.com/staypoint/STP-ReservationService/pkg/ptr"
)

// UseCase use case отмены бронирования
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

// Execute отменяет бронирование
//
// Для оплаченной брони сначала выполняется возврат на стороне шлюза,
// и только успешный возврат позволяет перевести бронь в cancelled/refunded.
// Если шлюз вернул ошибку, состояние брони не меняется
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CancelBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Загружаем бронирование
	b, err := uc.bookingRepo.GetByID(ctx, req.BookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			uc.logger.Warn("CancelBooking: booking id=%d not found", req.BookingID)
			return nil, ErrBookingNotFound
		}
		uc.logger.Error("CancelBooking: failed to get booking id=%d: %v", req.BookingID, err)
		return nil, fmt.Errorf("%w: failed to get booking: %v", ErrInternal, err)
	}

	// 3. Гость может отменять только свои брони
	if req.Actor == domain.CancelledByGuest && b.GuestID != req.GuestID {
		uc.logger.Warn("CancelBooking: guest id=%d requested foreign booking id=%d", req.GuestID, req.BookingID)
		return nil, ErrAccessDenied
	}

	if !b.CanBeCancelled() {
		uc.logger.Warn("CancelBooking: booking id=%d is %s, cannot cancel", req.BookingID, b.Status)
		return nil, ErrCannotCancel
	}

	var refund *lifecycle.RefundDetails
	var refundRef *string

	// 4. Оплаченная бронь: сначала возврат на стороне шлюза
	if b.NeedsRefundOnCancel() {
		if b.PaymentIntentRef == nil {
			uc.logger.Error("CancelBooking: booking id=%d is paid but has no payment intent ref", req.BookingID)
			return nil, fmt.Errorf("%w: paid booking has no payment intent reference", ErrInternal)
		}

		gwRefund, err := uc.gateway.CreateRefund(ctx, *b.PaymentIntentRef, b.TotalAmount, req.Reason)
		if err != nil {
			uc.logger.Error("CancelBooking: refund failed for booking id=%d: %v", req.BookingID, err)
			return nil, fmt.Errorf("%w: %v", ErrGateway, err)
		}

		refund = &lifecycle.RefundDetails{
			Amount: gwRefund.Amount,
			Reason: req.Reason,
		}
		refundRef = ptr.Ptr(gwRefund.RefundRef)
	}

	// 5. Переводим бронь в cancelled
	if err := uc.lifecycle.Cancel(ctx, req.BookingID, req.Actor, req.Reason, refund); err != nil {
		switch {
		case errors.Is(err, lifecycle.ErrCannotCancel):
			return nil, ErrCannotCancel
		case errors.Is(err, lifecycle.ErrBookingNotFound):
			return nil, ErrBookingNotFound
		default:
			uc.logger.Error("CancelBooking: failed to cancel booking id=%d: %v", req.BookingID, err)
			return nil, fmt.Errorf("%w: cancel transition: %v", ErrInternal, err)
		}
	}

	payment := b.PaymentStatus
	if refund != nil {
		payment = domain.PaymentRefunded
	}

	uc.logger.Info("CancelBooking: booking id=%d cancelled by %s", req.BookingID, req.Actor)

	resp := &Response{
		BookingID: req.BookingID,
		Status:    string(domain.StatusCancelled),
		Payment:   string(payment),
		RefundRef: refundRef,
	}
	if refund != nil {
		resp.RefundAmount = ptr.Ptr(refund.Amount)
	}

	return resp, nil
}
