package process_webhook

import (
	"context"
	"errors"
	"fmt"

	"github.com/staypoint/STP-ReservationService/internal/domain"
	bookingRepo "github.com/staypoint/STP-ReservationService/internal/infra/storage/booking"
	eventRepo "github.com/staypoint/STP-ReservationService/internal/infra/storage/paymentevent"
	"github.com/staypoint/STP-ReservationService/internal/integrations/stripegw"
	"github.com/staypoint/STP-ReservationService/internal/service/lifecycle"
	"github.com/staypoint/STP-ReservationService/pkg/ptr"
)

// UseCase реконсайлер событий платёжного шлюза
//
// Порядок жёсткий: сначала верификация подписи, затем запись события
// в журнал, и только потом бизнес-логика. Упавшая обработка оставляет
// строку журнала с last_error - повторная доставка того же event_id
// продолжит с чистого листа, а не задублирует переход
type UseCase struct {
	bookingRepo BookingRepository
	eventRepo   PaymentEventRepository
	lifecycle   LifecycleService
	gateway     PaymentGateway
	metrics     Metrics
	maxAttempts int
	logger      Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	eventRepo PaymentEventRepository,
	lifecycle LifecycleService,
	gateway PaymentGateway,
	metrics Metrics,
	maxAttempts int,
	logger Logger,
) *UseCase {
	if maxAttempts <= 0 {
		maxAttempts = domain.DefaultMaxWebhookAttempts
	}
	return &UseCase{
		bookingRepo: bookingRepo,
		eventRepo:   eventRepo,
		lifecycle:   lifecycle,
		gateway:     gateway,
		metrics:     metrics,
		maxAttempts: maxAttempts,
		logger:      logger,
	}
}

// Execute обрабатывает входящий вебхук
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	// 1. Верификация подписи. Невалидная подпись не оставляет следов в журнале
	event, err := uc.gateway.VerifyEvent(req.Payload, req.Signature)
	if err != nil {
		if errors.Is(err, stripegw.ErrInvalidSignature) {
			uc.logger.Warn("ProcessWebhook: invalid signature: %v", err)
			return nil, ErrInvalidSignature
		}
		uc.logger.Warn("ProcessWebhook: invalid payload: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	uc.logger.Info("ProcessWebhook: event id=%s type=%s", event.ID, event.Type)

	// 2. Записываем событие в журнал до какой-либо бизнес-логики
	_, err = uc.eventRepo.Insert(ctx, &domain.PaymentEvent{
		EventID:   event.ID,
		EventType: event.Type,
		Payload:   event.Raw,
	})

	if err != nil {
		if !errors.Is(err, eventRepo.ErrDuplicateEvent) {
			uc.logger.Error("ProcessWebhook: failed to insert event id=%s: %v", event.ID, err)
			return nil, fmt.Errorf("%w: insert event: %v", ErrRetryable, err)
		}

		// 3. Дубликат: уже обработанное событие подтверждаем без переходов,
		// необработанное (прошлая попытка упала) обрабатываем заново
		existing, getErr := uc.eventRepo.GetByEventID(ctx, event.ID)
		if getErr != nil {
			uc.logger.Error("ProcessWebhook: failed to get duplicate event id=%s: %v", event.ID, getErr)
			return nil, fmt.Errorf("%w: get duplicate event: %v", ErrRetryable, getErr)
		}

		if existing.Processed {
			uc.logger.Info("ProcessWebhook: event id=%s already processed, acknowledging", event.ID)
			uc.metrics.ObserveWebhookEvent(event.Type, OutcomeDuplicate)
			return &Response{
				EventID:   event.ID,
				EventType: event.Type,
				Outcome:   OutcomeDuplicate,
				BookingID: existing.BookingID,
			}, nil
		}

		uc.logger.Info("ProcessWebhook: event id=%s recorded but unprocessed, reprocessing", event.ID)
	}

	// 4. Применяем событие
	resp, err := uc.apply(ctx, event)
	if err != nil {
		return nil, err
	}

	uc.metrics.ObserveWebhookEvent(event.Type, resp.Outcome)
	return resp, nil
}

// apply разрешает бронь и вызывает переход машины состояний
func (uc *UseCase) apply(ctx context.Context, event *stripegw.Event) (*Response, error) {
	resp := &Response{EventID: event.ID, EventType: event.Type}

	// Неизвестный тип: записали, подтвердили, переходов нет
	if event.Kind == stripegw.KindUnknown {
		if err := uc.eventRepo.MarkProcessed(ctx, event.ID, nil); err != nil {
			return nil, fmt.Errorf("%w: mark unknown event processed: %v", ErrRetryable, err)
		}
		uc.logger.Info("ProcessWebhook: event id=%s type=%s is not handled, acknowledged", event.ID, event.Type)
		resp.Outcome = OutcomeIgnored
		return resp, nil
	}

	// Разрешаем бронь по ссылке сессии или intent
	b, err := uc.resolveBooking(ctx, event)
	if err != nil {
		return nil, err
	}
	if b == nil {
		resp.Outcome = OutcomeUnresolved
		return resp, nil
	}
	resp.BookingID = ptr.Ptr(b.ID)

	// Вызываем переход
	switch event.Kind {
	case stripegw.KindPaymentSucceeded:
		err = uc.lifecycle.ConfirmPayment(ctx, b.ID, event.Amount, intentRefOf(event))
	case stripegw.KindPaymentFailed:
		reason := event.FailureMessage
		if reason == "" {
			reason = event.Type
		}
		err = uc.lifecycle.FailPayment(ctx, b.ID, reason)
	case stripegw.KindRefundCompleted:
		err = uc.lifecycle.CompleteRefund(ctx, b.ID, event.Amount, "gateway refund")
	}

	switch {
	case err == nil:
		if err := uc.eventRepo.MarkProcessed(ctx, event.ID, ptr.Ptr(b.ID)); err != nil {
			return nil, fmt.Errorf("%w: mark event processed: %v", ErrRetryable, err)
		}
		resp.Outcome = OutcomeApplied
		return resp, nil

	case errors.Is(err, lifecycle.ErrAmountMismatch):
		// Повторная доставка не исправит сумму: фиксируем и подтверждаем,
		// дальше ручной разбор по журналу
		uc.logger.Error("ProcessWebhook: amount mismatch for event id=%s booking id=%d: %v",
			event.ID, b.ID, err)
		if _, recErr := uc.eventRepo.RecordFailure(ctx, event.ID, err.Error()); recErr != nil {
			return nil, fmt.Errorf("%w: record amount mismatch: %v", ErrRetryable, recErr)
		}
		resp.Outcome = OutcomeAmountMismatch
		return resp, nil

	case errors.Is(err, lifecycle.ErrStaleTransition):
		// Запоздавшее или вышедшее из порядка событие: отбрасываем
		uc.logger.Warn("ProcessWebhook: stale transition for event id=%s booking id=%d", event.ID, b.ID)
		if err := uc.eventRepo.MarkProcessed(ctx, event.ID, ptr.Ptr(b.ID)); err != nil {
			return nil, fmt.Errorf("%w: mark stale event processed: %v", ErrRetryable, err)
		}
		resp.Outcome = OutcomeStale
		return resp, nil

	default:
		return nil, uc.recordFailure(ctx, event, fmt.Sprintf("transition failed: %v", err))
	}
}

// resolveBooking ищет бронь по ссылкам события
// Возвращает (nil, nil), когда ретраи исчерпаны и событие оставлено
// в журнале для операторского разбора
func (uc *UseCase) resolveBooking(ctx context.Context, event *stripegw.Event) (*domain.Booking, error) {
	ref := event.PaymentRef()
	if ref == "" {
		uc.logger.Warn("ProcessWebhook: event id=%s carries no payment reference", event.ID)
		return nil, uc.giveUpOrRetry(ctx, event, "event carries no payment reference")
	}

	b, err := uc.bookingRepo.GetByPaymentRef(ctx, ref)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			uc.logger.Warn("ProcessWebhook: no booking for ref=%s (event id=%s)", ref, event.ID)
			return nil, uc.giveUpOrRetry(ctx, event, fmt.Sprintf("no booking for payment ref %s", ref))
		}
		return nil, fmt.Errorf("%w: get booking by ref: %v", ErrRetryable, err)
	}

	return b, nil
}

// giveUpOrRetry инкрементирует счётчик попыток; до исчерпания лимита
// шлюзу отдается retryable-ошибка, после - событие остаётся в журнале
// необработанным и подтверждается
func (uc *UseCase) giveUpOrRetry(ctx context.Context, event *stripegw.Event, reason string) error {
	attempts, err := uc.eventRepo.RecordFailure(ctx, event.ID, reason)
	if err != nil {
		return fmt.Errorf("%w: record failure: %v", ErrRetryable, err)
	}

	if attempts < uc.maxAttempts {
		return fmt.Errorf("%w: %s (attempt %d/%d)", ErrRetryable, reason, attempts, uc.maxAttempts)
	}

	uc.logger.Error("ProcessWebhook: event id=%s unresolved after %d attempts: %s",
		event.ID, attempts, reason)
	uc.metrics.ObserveWebhookUnresolved(event.Type)
	return nil
}

// recordFailure для временных ошибок переходов: событие остаётся
// необработанным, шлюз доставит его повторно
func (uc *UseCase) recordFailure(ctx context.Context, event *stripegw.Event, reason string) error {
	if _, err := uc.eventRepo.RecordFailure(ctx, event.ID, reason); err != nil {
		return fmt.Errorf("%w: record failure: %v", ErrRetryable, err)
	}
	return fmt.Errorf("%w: %s", ErrRetryable, reason)
}

// intentRefOf возвращает intent ref события или nil, если его нет
func intentRefOf(event *stripegw.Event) *string {
	if event.IntentRef == "" {
		return nil
	}
	return ptr.Ptr(event.IntentRef)
}
