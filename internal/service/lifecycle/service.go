// Package lifecycle машина состояний бронирования
//
// Единственный писатель колонок status / payment_status. Все остальные
// компоненты (usecase'ы, реконсайлер вебхуков, свип) меняют состояние брони
// только через методы этого сервиса. Переходы коммутативны с повторной
// доставкой: повторное применение уже достигнутого терминального состояния -
// no-op, попытка отката назад - ErrStaleTransition
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/staypoint/STP-ReservationService/internal/domain"
	bookingRepo "github.com/staypoint/STP-ReservationService/internal/infra/storage/booking"
	"github.com/staypoint/STP-ReservationService/internal/integrations/notifier"
)

// RefundDetails параметры выполненного возврата
type RefundDetails struct {
	Amount int64
	Reason string
}

// Service машина состояний бронирования
type Service struct {
	repo     BookingRepository
	notifier Notifier
	logger   Logger
}

// NewService создает новый экземпляр машины состояний
func NewService(repo BookingRepository, n Notifier, logger Logger) *Service {
	return &Service{
		repo:     repo,
		notifier: n,
		logger:   logger,
	}
}

// Create вставляет бронирование в состоянии pending/pending
//
// Вызывается из create-флоу внутри сериализуемой транзакции, после проверки
// доступности; exclusion constraint БД - последний рубеж против гонки
func (s *Service) Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error) {
	b.Status = domain.StatusPending
	b.PaymentStatus = domain.PaymentPending

	created, err := s.repo.Create(ctx, b)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Create: booking id=%d property=%d range=%s total=%d %s",
		created.ID, created.PropertyID, created.Range(), created.TotalAmount, created.Currency)

	s.notify(ctx, created.ID, domain.StatusPending, domain.PaymentPending)
	return created, nil
}

// BeginPayment переводит оплату в processing и записывает ссылку сессии
// Повторный вызов с той же ссылкой - идемпотентный no-op
func (s *Service) BeginPayment(ctx context.Context, id int64, sessionRef string) error {
	if err := s.repo.BeginPayment(ctx, id, sessionRef); err != nil {
		if errors.Is(err, bookingRepo.ErrStaleState) {
			return s.staleOrNotFound(ctx, id, "BeginPayment")
		}
		return fmt.Errorf("%w: BeginPayment - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("BeginPayment: booking id=%d session=%s", id, sessionRef)
	s.notify(ctx, id, domain.StatusPending, domain.PaymentProcessing)
	return nil
}

// ConfirmPayment сверяет оплаченную сумму с квотой и переводит бронь
// в confirmed/succeeded
//
// Сравнение целочисленное, без допусков: любое расхождение - ErrAmountMismatch,
// состояние не меняется. Допускает payment_status=pending для событий,
// пришедших раньше ответа beginPayment (out-of-order доставка)
func (s *Service) ConfirmPayment(ctx context.Context, id int64, paidAmount int64, intentRef *string) error {
	b, err := s.getByID(ctx, id, "ConfirmPayment")
	if err != nil {
		return err
	}

	// Повторная доставка уже применённого события - no-op
	if b.PaymentStatus == domain.PaymentSucceeded {
		s.logger.Info("ConfirmPayment: booking id=%d already succeeded, skipping", id)
		return nil
	}

	if b.PaymentStatus == domain.PaymentRefunded {
		return ErrStaleTransition
	}

	if paidAmount != b.TotalAmount {
		s.logger.Error("ConfirmPayment: amount mismatch for booking id=%d: paid=%d expected=%d",
			id, paidAmount, b.TotalAmount)
		return fmt.Errorf("%w: paid=%d expected=%d", ErrAmountMismatch, paidAmount, b.TotalAmount)
	}

	if err := s.repo.ConfirmPayment(ctx, id, intentRef); err != nil {
		if errors.Is(err, bookingRepo.ErrStaleState) {
			// Конкурентный переход успел раньше
			return ErrStaleTransition
		}
		return fmt.Errorf("%w: ConfirmPayment - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("ConfirmPayment: booking id=%d confirmed, amount=%d", id, paidAmount)
	s.notify(ctx, id, domain.StatusConfirmed, domain.PaymentSucceeded)
	return nil
}

// FailPayment переводит payment_status в failed
//
// status остаётся pending: слот держится за гостем до TTL-свипа, чтобы
// оплату можно было повторить. Из succeeded/refunded перехода нет -
// отказ не может откатить успешную оплату
func (s *Service) FailPayment(ctx context.Context, id int64, reason string) error {
	b, err := s.getByID(ctx, id, "FailPayment")
	if err != nil {
		return err
	}

	if b.PaymentStatus == domain.PaymentFailed {
		s.logger.Info("FailPayment: booking id=%d already failed, skipping", id)
		return nil
	}

	if b.PaymentResolved() {
		s.logger.Warn("FailPayment: booking id=%d is %s, ignoring stale failure (%s)",
			id, b.PaymentStatus, reason)
		return ErrStaleTransition
	}

	if err := s.repo.FailPayment(ctx, id); err != nil {
		if errors.Is(err, bookingRepo.ErrStaleState) {
			return ErrStaleTransition
		}
		return fmt.Errorf("%w: FailPayment - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("FailPayment: booking id=%d payment failed: %s", id, reason)
	s.notify(ctx, id, b.Status, domain.PaymentFailed)
	return nil
}

// Cancel отменяет бронирование
//
// Легально из pending и confirmed. Оплаченная бронь обязана пройти через
// шаг возврата: refund записывается до перевода payment_status в refunded
func (s *Service) Cancel(ctx context.Context, id int64, actor domain.CancelActor, reason string, refund *RefundDetails) error {
	b, err := s.getByID(ctx, id, "Cancel")
	if err != nil {
		return err
	}

	if !b.CanBeCancelled() {
		if b.Status == domain.StatusCancelled {
			s.logger.Info("Cancel: booking id=%d already cancelled, skipping", id)
			return nil
		}
		return ErrCannotCancel
	}

	if b.NeedsRefundOnCancel() {
		if refund == nil {
			return ErrRefundRequired
		}
		if err := s.repo.RecordRefund(ctx, id, refund.Amount, refund.Reason); err != nil {
			if errors.Is(err, bookingRepo.ErrStaleState) {
				return ErrStaleTransition
			}
			return fmt.Errorf("%w: Cancel - record refund: %v", ErrInternal, err)
		}
		s.logger.Info("Cancel: booking id=%d refund recorded amount=%d", id, refund.Amount)
	}

	if err := s.repo.Cancel(ctx, id, fmt.Sprintf("%s: %s", actor, reason)); err != nil {
		if errors.Is(err, bookingRepo.ErrStaleState) {
			return ErrStaleTransition
		}
		return fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
	}

	paymentStatus := b.PaymentStatus
	if b.NeedsRefundOnCancel() {
		paymentStatus = domain.PaymentRefunded
	}

	s.logger.Info("Cancel: booking id=%d cancelled by %s", id, actor)
	s.notify(ctx, id, domain.StatusCancelled, paymentStatus)
	return nil
}

// CompleteRefund применяет возврат, инициированный на стороне шлюза
// (событие refund completed). Записывает возврат и отменяет бронь
func (s *Service) CompleteRefund(ctx context.Context, id int64, amount int64, reason string) error {
	b, err := s.getByID(ctx, id, "CompleteRefund")
	if err != nil {
		return err
	}

	if b.PaymentStatus == domain.PaymentRefunded {
		s.logger.Info("CompleteRefund: booking id=%d already refunded, skipping", id)
		return nil
	}

	if b.PaymentStatus != domain.PaymentSucceeded {
		return ErrStaleTransition
	}

	if err := s.repo.RecordRefund(ctx, id, amount, reason); err != nil {
		if errors.Is(err, bookingRepo.ErrStaleState) {
			return ErrStaleTransition
		}
		return fmt.Errorf("%w: CompleteRefund - record refund: %v", ErrInternal, err)
	}

	// Возврат на стороне шлюза снимает бронь с календаря
	if b.CanBeCancelled() {
		if err := s.repo.Cancel(ctx, id, fmt.Sprintf("gateway refund: %s", reason)); err != nil &&
			!errors.Is(err, bookingRepo.ErrStaleState) {
			return fmt.Errorf("%w: CompleteRefund - cancel booking: %v", ErrInternal, err)
		}
	}

	s.logger.Info("CompleteRefund: booking id=%d refunded amount=%d", id, amount)
	s.notify(ctx, id, domain.StatusCancelled, domain.PaymentRefunded)
	return nil
}

// ReleaseExpired отменяет pending-бронирования, чья оплата не дошла до
// терминального состояния за ttl. Освобождённые диапазоны сразу видны
// проверке доступности
func (s *Service) ReleaseExpired(ctx context.Context, ttl time.Duration, now time.Time) ([]int64, error) {
	ids, err := s.repo.ExpirePending(ctx, now.Add(-ttl), "system: payment not completed within hold window")
	if err != nil {
		return nil, fmt.Errorf("%w: ReleaseExpired - repository error: %v", ErrInternal, err)
	}

	for _, id := range ids {
		s.logger.Info("ReleaseExpired: booking id=%d released after TTL", id)
		s.notify(ctx, id, domain.StatusCancelled, domain.PaymentFailed)
	}

	return ids, nil
}

// CompleteElapsed переводит подтверждённые брони с прошедшей датой выезда
// в completed. payment_status не меняется
func (s *Service) CompleteElapsed(ctx context.Context, now time.Time) ([]int64, error) {
	ids, err := s.repo.CompleteElapsed(ctx, domain.DateOnly(now))
	if err != nil {
		return nil, fmt.Errorf("%w: CompleteElapsed - repository error: %v", ErrInternal, err)
	}

	for _, id := range ids {
		s.logger.Info("CompleteElapsed: booking id=%d completed", id)
		s.notify(ctx, id, domain.StatusCompleted, domain.PaymentSucceeded)
	}

	return ids, nil
}

// getByID загружает бронь, маппя ошибку репозитория
func (s *Service) getByID(ctx context.Context, id int64, op string) (*domain.Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return b, nil
}

// staleOrNotFound уточняет причину нулевого UPDATE'а: брони нет вовсе
// или переход нелегален
func (s *Service) staleOrNotFound(ctx context.Context, id int64, op string) error {
	if _, err := s.getByID(ctx, id, op); err != nil {
		return err
	}
	return ErrStaleTransition
}

// notify best-effort уведомление о переходе; ошибка не влияет на переход
func (s *Service) notify(ctx context.Context, id int64, status domain.BookingStatus, paymentStatus domain.PaymentStatus) {
	n := notifier.Notification{
		BookingID:     id,
		Status:        string(status),
		PaymentStatus: string(paymentStatus),
		Timestamp:     time.Now().UTC(),
	}

	if err := s.notifier.Notify(ctx, n); err != nil {
		s.logger.Warn("notify: failed to deliver notification for booking id=%d: %v", id, err)
	}
}
