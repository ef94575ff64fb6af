package lifecycle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staypoint/STP-ReservationService/internal/domain"
	bookingRepo "github.com/staypoint/STP-ReservationService/internal/infra/storage/booking"
	"github.com/staypoint/STP-ReservationService/internal/integrations/notifier"
	"github.com/staypoint/STP-ReservationService/pkg/ptr"
)

// fakeRepo in-memory реализация BookingRepository с теми же guard'ами,
// что и у условных UPDATE'ов в Postgres
type fakeRepo struct {
	bookings map[int64]*domain.Booking
	nextID   int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{bookings: make(map[int64]*domain.Booking), nextID: 1}
}

func (r *fakeRepo) Create(_ context.Context, b *domain.Booking) (*domain.Booking, error) {
	cp := *b
	cp.ID = r.nextID
	r.nextID++
	r.bookings[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r *fakeRepo) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	b, ok := r.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrBookingNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *fakeRepo) BeginPayment(_ context.Context, id int64, sessionRef string) error {
	b, ok := r.bookings[id]
	if !ok {
		return bookingRepo.ErrStaleState
	}
	sameSession := b.PaymentStatus == domain.PaymentProcessing &&
		b.PaymentSessionRef != nil && *b.PaymentSessionRef == sessionRef
	retryable := b.PaymentStatus == domain.PaymentPending || b.PaymentStatus == domain.PaymentFailed
	if !(b.Status == domain.StatusPending && (retryable || sameSession)) {
		return bookingRepo.ErrStaleState
	}
	b.PaymentStatus = domain.PaymentProcessing
	b.PaymentSessionRef = &sessionRef
	b.PaymentIntentRef = nil
	return nil
}

func (r *fakeRepo) ConfirmPayment(_ context.Context, id int64, intentRef *string) error {
	b, ok := r.bookings[id]
	if !ok {
		return bookingRepo.ErrStaleState
	}
	if b.Status != domain.StatusPending ||
		(b.PaymentStatus != domain.PaymentPending && b.PaymentStatus != domain.PaymentProcessing) {
		return bookingRepo.ErrStaleState
	}
	b.Status = domain.StatusConfirmed
	b.PaymentStatus = domain.PaymentSucceeded
	if intentRef != nil {
		b.PaymentIntentRef = intentRef
	}
	return nil
}

func (r *fakeRepo) FailPayment(_ context.Context, id int64) error {
	b, ok := r.bookings[id]
	if !ok {
		return bookingRepo.ErrStaleState
	}
	if b.PaymentStatus != domain.PaymentPending && b.PaymentStatus != domain.PaymentProcessing {
		return bookingRepo.ErrStaleState
	}
	b.PaymentStatus = domain.PaymentFailed
	return nil
}

func (r *fakeRepo) Cancel(_ context.Context, id int64, reason string) error {
	b, ok := r.bookings[id]
	if !ok {
		return bookingRepo.ErrStaleState
	}
	if !b.CanBeCancelled() {
		return bookingRepo.ErrStaleState
	}
	b.Status = domain.StatusCancelled
	b.CancellationReason = &reason
	now := time.Now().UTC()
	b.CancelledAt = &now
	return nil
}

func (r *fakeRepo) RecordRefund(_ context.Context, id int64, amount int64, reason string) error {
	b, ok := r.bookings[id]
	if !ok {
		return bookingRepo.ErrStaleState
	}
	if b.PaymentStatus != domain.PaymentSucceeded {
		return bookingRepo.ErrStaleState
	}
	b.PaymentStatus = domain.PaymentRefunded
	b.RefundAmount = &amount
	b.RefundReason = &reason
	now := time.Now().UTC()
	b.RefundedAt = &now
	return nil
}

func (r *fakeRepo) ExpirePending(_ context.Context, olderThan time.Time, reason string) ([]int64, error) {
	var ids []int64
	for _, b := range r.bookings {
		if b.Status == domain.StatusPending && !b.PaymentResolved() && b.CreatedAt.Before(olderThan) {
			b.Status = domain.StatusCancelled
			b.CancellationReason = &reason
			ids = append(ids, b.ID)
		}
	}
	return ids, nil
}

func (r *fakeRepo) CompleteElapsed(_ context.Context, today time.Time) ([]int64, error) {
	var ids []int64
	for _, b := range r.bookings {
		if b.Status == domain.StatusConfirmed && !b.CheckOut.After(today) {
			b.Status = domain.StatusCompleted
			ids = append(ids, b.ID)
		}
	}
	return ids, nil
}

type fakeNotifier struct {
	sent []notifier.Notification
}

func (n *fakeNotifier) Notify(_ context.Context, notification notifier.Notification) error {
	n.sent = append(n.sent, notification)
	return nil
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func newTestService() (*Service, *fakeRepo, *fakeNotifier) {
	repo := newFakeRepo()
	n := &fakeNotifier{}
	return NewService(repo, n, nopLogger{}), repo, n
}

func seedBooking(t *testing.T, svc *Service) *domain.Booking {
	t.Helper()

	checkIn := domain.DateOnly(time.Now().UTC().AddDate(0, 0, 10))
	b, err := svc.Create(context.Background(), &domain.Booking{
		PropertyID:  42,
		GuestID:     7,
		GuestName:   "Anna",
		GuestEmail:  "anna@example.com",
		CheckIn:     checkIn,
		CheckOut:    checkIn.AddDate(0, 0, 3),
		Guests:      2,
		NightlyRate: 10000,
		CleaningFee: 5000,
		ServiceFee:  3600,
		TotalAmount: 38600,
		Currency:    "usd",
		CreatedAt:   time.Now().UTC(),
	})
	require.NoError(t, err)
	return b
}

func TestService_HappyPath(t *testing.T) {
	svc, repo, n := newTestService()
	b := seedBooking(t, svc)

	assert.Equal(t, domain.StatusPending, b.Status)
	assert.Equal(t, domain.PaymentPending, b.PaymentStatus)

	err := svc.BeginPayment(context.Background(), b.ID, "cs_test_123")
	require.NoError(t, err)

	err = svc.ConfirmPayment(context.Background(), b.ID, 38600, ptr.Ptr("pi_test_123"))
	require.NoError(t, err)

	got := repo.bookings[b.ID]
	assert.Equal(t, domain.StatusConfirmed, got.Status)
	assert.Equal(t, domain.PaymentSucceeded, got.PaymentStatus)
	require.NotNil(t, got.PaymentIntentRef)
	assert.Equal(t, "pi_test_123", *got.PaymentIntentRef)

	// pending, processing, succeeded
	assert.Len(t, n.sent, 3)
	assert.Equal(t, "succeeded", n.sent[2].PaymentStatus)
}

func TestService_ConfirmPayment_AmountMismatch(t *testing.T) {
	svc, repo, _ := newTestService()
	b := seedBooking(t, svc)

	require.NoError(t, svc.BeginPayment(context.Background(), b.ID, "cs_test_123"))

	err := svc.ConfirmPayment(context.Background(), b.ID, 38500, nil)
	require.ErrorIs(t, err, ErrAmountMismatch)

	// Состояние не изменилось: расхождение суммы не подтверждает бронь
	got := repo.bookings[b.ID]
	assert.Equal(t, domain.StatusPending, got.Status)
	assert.Equal(t, domain.PaymentProcessing, got.PaymentStatus)
}

func TestService_ConfirmPayment_Redelivery(t *testing.T) {
	svc, repo, n := newTestService()
	b := seedBooking(t, svc)

	require.NoError(t, svc.BeginPayment(context.Background(), b.ID, "cs_test_123"))
	require.NoError(t, svc.ConfirmPayment(context.Background(), b.ID, 38600, ptr.Ptr("pi_1")))

	sentBefore := len(n.sent)

	// Повторная доставка того же события - no-op, без уведомления
	err := svc.ConfirmPayment(context.Background(), b.ID, 38600, ptr.Ptr("pi_1"))
	require.NoError(t, err)
	assert.Len(t, n.sent, sentBefore)

	assert.Equal(t, domain.PaymentSucceeded, repo.bookings[b.ID].PaymentStatus)
}

func TestService_ConfirmPayment_BeforeBeginPayment(t *testing.T) {
	// Событие шлюза может прийти раньше, чем ответ на beginPayment
	svc, repo, _ := newTestService()
	b := seedBooking(t, svc)

	err := svc.ConfirmPayment(context.Background(), b.ID, 38600, ptr.Ptr("pi_1"))
	require.NoError(t, err)

	assert.Equal(t, domain.StatusConfirmed, repo.bookings[b.ID].Status)
}

func TestService_FailPayment_NoBackwardTransition(t *testing.T) {
	svc, repo, _ := newTestService()
	b := seedBooking(t, svc)

	require.NoError(t, svc.BeginPayment(context.Background(), b.ID, "cs_test_123"))
	require.NoError(t, svc.ConfirmPayment(context.Background(), b.ID, 38600, nil))

	// Запоздавший failure после успеха не откатывает оплату
	err := svc.FailPayment(context.Background(), b.ID, "card_declined")
	require.ErrorIs(t, err, ErrStaleTransition)

	got := repo.bookings[b.ID]
	assert.Equal(t, domain.StatusConfirmed, got.Status)
	assert.Equal(t, domain.PaymentSucceeded, got.PaymentStatus)
}

func TestService_FailPayment_KeepsSlotHeld(t *testing.T) {
	svc, repo, _ := newTestService()
	b := seedBooking(t, svc)

	require.NoError(t, svc.BeginPayment(context.Background(), b.ID, "cs_test_123"))
	require.NoError(t, svc.FailPayment(context.Background(), b.ID, "card_declined"))

	// Бронь остаётся pending, слот держится до TTL-свипа
	got := repo.bookings[b.ID]
	assert.Equal(t, domain.StatusPending, got.Status)
	assert.Equal(t, domain.PaymentFailed, got.PaymentStatus)
	assert.True(t, got.HoldsCalendar())

	// Повторный отказ - no-op
	require.NoError(t, svc.FailPayment(context.Background(), b.ID, "card_declined"))
}

func TestService_BeginPayment_RetryAfterFailedPayment(t *testing.T) {
	svc, repo, _ := newTestService()
	b := seedBooking(t, svc)

	require.NoError(t, svc.BeginPayment(context.Background(), b.ID, "cs_first"))
	require.NoError(t, svc.FailPayment(context.Background(), b.ID, "card_declined"))

	// Слот ещё удержан, гость оплачивает заново новой сессией
	err := svc.BeginPayment(context.Background(), b.ID, "cs_retry")
	require.NoError(t, err)

	got := repo.bookings[b.ID]
	assert.Equal(t, domain.PaymentProcessing, got.PaymentStatus)
	require.NotNil(t, got.PaymentSessionRef)
	assert.Equal(t, "cs_retry", *got.PaymentSessionRef)
	assert.Nil(t, got.PaymentIntentRef)

	// Новая попытка завершается как обычная оплата
	require.NoError(t, svc.ConfirmPayment(context.Background(), b.ID, 38600, ptr.Ptr("pi_retry")))
	assert.Equal(t, domain.StatusConfirmed, repo.bookings[b.ID].Status)
}

func TestService_Cancel_UnpaidBooking(t *testing.T) {
	svc, repo, _ := newTestService()
	b := seedBooking(t, svc)

	err := svc.Cancel(context.Background(), b.ID, domain.CancelledByGuest, "changed plans", nil)
	require.NoError(t, err)

	got := repo.bookings[b.ID]
	assert.Equal(t, domain.StatusCancelled, got.Status)
	assert.False(t, got.HoldsCalendar())
	require.NotNil(t, got.CancellationReason)
	assert.Equal(t, "guest: changed plans", *got.CancellationReason)
}

func TestService_Cancel_PaidBookingRequiresRefund(t *testing.T) {
	svc, repo, _ := newTestService()
	b := seedBooking(t, svc)

	require.NoError(t, svc.BeginPayment(context.Background(), b.ID, "cs_test_123"))
	require.NoError(t, svc.ConfirmPayment(context.Background(), b.ID, 38600, ptr.Ptr("pi_1")))

	// Без возврата оплаченную бронь отменить нельзя
	err := svc.Cancel(context.Background(), b.ID, domain.CancelledByGuest, "changed plans", nil)
	require.ErrorIs(t, err, ErrRefundRequired)
	assert.Equal(t, domain.StatusConfirmed, repo.bookings[b.ID].Status)

	err = svc.Cancel(context.Background(), b.ID, domain.CancelledByGuest, "changed plans",
		&RefundDetails{Amount: 38600, Reason: "guest cancellation"})
	require.NoError(t, err)

	got := repo.bookings[b.ID]
	assert.Equal(t, domain.StatusCancelled, got.Status)
	assert.Equal(t, domain.PaymentRefunded, got.PaymentStatus)
	require.NotNil(t, got.RefundAmount)
	assert.Equal(t, int64(38600), *got.RefundAmount)
}

func TestService_Cancel_AlreadyCancelled(t *testing.T) {
	svc, _, n := newTestService()
	b := seedBooking(t, svc)

	require.NoError(t, svc.Cancel(context.Background(), b.ID, domain.CancelledByGuest, "changed plans", nil))
	sentBefore := len(n.sent)

	require.NoError(t, svc.Cancel(context.Background(), b.ID, domain.CancelledByGuest, "changed plans", nil))
	assert.Len(t, n.sent, sentBefore)
}

func TestService_Cancel_CompletedBooking(t *testing.T) {
	svc, repo, _ := newTestService()
	b := seedBooking(t, svc)

	repo.bookings[b.ID].Status = domain.StatusCompleted

	err := svc.Cancel(context.Background(), b.ID, domain.CancelledByHost, "too late", nil)
	require.ErrorIs(t, err, ErrCannotCancel)
}

func TestService_CompleteRefund_GatewayInitiated(t *testing.T) {
	svc, repo, _ := newTestService()
	b := seedBooking(t, svc)

	require.NoError(t, svc.BeginPayment(context.Background(), b.ID, "cs_test_123"))
	require.NoError(t, svc.ConfirmPayment(context.Background(), b.ID, 38600, ptr.Ptr("pi_1")))

	err := svc.CompleteRefund(context.Background(), b.ID, 38600, "charge.refunded")
	require.NoError(t, err)

	got := repo.bookings[b.ID]
	assert.Equal(t, domain.StatusCancelled, got.Status)
	assert.Equal(t, domain.PaymentRefunded, got.PaymentStatus)

	// Повторная доставка refund-события - no-op
	require.NoError(t, svc.CompleteRefund(context.Background(), b.ID, 38600, "charge.refunded"))
}

func TestService_CompleteRefund_UnpaidBooking(t *testing.T) {
	svc, _, _ := newTestService()
	b := seedBooking(t, svc)

	err := svc.CompleteRefund(context.Background(), b.ID, 38600, "charge.refunded")
	require.ErrorIs(t, err, ErrStaleTransition)
}

func TestService_ReleaseExpired(t *testing.T) {
	svc, repo, _ := newTestService()

	stale := seedBooking(t, svc)
	repo.bookings[stale.ID].CreatedAt = time.Now().UTC().Add(-time.Hour)

	fresh := seedBooking(t, svc)

	paid := seedBooking(t, svc)
	repo.bookings[paid.ID].CreatedAt = time.Now().UTC().Add(-time.Hour)
	require.NoError(t, svc.ConfirmPayment(context.Background(), paid.ID, 38600, nil))

	ids, err := svc.ReleaseExpired(context.Background(), 30*time.Minute, time.Now().UTC())
	require.NoError(t, err)
	require.Len(t, ids, 1)
	assert.Equal(t, stale.ID, ids[0])

	assert.Equal(t, domain.StatusCancelled, repo.bookings[stale.ID].Status)
	assert.Equal(t, domain.StatusPending, repo.bookings[fresh.ID].Status)
	assert.Equal(t, domain.StatusConfirmed, repo.bookings[paid.ID].Status)
}

func TestService_CompleteElapsed(t *testing.T) {
	svc, repo, _ := newTestService()

	past := seedBooking(t, svc)
	require.NoError(t, svc.ConfirmPayment(context.Background(), past.ID, 38600, nil))
	repo.bookings[past.ID].CheckIn = domain.DateOnly(time.Now().UTC().AddDate(0, 0, -5))
	repo.bookings[past.ID].CheckOut = domain.DateOnly(time.Now().UTC().AddDate(0, 0, -2))

	future := seedBooking(t, svc)
	require.NoError(t, svc.ConfirmPayment(context.Background(), future.ID, 38600, nil))

	ids, err := svc.CompleteElapsed(context.Background(), time.Now().UTC())
	require.NoError(t, err)
	require.Len(t, ids, 1)
	assert.Equal(t, past.ID, ids[0])

	assert.Equal(t, domain.StatusCompleted, repo.bookings[past.ID].Status)
	assert.Equal(t, domain.PaymentSucceeded, repo.bookings[past.ID].PaymentStatus)
	assert.Equal(t, domain.StatusConfirmed, repo.bookings[future.ID].Status)
}

func TestService_NotFound(t *testing.T) {
	svc, _, _ := newTestService()

	err := svc.ConfirmPayment(context.Background(), 999, 100, nil)
	require.ErrorIs(t, err, ErrBookingNotFound)

	err = svc.Cancel(context.Background(), 999, domain.CancelledByGuest, "x", nil)
	require.ErrorIs(t, err, ErrBookingNotFound)
}
