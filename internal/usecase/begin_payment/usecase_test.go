package begin_payment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staypoint/STP-ReservationService/internal/domain"
	bookingRepo "github.com/staypoint/STP-ReservationService/internal/infra/storage/booking"
	"github.com/staypoint/STP-ReservationService/internal/integrations/stripegw"
	"github.com/staypoint/STP-ReservationService/pkg/ptr"
)

type fakeBookingRepo struct {
	booking *domain.Booking
}

func (r *fakeBookingRepo) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	if r.booking == nil || r.booking.ID != id {
		return nil, bookingRepo.ErrBookingNotFound
	}
	return r.booking, nil
}

type fakeLifecycle struct {
	bookingID  int64
	sessionRef string
	calls      int
	err        error
}

func (l *fakeLifecycle) BeginPayment(_ context.Context, id int64, sessionRef string) error {
	l.calls++
	l.bookingID = id
	l.sessionRef = sessionRef
	return l.err
}

type fakeGateway struct {
	created int
	err     error
}

func (g *fakeGateway) CreateCheckoutSession(_ context.Context, b *domain.Booking) (*stripegw.CheckoutSession, error) {
	if g.err != nil {
		return nil, g.err
	}
	g.created++
	return &stripegw.CheckoutSession{
		SessionRef: "cs_new",
		SessionURL: "https://checkout.example.com/cs_new",
	}, nil
}

func (g *fakeGateway) SessionURL(sessionRef string) string {
	return "https://checkout.example.com/" + sessionRef
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func testBooking() *domain.Booking {
	checkIn := time.Now().UTC().AddDate(0, 0, 10)
	return &domain.Booking{
		ID:            11,
		PropertyID:    1,
		GuestID:       7,
		CheckIn:       checkIn,
		CheckOut:      checkIn.AddDate(0, 0, 3),
		TotalAmount:   38600,
		Currency:      "usd",
		Status:        domain.StatusPending,
		PaymentStatus: domain.PaymentPending,
	}
}

func TestExecute_CreatesSession(t *testing.T) {
	lc := &fakeLifecycle{}
	gw := &fakeGateway{}
	uc := NewUseCase(&fakeBookingRepo{booking: testBooking()}, lc, gw, nopLogger{})

	resp, err := uc.Execute(context.Background(), &Request{BookingID: 11, GuestID: 7})
	require.NoError(t, err)

	assert.Equal(t, "cs_new", resp.SessionRef)
	assert.Equal(t, "https://checkout.example.com/cs_new", resp.SessionURL)

	// Сумма сессии берётся из строки брони
	assert.Equal(t, int64(38600), resp.Amount)
	assert.Equal(t, "usd", resp.Currency)

	assert.Equal(t, 1, gw.created)
	assert.Equal(t, int64(11), lc.bookingID)
	assert.Equal(t, "cs_new", lc.sessionRef)
}

func TestExecute_ReusesOpenSession(t *testing.T) {
	b := testBooking()
	b.PaymentStatus = domain.PaymentProcessing
	b.PaymentSessionRef = ptr.Ptr("cs_open")

	lc := &fakeLifecycle{}
	gw := &fakeGateway{}
	uc := NewUseCase(&fakeBookingRepo{booking: b}, lc, gw, nopLogger{})

	resp, err := uc.Execute(context.Background(), &Request{BookingID: 11, GuestID: 7})
	require.NoError(t, err)

	// Повторный запрос не плодит сессии: возвращается открытая
	assert.Equal(t, "cs_open", resp.SessionRef)
	assert.Equal(t, "https://checkout.example.com/cs_open", resp.SessionURL)
	assert.Equal(t, 0, gw.created)
	assert.Equal(t, 0, lc.calls)
}

func TestExecute_RetryAfterFailedPayment(t *testing.T) {
	// Неуспешная оплата не хоронит бронь: слот держится до TTL-свипа
	// и гость может оплатить заново новой сессией
	b := testBooking()
	b.PaymentStatus = domain.PaymentFailed
	b.PaymentSessionRef = ptr.Ptr("cs_declined")

	lc := &fakeLifecycle{}
	gw := &fakeGateway{}
	uc := NewUseCase(&fakeBookingRepo{booking: b}, lc, gw, nopLogger{})

	resp, err := uc.Execute(context.Background(), &Request{BookingID: 11, GuestID: 7})
	require.NoError(t, err)

	assert.Equal(t, "cs_new", resp.SessionRef)
	assert.Equal(t, 1, gw.created)
	assert.Equal(t, "cs_new", lc.sessionRef)
}

func TestExecute_AlreadyPaid(t *testing.T) {
	b := testBooking()
	b.Status = domain.StatusConfirmed
	b.PaymentStatus = domain.PaymentSucceeded

	uc := NewUseCase(&fakeBookingRepo{booking: b}, &fakeLifecycle{}, &fakeGateway{}, nopLogger{})

	_, err := uc.Execute(context.Background(), &Request{BookingID: 11, GuestID: 7})
	require.ErrorIs(t, err, ErrNotPayable)
}

func TestExecute_PaidPendingIsAlreadyPaid(t *testing.T) {
	b := testBooking()
	b.PaymentStatus = domain.PaymentSucceeded

	uc := NewUseCase(&fakeBookingRepo{booking: b}, &fakeLifecycle{}, &fakeGateway{}, nopLogger{})

	_, err := uc.Execute(context.Background(), &Request{BookingID: 11, GuestID: 7})
	require.ErrorIs(t, err, ErrAlreadyPaid)
}

func TestExecute_CancelledIsNotPayable(t *testing.T) {
	b := testBooking()
	b.Status = domain.StatusCancelled

	uc := NewUseCase(&fakeBookingRepo{booking: b}, &fakeLifecycle{}, &fakeGateway{}, nopLogger{})

	_, err := uc.Execute(context.Background(), &Request{BookingID: 11, GuestID: 7})
	require.ErrorIs(t, err, ErrNotPayable)
}

func TestExecute_ForeignBooking(t *testing.T) {
	uc := NewUseCase(&fakeBookingRepo{booking: testBooking()}, &fakeLifecycle{}, &fakeGateway{}, nopLogger{})

	_, err := uc.Execute(context.Background(), &Request{BookingID: 11, GuestID: 99})
	require.ErrorIs(t, err, ErrAccessDenied)
}

func TestExecute_BookingNotFound(t *testing.T) {
	uc := NewUseCase(&fakeBookingRepo{}, &fakeLifecycle{}, &fakeGateway{}, nopLogger{})

	_, err := uc.Execute(context.Background(), &Request{BookingID: 404, GuestID: 7})
	require.ErrorIs(t, err, ErrBookingNotFound)
}

func TestExecute_GatewayFailure(t *testing.T) {
	lc := &fakeLifecycle{}
	gw := &fakeGateway{err: stripegw.ErrGateway}
	uc := NewUseCase(&fakeBookingRepo{booking: testBooking()}, lc, gw, nopLogger{})

	_, err := uc.Execute(context.Background(), &Request{BookingID: 11, GuestID: 7})
	require.ErrorIs(t, err, ErrGateway)

	// Состояние брони не трогаем, пока сессия не создана
	assert.Equal(t, 0, lc.calls)
}
