package process_webhook

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staypoint/STP-ReservationService/internal/domain"
	bookingRepo "github.com/staypoint/STP-ReservationService/internal/infra/storage/booking"
	eventRepo "github.com/staypoint/STP-ReservationService/internal/infra/storage/paymentevent"
	"github.com/staypoint/STP-ReservationService/internal/integrations/stripegw"
	"github.com/staypoint/STP-ReservationService/internal/service/lifecycle"
)

type fakeGateway struct {
	event *stripegw.Event
	err   error
}

func (g *fakeGateway) VerifyEvent(_ []byte, _ string) (*stripegw.Event, error) {
	return g.event, g.err
}

type fakeBookingRepo struct {
	byRef map[string]*domain.Booking
}

func (r *fakeBookingRepo) GetByPaymentRef(_ context.Context, ref string) (*domain.Booking, error) {
	if b, ok := r.byRef[ref]; ok {
		return b, nil
	}
	return nil, bookingRepo.ErrBookingNotFound
}

type fakeEventRepo struct {
	events map[string]*domain.PaymentEvent
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{events: make(map[string]*domain.PaymentEvent)}
}

func (r *fakeEventRepo) Insert(_ context.Context, e *domain.PaymentEvent) (*domain.PaymentEvent, error) {
	if _, ok := r.events[e.EventID]; ok {
		return nil, eventRepo.ErrDuplicateEvent
	}
	cp := *e
	r.events[e.EventID] = &cp
	return &cp, nil
}

func (r *fakeEventRepo) GetByEventID(_ context.Context, eventID string) (*domain.PaymentEvent, error) {
	e, ok := r.events[eventID]
	if !ok {
		return nil, eventRepo.ErrEventNotFound
	}
	cp := *e
	return &cp, nil
}

func (r *fakeEventRepo) MarkProcessed(_ context.Context, eventID string, bookingID *int64) error {
	e, ok := r.events[eventID]
	if !ok {
		return eventRepo.ErrEventNotFound
	}
	e.Processed = true
	if bookingID != nil {
		e.BookingID = bookingID
	}
	return nil
}

func (r *fakeEventRepo) RecordFailure(_ context.Context, eventID string, lastError string) (int, error) {
	e, ok := r.events[eventID]
	if !ok {
		return 0, eventRepo.ErrEventNotFound
	}
	e.ProcessingAttempts++
	e.LastError = &lastError
	return e.ProcessingAttempts, nil
}

type transitionCall struct {
	op     string
	id     int64
	amount int64
}

type fakeLifecycle struct {
	calls      []transitionCall
	confirmErr error
	failErr    error
	refundErr  error
}

func (l *fakeLifecycle) ConfirmPayment(_ context.Context, id int64, amount int64, _ *string) error {
	l.calls = append(l.calls, transitionCall{"confirm", id, amount})
	return l.confirmErr
}

func (l *fakeLifecycle) FailPayment(_ context.Context, id int64, _ string) error {
	l.calls = append(l.calls, transitionCall{"fail", id, 0})
	return l.failErr
}

func (l *fakeLifecycle) CompleteRefund(_ context.Context, id int64, amount int64, _ string) error {
	l.calls = append(l.calls, transitionCall{"refund", id, amount})
	return l.refundErr
}

type fakeMetrics struct {
	outcomes   map[string]int
	unresolved int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{outcomes: make(map[string]int)}
}

func (m *fakeMetrics) ObserveWebhookEvent(_, outcome string) { m.outcomes[outcome]++ }
func (m *fakeMetrics) ObserveWebhookUnresolved(string)       { m.unresolved++ }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func succeededEvent() *stripegw.Event {
	return &stripegw.Event{
		ID:         "evt_1",
		Type:       "checkout.session.completed",
		Kind:       stripegw.KindPaymentSucceeded,
		SessionRef: "cs_1",
		IntentRef:  "pi_1",
		Amount:     38600,
		Currency:   "usd",
		Raw:        []byte(`{}`),
	}
}

func newTestUseCase(gw *fakeGateway, booking *fakeBookingRepo, events *fakeEventRepo, lc *fakeLifecycle, m *fakeMetrics) *UseCase {
	return NewUseCase(booking, events, lc, gw, m, 3, nopLogger{})
}

func webhookRequest() *Request {
	return &Request{Payload: []byte(`{}`), Signature: "t=1,v1=sig"}
}

func TestExecute_AppliesSucceededEvent(t *testing.T) {
	booking := &fakeBookingRepo{byRef: map[string]*domain.Booking{
		"cs_1": {ID: 7, TotalAmount: 38600},
	}}
	events := newFakeEventRepo()
	lc := &fakeLifecycle{}
	m := newFakeMetrics()
	uc := newTestUseCase(&fakeGateway{event: succeededEvent()}, booking, events, lc, m)

	resp, err := uc.Execute(context.Background(), webhookRequest())
	require.NoError(t, err)

	assert.Equal(t, OutcomeApplied, resp.Outcome)
	require.NotNil(t, resp.BookingID)
	assert.Equal(t, int64(7), *resp.BookingID)

	require.Len(t, lc.calls, 1)
	assert.Equal(t, transitionCall{"confirm", 7, 38600}, lc.calls[0])

	// Событие записано, обработано и привязано к брони
	stored := events.events["evt_1"]
	require.NotNil(t, stored)
	assert.True(t, stored.Processed)
	require.NotNil(t, stored.BookingID)
	assert.Equal(t, int64(7), *stored.BookingID)

	assert.Equal(t, 1, m.outcomes[OutcomeApplied])
}

func TestExecute_InvalidSignature(t *testing.T) {
	events := newFakeEventRepo()
	uc := newTestUseCase(&fakeGateway{err: stripegw.ErrInvalidSignature},
		&fakeBookingRepo{}, events, &fakeLifecycle{}, newFakeMetrics())

	_, err := uc.Execute(context.Background(), webhookRequest())
	require.ErrorIs(t, err, ErrInvalidSignature)

	// Невалидная подпись не оставляет следов в журнале
	assert.Empty(t, events.events)
}

func TestExecute_DuplicateProcessedEvent(t *testing.T) {
	booking := &fakeBookingRepo{byRef: map[string]*domain.Booking{
		"cs_1": {ID: 7, TotalAmount: 38600},
	}}
	events := newFakeEventRepo()
	lc := &fakeLifecycle{}
	uc := newTestUseCase(&fakeGateway{event: succeededEvent()}, booking, events, lc, newFakeMetrics())

	_, err := uc.Execute(context.Background(), webhookRequest())
	require.NoError(t, err)

	// Повторная доставка: переход не вызывается второй раз
	resp, err := uc.Execute(context.Background(), webhookRequest())
	require.NoError(t, err)
	assert.Equal(t, OutcomeDuplicate, resp.Outcome)
	assert.Len(t, lc.calls, 1)
}

func TestExecute_DuplicateUnprocessedEventIsReprocessed(t *testing.T) {
	booking := &fakeBookingRepo{byRef: map[string]*domain.Booking{
		"cs_1": {ID: 7, TotalAmount: 38600},
	}}
	events := newFakeEventRepo()
	lc := &fakeLifecycle{}
	uc := newTestUseCase(&fakeGateway{event: succeededEvent()}, booking, events, lc, newFakeMetrics())

	// Событие записано, но прошлая обработка упала
	_, err := events.Insert(context.Background(), &domain.PaymentEvent{
		EventID: "evt_1", EventType: "checkout.session.completed",
	})
	require.NoError(t, err)

	resp, err := uc.Execute(context.Background(), webhookRequest())
	require.NoError(t, err)
	assert.Equal(t, OutcomeApplied, resp.Outcome)
	assert.Len(t, lc.calls, 1)
	assert.True(t, events.events["evt_1"].Processed)
}

func TestExecute_AmountMismatchIsAcknowledged(t *testing.T) {
	booking := &fakeBookingRepo{byRef: map[string]*domain.Booking{
		"cs_1": {ID: 7, TotalAmount: 40000},
	}}
	events := newFakeEventRepo()
	lc := &fakeLifecycle{confirmErr: lifecycle.ErrAmountMismatch}
	uc := newTestUseCase(&fakeGateway{event: succeededEvent()}, booking, events, lc, newFakeMetrics())

	resp, err := uc.Execute(context.Background(), webhookRequest())
	require.NoError(t, err)
	assert.Equal(t, OutcomeAmountMismatch, resp.Outcome)

	// Событие остаётся необработанным с зафиксированной ошибкой
	stored := events.events["evt_1"]
	assert.False(t, stored.Processed)
	assert.Equal(t, 1, stored.ProcessingAttempts)
	require.NotNil(t, stored.LastError)
}

func TestExecute_StaleTransitionIsDiscarded(t *testing.T) {
	booking := &fakeBookingRepo{byRef: map[string]*domain.Booking{
		"pi_1": {ID: 7, TotalAmount: 38600},
	}}
	events := newFakeEventRepo()
	lc := &fakeLifecycle{failErr: lifecycle.ErrStaleTransition}

	event := &stripegw.Event{
		ID:        "evt_2",
		Type:      "payment_intent.payment_failed",
		Kind:      stripegw.KindPaymentFailed,
		IntentRef: "pi_1",
		Raw:       []byte(`{}`),
	}
	uc := newTestUseCase(&fakeGateway{event: event}, booking, events, lc, newFakeMetrics())

	resp, err := uc.Execute(context.Background(), webhookRequest())
	require.NoError(t, err)
	assert.Equal(t, OutcomeStale, resp.Outcome)
	assert.True(t, events.events["evt_2"].Processed)
}

func TestExecute_UnknownEventType(t *testing.T) {
	events := newFakeEventRepo()
	lc := &fakeLifecycle{}

	event := &stripegw.Event{
		ID:   "evt_3",
		Type: "customer.created",
		Kind: stripegw.KindUnknown,
		Raw:  []byte(`{}`),
	}
	uc := newTestUseCase(&fakeGateway{event: event}, &fakeBookingRepo{}, events, lc, newFakeMetrics())

	resp, err := uc.Execute(context.Background(), webhookRequest())
	require.NoError(t, err)
	assert.Equal(t, OutcomeIgnored, resp.Outcome)

	// Записано и подтверждено, переходов нет
	assert.True(t, events.events["evt_3"].Processed)
	assert.Empty(t, lc.calls)
}

func TestExecute_UnresolvedBookingRetriesThenGivesUp(t *testing.T) {
	events := newFakeEventRepo()
	m := newFakeMetrics()
	uc := newTestUseCase(&fakeGateway{event: succeededEvent()},
		&fakeBookingRepo{byRef: map[string]*domain.Booking{}}, events, &fakeLifecycle{}, m)

	// Первые попытки: retryable-ошибка, шлюз доставит повторно
	_, err := uc.Execute(context.Background(), webhookRequest())
	require.ErrorIs(t, err, ErrRetryable)
	_, err = uc.Execute(context.Background(), webhookRequest())
	require.ErrorIs(t, err, ErrRetryable)

	// Третья попытка исчерпывает лимит: событие подтверждается,
	// остаётся в журнале для операторского разбора
	resp, err := uc.Execute(context.Background(), webhookRequest())
	require.NoError(t, err)
	assert.Equal(t, OutcomeUnresolved, resp.Outcome)

	stored := events.events["evt_1"]
	assert.False(t, stored.Processed)
	assert.Equal(t, 3, stored.ProcessingAttempts)
	assert.Equal(t, 1, m.unresolved)
}

func TestExecute_RefundCompleted(t *testing.T) {
	booking := &fakeBookingRepo{byRef: map[string]*domain.Booking{
		"pi_1": {ID: 7, TotalAmount: 38600},
	}}
	events := newFakeEventRepo()
	lc := &fakeLifecycle{}

	event := &stripegw.Event{
		ID:        "evt_4",
		Type:      "charge.refunded",
		Kind:      stripegw.KindRefundCompleted,
		IntentRef: "pi_1",
		Amount:    38600,
		Raw:       []byte(`{}`),
	}
	uc := newTestUseCase(&fakeGateway{event: event}, booking, events, lc, newFakeMetrics())

	resp, err := uc.Execute(context.Background(), webhookRequest())
	require.NoError(t, err)
	assert.Equal(t, OutcomeApplied, resp.Outcome)

	require.Len(t, lc.calls, 1)
	assert.Equal(t, transitionCall{"refund", 7, 38600}, lc.calls[0])
}
