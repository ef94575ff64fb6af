package payment_webhook

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	processWebhook "github.com/staypoint/STP-ReservationService/internal/usecase/process_webhook"
)

type fakeUseCase struct {
	resp *processWebhook.Response
	err  error
	got  *processWebhook.Request
}

func (u *fakeUseCase) Execute(_ context.Context, req *processWebhook.Request) (*processWebhook.Response, error) {
	u.got = req
	return u.resp, u.err
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func doRequest(h *Handler, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/payment", bytes.NewReader(body))
	req.Header.Set("Stripe-Signature", "t=1,v1=sig")
	rec := httptest.NewRecorder()
	h.Handle(rec, req)
	return rec
}

func TestHandle_AcknowledgesAppliedEvent(t *testing.T) {
	uc := &fakeUseCase{resp: &processWebhook.Response{
		EventID:   "evt_1",
		EventType: "checkout.session.completed",
		Outcome:   processWebhook.OutcomeApplied,
	}}
	h := NewHandler(uc, nopLogger{})

	rec := doRequest(h, []byte(`{"id":"evt_1"}`))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), processWebhook.OutcomeApplied)

	// Подпись и тело дошли до usecase без изменений
	require.NotNil(t, uc.got)
	assert.Equal(t, "t=1,v1=sig", uc.got.Signature)
	assert.Equal(t, []byte(`{"id":"evt_1"}`), uc.got.Payload)
}

func TestHandle_InvalidSignatureIsBadRequest(t *testing.T) {
	uc := &fakeUseCase{err: processWebhook.ErrInvalidSignature}
	h := NewHandler(uc, nopLogger{})

	rec := doRequest(h, []byte(`{}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandle_RetryableFailureRequestsRedelivery(t *testing.T) {
	uc := &fakeUseCase{err: processWebhook.ErrRetryable}
	h := NewHandler(uc, nopLogger{})

	rec := doRequest(h, []byte(`{}`))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandle_BusinessOutcomesAreAcknowledged(t *testing.T) {
	// Исходы, при которых повторная доставка бессмысленна, отвечают 200
	for _, outcome := range []string{
		processWebhook.OutcomeDuplicate,
		processWebhook.OutcomeStale,
		processWebhook.OutcomeAmountMismatch,
		processWebhook.OutcomeIgnored,
		processWebhook.OutcomeUnresolved,
	} {
		t.Run(outcome, func(t *testing.T) {
			uc := &fakeUseCase{resp: &processWebhook.Response{
				EventID: "evt_1", EventType: "payment_intent.succeeded", Outcome: outcome,
			}}
			h := NewHandler(uc, nopLogger{})

			rec := doRequest(h, []byte(`{}`))
			assert.Equal(t, http.StatusOK, rec.Code)
		})
	}
}
