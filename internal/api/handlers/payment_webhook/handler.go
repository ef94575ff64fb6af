package payment_webhook

import (
	"errors"
	"io"
	"net/http"

	"github.com/staypoint/STP-ReservationService/internal/api/handlers"
	processWebhook "github.com/staypoint/STP-ReservationService/internal/usecase/process_webhook"
)

// Stripe режет соединение на телах больше 64KB, даём запас
const maxPayloadBytes = 1 << 20

type Handler struct {
	useCase ProcessWebhookUseCase
	logger  Logger
}

func NewHandler(useCase ProcessWebhookUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /webhooks/payment
//
// Контракт со шлюзом: 2xx подтверждает доставку, 4xx/5xx вызывает повтор.
// Поэтому бизнес-исходы (stale, mismatch, duplicate) отвечают 200,
// а 5xx остаётся только за временными ошибками
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxPayloadBytes))
	if err != nil {
		h.logger.Warn("POST /webhooks/payment - Failed to read body: %v", err)
		handlers.RespondBadRequest(w, "unreadable payload")
		return
	}

	result, err := h.useCase.Execute(r.Context(), &processWebhook.Request{
		Payload:   payload,
		Signature: r.Header.Get("Stripe-Signature"),
	})
	if err != nil {
		switch {
		case errors.Is(err, processWebhook.ErrInvalidSignature):
			h.logger.Warn("POST /webhooks/payment - Invalid signature")
			handlers.RespondBadRequest(w, "invalid signature")

		case errors.Is(err, processWebhook.ErrInvalidPayload):
			h.logger.Warn("POST /webhooks/payment - Invalid payload: %v", err)
			handlers.RespondBadRequest(w, "invalid payload")

		case errors.Is(err, processWebhook.ErrRetryable):
			h.logger.Warn("POST /webhooks/payment - Transient failure, requesting redelivery: %v", err)
			handlers.RespondError(w, http.StatusServiceUnavailable, "retry later")

		default:
			h.logger.Error("POST /webhooks/payment - Failed: %v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /webhooks/payment - Event %s (%s): %s",
		result.EventID, result.EventType, result.Outcome)
	handlers.RespondJSON(w, http.StatusOK, map[string]string{"received": "true", "outcome": result.Outcome})
}
