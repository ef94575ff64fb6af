// Package stripegw адаптер платёжного шлюза Stripe:
// создание checkout-сессий, возвраты и верификация вебхуков
package stripegw

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go"
	"github.com/stripe/stripe-go/checkout/session"
	"github.com/stripe/stripe-go/refund"
	"github.com/stripe/stripe-go/webhook"

	"github.com/staypoint/STP-ReservationService/internal/domain"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Client адаптер Stripe
type Client struct {
	webhookSecret string
	successURL    string
	cancelURL     string
	log           Logger
}

// NewClient создает адаптер и устанавливает API-ключ Stripe
func NewClient(secretKey, webhookSecret, successURL, cancelURL string, log Logger) *Client {
	stripe.Key = secretKey

	return &Client{
		webhookSecret: webhookSecret,
		successURL:    successURL,
		cancelURL:     cancelURL,
		log:           log,
	}
}

// CreateCheckoutSession создает платёжную сессию для бронирования
//
// Сумма берётся из брони (зафиксированная квота), booking_id кладётся
// в metadata и client_reference_id, чтобы вебхук мог разрешить бронь
// даже без ссылки сессии
func (c *Client) CreateCheckoutSession(ctx context.Context, b *domain.Booking) (*CheckoutSession, error) {
	bookingID := strconv.FormatInt(b.ID, 10)

	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		ClientReferenceID:  stripe.String(bookingID),
		CustomerEmail:      stripe.String(b.GuestEmail),
		SuccessURL:         stripe.String(c.successURL),
		CancelURL:          stripe.String(c.cancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Name:        stripe.String(fmt.Sprintf("Reservation #%d", b.ID)),
				Description: stripe.String(fmt.Sprintf("Stay %s, %d guests", b.Range(), b.Guests)),
				Amount:      stripe.Int64(b.TotalAmount),
				Currency:    stripe.String(b.Currency),
				Quantity:    stripe.Int64(1),
			},
		},
	}
	params.AddMetadata("booking_id", bookingID)

	// Идемпотентный ключ защищает от дублей сессий при ретраях
	params.SetIdempotencyKey(uuid.New().String())

	s, err := session.New(params)
	if err != nil {
		c.log.Error("CreateCheckoutSession: stripe error for booking id=%d: %v", b.ID, err)
		return nil, fmt.Errorf("%w: create checkout session: %v", ErrGateway, err)
	}

	c.log.Info("CreateCheckoutSession: created session=%s for booking id=%d amount=%d %s",
		s.ID, b.ID, b.TotalAmount, b.Currency)

	return &CheckoutSession{
		SessionRef: s.ID,
		SessionURL: "https://checkout.stripe.com/pay/" + s.ID,
	}, nil
}

// SessionURL возвращает платёжный URL для существующей сессии
// Используется при повторном beginPayment, чтобы не плодить сессии
func (c *Client) SessionURL(sessionRef string) string {
	return "https://checkout.stripe.com/pay/" + sessionRef
}

// CreateRefund создает возврат по payment intent бронирования
func (c *Client) CreateRefund(ctx context.Context, intentRef string, amount int64, reason string) (*Refund, error) {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(intentRef),
		Amount:        stripe.Int64(amount),
	}
	params.AddMetadata("reason", reason)
	params.SetIdempotencyKey(uuid.New().String())

	r, err := refund.New(params)
	if err != nil {
		c.log.Error("CreateRefund: stripe error for intent=%s: %v", intentRef, err)
		return nil, fmt.Errorf("%w: create refund: %v", ErrGateway, err)
	}

	c.log.Info("CreateRefund: created refund=%s for intent=%s amount=%d", r.ID, intentRef, amount)

	return &Refund{
		RefundRef: r.ID,
		Amount:    r.Amount,
	}, nil
}

// VerifyEvent проверяет подпись вебхука и нормализует событие
func (c *Client) VerifyEvent(payload []byte, sigHeader string) (*Event, error) {
	stripeEvent, err := webhook.ConstructEvent(payload, sigHeader, c.webhookSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	event := &Event{
		ID:   stripeEvent.ID,
		Type: stripeEvent.Type,
		Kind: KindOf(stripeEvent.Type),
		Raw:  payload,
	}

	if err := c.extractRefs(event, stripeEvent.Data.Raw); err != nil {
		return nil, err
	}

	return event, nil
}

// extractRefs достаёт ссылки и сумму из объекта события
func (c *Client) extractRefs(event *Event, raw json.RawMessage) error {
	switch event.Type {
	case typeCheckoutCompleted:
		var obj checkoutSessionPayload
		if err := json.Unmarshal(raw, &obj); err != nil {
			return fmt.Errorf("%w: checkout session object: %v", ErrInvalidPayload, err)
		}
		event.SessionRef = obj.ID
		event.IntentRef = obj.PaymentIntent
		event.Amount = obj.AmountTotal
		event.Currency = obj.Currency

	case typeIntentSucceeded, typeIntentFailed:
		var obj paymentIntentPayload
		if err := json.Unmarshal(raw, &obj); err != nil {
			return fmt.Errorf("%w: payment intent object: %v", ErrInvalidPayload, err)
		}
		event.IntentRef = obj.ID
		event.Currency = obj.Currency
		event.Amount = obj.AmountReceived
		if event.Amount == 0 {
			event.Amount = obj.Amount
		}
		if obj.LastPaymentError != nil {
			event.FailureMessage = obj.LastPaymentError.Message
		}

	case typeChargeRefunded:
		var obj chargePayload
		if err := json.Unmarshal(raw, &obj); err != nil {
			return fmt.Errorf("%w: charge object: %v", ErrInvalidPayload, err)
		}
		event.IntentRef = obj.PaymentIntent
		event.Amount = obj.AmountRefunded
		event.Currency = obj.Currency

	default:
		// Неизвестный тип: ссылок не извлекаем, событие будет записано как есть
	}

	return nil
}
