package stripegw

// EventKind нормализованный тип события шлюза
type EventKind string

const (
	KindPaymentSucceeded EventKind = "payment_succeeded"
	KindPaymentFailed    EventKind = "payment_failed"
	KindRefundCompleted  EventKind = "refund_completed"
	KindUnknown          EventKind = "unknown"
)

// Stripe event types, как их шлёт шлюз
const (
	typeCheckoutCompleted = "checkout.session.completed"
	typeIntentSucceeded   = "payment_intent.succeeded"
	typeIntentFailed      = "payment_intent.payment_failed"
	typeChargeRefunded    = "charge.refunded"
)

// KindOf маппит сырой тип события Stripe в нормализованный
// Неизвестные типы записываются и подтверждаются, но переходов не вызывают
func KindOf(eventType string) EventKind {
	switch eventType {
	case typeCheckoutCompleted, typeIntentSucceeded:
		return KindPaymentSucceeded
	case typeIntentFailed:
		return KindPaymentFailed
	case typeChargeRefunded:
		return KindRefundCompleted
	default:
		return KindUnknown
	}
}

// Event нормализованное событие платёжного шлюза
type Event struct {
	ID   string    // event id шлюза, ключ дедупликации
	Type string    // сырой тип события
	Kind EventKind // нормализованный тип

	SessionRef string // id checkout-сессии (cs_...), если есть
	IntentRef  string // id payment intent (pi_...), если есть

	Amount   int64  // сумма платежа/возврата в центах
	Currency string // ISO код валюты в нижнем регистре

	FailureMessage string // причина отказа для payment_failed

	Raw []byte // исходное тело события
}

// PaymentRef возвращает ссылку для поиска бронирования:
// сначала сессия, затем intent
func (e *Event) PaymentRef() string {
	if e.SessionRef != "" {
		return e.SessionRef
	}
	return e.IntentRef
}

// CheckoutSession результат создания платёжной сессии
type CheckoutSession struct {
	SessionRef string
	SessionURL string
}

// Refund результат создания возврата
type Refund struct {
	RefundRef string
	Amount    int64
}

// checkoutSessionPayload объект checkout.session.* событий
type checkoutSessionPayload struct {
	ID            string `json:"id"`
	PaymentIntent string `json:"payment_intent"`
	AmountTotal   int64  `json:"amount_total"`
	Currency      string `json:"currency"`
}

// paymentIntentPayload объект payment_intent.* событий
type paymentIntentPayload struct {
	ID               string `json:"id"`
	Amount           int64  `json:"amount"`
	AmountReceived   int64  `json:"amount_received"`
	Currency         string `json:"currency"`
	LastPaymentError *struct {
		Message string `json:"message"`
	} `json:"last_payment_error"`
}

// chargePayload объект charge.* событий
type chargePayload struct {
	ID             string `json:"id"`
	PaymentIntent  string `json:"payment_intent"`
	AmountRefunded int64  `json:"amount_refunded"`
	Currency       string `json:"currency"`
}
