package process_webhook

// Request модель входящего вебхука
type Request struct {
	Payload   []byte // Сырое тело запроса
	Signature string // Заголовок Stripe-Signature
}

// Исход обработки события. Любой исход, кроме retryable-ошибки,
// подтверждается шлюзу кодом 2xx
const (
	OutcomeApplied        = "applied"         // Переход применён
	OutcomeDuplicate      = "duplicate"       // Повторная доставка уже обработанного события
	OutcomeIgnored        = "ignored"         // Неизвестный тип события, записано и пропущено
	OutcomeStale          = "stale"           // Переход нелегален из текущего состояния, отброшено
	OutcomeAmountMismatch = "amount_mismatch" // Сумма не сошлась, требуется ручной разбор
	OutcomeUnresolved     = "unresolved"      // Бронь не найдена, ретраи исчерпаны
)

// Response результат обработки вебхука
type Response struct {
	EventID   string
	EventType string
	Outcome   string
	BookingID *int64 // Заполнен, когда бронь была разрешена
}
