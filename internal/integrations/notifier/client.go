// Package notifier клиент сервиса уведомлений
//
// Ядро не рендерит и не отправляет письма само: на каждый переход состояния
// оно отдаёт нотификационному сервису компактный payload, остальное - его дело
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Notification payload перехода состояния бронирования
type Notification struct {
	BookingID     int64     `json:"bookingId"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"paymentStatus"`
	Timestamp     time.Time `json:"timestamp"`
}

// Client клиент сервиса уведомлений
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента уведомлений
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// Notify отправляет уведомление о переходе состояния
// Вызывающая сторона трактует ошибку как best-effort: доставка уведомлений
// не должна блокировать или откатывать переход
func (c *Client) Notify(ctx context.Context, n Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("notifier client: marshal payload: %w", err)
	}

	url := c.baseURL + "/internal/notifications/booking-status"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("notifier client: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("notifier client: execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("notifier client: unexpected status code %d", resp.StatusCode)
	}

	return nil
}
