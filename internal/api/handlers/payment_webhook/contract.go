package payment_webhook

import (
	"context"

	processWebhook "github.com/staypoint/STP-ReservationService/internal/usecase/process_webhook"
)

type ProcessWebhookUseCase interface {
	Execute(ctx context.Context, req *processWebhook.Request) (*processWebhook.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
