package create_quote

import (
	"context"

	createQuote "github.com/staypoint/STP-ReservationService/internal/usecase/create_quote"
)

type CreateQuoteUseCase interface {
	Execute(ctx context.Context, req *createQuote.Request) (*createQuote.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
