package create_quote

import (
	"errors"
	"net/http"

	"github.com/staypoint/STP-ReservationService/internal/api/handlers"
	createQuote "github.com/staypoint/STP-ReservationService/internal/usecase/create_quote"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidDates       = "некорректные даты, ожидается формат YYYY-MM-DD"
	msgInvalidRange       = "некорректный диапазон дат"
	msgPropertyNotFound   = "объект не найден"
	msgTooManyGuests      = "количество гостей превышает вместимость объекта"
)

type Handler struct {
	useCase CreateQuoteUseCase
	logger  Logger
}

func NewHandler(useCase CreateQuoteUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/quotes
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req CreateQuoteRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /quotes - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest()
	if err != nil {
		h.logger.Warn("POST /quotes - Failed to parse dates: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDates)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, createQuote.ErrPropertyNotFound):
			h.logger.Warn("POST /quotes - Property not found: property_id=%d", req.PropertyID)
			handlers.RespondNotFound(w, msgPropertyNotFound)

		case errors.Is(err, createQuote.ErrGuestCountExceeded):
			h.logger.Warn("POST /quotes - Guest count exceeded: property_id=%d, guests=%d",
				req.PropertyID, req.Guests)
			handlers.RespondBadRequest(w, msgTooManyGuests)

		case errors.Is(err, createQuote.ErrInvalidRange),
			errors.Is(err, createQuote.ErrInvalidInput):
			h.logger.Warn("POST /quotes - Invalid range: property_id=%d, error=%v", req.PropertyID, err)
			handlers.RespondBadRequest(w, msgInvalidRange)

		default:
			h.logger.Error("POST /quotes - Failed: property_id=%d, error=%v", req.PropertyID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /quotes - Quote calculated: property_id=%d, total=%d %s",
		req.PropertyID, result.Total, result.Currency)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
