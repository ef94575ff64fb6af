package get_availability

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/staypoint/STP-ReservationService/internal/api/handlers"
	"github.com/staypoint/STP-ReservationService/internal/domain"
	getAvailability "github.com/staypoint/STP-ReservationService/internal/usecase/get_availability"
)

const (
	msgInvalidPropertyID = "некорректный ID объекта"
	msgInvalidDates      = "некорректные даты, ожидается формат YYYY-MM-DD"
	msgInvalidRange      = "некорректный диапазон дат"
	msgPropertyNotFound  = "объект не найден"
)

type Handler struct {
	useCase GetAvailabilityUseCase
	logger  Logger
}

func NewHandler(useCase GetAvailabilityUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/properties/{propertyId}/availability?check_in=...&check_out=...
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	propertyID, err := strconv.ParseInt(vars["propertyId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /properties/{id}/availability - Invalid property ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidPropertyID)
		return
	}

	checkIn, err := time.Parse(domain.DateFormat, r.URL.Query().Get("check_in"))
	if err != nil {
		h.logger.Warn("GET /properties/{id}/availability - Invalid check_in: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDates)
		return
	}

	checkOut, err := time.Parse(domain.DateFormat, r.URL.Query().Get("check_out"))
	if err != nil {
		h.logger.Warn("GET /properties/{id}/availability - Invalid check_out: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDates)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &getAvailability.Request{
		PropertyID: propertyID,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
	})
	if err != nil {
		switch {
		case errors.Is(err, getAvailability.ErrPropertyNotFound):
			h.logger.Warn("GET /properties/{id}/availability - Property not found: property_id=%d", propertyID)
			handlers.RespondNotFound(w, msgPropertyNotFound)

		case errors.Is(err, getAvailability.ErrInvalidRange),
			errors.Is(err, getAvailability.ErrInvalidInput):
			h.logger.Warn("GET /properties/{id}/availability - Invalid range: property_id=%d, error=%v", propertyID, err)
			handlers.RespondBadRequest(w, msgInvalidRange)

		default:
			h.logger.Error("GET /properties/{id}/availability - Failed: property_id=%d, error=%v", propertyID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /properties/{id}/availability - OK: property_id=%d, available=%t",
		propertyID, result.Available)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
