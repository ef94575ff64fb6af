package create_booking

import (
	"errors"
	"net/http"

	"github.com/staypoint/STP-ReservationService/internal/api/handlers"
	"github.com/staypoint/STP-ReservationService/internal/api/middleware"
	createBooking "github.com/staypoint/STP-ReservationService/internal/usecase/create_booking"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidDates       = "некорректные даты, ожидается формат YYYY-MM-DD"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgPropertyNotFound   = "объект не найден"
	msgDatesUnavailable   = "выбранные даты заняты"
	msgInvalidRange       = "некорректный диапазон дат"
	msgTooManyGuests      = "количество гостей превышает вместимость объекта"
	msgInvalidInput       = "некорректные данные бронирования"
)

type Handler struct {
	useCase CreateBookingUseCase
	logger  Logger
}

func NewHandler(useCase CreateBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	guestID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /bookings - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req CreateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(guestID)
	if err != nil {
		h.logger.Warn("POST /bookings - Failed to parse dates: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDates)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, createBooking.ErrDatesUnavailable):
			h.logger.Warn("POST /bookings - Dates unavailable: property_id=%d, guest_id=%d",
				req.PropertyID, guestID)

			// Отдаем занятые поддиапазоны, чтобы клиент предложил другие даты
			var unavailable *createBooking.DatesUnavailableError
			if errors.As(err, &unavailable) {
				handlers.RespondJSON(w, http.StatusConflict, FromConflicts(unavailable.Conflicts))
				return
			}
			handlers.RespondConflict(w, msgDatesUnavailable)

		case errors.Is(err, createBooking.ErrPropertyNotFound):
			h.logger.Warn("POST /bookings - Property not found: property_id=%d", req.PropertyID)
			handlers.RespondNotFound(w, msgPropertyNotFound)

		case errors.Is(err, createBooking.ErrGuestCountExceeded):
			h.logger.Warn("POST /bookings - Guest count exceeded: property_id=%d, guests=%d",
				req.PropertyID, req.Guests)
			handlers.RespondBadRequest(w, msgTooManyGuests)

		case errors.Is(err, createBooking.ErrInvalidRange):
			h.logger.Warn("POST /bookings - Invalid range: property_id=%d, error=%v", req.PropertyID, err)
			handlers.RespondBadRequest(w, msgInvalidRange)

		case errors.Is(err, createBooking.ErrInvalidInput):
			h.logger.Warn("POST /bookings - Invalid input: guest_id=%d, error=%v", guestID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("POST /bookings - Failed to create booking: property_id=%d, guest_id=%d, error=%v",
				req.PropertyID, guestID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings - Booking created: booking_id=%d, property_id=%d, guest_id=%d",
		result.ID, req.PropertyID, guestID)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
