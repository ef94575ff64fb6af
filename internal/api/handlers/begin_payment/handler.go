package begin_payment

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/staypoint/STP-ReservationService/internal/api/handlers"
	"github.com/staypoint/STP-ReservationService/internal/api/middleware"
	beginPayment "github.com/staypoint/STP-ReservationService/internal/usecase/begin_payment"
)

const (
	msgInvalidBookingID = "некорректный ID бронирования"
	msgMissingUserID    = "отсутствует ID пользователя"
	msgNotFound         = "бронирование не найдено"
	msgForbidden        = "доступ запрещен"
	msgAlreadyPaid      = "бронирование уже оплачено"
	msgNotPayable       = "бронирование нельзя оплатить"
	msgGatewayError     = "платёжный шлюз недоступен, попробуйте позже"
)

type Handler struct {
	useCase BeginPaymentUseCase
	logger  Logger
}

func NewHandler(useCase BeginPaymentUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings/{bookingId}/payment
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	bookingID, err := strconv.ParseInt(vars["bookingId"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /bookings/{id}/payment - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	guestID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /bookings/{id}/payment - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &beginPayment.Request{
		BookingID: bookingID,
		GuestID:   guestID,
	})
	if err != nil {
		switch {
		case errors.Is(err, beginPayment.ErrBookingNotFound):
			h.logger.Warn("POST /bookings/{id}/payment - Booking not found: booking_id=%d", bookingID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, beginPayment.ErrAccessDenied):
			h.logger.Warn("POST /bookings/{id}/payment - Access denied: booking_id=%d, guest_id=%d",
				bookingID, guestID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, beginPayment.ErrAlreadyPaid):
			h.logger.Warn("POST /bookings/{id}/payment - Already paid: booking_id=%d", bookingID)
			handlers.RespondConflict(w, msgAlreadyPaid)

		case errors.Is(err, beginPayment.ErrNotPayable):
			h.logger.Warn("POST /bookings/{id}/payment - Not payable: booking_id=%d", bookingID)
			handlers.RespondConflict(w, msgNotPayable)

		case errors.Is(err, beginPayment.ErrGateway):
			h.logger.Error("POST /bookings/{id}/payment - Gateway error: booking_id=%d, error=%v",
				bookingID, err)
			handlers.RespondError(w, http.StatusBadGateway, msgGatewayError)

		case errors.Is(err, beginPayment.ErrInvalidInput):
			h.logger.Warn("POST /bookings/{id}/payment - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidBookingID)

		default:
			h.logger.Error("POST /bookings/{id}/payment - Failed: booking_id=%d, error=%v", bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings/{id}/payment - Session created: booking_id=%d, session=%s",
		bookingID, result.SessionRef)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
