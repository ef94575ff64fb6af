package get_guest_bookings

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/staypoint/STP-ReservationService/internal/api/handlers"
	"github.com/staypoint/STP-ReservationService/internal/api/middleware"
	"github.com/staypoint/STP-ReservationService/internal/service/bookings"
	"github.com/staypoint/STP-ReservationService/internal/service/bookings/models"
)

const (
	msgInvalidGuestID = "некорректный ID пользователя"
	msgInvalidStatus  = "некорректный статус бронирования"
	msgMissingUserID  = "отсутствует ID пользователя"
	msgForbidden      = "доступ запрещен"
)

type Handler struct {
	service BookingService
	logger  Logger
}

func NewHandler(service BookingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/guests/{guestId}/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	pathGuestID, err := strconv.ParseInt(vars["guestId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /guests/{id}/bookings - Invalid guest ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidGuestID)
		return
	}

	guestID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("GET /guests/{id}/bookings - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	// Гость видит только собственную историю
	if pathGuestID != guestID {
		h.logger.Warn("GET /guests/{id}/bookings - Access denied: path_guest_id=%d, guest_id=%d",
			pathGuestID, guestID)
		handlers.RespondForbidden(w, msgForbidden)
		return
	}

	// Получаем status из query параметров (опционально)
	status := r.URL.Query().Get("status")
	var statusPtr *string
	if status != "" {
		statusPtr = &status
	}

	serviceReq := &models.GetGuestBookingsRequest{
		GuestID: guestID,
		Status:  statusPtr,
	}

	list, err := h.service.GetGuestBookings(r.Context(), serviceReq)
	if err != nil {
		if errors.Is(err, bookings.ErrInvalidInput) {
			h.logger.Warn("GET /guests/{id}/bookings - Invalid status: guest_id=%d, status=%s", guestID, status)
			handlers.RespondBadRequest(w, msgInvalidStatus)
			return
		}
		h.logger.Error("GET /guests/{id}/bookings - Failed: guest_id=%d, error=%v", guestID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /guests/{id}/bookings - Retrieved %d booking(s): guest_id=%d",
		len(list.Bookings), guestID)
	handlers.RespondJSON(w, http.StatusOK, list)
}
