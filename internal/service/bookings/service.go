// Package bookings read-side сервис бронирований: выдача брони владельцу
// и история броней гостя. Состояние не меняет
package bookings

import (
	"context"
	"errors"
	"fmt"

	"github.com/staypoint/STP-ReservationService/internal/domain"
	bookingRepo "github.com/staypoint/STP-ReservationService/internal/infra/storage/booking"
	"github.com/staypoint/STP-ReservationService/internal/service/bookings/models"
)

// Service read-side сервис бронирований
type Service struct {
	bookingRepo BookingRepository
	logger      Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(bookingRepo BookingRepository, logger Logger) *Service {
	return &Service{
		bookingRepo: bookingRepo,
		logger:      logger,
	}
}

// GetByID получает бронирование по ID
// Проверяет права доступа - гость видит только свои брони
func (s *Service) GetByID(ctx context.Context, id int64, guestID int64) (*models.BookingResponse, error) {
	s.logger.Info("GetByID: fetching booking id=%d for guest=%d", id, guestID)

	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("GetByID: booking id=%d not found", id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("GetByID: repository error for booking id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	if booking.GuestID != guestID {
		s.logger.Warn("GetByID: access denied for guest=%d to booking id=%d", guestID, id)
		return nil, ErrAccessDenied
	}

	return models.FromDomainBooking(booking), nil
}

// GetGuestBookings получает историю бронирований гостя, новые первыми
// Опционально фильтрует по статусу
func (s *Service) GetGuestBookings(ctx context.Context, req *models.GetGuestBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("GetGuestBookings: fetching bookings for guest=%d, status=%v", req.GuestID, req.Status)

	// Конвертируем статус из строки в domain.BookingStatus
	var domainStatus *domain.BookingStatus
	if req.Status != nil {
		status, err := models.ToDomainBookingStatus(*req.Status)
		if err != nil {
			s.logger.Warn("GetGuestBookings: invalid status=%s for guest=%d", *req.Status, req.GuestID)
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		domainStatus = &status
	}

	list, err := s.bookingRepo.GetByGuestID(ctx, req.GuestID, domainStatus)
	if err != nil {
		s.logger.Error("GetGuestBookings: repository error for guest=%d: %v", req.GuestID, err)
		return nil, fmt.Errorf("%w: GetGuestBookings - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainBookings(list), nil
}
