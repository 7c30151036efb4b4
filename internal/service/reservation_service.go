package service

import (
	"context"

	"github.com/jhasumit/busline/internal/domain"
	"github.com/jhasumit/busline/internal/repo/postgres"
	"github.com/jhasumit/busline/pkg/events"
	"github.com/jhasumit/busline/pkg/logger"
)

// ReservationService is the booking state machine. Reserve must never let
// the committed seats on a route exceed the bus capacity, no matter how
// many calls for the same route run concurrently; the storage layer
// serializes the check-then-insert per route.
type ReservationService interface {
	Reserve(ctx context.Context, customerID int64, req *domain.ReserveRequest) (*domain.Booking, error)
	ListBookings(ctx context.Context, customerID int64) ([]domain.BookingSummary, error)
}

type reservationService struct {
	bookings postgres.BookingRepository
	catalog  postgres.CatalogRepository
	eventBus events.Publisher
}

func NewReservationService(
	bookings postgres.BookingRepository,
	catalog postgres.CatalogRepository,
	eventBus events.Publisher,
) ReservationService {
	return &reservationService{
		bookings: bookings,
		catalog:  catalog,
		eventBus: eventBus,
	}
}

func (s *reservationService) Reserve(ctx context.Context, customerID int64, req *domain.ReserveRequest) (*domain.Booking, error) {
	route, err := s.catalog.GetRoute(ctx, req.RouteID)
	if err != nil {
		return nil, domain.Wrap(domain.CodeStorageFailure, "failed to load route", err)
	}
	if route == nil {
		return nil, domain.E(domain.CodeNotFound, "route not found")
	}

	if req.SeatsBooked <= 0 {
		return nil, domain.E(domain.CodeInvalidSeatCount, "seats_booked must be a positive integer")
	}
	if req.SeatsBooked > route.Bus.Capacity {
		return nil, domain.E(domain.CodeInvalidSeatCount, "seats_booked exceeds bus capacity")
	}

	booking, err := s.bookings.CreateReserved(ctx, customerID, req.RouteID, req.SeatsBooked)
	if err != nil {
		return nil, err
	}

	if err := s.eventBus.Publish(ctx, events.BookingCreated, events.BookingCreatedEvent{
		BookingID:   booking.ID,
		CustomerID:  booking.CustomerID,
		RouteID:     booking.RouteID,
		SeatsBooked: booking.SeatsBooked,
		CreatedAt:   booking.CreatedAt,
	}); err != nil {
		logger.ErrorContext(ctx, "Failed to publish booking created event", "error", err, "booking_id", booking.ID)
	}

	return booking, nil
}

func (s *reservationService) ListBookings(ctx context.Context, customerID int64) ([]domain.BookingSummary, error) {
	summaries, err := s.bookings.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, domain.Wrap(domain.CodeStorageFailure, "failed to list bookings", err)
	}
	return summaries, nil
}
