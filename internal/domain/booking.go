package domain

import "time"

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

func ParseBookingStatus(s string) (BookingStatus, bool) {
	switch BookingStatus(s) {
	case BookingPending, BookingConfirmed, BookingCancelled:
		return BookingStatus(s), true
	default:
		return "", false
	}
}

// CountsAgainstCapacity reports whether a booking in this status holds
// seats on its route. Pending bookings occupy inventory before payment
// confirms; only cancellation releases them.
func (s BookingStatus) CountsAgainstCapacity() bool {
	return s == BookingPending || s == BookingConfirmed
}

type Booking struct {
	ID          int64         `json:"id"`
	CustomerID  int64         `json:"customer_id"`
	RouteID     int64         `json:"route_id"`
	SeatsBooked int           `json:"seats_booked"`
	Status      BookingStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

type ReserveRequest struct {
	RouteID     int64 `json:"route_id"`
	SeatsBooked int   `json:"seats_booked"`
}

// BookingSummary is a booking joined with its route, bus, and cities,
// shaped for customer-facing listings.
type BookingSummary struct {
	ID              int64         `json:"id"`
	BusName         string        `json:"bus_name"`
	BusNo           string        `json:"bus_number"`
	RouteID         int64         `json:"route_id"`
	OriginCity      string        `json:"origin_city_name"`
	DestinationCity string        `json:"destination_city_name"`
	SeatsBooked     int           `json:"seats_booked"`
	Status          BookingStatus `json:"booking_status"`
	BookedAt        time.Time     `json:"booking_date"`
}
