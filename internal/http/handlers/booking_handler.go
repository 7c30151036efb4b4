package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/jhasumit/busline/internal/domain"
	"github.com/jhasumit/busline/internal/http/middleware"
	"github.com/jhasumit/busline/internal/http/response"
)

// CreateBooking reserves seats on a route for the authenticated customer.
func (h *Handlers) CreateBooking(w http.ResponseWriter, r *http.Request) {
	customerID, ok := middleware.CustomerID(r)
	if !ok {
		response.Unauthorized(w, "missing session")
		return
	}

	var req domain.ReserveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON format")
		return
	}

	booking, err := h.reservations.Reserve(r.Context(), customerID, &req)
	if err != nil {
		response.Domain(w, err)
		return
	}

	response.WriteJSON(w, http.StatusCreated, map[string]any{
		"booking_id": booking.ID,
		"message":    "Booking successful, status is pending",
	})
}

// ListBookings returns the customer's bookings with route and bus details.
func (h *Handlers) ListBookings(w http.ResponseWriter, r *http.Request) {
	customerID, ok := middleware.CustomerID(r)
	if !ok {
		response.Unauthorized(w, "missing session")
		return
	}

	summaries, err := h.reservations.ListBookings(r.Context(), customerID)
	if err != nil {
		response.Domain(w, err)
		return
	}
	if summaries == nil {
		summaries = []domain.BookingSummary{}
	}

	response.WriteJSON(w, http.StatusOK, map[string]any{"bookings": summaries})
}
