package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jhasumit/busline/internal/domain"
	"github.com/jhasumit/busline/internal/http/response"
)

// RecordPayment records a payment attempt against a booking. A success
// outcome confirms the booking atomically with the payment insert.
func (h *Handlers) RecordPayment(w http.ResponseWriter, r *http.Request) {
	var req domain.RecordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON format")
		return
	}

	payment, status, err := h.payments.RecordPayment(r.Context(), &req)
	if err != nil {
		var de *domain.Error
		if errors.As(err, &de) && de.Code == domain.CodeConflict && payment != nil {
			// The attempt was recorded even though the booking can't
			// be confirmed; tell the caller both things.
			response.WriteJSON(w, http.StatusConflict, map[string]any{
				"payment_id":     payment.ID,
				"booking_status": status,
				"error":          de.Message,
				"code":           string(de.Code),
			})
			return
		}
		response.Domain(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, map[string]any{
		"payment_id":     payment.ID,
		"booking_status": status,
		"message":        "Payment processed successfully",
	})
}
