package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/jhasumit/busline/internal/domain"
	"github.com/jhasumit/busline/internal/http/middleware"
	"github.com/jhasumit/busline/internal/http/response"
)

// Signup handles customer registration and OTP delivery
func (h *Handlers) Signup(w http.ResponseWriter, r *http.Request) {
	var req domain.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON format")
		return
	}

	if err := h.auth.Signup(r.Context(), &req); err != nil {
		response.Domain(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Signup successful. Please verify your email with the OTP sent",
	})
}

// Verify handles OTP verification and opens a session
func (h *Handlers) Verify(w http.ResponseWriter, r *http.Request) {
	var req domain.VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON format")
		return
	}

	customer, session, err := h.auth.Verify(r.Context(), &req)
	if err != nil {
		response.Domain(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, map[string]any{
		"message":    "Email verified successfully",
		"user_id":    customer.ID,
		"session_id": session.Token,
		"valid_till": session.ValidTill,
	})
}

// Login handles password authentication and opens a session
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON format")
		return
	}

	customer, session, err := h.auth.Login(r.Context(), &req)
	if err != nil {
		response.Domain(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, map[string]any{
		"message":    "Login successful",
		"user_id":    customer.ID,
		"session_id": session.Token,
		"valid_till": session.ValidTill,
	})
}

// Logout flips the current session to logged_out
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	token, ok := middleware.SessionToken(r)
	if !ok {
		response.Unauthorized(w, "missing session token")
		return
	}

	if err := h.sessions.Logout(r.Context(), token); err != nil {
		response.Domain(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Logged out",
	})
}
