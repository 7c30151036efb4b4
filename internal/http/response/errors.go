package response

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/jhasumit/busline/internal/domain"
)

// ErrorResponse is the JSON error envelope returned by every endpoint.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func WriteError(w http.ResponseWriter, statusCode int, message string, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: message, Code: code}); err != nil {
		log.Printf("failed to encode error response: %v", err)
	}
}

func WriteJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

// Domain maps a domain error to its HTTP status and stable code.
func Domain(w http.ResponseWriter, err error) {
	code := domain.CodeOf(err)

	status := http.StatusInternalServerError
	message := err.Error()

	switch code {
	case domain.CodeUnauthenticated:
		status = http.StatusUnauthorized
	case domain.CodeNotFound:
		status = http.StatusNotFound
	case domain.CodeInvalidInput, domain.CodeInvalidSeatCount:
		status = http.StatusBadRequest
	case domain.CodeCapacityExceeded:
		status = http.StatusUnprocessableEntity
	case domain.CodeConflict:
		status = http.StatusConflict
	case domain.CodeStorageFailure:
		// Retryable for the caller; the details stay in the logs.
		message = "a storage error occurred, please try again"
	}

	WriteError(w, status, message, string(code))
}

func BadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, message, string(domain.CodeInvalidInput))
}

func Unauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, message, string(domain.CodeUnauthenticated))
}

func NotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, message, string(domain.CodeNotFound))
}
