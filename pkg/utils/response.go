package utils

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"rental-backend/internal/ledger"
)

// JSON writes data as a JSON response with the given status
func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[HTTP] failed to encode response: %v", err)
	}
}

// Error writes a JSON error body with the given status
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// ServiceError maps service errors to HTTP statuses: validation errors
// are the caller's fault, conflicts and bad transitions are 409, unknown
// ids are 404, everything else is a 500 with the detail kept out of the
// response body.
func ServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrValidation):
		Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ledger.ErrNotFound):
		Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ledger.ErrConflict), errors.Is(err, ledger.ErrInvalidTransition):
		Error(w, http.StatusConflict, err.Error())
	default:
		log.Printf("[HTTP] internal error: %v", err)
		Error(w, http.StatusInternalServerError, "Internal server error")
	}
}
