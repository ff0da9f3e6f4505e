package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ternarybob/relist/internal/models"
)

// RequireMethod validates that the HTTP request uses the specified method.
// Returns true if the method matches, false otherwise (and writes error response).
func RequireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

// WriteJSON writes a JSON response with the specified status code and data.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a standard success JSON response.
func WriteSuccess(w http.ResponseWriter, message string) error {
	return WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": message,
	})
}

// WriteError writes a standard error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, message string) error {
	return WriteJSON(w, statusCode, map[string]string{
		"status": "error",
		"error":  message,
	})
}

// WriteDomainError maps domain errors to HTTP status codes: guard-clause
// conflicts to 409, not-found to 404, validation to 422.
func WriteDomainError(w http.ResponseWriter, err error) error {
	switch {
	case errors.Is(err, models.ErrAlreadyInProgress),
		errors.Is(err, models.ErrAlreadyListed),
		errors.Is(err, models.ErrAlreadyMapped),
		errors.Is(err, models.ErrDraftNotPending):
		return WriteError(w, http.StatusConflict, err.Error())
	case errors.Is(err, models.ErrJobNotFound),
		errors.Is(err, models.ErrDraftNotFound),
		errors.Is(err, models.ErrProductNotFound),
		errors.Is(err, models.ErrMappingNotFound):
		return WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrConfirmationRequired):
		return WriteError(w, http.StatusBadRequest, err.Error())
	case models.IsValidationError(err):
		return WriteError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		return WriteError(w, http.StatusInternalServerError, err.Error())
	}
}

// DecodeJSON decodes a request body into dst.
func DecodeJSON(r *http.Request, dst interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}
