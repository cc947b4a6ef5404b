package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pawspace/pawspace-be/internal/models"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// serviceError maps service-layer sentinel errors to HTTP responses. Returns
// true when it handled the error.
func serviceError(w http.ResponseWriter, err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, models.ErrNotFound):
		http.Error(w, "Not found", http.StatusNotFound)
	case errors.Is(err, models.ErrDuplicateEmail):
		http.Error(w, "Email already registered", http.StatusConflict)
	case errors.Is(err, models.ErrInvalidCredentials):
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
	case errors.Is(err, models.ErrNotSeller):
		http.Error(w, "Seller account required", http.StatusForbidden)
	case errors.Is(err, models.ErrForbidden):
		http.Error(w, "Forbidden", http.StatusForbidden)
	default:
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
	return true
}
