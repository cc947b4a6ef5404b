package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/pawspace/pawspace-be/internal/auth"
	"github.com/pawspace/pawspace-be/internal/services"
	"github.com/rs/zerolog/log"
)

// SellerHandler handles seller onboarding requests.
type SellerHandler struct {
	service services.SellerServiceProvider
}

// NewSellerHandler creates a new SellerHandler.
func NewSellerHandler(service services.SellerServiceProvider) *SellerHandler {
	return &SellerHandler{service: service}
}

// CreateOnboardingLink returns a provider-hosted onboarding URL for the
// caller. The uid in the body is optional; when present it must match the
// authenticated user.
func (h *SellerHandler) CreateOnboardingLink(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "Missing auth token", http.StatusUnauthorized)
		return
	}

	var payload struct {
		UID string `json:"uid"`
	}
	// An empty body is fine; the uid defaults to the token's subject.
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if payload.UID != "" && payload.UID != claims.UserID {
		http.Error(w, "Cannot onboard another user", http.StatusForbidden)
		return
	}

	url, err := h.service.CreateOnboardingLink(r.Context(), claims.UserID)
	if err != nil {
		log.Error().Err(err).Str("user_id", claims.UserID).Msg("Failed to create onboarding link")
		serviceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}
