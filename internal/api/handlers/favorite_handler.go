package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pawspace/pawspace-be/internal/auth"
	"github.com/pawspace/pawspace-be/internal/models"
	"github.com/pawspace/pawspace-be/internal/services"
	"github.com/rs/zerolog/log"
)

// FavoriteHandler handles HTTP requests for a user's saved listings.
type FavoriteHandler struct {
	service services.FavoriteServiceProvider
}

// NewFavoriteHandler creates a new FavoriteHandler.
func NewFavoriteHandler(service services.FavoriteServiceProvider) *FavoriteHandler {
	return &FavoriteHandler{service: service}
}

func callerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "Missing auth token", http.StatusUnauthorized)
		return "", false
	}
	return claims.UserID, true
}

// Add marks a listing as a favorite of the caller.
func (h *FavoriteHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	listingID := chi.URLParam(r, "listingId")

	fav, err := h.service.AddFavorite(userID, listingID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID).Str("listing_id", listingID).Msg("Failed to add favorite")
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, fav)
}

// Remove unmarks a favorite.
func (h *FavoriteHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	listingID := chi.URLParam(r, "listingId")

	if err := h.service.RemoveFavorite(userID, listingID); err != nil {
		log.Error().Err(err).Str("user_id", userID).Str("listing_id", listingID).Msg("Failed to remove favorite")
		serviceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Check reports whether the caller has favorited a listing.
func (h *FavoriteHandler) Check(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	listingID := chi.URLParam(r, "listingId")

	favorite, err := h.service.IsFavorite(userID, listingID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Str("listing_id", listingID).Msg("Failed to check favorite")
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"favorite": favorite})
}

// List returns the caller's favorited listings.
func (h *FavoriteHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	listings, err := h.service.GetFavoriteListings(userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to list favorites")
		serviceError(w, err)
		return
	}
	if listings == nil {
		listings = []models.Listing{}
	}
	writeJSON(w, http.StatusOK, listings)
}
