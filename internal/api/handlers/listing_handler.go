package handlers

import (
	"encoding/json"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/pawspace/pawspace-be/internal/auth"
	"github.com/pawspace/pawspace-be/internal/models"
	"github.com/pawspace/pawspace-be/internal/services"
	"github.com/pawspace/pawspace-be/internal/storage"
	"github.com/rs/zerolog/log"
)

// maxImageUploadBytes caps listing image uploads at 8 MiB.
const maxImageUploadBytes = 8 << 20

// ListingHandler handles HTTP requests for marketplace listings.
type ListingHandler struct {
	service services.ListingServiceProvider
	media   *storage.MediaStore
}

// NewListingHandler creates a new ListingHandler.
func NewListingHandler(service services.ListingServiceProvider, media *storage.MediaStore) *ListingHandler {
	return &ListingHandler{service: service, media: media}
}

// Search handles listing browsing and search. Both q and category are
// optional; without them all listings come back newest-first.
func (h *ListingHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	category := r.URL.Query().Get("category")

	listings, err := h.service.SearchListings(query, category)
	if err != nil {
		log.Error().Err(err).Str("query", query).Msg("Failed to search listings")
		serviceError(w, err)
		return
	}
	if listings == nil {
		listings = []models.Listing{}
	}
	writeJSON(w, http.StatusOK, listings)
}

// Get handles retrieving a single listing.
func (h *ListingHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	listing, err := h.service.GetListingByID(id)
	if err != nil {
		log.Warn().Err(err).Str("listing_id", id).Msg("Failed to get listing")
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

// GetForSeller returns the listings created by a user.
func (h *ListingHandler) GetForSeller(w http.ResponseWriter, r *http.Request) {
	sellerID := chi.URLParam(r, "id")
	listings, err := h.service.GetListingsBySeller(sellerID)
	if err != nil {
		log.Error().Err(err).Str("seller_id", sellerID).Msg("Failed to get seller listings")
		serviceError(w, err)
		return
	}
	if listings == nil {
		listings = []models.Listing{}
	}
	writeJSON(w, http.StatusOK, listings)
}

// Create handles listing creation by an activated seller.
func (h *ListingHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "Missing auth token", http.StatusUnauthorized)
		return
	}

	var input services.ListingInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if input.Title == "" || input.Description == "" || input.Price <= 0 {
		http.Error(w, "Title, description and a positive price are required", http.StatusBadRequest)
		return
	}

	listing, err := h.service.CreateListing(claims.UserID, input)
	if err != nil {
		log.Warn().Err(err).Str("user_id", claims.UserID).Msg("Failed to create listing")
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, listing)
}

// UploadImage stores a listing image and returns the URL it will be served
// from. Expects a multipart form with an "image" file field.
func (h *ListingHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "Missing auth token", http.StatusUnauthorized)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImageUploadBytes)
	file, header, err := r.FormFile("image")
	if err != nil {
		http.Error(w, "Missing image file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	url, err := h.media.SaveListingImage(claims.UserID, file, filepath.Ext(header.Filename))
	if err != nil {
		log.Error().Err(err).Str("user_id", claims.UserID).Msg("Failed to store listing image")
		http.Error(w, "Failed to store image", http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"url": url})
}
