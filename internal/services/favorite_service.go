package services

import (
	"database/sql"
	"errors"

	"github.com/pawspace/pawspace-be/internal/models"
)

// FavoriteServiceProvider defines the interface for favorites services.
type FavoriteServiceProvider interface {
	AddFavorite(userID, listingID string) (models.Favorite, error)
	RemoveFavorite(userID, listingID string) error
	IsFavorite(userID, listingID string) (bool, error)
	GetFavoriteListings(userID string) ([]models.Listing, error)
}

// FavoriteService manages a user's saved listings.
type FavoriteService struct {
	db *sql.DB
}

// NewFavoriteService creates a new FavoriteService.
func NewFavoriteService(db *sql.DB) *FavoriteService {
	return &FavoriteService{db: db}
}

// AddFavorite marks a listing as a favorite and returns the stored marker.
// Adding an existing favorite keeps the original record.
func (s *FavoriteService) AddFavorite(userID, listingID string) (models.Favorite, error) {
	var exists int
	if err := s.db.QueryRow("SELECT COUNT(1) FROM listings WHERE id = ?", listingID).Scan(&exists); err != nil {
		return models.Favorite{}, err
	}
	if exists == 0 {
		return models.Favorite{}, models.ErrNotFound
	}

	if _, err := s.db.Exec("INSERT OR IGNORE INTO favorites (user_id, listing_id) VALUES (?, ?)", userID, listingID); err != nil {
		return models.Favorite{}, err
	}

	var fav models.Favorite
	row := s.db.QueryRow("SELECT user_id, listing_id, created_at FROM favorites WHERE user_id = ? AND listing_id = ?", userID, listingID)
	if err := row.Scan(&fav.UserID, &fav.ListingID, &fav.CreatedAt); err != nil {
		return models.Favorite{}, err
	}
	return fav, nil
}

// RemoveFavorite unmarks a listing. Removing an absent favorite is a no-op.
func (s *FavoriteService) RemoveFavorite(userID, listingID string) error {
	_, err := s.db.Exec("DELETE FROM favorites WHERE user_id = ? AND listing_id = ?", userID, listingID)
	return err
}

// IsFavorite reports whether the user has favorited the listing.
func (s *FavoriteService) IsFavorite(userID, listingID string) (bool, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(1) FROM favorites WHERE user_id = ? AND listing_id = ?", userID, listingID).Scan(&count)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return false, err
	}
	return count > 0, nil
}

// GetFavoriteListings resolves the user's favorites against the listings
// table, most recently favorited first. Favorites whose listing no longer
// exists are skipped by the join.
func (s *FavoriteService) GetFavoriteListings(userID string) ([]models.Listing, error) {
	rows, err := s.db.Query(`
		SELECT l.id, l.title, l.description, l.price, l.condition, l.category,
		       l.image_url, l.seller_id, l.seller_name, l.created_at
		FROM favorites f
		JOIN listings l ON l.id = f.listing_id
		WHERE f.user_id = ?
		ORDER BY f.created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanListings(rows)
}
