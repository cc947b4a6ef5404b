package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pawspace/pawspace-be/internal/models"
)

// ListingInput carries the caller-supplied fields for a new listing.
type ListingInput struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Condition   string  `json:"condition"`
	Category    string  `json:"category"`
	ImageURL    string  `json:"imageUrl"`
}

// ListingServiceProvider defines the interface for listing services.
type ListingServiceProvider interface {
	SearchListings(query, category string) ([]models.Listing, error)
	GetListingByID(id string) (models.Listing, error)
	GetListingsBySeller(sellerID string) ([]models.Listing, error)
	CreateListing(sellerID string, input ListingInput) (models.Listing, error)
}

// ListingService provides business logic for marketplace listings.
type ListingService struct {
	db       *sql.DB
	eventSvc EventServiceProvider
}

// NewListingService creates a new ListingService.
func NewListingService(db *sql.DB, eventSvc EventServiceProvider) *ListingService {
	return &ListingService{db: db, eventSvc: eventSvc}
}

const listingColumns = "id, title, description, price, condition, category, image_url, seller_id, seller_name, created_at"

func scanListings(rows *sql.Rows) ([]models.Listing, error) {
	var listings []models.Listing
	for rows.Next() {
		var l models.Listing
		if err := rows.Scan(&l.ID, &l.Title, &l.Description, &l.Price, &l.Condition,
			&l.Category, &l.ImageURL, &l.SellerID, &l.SellerName, &l.CreatedAt); err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

// SearchListings returns listings newest-first. A non-empty query matches as
// a case-insensitive substring of the title or description; a non-empty
// category must match exactly.
func (s *ListingService) SearchListings(query, category string) ([]models.Listing, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	rows, err := s.db.Query(`
		SELECT `+listingColumns+` FROM listings
		WHERE (? = '' OR instr(lower(title), ?) > 0 OR instr(lower(description), ?) > 0)
		  AND (? = '' OR category = ?)
		ORDER BY created_at DESC`,
		q, q, q, category, category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanListings(rows)
}

// GetListingByID retrieves a single listing.
func (s *ListingService) GetListingByID(id string) (models.Listing, error) {
	var l models.Listing
	row := s.db.QueryRow("SELECT "+listingColumns+" FROM listings WHERE id = ?", id)
	err := row.Scan(&l.ID, &l.Title, &l.Description, &l.Price, &l.Condition,
		&l.Category, &l.ImageURL, &l.SellerID, &l.SellerName, &l.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Listing{}, models.ErrNotFound
		}
		return models.Listing{}, err
	}
	return l, nil
}

// GetListingsBySeller returns all listings created by a seller, newest first.
func (s *ListingService) GetListingsBySeller(sellerID string) ([]models.Listing, error) {
	rows, err := s.db.Query("SELECT "+listingColumns+" FROM listings WHERE seller_id = ? ORDER BY created_at DESC", sellerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanListings(rows)
}

// CreateListing inserts a new listing for an activated seller. The seller's
// display name is denormalized onto the row at creation time.
func (s *ListingService) CreateListing(sellerID string, input ListingInput) (models.Listing, error) {
	var sellerName string
	var isSeller bool
	row := s.db.QueryRow("SELECT display_name, is_seller FROM users WHERE id = ?", sellerID)
	if err := row.Scan(&sellerName, &isSeller); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Listing{}, models.ErrNotFound
		}
		return models.Listing{}, err
	}
	if !isSeller {
		return models.Listing{}, models.ErrNotSeller
	}

	listing := models.Listing{
		ID:          uuid.New().String(),
		Title:       input.Title,
		Description: input.Description,
		Price:       input.Price,
		Condition:   input.Condition,
		Category:    input.Category,
		ImageURL:    input.ImageURL,
		SellerID:    sellerID,
		SellerName:  sellerName,
	}

	stmt, err := s.db.Prepare(`INSERT INTO listings
		(id, title, description, price, condition, category, image_url, seller_id, seller_name)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return models.Listing{}, err
	}
	defer stmt.Close()

	_, err = stmt.Exec(listing.ID, listing.Title, listing.Description, listing.Price,
		listing.Condition, listing.Category, listing.ImageURL, listing.SellerID, listing.SellerName)
	if err != nil {
		return models.Listing{}, err
	}

	if s.eventSvc != nil {
		s.eventSvc.CreateEvent(models.EventListingCreated, "info",
			fmt.Sprintf("%s listed %q", sellerName, listing.Title), &listing.SellerID)
	}

	return s.GetListingByID(listing.ID)
}
