package models

import "time"

// Listing is a marketplace item offered by a seller. Listings are immutable
// once created; there are no update or delete paths.
type Listing struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Condition   string    `json:"condition"` // e.g. "New", "Like New", "Good"
	Category    string    `json:"category"`  // e.g. "Beds", "Toys", "Food"
	ImageURL    string    `json:"imageUrl,omitempty"`
	SellerID    string    `json:"sellerId"`
	SellerName  string    `json:"sellerName"`
	CreatedAt   time.Time `json:"createdAt"`
}
