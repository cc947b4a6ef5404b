package models

import "time"

// Favorite marks a listing saved by a user.
type Favorite struct {
	UserID    string    `json:"userId"`
	ListingID string    `json:"listingId"`
	CreatedAt time.Time `json:"createdAt"`
}
