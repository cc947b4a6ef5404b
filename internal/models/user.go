package models

import "time"

// User represents a registered account and its marketplace profile.
type User struct {
	ID           string `json:"id"`
	DisplayName  string `json:"displayName"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"` // Never expose this to the client
	PhotoURL     string `json:"photoUrl,omitempty"`
	// IsSeller gates listing creation. It is set to true exactly once, when
	// the payment provider reports the account can accept charges, and is
	// never unset.
	IsSeller        bool      `json:"isSeller"`
	StripeAccountID string    `json:"-"`
	CreatedAt       time.Time `json:"createdAt"`
}
