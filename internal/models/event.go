package models

import "time"

// Event types recorded to the activity feed.
const (
	EventUserRegistered  = "user.registered"
	EventListingCreated  = "listing.created"
	EventPostCreated     = "forum.post.created"
	EventCommentCreated  = "forum.comment.created"
	EventSellerActivated = "seller.activated"
)

// Event represents an entry in the activity feed.
type Event struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Level   string `json:"level"` // e.g. "info", "warn"
	Message string `json:"message"`
	// ActorID is the user that triggered the event. Nullable for
	// system-originated events such as webhook-driven activations.
	ActorID   *string   `json:"actorId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
