package services

import (
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/pawspace/pawspace-be/internal/models"
	ws "github.com/pawspace/pawspace-be/internal/websocket"
	"github.com/rs/zerolog/log"
)

// Broadcaster pushes a serialized event to connected websocket clients.
// Implemented by the websocket Hub.
type Broadcaster interface {
	BroadcastTo(channel string, message []byte)
}

// EventServiceProvider defines the interface for activity-feed services.
type EventServiceProvider interface {
	CreateEvent(eventType, level, message string, actorID *string) error
	GetRecentEvents(limit int) ([]models.Event, error)
}

// EventService records activity-feed entries and fans them out to websocket
// subscribers.
type EventService struct {
	db  *sql.DB
	hub Broadcaster
}

// NewEventService creates a new EventService. hub may be nil in tests.
func NewEventService(db *sql.DB, hub Broadcaster) *EventService {
	return &EventService{db: db, hub: hub}
}

// channelFor maps an event type to the websocket channel it is published on.
func channelFor(eventType string) string {
	switch {
	case strings.HasPrefix(eventType, "listing."), strings.HasPrefix(eventType, "seller."):
		return "market"
	case strings.HasPrefix(eventType, "forum."):
		return "forum"
	default:
		return "global"
	}
}

// CreateEvent logs a new event to the database and broadcasts it.
func (s *EventService) CreateEvent(eventType, level, message string, actorID *string) error {
	event := models.Event{
		ID:      uuid.New().String(),
		Type:    eventType,
		Level:   level,
		Message: message,
		ActorID: actorID,
	}

	stmt, err := s.db.Prepare("INSERT INTO events (id, type, level, message, actor_id) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	if _, err := stmt.Exec(event.ID, event.Type, event.Level, event.Message, event.ActorID); err != nil {
		return err
	}

	if s.hub != nil {
		payload, err := json.Marshal(ws.Message{Action: "event", Payload: event})
		if err != nil {
			log.Error().Err(err).Str("event_type", eventType).Msg("Failed to serialize event for broadcast")
			return nil
		}
		channel := channelFor(eventType)
		s.hub.BroadcastTo(channel, payload)
		if channel != "global" {
			s.hub.BroadcastTo("global", payload)
		}
	}
	return nil
}

// GetRecentEvents retrieves the most recent events from the database.
func (s *EventService) GetRecentEvents(limit int) ([]models.Event, error) {
	rows, err := s.db.Query("SELECT id, type, level, message, actor_id, created_at FROM events ORDER BY created_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		var event models.Event
		if err := rows.Scan(&event.ID, &event.Type, &event.Level, &event.Message, &event.ActorID, &event.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}
