package websocket

import "github.com/rs/zerolog/log"

// targetedMessage is a broadcast scoped to one activity channel.
type targetedMessage struct {
	channel string
	payload []byte
}

// Hub maintains the set of active clients and broadcasts activity events to
// them. All map access happens on the Run goroutine; callers interact with
// the hub through its channels only, and Run is the sole closer of a
// client's Send channel.
type Hub struct {
	// Registered clients.
	clients map[*Client]bool

	// Inbound messages for global broadcast.
	Broadcast chan []byte

	// Channel-scoped broadcasts, fed by BroadcastTo.
	broadcastTo chan targetedMessage

	// Register requests from the clients.
	Register chan *Client

	// Unregister requests from clients.
	Unregister chan *Client

	// A map of channel names ("market", "forum", "global") to the set of
	// clients subscribed to each.
	subscriptions map[string]map[*Client]bool
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		Broadcast:     make(chan []byte),
		broadcastTo:   make(chan targetedMessage),
		Register:      make(chan *Client),
		Unregister:    make(chan *Client),
		clients:       make(map[*Client]bool),
		subscriptions: make(map[string]map[*Client]bool),
	}
}

// Run starts the Hub's message processing loop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.clients[client] = true
			log.Info().Int("total_clients", len(h.clients)).Msg("Client connected")
			if client.Channel != "" {
				h.addSubscription(client, client.Channel)
			}
		case client := <-h.Unregister:
			if _, ok := h.clients[client]; ok {
				h.drop(client)
				log.Info().Int("total_clients", len(h.clients)).Msg("Client disconnected")
			}
		case message := <-h.Broadcast:
			for client := range h.clients {
				select {
				case client.Send <- message:
				default:
					h.drop(client)
				}
			}
		case msg := <-h.broadcastTo:
			for client := range h.subscriptions[msg.channel] {
				select {
				case client.Send <- msg.payload:
				default:
					h.drop(client)
				}
			}
		}
	}
}

// BroadcastTo sends a message to all clients subscribed to a channel. Safe to
// call from any goroutine; delivery happens on the Run loop.
func (h *Hub) BroadcastTo(channel string, message []byte) {
	h.broadcastTo <- targetedMessage{channel: channel, payload: message}
}

// drop removes a client from the hub and every subscription, closing its
// Send channel exactly once. Must only be called from Run.
func (h *Hub) drop(client *Client) {
	delete(h.clients, client)
	h.removeSubscription(client)
	close(client.Send)
}

func (h *Hub) addSubscription(client *Client, channel string) {
	if h.subscriptions[channel] == nil {
		h.subscriptions[channel] = make(map[*Client]bool)
	}
	h.subscriptions[channel][client] = true
}

func (h *Hub) removeSubscription(client *Client) {
	for channel, subs := range h.subscriptions {
		if _, ok := subs[client]; ok {
			delete(subs, client)
			if len(subs) == 0 {
				delete(h.subscriptions, channel)
			}
		}
	}
}
