// Package live pushes change notifications to connected dashboards over
// websockets.
package live

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"
)

// Topic groups the messages a client can subscribe to
type Topic string

const (
	TopicCalendar  Topic = "calendar"
	TopicCatalog   Topic = "catalog"
	TopicAnalytics Topic = "analytics"
)

// AllTopics lists every topic; new clients start subscribed to all of them
var AllTopics = []Topic{TopicCalendar, TopicCatalog, TopicAnalytics}

// MessageType is the type of a websocket message
type MessageType string

const (
	MessageTypeConnected        MessageType = "connected"
	MessageTypeSubscribed       MessageType = "subscribed"
	MessageTypeCalendarChanged  MessageType = "calendar_changed"
	MessageTypeCatalogChanged   MessageType = "catalog_changed"
	MessageTypeAnalyticsChanged MessageType = "analytics_changed"
	MessageTypeCategoryUpdate   MessageType = "category_update"
	MessageTypePong             MessageType = "pong"
	MessageTypeError            MessageType = "error"
)

// OutgoingMessage is sent to clients
type OutgoingMessage struct {
	Type MessageType `json:"type"`
	Data interface{} `json:"data"`
}

// IncomingMessage is received from clients
type IncomingMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// SubscribeData selects the topics a client receives
type SubscribeData struct {
	Topics []Topic `json:"topics"`
}

// ConnectedData is sent right after a client registers
type ConnectedData struct {
	ClientID string  `json:"client_id"`
	Topics   []Topic `json:"topics"`
}

// ErrorData describes a rejected client message
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Hub tracks connected clients and fans messages out by topic
type Hub struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	shutdown   chan struct{}
	once       sync.Once
	mu         sync.RWMutex
	logger     zerolog.Logger
}

// NewHub creates a hub. Call Run before registering clients.
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		shutdown:   make(chan struct{}),
		logger:     logger.With().Str("component", "live").Logger(),
	}
}

// Run processes registrations until Shutdown
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)
		case client := <-h.unregister:
			h.unregisterClient(client)
		case <-h.shutdown:
			h.closeAllClients()
			return
		}
	}
}

// Shutdown closes every client and stops Run
func (h *Hub) Shutdown() {
	h.once.Do(func() { close(h.shutdown) })
}

// Register adds a client
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.shutdown:
		client.Conn.Close()
	}
}

// Unregister removes a client
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.shutdown:
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast sends msg to every client subscribed to topic
func (h *Hub) Broadcast(topic Topic, msg *OutgoingMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		if client.Subscribed(topic) {
			client.SendMessage(msg)
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	h.clients[client.ID] = client
	h.mu.Unlock()

	h.logger.Debug().Str("client", client.ID).Msg("Client registered")
	client.SendMessage(&OutgoingMessage{
		Type: MessageTypeConnected,
		Data: ConnectedData{ClientID: client.ID, Topics: client.Topics()},
	})
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client.ID]; ok {
		delete(h.clients, client.ID)
		client.closeSend()
		h.logger.Debug().Str("client", client.ID).Msg("Client unregistered")
	}
}

func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, client := range h.clients {
		client.closeSend()
		delete(h.clients, id)
	}
}
