package live

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 256
)

// Client is one websocket connection
type Client struct {
	ID   string
	Hub  *Hub
	Conn *websocket.Conn

	send   chan []byte
	sendMu sync.Mutex
	closed bool
	mu     sync.RWMutex
	topics map[Topic]bool
	logger zerolog.Logger
}

// NewClient creates a client subscribed to every topic
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	topics := make(map[Topic]bool, len(AllTopics))
	for _, t := range AllTopics {
		topics[t] = true
	}
	id := uuid.New().String()
	return &Client{
		ID:     id,
		Hub:    hub,
		Conn:   conn,
		send:   make(chan []byte, sendBuffer),
		topics: topics,
		logger: hub.logger.With().Str("client", id).Logger(),
	}
}

// Subscribed reports whether the client receives topic
func (c *Client) Subscribed(topic Topic) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.topics[topic]
}

// Topics returns the subscribed topics in AllTopics order
func (c *Client) Topics() []Topic {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Topic, 0, len(c.topics))
	for _, t := range AllTopics {
		if c.topics[t] {
			out = append(out, t)
		}
	}
	return out
}

// SendMessage queues msg. A slow client loses messages rather than
// blocking the hub.
func (c *Client) SendMessage(msg *OutgoingMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to marshal message")
		return
	}

	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- data:
	default:
		c.logger.Warn().Str("type", string(msg.Type)).Msg("Client send buffer full, dropping message")
	}
}

// closeSend stops the write pump. It is safe to call more than once.
func (c *Client) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// ReadPump reads client messages until the connection fails
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn().Err(err).Msg("WebSocket read error")
			}
			return
		}
		c.handleMessage(message)
	}
}

// WritePump writes queued messages and keeps the connection alive with pings
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleMessage(message []byte) {
	var msg IncomingMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		c.sendError("INVALID_JSON", "Failed to parse message")
		return
	}

	switch msg.Type {
	case "ping":
		c.SendMessage(&OutgoingMessage{
			Type: MessageTypePong,
			Data: map[string]interface{}{
				"timestamp": time.Now().UTC().Format(time.RFC3339),
			},
		})

	case "subscribe":
		var data SubscribeData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("INVALID_DATA", "Failed to parse subscribe data")
			return
		}
		topics := make(map[Topic]bool, len(data.Topics))
		for _, t := range data.Topics {
			if !isTopic(t) {
				c.sendError("UNKNOWN_TOPIC", "Unknown topic: "+string(t))
				return
			}
			topics[t] = true
		}
		c.mu.Lock()
		c.topics = topics
		c.mu.Unlock()
		c.SendMessage(&OutgoingMessage{Type: MessageTypeSubscribed, Data: SubscribeData{Topics: c.Topics()}})

	default:
		c.sendError("UNKNOWN_TYPE", "Unknown message type: "+msg.Type)
	}
}

func (c *Client) sendError(code, message string) {
	c.SendMessage(&OutgoingMessage{
		Type: MessageTypeError,
		Data: ErrorData{Code: code, Message: message},
	})
}

func isTopic(t Topic) bool {
	for _, known := range AllTopics {
		if t == known {
			return true
		}
	}
	return false
}
