package websocket

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"

	"task-api/domain/ports"
	"task-api/pkg/logger"
)

// Conn is the part of a websocket connection the hub writes to.
type Conn interface {
	WriteJSON(v any) error
	Close() error
}

type Message struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// sendBuffer is how many messages a slow client may fall behind before new
// ones are dropped.
const sendBuffer = 32

type client struct {
	conn   Conn
	userID uuid.UUID
	send   chan Message
}

// Hub pushes task events to the connections of the task owner. A user holds at
// most one connection; a new one replaces the old. Every connection has its own
// writer goroutine so a stalled client never blocks senders or other users.
type Hub struct {
	clients         map[Conn]*client
	userConnections map[uuid.UUID]*client
	register        chan *client
	unregister      chan Conn
	done            chan struct{}
	stopOnce        sync.Once
	mutex           sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:         make(map[Conn]*client),
		userConnections: make(map[uuid.UUID]*client),
		register:        make(chan *client),
		unregister:      make(chan Conn),
		done:            make(chan struct{}),
	}
}

// Start runs the hub loop in its own goroutine until Stop.
func (h *Hub) Start() {
	go h.run()
}

func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

func (h *Hub) run() {
	log := logger.WithComponent("websocket")

	for {
		select {
		case <-h.done:
			h.mutex.Lock()
			for _, c := range h.clients {
				closeClient(c)
			}
			h.clients = make(map[Conn]*client)
			h.userConnections = make(map[uuid.UUID]*client)
			h.mutex.Unlock()
			return

		case c := <-h.register:
			h.mutex.Lock()
			if old, exists := h.userConnections[c.userID]; exists {
				delete(h.clients, old.conn)
				if old.conn != c.conn {
					closeClient(old)
					log.Info("Replaced existing connection", "user_id", c.userID)
				} else {
					close(old.send)
				}
			}
			h.clients[c.conn] = c
			h.userConnections[c.userID] = c
			h.mutex.Unlock()

			go h.writePump(c)
			log.Info("Client connected", "user_id", c.userID)

		case conn := <-h.unregister:
			h.remove(conn)
		}
	}
}

func (h *Hub) writePump(c *client) {
	for message := range c.send {
		if err := c.conn.WriteJSON(message); err != nil {
			logger.WithComponent("websocket").Warn("Failed to send message", "user_id", c.userID, "error", err)
			h.Unregister(c.conn)
			return
		}
	}
}

// closeClient must run under the write lock so no sender holds c.send.
func closeClient(c *client) {
	close(c.send)
	c.conn.Close()
}

func (h *Hub) remove(conn Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	c, ok := h.clients[conn]
	if !ok {
		return
	}
	delete(h.clients, conn)
	if current, exists := h.userConnections[c.userID]; exists && current == c {
		delete(h.userConnections, c.userID)
	}
	closeClient(c)

	logger.WithComponent("websocket").Info("Client disconnected", "user_id", c.userID)
}

func (h *Hub) Register(conn Conn, userID uuid.UUID) {
	c := &client{conn: conn, userID: userID, send: make(chan Message, sendBuffer)}
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
	}
}

func (h *Hub) Unregister(conn Conn) {
	select {
	case h.unregister <- conn:
	case <-h.done:
	}
}

// SendToUser queues a message for userID's connection, if any. It never
// blocks: when the connection's queue is full the message is dropped.
func (h *Hub) SendToUser(userID uuid.UUID, messageType string, data any) bool {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	c, exists := h.userConnections[userID]
	if !exists {
		return false
	}

	select {
	case c.send <- Message{Type: messageType, Data: data}:
		return true
	default:
		logger.WithComponent("websocket").Warn("Dropping message for slow client", "user_id", userID, "type", messageType)
		return false
	}
}

// HandleTaskEvent delivers event to the owner of the task and nobody else.
func (h *Hub) HandleTaskEvent(event *ports.TaskEvent) {
	h.SendToUser(event.OwnerID, string(event.Type), event)
}

func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// HandleClientMessage answers the small client protocol: only "ping" is understood.
func (h *Hub) HandleClientMessage(conn Conn, data []byte) {
	var message Message
	if err := json.Unmarshal(data, &message); err != nil {
		logger.WithComponent("websocket").Debug("Ignoring malformed client message", "error", err)
		return
	}

	switch message.Type {
	case "ping":
		if err := conn.WriteJSON(Message{Type: "pong", Data: "pong"}); err != nil {
			h.Unregister(conn)
		}
	default:
		logger.WithComponent("websocket").Debug("Unknown client message type", "type", message.Type)
	}
}
