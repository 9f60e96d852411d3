package handlers

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"netrunner-rpg-backend/internal/services"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketHandler owns the live-event hub. It implements
// services.Broadcaster so the engines can push gameplay events to
// connected players without knowing about connections.
type WebSocketHandler struct {
	store  services.Store
	hub    *webSocketHub
	logger *slog.Logger
}

type webSocketHub struct {
	clients    map[string]*wsClient
	register   chan *wsClient
	unregister chan *wsClient
	broadcast  chan *wsMessage
	logger     *slog.Logger
}

type wsClient struct {
	UserID string
	Conn   *websocket.Conn
	mu     sync.Mutex
}

// writeJSON serializes writes to the connection. The hub goroutine and
// the per-connection read loop both reply on the same socket, and
// gorilla allows only one concurrent writer.
func (c *wsClient) writeJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Conn.WriteJSON(v)
}

type wsMessage struct {
	Type   string `json:"type"`
	UserID string `json:"user_id,omitempty"`
	Data   any    `json:"data"`
}

func NewWebSocketHandler(store services.Store, logger *slog.Logger) *WebSocketHandler {
	hub := &webSocketHub{
		clients:    make(map[string]*wsClient),
		register:   make(chan *wsClient),
		unregister: make(chan *wsClient),
		broadcast:  make(chan *wsMessage, 100),
		logger:     logger,
	}

	go hub.run()

	return &WebSocketHandler{
		store:  store,
		hub:    hub,
		logger: logger,
	}
}

// PublishPlayerEvent implements services.Broadcaster. An empty userID
// fans the event out to every connected player.
func (h *WebSocketHandler) PublishPlayerEvent(userID, eventType string, data any) {
	msg := &wsMessage{
		Type:   eventType,
		UserID: userID,
		Data:   data,
	}

	select {
	case h.hub.broadcast <- msg:
	default:
		h.logger.Warn("dropping websocket event, broadcast queue full", "type", eventType)
	}
}

// HandleWebSocket upgrades the connection and serves it until close.
func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	userID := c.GetString("user_id")
	username := c.GetString("username")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	client := &wsClient{
		UserID: userID,
		Conn:   conn,
	}

	h.hub.register <- client

	defer func() {
		h.hub.unregister <- client
		conn.Close()
	}()

	h.sendSnapshot(c, client, username)

	for {
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Warn("websocket read failed", "user_id", userID, "error", err)
			}
			break
		}

		if msg.Type == "PING" {
			client.writeJSON(wsMessage{
				Type: "PONG",
				Data: gin.H{"timestamp": time.Now().Unix()},
			})
		}
	}
}

// sendSnapshot pushes the current balance and trace on connect so the
// client starts from known state.
func (h *WebSocketHandler) sendSnapshot(c *gin.Context, client *wsClient, username string) {
	player, err := h.store.GetOrCreate(c.Request.Context(), client.UserID, username)
	if err != nil {
		h.logger.Warn("failed to load player for websocket snapshot", "user_id", client.UserID, "error", err)
		return
	}

	client.writeJSON(wsMessage{
		Type: "STATE_SNAPSHOT",
		Data: gin.H{
			"credits":     player.Credits,
			"level":       player.Level,
			"xp":          player.XP,
			"health":      player.Health,
			"trace_level": player.TraceLevel,
		},
	})
}

func (hub *webSocketHub) run() {
	for {
		select {
		case client := <-hub.register:
			hub.clients[client.UserID] = client
			hub.logger.Debug("websocket client registered", "user_id", client.UserID)

		case client := <-hub.unregister:
			if _, ok := hub.clients[client.UserID]; ok {
				delete(hub.clients, client.UserID)
				hub.logger.Debug("websocket client unregistered", "user_id", client.UserID)
			}

		case message := <-hub.broadcast:
			hub.send(message)
		}
	}
}

func (hub *webSocketHub) send(message *wsMessage) {
	if message.UserID != "" {
		if client, ok := hub.clients[message.UserID]; ok {
			client.writeJSON(message)
		}
		return
	}
	for _, client := range hub.clients {
		client.writeJSON(message)
	}
}
