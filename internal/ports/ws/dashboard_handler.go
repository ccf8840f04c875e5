package ws

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"rescue-coordination-system/internal/domain"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // В продакшені тут має бути перевірка походження запиту
	},
}

// DashboardHandler обробляє WebSocket з'єднання панелей спостереження
type DashboardHandler struct {
	hub    *Hub
	logger *zap.Logger
}

// NewDashboardHandler створює новий DashboardHandler
func NewDashboardHandler(hub *Hub, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		hub:    hub,
		logger: logger,
	}
}

// HandleConnection оброблює WebSocket з'єднання спостерігача
func (h *DashboardHandler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("Failed to upgrade websocket connection", zap.Error(err))
		return
	}

	c := &client{
		id:   uuid.New(),
		conn: conn,
		send: make(chan domain.Event, clientBufferSize),
	}

	if !h.hub.register(c) {
		conn.Close()
		return
	}

	h.logger.Info("Dashboard subscriber connected",
		zap.String("client_id", c.id.String()),
		zap.String("remote_addr", r.RemoteAddr),
	)

	go h.writePump(c)
	go h.readPump(c)
}

// writePump надсилає події та службові пінги підписнику
func (h *DashboardHandler) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(event); err != nil {
				h.hub.unregister(c)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.hub.unregister(c)
				return
			}
		}
	}
}

// readPump читає вхідний потік заради обробки pong та закриття з'єднання
func (h *DashboardHandler) readPump(c *client) {
	defer func() {
		h.hub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(1024)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			h.logger.Info("Dashboard subscriber disconnected",
				zap.String("client_id", c.id.String()),
			)
			return
		}
	}
}
