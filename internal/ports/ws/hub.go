package ws

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"rescue-coordination-system/internal/domain"
)

const (
	// Ємність буфера подій на одного підписника
	clientBufferSize = 64

	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

// client — один підключений спостерігач панелі
type client struct {
	id   uuid.UUID
	conn *websocket.Conn
	send chan domain.Event
}

// Hub транслює доменні події всім підключеним спостерігачам. Буфер кожного
// підписника обмежений: коли повільний клієнт його заповнює, найстаріша
// подія витісняється, а відправник ніколи не блокується.
type Hub struct {
	logger *zap.Logger

	mu      sync.Mutex
	clients map[uuid.UUID]*client
	closed  bool
}

// NewHub створює новий екземпляр Hub
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		logger:  logger,
		clients: make(map[uuid.UUID]*client),
	}
}

// Broadcast надсилає подію всім підписникам без блокування
func (h *Hub) Broadcast(event domain.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}

	for _, c := range h.clients {
		select {
		case c.send <- event:
		default:
			// Буфер заповнений: витісняємо найстарішу подію
			select {
			case <-c.send:
			default:
			}
			select {
			case c.send <- event:
			default:
			}
			h.logger.Debug("Dropped event for slow subscriber",
				zap.String("client_id", c.id.String()),
				zap.String("event_type", string(event.Type)),
			)
		}
	}
}

// register додає підписника до реєстру трансляції
func (h *Hub) register(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return false
	}
	h.clients[c.id] = c
	return true
}

// unregister видаляє підписника з реєстру трансляції
func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c.id]; ok {
		delete(h.clients, c.id)
		close(c.send)
	}
}

// ClientCount повертає кількість підключених спостерігачів
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Stop закриває всі з'єднання та зупиняє хаб
func (h *Hub) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true

	for id, c := range h.clients {
		delete(h.clients, id)
		close(c.send)
		c.conn.Close()
	}
}
