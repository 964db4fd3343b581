package websocket

import (
	"bytes"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/yourusername/lms-api/internal/pkg/logger"
)

const (
	// Время, которое разрешено писать сообщение клиенту.
	writeWait = 10 * time.Second

	// Время, которое разрешено клиенту читать следующее сообщение.
	pongWait = 30 * time.Second

	// Периодичность отправки ping-сообщений клиенту.
	pingPeriod = (pongWait * 9) / 10

	// Максимальный размер входящего сообщения. Лента только на чтение,
	// клиент присылает лишь heartbeat
	maxMessageSize = 512

	// Размер буфера канала отправки сообщений клиенту
	defaultClientBufferSize = 64
)

var (
	newline = []byte{'\n'}
	space   = []byte{' '}
)

// Client является посредником между WebSocket соединением и hub.
type Client struct {
	// ID пользователя
	UserID uint

	// Уникальный ID для каждого соединения
	ConnectionID string

	hub  *Hub
	conn *websocket.Conn

	// Буферизованный канал для исходящих сообщений
	send chan []byte

	// sendMu защищает send от записи после закрытия
	sendMu     sync.Mutex
	sendClosed bool

	log *logger.Logger
}

// NewClient создает нового клиента
func NewClient(hub *Hub, conn *websocket.Conn, userID uint, log *logger.Logger) *Client {
	connectionID := uuid.New().String()
	return &Client{
		UserID:       userID,
		ConnectionID: connectionID,
		hub:          hub,
		conn:         conn,
		send:         make(chan []byte, defaultClientBufferSize),
		log:          log.With("user_id", userID, "conn_id", connectionID),
	}
}

// StartPumps регистрирует клиента в хабе и запускает горутины чтения и записи
func (c *Client) StartPumps() {
	c.hub.Register(c)
	go c.writePump()
	go c.readPump()
}

// readPump читает сообщения клиента. Завершение чтения снимает клиента с хаба
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn("[WSClient] Ошибка чтения", "error", err)
			}
			return
		}
		c.handleMessage(bytes.TrimSpace(bytes.Replace(message, newline, space, -1)))
	}
}

// handleMessage обрабатывает входящее сообщение. Неизвестные типы получают ответ ERROR
func (c *Client) handleMessage(message []byte) {
	var incoming struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(message, &incoming); err != nil {
		c.sendEvent(ERROR, map[string]string{"error": "invalid message format"})
		return
	}

	switch incoming.Type {
	case USER_HEARTBEAT:
		c.sendEvent(SERVER_HEARTBEAT, map[string]int64{"timestamp": time.Now().UnixMilli()})
	default:
		c.sendEvent(ERROR, map[string]string{"error": "unsupported message type"})
	}
}

func (c *Client) sendEvent(eventType string, payload interface{}) {
	msg, err := NewEvent(eventType, payload)
	if err != nil {
		c.log.Error("[WSClient] Ошибка сериализации события", "type", eventType, "error", err)
		return
	}
	c.enqueue(msg)
}

// enqueue кладет сообщение в буфер клиента. При переполнении сообщение отбрасывается
func (c *Client) enqueue(message []byte) bool {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.sendClosed {
		return false
	}
	select {
	case c.send <- message:
		return true
	default:
		c.log.Warn("[WSClient] Буфер клиента переполнен, сообщение отброшено")
		return false
	}
}

// writePump отправляет сообщения клиенту из канала send и пингует соединение
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Хаб закрыл канал
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.log.Warn("[WSClient] Ошибка записи", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// CloseSend безопасно закрывает канал send (только один раз).
// Возвращает true, если канал был закрыт этим вызовом
func (c *Client) CloseSend() bool {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.sendClosed {
		return false
	}
	c.sendClosed = true
	close(c.send)
	return true
}
