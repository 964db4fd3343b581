package websocket

import (
	"context"
	"sync/atomic"

	"github.com/yourusername/lms-api/internal/pkg/logger"
)

const broadcastBufferSize = 256

// Hub хранит подключенных к ленте клиентов и рассылает им сообщения.
// Все изменения набора клиентов выполняются в горутине Run
type Hub struct {
	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	done       chan struct{}
	count      atomic.Int64
	log        *logger.Logger
}

// NewHub создает хаб. Для работы нужно запустить Run
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, broadcastBufferSize),
		done:       make(chan struct{}),
		log:        log.Component("ws_hub"),
	}
}

// Run обрабатывает регистрацию, отключение и рассылку до отмены ctx
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.clients[client] = struct{}{}
			h.count.Store(int64(len(h.clients)))
			h.log.Info("[Hub] Клиент подключен", "user_id", client.UserID, "conn_id", client.ConnectionID)
		case client := <-h.unregister:
			h.remove(client)
		case message := <-h.broadcast:
			for client := range h.clients {
				client.enqueue(message)
			}
		case <-ctx.Done():
			h.log.Info("[Hub] Остановка, отключаем клиентов", "clients", len(h.clients))
			for client := range h.clients {
				h.remove(client)
			}
			return
		}
	}
}

func (h *Hub) remove(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	client.CloseSend()
	h.count.Store(int64(len(h.clients)))
	h.log.Info("[Hub] Клиент отключен", "user_id", client.UserID, "conn_id", client.ConnectionID)
}

// Register добавляет клиента. После остановки хаба канал клиента сразу закрывается
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		client.CloseSend()
	}
}

// Unregister удаляет клиента
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Broadcast ставит сообщение в очередь рассылки локальным клиентам и не блокируется.
// При переполненной очереди сообщение отбрасывается, возвращается false
func (h *Hub) Broadcast(message []byte) bool {
	select {
	case h.broadcast <- message:
		return true
	case <-h.done:
		return false
	default:
		h.log.Warn("[Hub] Очередь рассылки переполнена, сообщение отброшено", "size", len(message))
		return false
	}
}

// ClientCount возвращает число подключенных клиентов
func (h *Hub) ClientCount() int {
	return int(h.count.Load())
}
