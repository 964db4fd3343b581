package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"

	"github.com/yourusername/lms-api/internal/pkg/logger"
	"github.com/yourusername/lms-api/internal/websocket"
)

// FeedHandler подключает администраторов к ленте результатов по WebSocket
type FeedHandler struct {
	hub      *websocket.Hub
	upgrader gorillaws.Upgrader
	log      *logger.Logger
}

// NewFeedHandler создает обработчик ленты. allowedOrigins синхронизирован с CORS
func NewFeedHandler(hub *websocket.Hub, allowedOrigins []string, log *logger.Logger) *FeedHandler {
	h := &FeedHandler{hub: hub, log: log.Component("feed_handler")}

	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = struct{}{}
	}

	h.upgrader = gorillaws.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			// Пустой Origin присылают не браузерные клиенты
			if origin == "" {
				return true
			}
			if _, ok := allowed[origin]; ok {
				return true
			}
			if _, ok := allowed["*"]; ok {
				return true
			}
			h.log.Warn("[FeedHandler] Отклонен неразрешенный origin", "origin", origin)
			return false
		},
		EnableCompression: true,
	}
	return h
}

// HandleConnection обновляет соединение до WebSocket и регистрирует клиента
// GET /api/quiz-results/feed
func (h *FeedHandler) HandleConnection(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade уже записал ответ с ошибкой
		h.log.Warn("[FeedHandler] Ошибка обновления соединения", "user_id", user.ID, "error", err)
		return
	}

	websocket.NewClient(h.hub, conn, user.ID, h.log).StartPumps()
	h.log.Info("[FeedHandler] Администратор подключен к ленте", "user_id", user.ID)
}
