package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/lms-api/internal/domain/repository"
	"github.com/yourusername/lms-api/internal/pkg/logger"
)

// Pinger проверяет соединение с хранилищем. *sql.DB удовлетворяет этому интерфейсу
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler проверяет доступность Postgres и Redis
type HealthHandler struct {
	db    Pinger
	cache repository.CacheRepository
	log   *logger.Logger
}

// NewHealthHandler создает обработчик health check. cache может быть nil
func NewHealthHandler(db Pinger, cache repository.CacheRepository, log *logger.Logger) *HealthHandler {
	return &HealthHandler{db: db, cache: cache, log: log.Component("health_handler")}
}

// Health возвращает 200, если все хранилища доступны, иначе 503
// GET /api/health
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := gin.H{"postgres": "ok", "redis": "disabled"}

	if err := h.db.PingContext(ctx); err != nil {
		h.log.Error("[HealthHandler] Postgres недоступен", "error", err)
		checks["postgres"] = "unavailable"
		status = http.StatusServiceUnavailable
	}

	if h.cache != nil {
		checks["redis"] = "ok"
		if err := h.cache.Ping(ctx); err != nil {
			h.log.Error("[HealthHandler] Redis недоступен", "error", err)
			checks["redis"] = "unavailable"
			status = http.StatusServiceUnavailable
		}
	}

	overall := "ok"
	if status != http.StatusOK {
		overall = "degraded"
	}
	c.JSON(status, gin.H{"status": overall, "checks": checks, "time": time.Now().UTC()})
}
