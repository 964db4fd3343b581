package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/lms-api/internal/handler/dto"
	"github.com/yourusername/lms-api/internal/pkg/logger"
	"github.com/yourusername/lms-api/internal/service"
)

// UserHandler обрабатывает запросы, связанные с пользователями
type UserHandler struct {
	userService *service.UserService
	log         *logger.Logger
}

// NewUserHandler создает новый обработчик пользователей
func NewUserHandler(userService *service.UserService, log *logger.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		log:         log.Component("user_handler"),
	}
}

// UpdateRoleRequest представляет запрос на смену роли
type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// ListUsers возвращает страницу пользователей
// GET /api/users
func (h *UserHandler) ListUsers(c *gin.Context) {
	page, err := h.userService.List(c.Request.Context(), pageFromQuery(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserListResponse(page))
}

// GetUser возвращает пользователя по id
// GET /api/users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	userID := c.MustGet("userID").(uint)

	user, err := h.userService.Get(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": dto.NewUserResponse(user)})
}

// UpdateRole меняет роль пользователя. Роль проверяется сервисом,
// чтобы неизвестное значение получило код invalid_role
// PUT /api/users/:id/role
func (h *UserHandler) UpdateRole(c *gin.Context) {
	userID := c.MustGet("userID").(uint)

	var req UpdateRoleRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.UpdateRole(c.Request.Context(), userID, req.Role)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	h.log.Info("[UserHandler] Роль пользователя изменена", "user_id", user.ID, "role", user.Role)
	c.JSON(http.StatusOK, gin.H{"message": "User role updated successfully", "user": dto.NewUserResponse(user)})
}

// GetOverviewStats возвращает сводку по пользователям
// GET /api/users/stats/overview
func (h *UserHandler) GetOverviewStats(c *gin.Context) {
	stats, err := h.userService.OverviewStats(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"statistics": stats})
}
