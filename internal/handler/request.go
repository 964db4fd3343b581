package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/lms-api/internal/domain/entity"
	"github.com/yourusername/lms-api/internal/middleware"
	"github.com/yourusername/lms-api/internal/service"
)

// pageFromQuery читает page и limit из query. Некорректные значения заменяются умолчаниями
func pageFromQuery(c *gin.Context) service.PageRequest {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil {
		page = service.DefaultPage
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil {
		limit = service.DefaultLimit
	}
	return service.NewPageRequest(page, limit)
}

// currentUser возвращает пользователя, установленного RequireAuth, или отвечает 401
func currentUser(c *gin.Context) (*entity.User, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "error_type": "token_missing"})
		return nil, false
	}
	return user, true
}
