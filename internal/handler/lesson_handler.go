package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/lms-api/internal/handler/dto"
	"github.com/yourusername/lms-api/internal/pkg/logger"
	"github.com/yourusername/lms-api/internal/service"
)

// LessonHandler обрабатывает запросы уроков
type LessonHandler struct {
	lessonService *service.LessonService
	log           *logger.Logger
}

// NewLessonHandler создает новый обработчик уроков
func NewLessonHandler(lessonService *service.LessonService, log *logger.Logger) *LessonHandler {
	return &LessonHandler{
		lessonService: lessonService,
		log:           log.Component("lesson_handler"),
	}
}

// LessonRequest представляет запрос на создание или обновление урока
type LessonRequest struct {
	Title       string `json:"title" binding:"required,notblank,max=200"`
	Description string `json:"description" binding:"max=500"`
	Content     string `json:"content" binding:"required,notblank"`
	VideoURL    string `json:"video_url" binding:"omitempty,url,max=500"`
	Level       string `json:"level" binding:"omitempty,oneof=beginner intermediate advanced"`
}

func (r LessonRequest) toInput() service.LessonInput {
	return service.LessonInput{
		Title:       r.Title,
		Description: r.Description,
		Content:     r.Content,
		VideoURL:    r.VideoURL,
		Level:       r.Level,
	}
}

// ListLessons возвращает страницу уроков
// GET /api/lessons
func (h *LessonHandler) ListLessons(c *gin.Context) {
	page, err := h.lessonService.List(c.Request.Context(), pageFromQuery(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewLessonListResponse(page))
}

// SearchLessons ищет уроки по названию, описанию и содержанию
// GET /api/lessons/search/:query
func (h *LessonHandler) SearchLessons(c *gin.Context) {
	page, err := h.lessonService.Search(c.Request.Context(), c.Param("query"), pageFromQuery(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewLessonListResponse(page))
}

// GetLesson возвращает урок по id
// GET /api/lessons/:id
func (h *LessonHandler) GetLesson(c *gin.Context) {
	lessonID := c.MustGet("lessonID").(uint)

	lesson, err := h.lessonService.Get(c.Request.Context(), lessonID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"lesson": dto.NewLessonResponse(lesson)})
}

// CreateLesson создает урок от имени текущего администратора
// POST /api/lessons
func (h *LessonHandler) CreateLesson(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req LessonRequest
	if !bindJSON(c, &req) {
		return
	}

	lesson, err := h.lessonService.Create(c.Request.Context(), user.ID, req.toInput())
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Lesson created successfully", "lesson": dto.NewLessonResponse(lesson)})
}

// UpdateLesson обновляет урок
// PUT /api/lessons/:id
func (h *LessonHandler) UpdateLesson(c *gin.Context) {
	lessonID := c.MustGet("lessonID").(uint)

	var req LessonRequest
	if !bindJSON(c, &req) {
		return
	}

	lesson, err := h.lessonService.Update(c.Request.Context(), lessonID, req.toInput())
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Lesson updated successfully", "lesson": dto.NewLessonResponse(lesson)})
}

// DeleteLesson удаляет урок вместе с отзывами. Урок с тестами не удаляется
// DELETE /api/lessons/:id
func (h *LessonHandler) DeleteLesson(c *gin.Context) {
	lessonID := c.MustGet("lessonID").(uint)

	if err := h.lessonService.Delete(c.Request.Context(), lessonID); err != nil {
		respondError(c, h.log, err)
		return
	}

	h.log.Info("[LessonHandler] Урок удален", "lesson_id", lessonID)
	c.JSON(http.StatusOK, gin.H{"message": "Lesson deleted successfully"})
}
