package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/lms-api/internal/handler/dto"
	"github.com/yourusername/lms-api/internal/pkg/logger"
	"github.com/yourusername/lms-api/internal/service"
)

// FeedbackHandler обрабатывает отзывы об уроках
type FeedbackHandler struct {
	feedbackService *service.FeedbackService
	log             *logger.Logger
}

// NewFeedbackHandler создает новый обработчик отзывов
func NewFeedbackHandler(feedbackService *service.FeedbackService, log *logger.Logger) *FeedbackHandler {
	return &FeedbackHandler{
		feedbackService: feedbackService,
		log:             log.Component("feedback_handler"),
	}
}

// FeedbackRequest представляет запрос на создание или изменение отзыва.
// Диапазон оценки проверяет сервис, чтобы ответ получил код invalid_rating
type FeedbackRequest struct {
	LessonID uint   `json:"lesson_id" binding:"required,gt=0"`
	Rating   int    `json:"rating" binding:"required"`
	Comment  string `json:"comment" binding:"max=1000"`
}

func (r FeedbackRequest) toInput() service.FeedbackInput {
	return service.FeedbackInput{LessonID: r.LessonID, Rating: r.Rating, Comment: r.Comment}
}

// ListFeedback возвращает все отзывы
// GET /api/feedback
func (h *FeedbackHandler) ListFeedback(c *gin.Context) {
	page, err := h.feedbackService.ListAll(c.Request.Context(), pageFromQuery(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewFeedbackListResponse(page))
}

// ListLessonFeedback возвращает отзывы урока со статистикой оценок
// GET /api/feedback/lesson/:lessonId
func (h *FeedbackHandler) ListLessonFeedback(c *gin.Context) {
	lessonID := c.MustGet("lessonID").(uint)

	lf, err := h.feedbackService.ListByLesson(c.Request.Context(), lessonID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewLessonFeedbackResponse(lf))
}

// ListMyFeedback возвращает отзывы текущего пользователя
// GET /api/feedback/my-feedback
func (h *FeedbackHandler) ListMyFeedback(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	views, err := h.feedbackService.ListMine(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"feedback": dto.NewFeedbackViews(views)})
}

// CreateFeedback создает отзыв. Один отзыв на урок от пользователя
// POST /api/feedback
func (h *FeedbackHandler) CreateFeedback(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req FeedbackRequest
	if !bindJSON(c, &req) {
		return
	}

	fb, err := h.feedbackService.Create(c.Request.Context(), user.ID, req.toInput())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Feedback submitted successfully", "feedback": dto.NewFeedbackResponse(fb)})
}

// UpdateFeedback изменяет отзыв. Доступно автору и администратору
// PUT /api/feedback/:id
func (h *FeedbackHandler) UpdateFeedback(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	feedbackID := c.MustGet("feedbackID").(uint)

	var req FeedbackRequest
	if !bindJSON(c, &req) {
		return
	}

	fb, err := h.feedbackService.Update(c.Request.Context(), feedbackID, user, req.toInput())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Feedback updated successfully", "feedback": dto.NewFeedbackResponse(fb)})
}

// DeleteFeedback удаляет отзыв. Доступно автору и администратору
// DELETE /api/feedback/:id
func (h *FeedbackHandler) DeleteFeedback(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	feedbackID := c.MustGet("feedbackID").(uint)

	if err := h.feedbackService.Delete(c.Request.Context(), feedbackID, user); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Feedback deleted successfully"})
}
