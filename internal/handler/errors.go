package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/lms-api/internal/middleware"
	apperrors "github.com/yourusername/lms-api/internal/pkg/errors"
	"github.com/yourusername/lms-api/internal/pkg/logger"
	"github.com/yourusername/lms-api/internal/service"
)

// apiError описывает ответ для конкретной доменной ошибки
type apiError struct {
	err     error
	status  int
	code    string
	message string
}

// domainErrors проверяются по порядку до общих категорий apperrors
var domainErrors = []apiError{
	{service.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials", "Invalid username or password"},
	{service.ErrUserExists, http.StatusConflict, "user_exists", "User with this username or email already exists"},
	{service.ErrUserNotFound, http.StatusNotFound, "user_not_found", "User not found"},
	{service.ErrInvalidRole, http.StatusBadRequest, "invalid_role", "Invalid role"},
	{service.ErrLessonNotFound, http.StatusNotFound, "lesson_not_found", "Lesson not found"},
	{service.ErrLessonHasQuizzes, http.StatusConflict, "lesson_has_quizzes", "Cannot delete lesson with associated quizzes"},
	{service.ErrEmptySearchQuery, http.StatusBadRequest, "empty_search_query", "Search query is required"},
	{service.ErrQuizNotFound, http.StatusNotFound, "quiz_not_found", "Quiz not found"},
	{service.ErrAlreadyCompleted, http.StatusConflict, "quiz_already_completed", "You have already completed this quiz"},
	{service.ErrResultNotFound, http.StatusNotFound, "result_not_found", "Result not found"},
	{service.ErrFeedbackNotFound, http.StatusNotFound, "feedback_not_found", "Feedback not found"},
	{service.ErrFeedbackExists, http.StatusConflict, "feedback_exists", "You have already submitted feedback for this lesson"},
	{service.ErrInvalidRating, http.StatusBadRequest, "invalid_rating", "Rating must be between 1 and 5"},
	{service.ErrUnsupportedFormat, http.StatusBadRequest, "unsupported_format", "Unsupported export format, use csv or xlsx"},
	{service.ErrAccessDenied, http.StatusForbidden, "access_denied", "Access denied"},
}

// respondError отправляет JSON с ошибкой {"error", "error_type"}.
// Неизвестные ошибки логируются и отдаются как 500 без подробностей.
func respondError(c *gin.Context, log *logger.Logger, err error) {
	for _, de := range domainErrors {
		if errors.Is(err, de.err) {
			c.JSON(de.status, gin.H{"error": de.message, "error_type": de.code})
			return
		}
	}

	switch {
	// Ошибки валидации вопросов несут текст с номером вопроса
	case errors.Is(err, service.ErrInvalidQuestion):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationMessage(err), "error_type": "invalid_question"})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationMessage(err), "error_type": "validation_error"})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Resource not found", "error_type": "not_found"})
	case errors.Is(err, apperrors.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "Resource state conflict", "error_type": "conflict"})
	case errors.Is(err, apperrors.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "error_type": "unauthorized"})
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden", "error_type": "forbidden"})
	case errors.Is(err, apperrors.ErrTimeout):
		log.Warn("[Handler] Превышено время обработки запроса",
			"path", c.FullPath(), "request_id", c.GetString(middleware.ContextRequestIDKey), "error", err)
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "Request timed out", "error_type": "timeout"})
	case errors.Is(err, apperrors.ErrUnavailable):
		log.Error("[Handler] Хранилище недоступно",
			"path", c.FullPath(), "request_id", c.GetString(middleware.ContextRequestIDKey), "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Service temporarily unavailable", "error_type": "unavailable"})
	default:
		log.Error("[Handler] Внутренняя ошибка сервера",
			"path", c.FullPath(), "request_id", c.GetString(middleware.ContextRequestIDKey), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error", "error_type": "internal_error"})
	}
}

// validationMessage убирает из текста ошибки префиксы категорий
func validationMessage(err error) string {
	msg := err.Error()
	for _, prefix := range []string{apperrors.ErrValidation.Error() + ": ", "invalid_question: "} {
		msg = strings.TrimPrefix(msg, prefix)
	}
	return msg
}
