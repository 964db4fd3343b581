package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/lms-api/internal/handler/dto"
	"github.com/yourusername/lms-api/internal/middleware"
	"github.com/yourusername/lms-api/internal/pkg/logger"
	"github.com/yourusername/lms-api/internal/service"
)

// QuizHandler обрабатывает запросы, связанные с тестами
type QuizHandler struct {
	quizService *service.QuizService
	log         *logger.Logger
}

// NewQuizHandler создает новый обработчик тестов
func NewQuizHandler(quizService *service.QuizService, log *logger.Logger) *QuizHandler {
	return &QuizHandler{
		quizService: quizService,
		log:         log.Component("quiz_handler"),
	}
}

// QuestionRequest представляет вопрос в запросе на создание или обновление теста
type QuestionRequest struct {
	QuestionText  string   `json:"question_text" binding:"required,notblank"`
	Options       []string `json:"options" binding:"required,min=2,max=6,dive,notblank"`
	CorrectAnswer *int     `json:"correct_answer" binding:"required,gte=0"`
	Points        int      `json:"points" binding:"omitempty,gte=1"`
}

// QuizRequest представляет запрос на создание или обновление теста вместе с вопросами
type QuizRequest struct {
	Title       string            `json:"title" binding:"required,notblank,max=200"`
	Description string            `json:"description" binding:"max=500"`
	LessonID    *uint             `json:"lesson_id" binding:"omitempty,gt=0"`
	Questions   []QuestionRequest `json:"questions" binding:"required,min=1,dive"`
}

func (r QuizRequest) toInput() service.QuizInput {
	questions := make([]service.QuestionInput, 0, len(r.Questions))
	for _, q := range r.Questions {
		questions = append(questions, service.QuestionInput{
			QuestionText:  q.QuestionText,
			Options:       q.Options,
			CorrectAnswer: *q.CorrectAnswer,
			Points:        q.Points,
		})
	}
	return service.QuizInput{
		Title:       r.Title,
		Description: r.Description,
		LessonID:    r.LessonID,
		Questions:   questions,
	}
}

// ListQuizzes возвращает страницу тестов с числом вопросов
// GET /api/quizzes
func (h *QuizHandler) ListQuizzes(c *gin.Context) {
	page, err := h.quizService.List(c.Request.Context(), pageFromQuery(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewQuizListResponse(page))
}

// ListLessonQuizzes возвращает тесты урока
// GET /api/quizzes/lesson/:lessonId
func (h *QuizHandler) ListLessonQuizzes(c *gin.Context) {
	lessonID := c.MustGet("lessonID").(uint)

	quizzes, err := h.quizService.ListByLesson(c.Request.Context(), lessonID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"quizzes": dto.NewQuizList(quizzes)})
}

// GetQuiz возвращает тест с вопросами. Правильные ответы видит только администратор
// GET /api/quizzes/:id
func (h *QuizHandler) GetQuiz(c *gin.Context) {
	quizID := c.MustGet("quizID").(uint)

	detail, err := h.quizService.Get(c.Request.Context(), quizID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	user, ok := middleware.CurrentUser(c)
	includeAnswers := ok && user.IsAdmin()
	c.JSON(http.StatusOK, gin.H{"quiz": dto.NewQuizDetailResponse(detail, includeAnswers)})
}

// CreateQuiz создает тест с вопросами
// POST /api/quizzes
func (h *QuizHandler) CreateQuiz(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req QuizRequest
	if !bindJSON(c, &req) {
		return
	}

	detail, err := h.quizService.Create(c.Request.Context(), user.ID, req.toInput())
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	h.log.Info("[QuizHandler] Тест создан", "quiz_id", detail.Quiz.ID, "questions", len(detail.Questions))
	c.JSON(http.StatusCreated, gin.H{"message": "Quiz created successfully", "quiz": dto.NewQuizDetailResponse(detail, true)})
}

// UpdateQuiz обновляет тест и полностью заменяет его вопросы
// PUT /api/quizzes/:id
func (h *QuizHandler) UpdateQuiz(c *gin.Context) {
	quizID := c.MustGet("quizID").(uint)

	var req QuizRequest
	if !bindJSON(c, &req) {
		return
	}

	detail, err := h.quizService.Update(c.Request.Context(), quizID, req.toInput())
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Quiz updated successfully", "quiz": dto.NewQuizDetailResponse(detail, true)})
}

// DeleteQuiz удаляет тест вместе с вопросами и результатами
// DELETE /api/quizzes/:id
func (h *QuizHandler) DeleteQuiz(c *gin.Context) {
	quizID := c.MustGet("quizID").(uint)

	if err := h.quizService.Delete(c.Request.Context(), quizID); err != nil {
		respondError(c, h.log, err)
		return
	}

	h.log.Info("[QuizHandler] Тест удален", "quiz_id", quizID)
	c.JSON(http.StatusOK, gin.H{"message": "Quiz deleted successfully"})
}
