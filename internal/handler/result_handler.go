package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/yourusername/lms-api/internal/domain/entity"
	"github.com/yourusername/lms-api/internal/handler/dto"
	"github.com/yourusername/lms-api/internal/pkg/logger"
	"github.com/yourusername/lms-api/internal/service"
)

// ResultHandler обрабатывает отправку тестов и отчеты по результатам
type ResultHandler struct {
	submissionService *service.SubmissionService
	resultService     *service.ResultService
	log               *logger.Logger
}

// NewResultHandler создает новый обработчик результатов
func NewResultHandler(
	submissionService *service.SubmissionService,
	resultService *service.ResultService,
	log *logger.Logger,
) *ResultHandler {
	return &ResultHandler{
		submissionService: submissionService,
		resultService:     resultService,
		log:               log.Component("result_handler"),
	}
}

// AnswerRequest представляет ответ на один вопрос
type AnswerRequest struct {
	QuestionID     uint `json:"question_id" binding:"required,gt=0"`
	SelectedAnswer *int `json:"selected_answer" binding:"required,gte=0"`
}

// SubmitQuizRequest представляет запрос на отправку ответов теста
type SubmitQuizRequest struct {
	QuizID  uint            `json:"quiz_id" binding:"required,gt=0"`
	Answers []AnswerRequest `json:"answers" binding:"required,dive"`
}

// SubmitQuiz принимает ответы пользователя, подсчитывает баллы и сохраняет результат
// POST /api/quiz-results
func (h *ResultHandler) SubmitQuiz(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req SubmitQuizRequest
	if !bindJSON(c, &req) {
		return
	}

	answers := make([]entity.SubmittedAnswer, 0, len(req.Answers))
	for _, a := range req.Answers {
		answers = append(answers, entity.SubmittedAnswer{QuestionID: a.QuestionID, SelectedAnswer: *a.SelectedAnswer})
	}

	res, err := h.submissionService.SubmitQuiz(c.Request.Context(), user, req.QuizID, answers)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewSubmitResponse(res))
}

// GetUserHistory возвращает историю результатов пользователя
// GET /api/quiz-results/user/:userId
func (h *ResultHandler) GetUserHistory(c *gin.Context) {
	userID := c.MustGet("userID").(uint)

	page, err := h.resultService.GetUserHistory(c.Request.Context(), userID, pageFromQuery(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewHistoryResponse(page))
}

// GetQuizResults возвращает лидерборд теста вместе со статистикой
// GET /api/quiz-results/quiz/:quizId
func (h *ResultHandler) GetQuizResults(c *gin.Context) {
	quizID := c.MustGet("quizID").(uint)

	report, err := h.resultService.GetQuizResultsReport(c.Request.Context(), quizID, pageFromQuery(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewQuizResultsReportResponse(report))
}

// GetQuizStatistics возвращает статистику теста
// GET /api/quiz-results/quiz/:quizId/statistics
func (h *ResultHandler) GetQuizStatistics(c *gin.Context) {
	quizID := c.MustGet("quizID").(uint)

	stats, err := h.resultService.GetQuizStatistics(c.Request.Context(), quizID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.StatisticsResponse{QuizID: quizID, Statistics: stats})
}

// GetResultDetail возвращает результат с разбором ответов. Доступен владельцу и администратору
// GET /api/quiz-results/:id
func (h *ResultHandler) GetResultDetail(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	resultID := c.MustGet("resultID").(uint)

	detail, err := h.resultService.GetResultDetail(c.Request.Context(), resultID, user)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"quiz_result": dto.NewResultDetailResponse(detail)})
}

// DeleteResult удаляет результат
// DELETE /api/quiz-results/:id
func (h *ResultHandler) DeleteResult(c *gin.Context) {
	resultID := c.MustGet("resultID").(uint)

	if err := h.resultService.DeleteResult(c.Request.Context(), resultID); err != nil {
		respondError(c, h.log, err)
		return
	}

	h.log.Info("[ResultHandler] Результат удален", "result_id", resultID)
	c.JSON(http.StatusOK, gin.H{"message": "Quiz result deleted successfully"})
}

// ExportQuizResults экспортирует результаты теста в CSV или Excel формате
// GET /api/quiz-results/quiz/:quizId/export?format=csv|xlsx
func (h *ResultHandler) ExportQuizResults(c *gin.Context) {
	quizID := c.MustGet("quizID").(uint)
	format := c.DefaultQuery("format", "csv")
	if format != "csv" && format != "xlsx" {
		respondError(c, h.log, service.ErrUnsupportedFormat)
		return
	}

	// Все результаты без пагинации
	quiz, entries, err := h.resultService.ExportQuizResults(c.Request.Context(), quizID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	filename := fmt.Sprintf("quiz_%d_results_%s", quiz.ID, time.Now().Format("2006-01-02"))

	switch format {
	case "xlsx":
		h.exportXLSX(c, entries, filename)
	default:
		h.exportCSV(c, entries, filename)
	}
}

var exportHeaders = []string{"Rank", "Username", "Score", "Total points", "Percentage"}

// exportCSV экспортирует результаты в CSV с правильным экранированием спецсимволов
func (h *ResultHandler) exportCSV(c *gin.Context, entries []service.LeaderboardEntry, filename string) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.csv\"", filename))
	c.Status(http.StatusOK)

	// BOM для корректного отображения UTF-8 в Excel
	if _, err := c.Writer.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		h.log.Warn("[ResultHandler] Ошибка записи BOM", "error", err)
		return
	}

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	if err := writer.Write(exportHeaders); err != nil {
		h.log.Warn("[ResultHandler] Ошибка записи заголовков CSV", "error", err)
		return
	}

	for _, e := range entries {
		record := []string{
			strconv.Itoa(e.Rank),
			sanitizeForExcel(e.Row.Username),
			strconv.Itoa(e.Row.Score),
			strconv.Itoa(e.Row.TotalPoints),
			strconv.Itoa(e.Percentage),
		}
		if err := writer.Write(record); err != nil {
			h.log.Warn("[ResultHandler] Ошибка записи строки CSV", "result_id", e.Row.ResultID, "error", err)
			return
		}
	}
}

// exportXLSX экспортирует результаты в Excel с использованием StreamWriter
func (h *ResultHandler) exportXLSX(c *gin.Context, entries []service.LeaderboardEntry, filename string) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Results"
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		h.log.Error("[ResultHandler] Ошибка переименования листа", "error", err)
		respondError(c, h.log, err)
		return
	}

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		h.log.Error("[ResultHandler] Ошибка создания StreamWriter", "error", err)
		respondError(c, h.log, err)
		return
	}

	headers := make([]interface{}, len(exportHeaders))
	for i, v := range exportHeaders {
		headers[i] = v
	}
	if err := sw.SetRow("A1", headers); err != nil {
		h.log.Error("[ResultHandler] Ошибка записи заголовков", "error", err)
		respondError(c, h.log, err)
		return
	}

	for i, e := range entries {
		// Строка 1 занята заголовками
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			respondError(c, h.log, err)
			return
		}
		row := []interface{}{e.Rank, sanitizeForExcel(e.Row.Username), e.Row.Score, e.Row.TotalPoints, e.Percentage}
		if err := sw.SetRow(cell, row); err != nil {
			h.log.Error("[ResultHandler] Ошибка записи строки", "row", i+2, "error", err)
			respondError(c, h.log, err)
			return
		}
	}

	if err := sw.Flush(); err != nil {
		h.log.Error("[ResultHandler] Ошибка при Flush", "error", err)
		respondError(c, h.log, err)
		return
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.xlsx\"", filename))
	c.Status(http.StatusOK)
	if err := f.Write(c.Writer); err != nil {
		h.log.Warn("[ResultHandler] Ошибка записи Excel в response", "error", err)
	}
}

// sanitizeForExcel экранирует данные для защиты от formula injection в Excel/CSV
func sanitizeForExcel(s string) string {
	if len(s) == 0 {
		return s
	}
	// Символы, начинающие формулу в Excel/LibreOffice: = + - @ \t \r
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + s
	}
	return s
}
