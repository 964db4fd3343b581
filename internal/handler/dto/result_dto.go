package dto

import (
	"time"

	"github.com/yourusername/lms-api/internal/domain/entity"
	"github.com/yourusername/lms-api/internal/domain/repository"
	"github.com/yourusername/lms-api/internal/service"
)

// ResultResponse представляет результат попытки в формате для ответа клиенту
type ResultResponse struct {
	ID          uint                     `json:"id"`
	UserID      uint                     `json:"user_id"`
	QuizID      uint                     `json:"quiz_id"`
	QuizTitle   string                   `json:"quiz_title"`
	Score       int                      `json:"score"`
	TotalPoints int                      `json:"total_points"`
	Percentage  int                      `json:"percentage"`
	Answers     []entity.SubmittedAnswer `json:"answers"`
	CompletedAt time.Time                `json:"completed_at"`
}

// SubmitResponse - ответ на отправку теста
type SubmitResponse struct {
	Message    string         `json:"message"`
	QuizResult ResultResponse `json:"quiz_result"`
}

// LeaderboardEntryResponse - строка лидерборда
type LeaderboardEntryResponse struct {
	Rank        int       `json:"rank"`
	ID          uint      `json:"id"`
	UserID      uint      `json:"user_id"`
	Username    string    `json:"username"`
	Score       int       `json:"score"`
	TotalPoints int       `json:"total_points"`
	Percentage  int       `json:"percentage"`
	CompletedAt time.Time `json:"completed_at"`
}

// LeaderboardResponse - страница лидерборда теста
type LeaderboardResponse struct {
	QuizResults []LeaderboardEntryResponse `json:"quiz_results"`
	Pagination  service.Pagination         `json:"pagination"`
}

// QuizResultsReportResponse - лидерборд вместе со статистикой теста
type QuizResultsReportResponse struct {
	QuizID      uint                       `json:"quiz_id"`
	QuizTitle   string                     `json:"quiz_title"`
	QuizResults []LeaderboardEntryResponse `json:"quiz_results"`
	Statistics  *repository.QuizStatistics `json:"statistics"`
	Pagination  service.Pagination         `json:"pagination"`
}

// StatisticsResponse - статистика теста
type StatisticsResponse struct {
	QuizID     uint                       `json:"quiz_id"`
	Statistics *repository.QuizStatistics `json:"statistics"`
}

// HistoryEntryResponse - результат в истории пользователя
type HistoryEntryResponse struct {
	ID              uint      `json:"id"`
	UserID          uint      `json:"user_id"`
	Username        string    `json:"username"`
	QuizID          uint      `json:"quiz_id"`
	QuizTitle       string    `json:"quiz_title"`
	QuizDescription string    `json:"quiz_description"`
	LessonTitle     *string   `json:"lesson_title"`
	Score           int       `json:"score"`
	TotalPoints     int       `json:"total_points"`
	Percentage      int       `json:"percentage"`
	CompletedAt     time.Time `json:"completed_at"`
}

// HistoryResponse - страница истории пользователя
type HistoryResponse struct {
	QuizResults []HistoryEntryResponse `json:"quiz_results"`
	Pagination  service.Pagination     `json:"pagination"`
}

// AnswerBreakdownResponse - разбор ответа на вопрос
type AnswerBreakdownResponse struct {
	QuestionID    uint     `json:"question_id"`
	QuestionText  string   `json:"question_text"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correct_answer"`
	UserAnswer    *int     `json:"user_answer"`
	Points        int      `json:"points"`
	IsCorrect     bool     `json:"is_correct"`
}

// ResultDetailResponse - результат с данными пользователя, теста и разбором ответов
type ResultDetailResponse struct {
	ID              uint                      `json:"id"`
	UserID          uint                      `json:"user_id"`
	Username        string                    `json:"username"`
	Email           string                    `json:"email"`
	QuizID          uint                      `json:"quiz_id"`
	QuizTitle       string                    `json:"quiz_title"`
	QuizDescription string                    `json:"quiz_description"`
	LessonID        *uint                     `json:"lesson_id"`
	LessonTitle     *string                   `json:"lesson_title"`
	Score           int                       `json:"score"`
	TotalPoints     int                       `json:"total_points"`
	Percentage      int                       `json:"percentage"`
	CompletedAt     time.Time                 `json:"completed_at"`
	DetailedAnswers []AnswerBreakdownResponse `json:"detailed_answers"`
}

// NewSubmitResponse создает DTO результата отправки теста
func NewSubmitResponse(res *service.SubmissionResult) SubmitResponse {
	r := res.Result
	answers := r.Answers.Data()
	if answers == nil {
		answers = []entity.SubmittedAnswer{}
	}
	return SubmitResponse{
		Message: "Quiz completed successfully",
		QuizResult: ResultResponse{
			ID:          r.ID,
			UserID:      r.UserID,
			QuizID:      r.QuizID,
			QuizTitle:   res.QuizTitle,
			Score:       r.Score,
			TotalPoints: r.TotalPoints,
			Percentage:  res.Percentage,
			Answers:     answers,
			CompletedAt: r.CompletedAt,
		},
	}
}

// NewLeaderboardEntries преобразует строки лидерборда в DTO
func NewLeaderboardEntries(entries []service.LeaderboardEntry) []LeaderboardEntryResponse {
	out := make([]LeaderboardEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, LeaderboardEntryResponse{
			Rank:        e.Rank,
			ID:          e.Row.ResultID,
			UserID:      e.Row.UserID,
			Username:    e.Row.Username,
			Score:       e.Row.Score,
			TotalPoints: e.Row.TotalPoints,
			Percentage:  e.Percentage,
			CompletedAt: e.Row.CompletedAt,
		})
	}
	return out
}

// NewLeaderboardResponse создает DTO страницы лидерборда
func NewLeaderboardResponse(page *service.LeaderboardPage) LeaderboardResponse {
	return LeaderboardResponse{QuizResults: NewLeaderboardEntries(page.Entries), Pagination: page.Pagination}
}

// NewQuizResultsReportResponse создает DTO отчета по тесту
func NewQuizResultsReportResponse(report *service.QuizResultsReport) QuizResultsReportResponse {
	return QuizResultsReportResponse{
		QuizID:      report.Quiz.ID,
		QuizTitle:   report.Quiz.Title,
		QuizResults: NewLeaderboardEntries(report.Leaderboard.Entries),
		Statistics:  report.Statistics,
		Pagination:  report.Leaderboard.Pagination,
	}
}

// NewHistoryResponse создает DTO истории пользователя
func NewHistoryResponse(page *service.HistoryPage) HistoryResponse {
	entries := make([]HistoryEntryResponse, 0, len(page.Entries))
	for _, e := range page.Entries {
		entries = append(entries, HistoryEntryResponse{
			ID:              e.Row.ID,
			UserID:          e.Row.UserID,
			Username:        e.Row.Username,
			QuizID:          e.Row.QuizID,
			QuizTitle:       e.Row.QuizTitle,
			QuizDescription: e.Row.QuizDescription,
			LessonTitle:     e.Row.LessonTitle,
			Score:           e.Row.Score,
			TotalPoints:     e.Row.TotalPoints,
			Percentage:      e.Percentage,
			CompletedAt:     e.Row.CompletedAt,
		})
	}
	return HistoryResponse{QuizResults: entries, Pagination: page.Pagination}
}

// NewResultDetailResponse создает DTO результата с разбором ответов
func NewResultDetailResponse(d *service.ResultDetail) ResultDetailResponse {
	row := d.Row
	answers := make([]AnswerBreakdownResponse, 0, len(d.DetailedAnswers))
	for _, a := range d.DetailedAnswers {
		answers = append(answers, AnswerBreakdownResponse{
			QuestionID:    a.QuestionID,
			QuestionText:  a.QuestionText,
			Options:       a.Options,
			CorrectAnswer: a.CorrectAnswer,
			UserAnswer:    a.UserAnswer,
			Points:        a.Points,
			IsCorrect:     a.IsCorrect,
		})
	}
	return ResultDetailResponse{
		ID:              row.Result.ID,
		UserID:          row.Result.UserID,
		Username:        row.Username,
		Email:           row.Email,
		QuizID:          row.Result.QuizID,
		QuizTitle:       row.QuizTitle,
		QuizDescription: row.QuizDescription,
		LessonID:        row.LessonID,
		LessonTitle:     row.LessonTitle,
		Score:           row.Result.Score,
		TotalPoints:     row.Result.TotalPoints,
		Percentage:      d.Percentage,
		CompletedAt:     row.Result.CompletedAt,
		DetailedAnswers: answers,
	}
}
