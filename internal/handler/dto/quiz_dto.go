package dto

import (
	"time"

	"github.com/yourusername/lms-api/internal/domain/entity"
	"github.com/yourusername/lms-api/internal/domain/repository"
	"github.com/yourusername/lms-api/internal/service"
)

// QuestionResponse представляет вопрос в формате для ответа клиенту.
// CorrectAnswer заполняется только для администраторов
type QuestionResponse struct {
	ID            uint     `json:"id"`
	QuizID        uint     `json:"quiz_id"`
	QuestionText  string   `json:"question_text"`
	Options       []string `json:"options"`
	CorrectAnswer *int     `json:"correct_answer,omitempty"`
	Points        int      `json:"points"`
}

// QuizResponse представляет тест в формате для ответа клиенту
type QuizResponse struct {
	ID              uint               `json:"id"`
	Title           string             `json:"title"`
	Description     string             `json:"description"`
	LessonID        *uint              `json:"lesson_id"`
	LessonTitle     *string            `json:"lesson_title"`
	CreatedBy       *uint              `json:"created_by"`
	CreatorUsername *string            `json:"creator_username"`
	QuestionCount   int64              `json:"question_count"`
	Questions       []QuestionResponse `json:"questions,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// QuizListResponse - страница тестов
type QuizListResponse struct {
	Quizzes    []QuizResponse     `json:"quizzes"`
	Pagination service.Pagination `json:"pagination"`
}

// NewQuestionResponse создает DTO для вопроса
func NewQuestionResponse(q *entity.Question, includeAnswer bool) QuestionResponse {
	resp := QuestionResponse{
		ID:           q.ID,
		QuizID:       q.QuizID,
		QuestionText: q.QuestionText,
		Options:      []string(q.Options),
		Points:       q.Points,
	}
	if resp.Options == nil {
		resp.Options = []string{}
	}
	if includeAnswer {
		answer := q.CorrectAnswer
		resp.CorrectAnswer = &answer
	}
	return resp
}

// NewQuizResponse создает DTO для теста без вопросов
func NewQuizResponse(s *repository.QuizSummary) QuizResponse {
	return QuizResponse{
		ID:              s.ID,
		Title:           s.Title,
		Description:     s.Description,
		LessonID:        s.LessonID,
		LessonTitle:     s.LessonTitle,
		CreatedBy:       s.CreatedBy,
		CreatorUsername: s.CreatorUsername,
		QuestionCount:   s.QuestionCount,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

// NewQuizDetailResponse создает DTO теста с вопросами
func NewQuizDetailResponse(d *service.QuizDetail, includeAnswers bool) QuizResponse {
	resp := NewQuizResponse(d.Quiz)
	resp.Questions = make([]QuestionResponse, 0, len(d.Questions))
	for i := range d.Questions {
		resp.Questions = append(resp.Questions, NewQuestionResponse(&d.Questions[i], includeAnswers))
	}
	resp.QuestionCount = int64(len(d.Questions))
	return resp
}

// NewQuizList преобразует сводки тестов в DTO
func NewQuizList(summaries []repository.QuizSummary) []QuizResponse {
	quizzes := make([]QuizResponse, 0, len(summaries))
	for i := range summaries {
		quizzes = append(quizzes, NewQuizResponse(&summaries[i]))
	}
	return quizzes
}

// NewQuizListResponse создает DTO страницы тестов
func NewQuizListResponse(page *service.QuizPage) QuizListResponse {
	return QuizListResponse{Quizzes: NewQuizList(page.Quizzes), Pagination: page.Pagination}
}
