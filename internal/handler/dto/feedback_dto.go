package dto

import (
	"time"

	"github.com/yourusername/lms-api/internal/domain/entity"
	"github.com/yourusername/lms-api/internal/domain/repository"
	"github.com/yourusername/lms-api/internal/service"
)

// FeedbackResponse представляет отзыв в ответе клиенту
type FeedbackResponse struct {
	ID          uint      `json:"id"`
	UserID      uint      `json:"user_id"`
	Username    string    `json:"username,omitempty"`
	LessonID    uint      `json:"lesson_id"`
	LessonTitle string    `json:"lesson_title,omitempty"`
	Rating      int       `json:"rating"`
	Comment     string    `json:"comment"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// FeedbackListResponse - страница отзывов
type FeedbackListResponse struct {
	Feedback   []FeedbackResponse `json:"feedback"`
	Pagination service.Pagination `json:"pagination"`
}

// RatingStatsResponse - статистика оценок урока. rating_breakdown содержит ключи 1..5
type RatingStatsResponse struct {
	AverageRating   float64       `json:"average_rating"`
	TotalFeedback   int64         `json:"total_feedback"`
	RatingBreakdown map[int]int64 `json:"rating_breakdown"`
}

// LessonFeedbackResponse - отзывы урока со статистикой
type LessonFeedbackResponse struct {
	Feedback   []FeedbackResponse  `json:"feedback"`
	Statistics RatingStatsResponse `json:"statistics"`
}

// NewFeedbackResponse создает DTO отзыва
func NewFeedbackResponse(f *entity.Feedback) FeedbackResponse {
	return FeedbackResponse{
		ID:        f.ID,
		UserID:    f.UserID,
		LessonID:  f.LessonID,
		Rating:    f.Rating,
		Comment:   f.Comment,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// NewFeedbackViews преобразует отзывы с именами пользователей и уроков в DTO
func NewFeedbackViews(views []repository.FeedbackView) []FeedbackResponse {
	out := make([]FeedbackResponse, 0, len(views))
	for i := range views {
		resp := NewFeedbackResponse(&views[i].Feedback)
		resp.Username = views[i].Username
		resp.LessonTitle = views[i].LessonTitle
		out = append(out, resp)
	}
	return out
}

// NewFeedbackListResponse создает DTO страницы отзывов
func NewFeedbackListResponse(page *service.FeedbackPage) FeedbackListResponse {
	return FeedbackListResponse{Feedback: NewFeedbackViews(page.Feedback), Pagination: page.Pagination}
}

// NewLessonFeedbackResponse создает DTO отзывов урока
func NewLessonFeedbackResponse(lf *service.LessonFeedback) LessonFeedbackResponse {
	breakdown := make(map[int]int64, entity.MaxRating)
	for r := entity.MinRating; r <= entity.MaxRating; r++ {
		breakdown[r] = 0
	}
	stats := RatingStatsResponse{RatingBreakdown: breakdown}
	if lf.Statistics != nil {
		stats.AverageRating = lf.Statistics.AverageRating
		stats.TotalFeedback = lf.Statistics.TotalFeedback
		for r, n := range lf.Statistics.RatingBreakdown {
			breakdown[r] = n
		}
	}
	return LessonFeedbackResponse{Feedback: NewFeedbackViews(lf.Feedback), Statistics: stats}
}
