package dto

import (
	"time"

	"github.com/yourusername/lms-api/internal/domain/entity"
	"github.com/yourusername/lms-api/internal/domain/repository"
	"github.com/yourusername/lms-api/internal/service"
)

// LessonResponse представляет урок в ответе клиенту
type LessonResponse struct {
	ID              uint               `json:"id"`
	Title           string             `json:"title"`
	Description     string             `json:"description"`
	Content         string             `json:"content"`
	VideoURL        string             `json:"video_url"`
	Level           entity.LessonLevel `json:"level"`
	CreatedBy       *uint              `json:"created_by"`
	CreatorUsername *string            `json:"creator_username"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// LessonListResponse - страница уроков
type LessonListResponse struct {
	Lessons    []LessonResponse   `json:"lessons"`
	Pagination service.Pagination `json:"pagination"`
}

// NewLessonResponse создает DTO урока
func NewLessonResponse(v *repository.LessonView) LessonResponse {
	return LessonResponse{
		ID:              v.ID,
		Title:           v.Title,
		Description:     v.Description,
		Content:         v.Content,
		VideoURL:        v.VideoURL,
		Level:           v.Level,
		CreatedBy:       v.CreatedBy,
		CreatorUsername: v.CreatorUsername,
		CreatedAt:       v.CreatedAt,
		UpdatedAt:       v.UpdatedAt,
	}
}

// NewLessonListResponse создает DTO страницы уроков
func NewLessonListResponse(page *service.LessonPage) LessonListResponse {
	lessons := make([]LessonResponse, 0, len(page.Lessons))
	for i := range page.Lessons {
		lessons = append(lessons, NewLessonResponse(&page.Lessons[i]))
	}
	return LessonListResponse{Lessons: lessons, Pagination: page.Pagination}
}
