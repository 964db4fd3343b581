package repository

import (
	"context"

	"github.com/yourusername/lms-api/internal/domain/entity"
)

// FeedbackRepository определяет методы для работы с отзывами об уроках
type FeedbackRepository interface {
	Create(ctx context.Context, feedback *entity.Feedback) error
	GetByID(ctx context.Context, id uint) (*entity.Feedback, error)
	ExistsForUserAndLesson(ctx context.Context, userID, lessonID uint) (bool, error)
	Update(ctx context.Context, feedback *entity.Feedback) error
	Delete(ctx context.Context, id uint) error
	DeleteByLessonID(ctx context.Context, lessonID uint) error

	ListAll(ctx context.Context, limit, offset int) ([]FeedbackView, int64, error)
	ListByLesson(ctx context.Context, lessonID uint) ([]FeedbackView, error)
	ListByUser(ctx context.Context, userID uint) ([]FeedbackView, error)
	// GetLessonRatingStats возвращает среднюю оценку, количество и распределение оценок урока
	GetLessonRatingStats(ctx context.Context, lessonID uint) (*RatingStats, error)
}
