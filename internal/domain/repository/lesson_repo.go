package repository

import (
	"context"

	"github.com/yourusername/lms-api/internal/domain/entity"
)

// LessonRepository определяет методы для работы с уроками
type LessonRepository interface {
	Create(ctx context.Context, lesson *entity.Lesson) error
	GetByID(ctx context.Context, id uint) (*LessonView, error)
	Exists(ctx context.Context, id uint) (bool, error)
	Update(ctx context.Context, lesson *entity.Lesson) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, limit, offset int) ([]LessonView, int64, error)
	// Search ищет подстроку без учета регистра в названии, описании и содержании
	Search(ctx context.Context, query string, limit, offset int) ([]LessonView, int64, error)
}
