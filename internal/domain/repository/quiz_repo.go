package repository

import (
	"context"

	"github.com/yourusername/lms-api/internal/domain/entity"
)

// QuizRepository определяет методы для работы с тестами
type QuizRepository interface {
	// Create сохраняет тест вместе с вложенными вопросами
	Create(ctx context.Context, quiz *entity.Quiz) error
	GetByID(ctx context.Context, id uint) (*entity.Quiz, error)
	// GetWithQuestions возвращает тест с вопросами, упорядоченными по id
	GetWithQuestions(ctx context.Context, id uint) (*entity.Quiz, error)
	// GetSummary возвращает тест с именем автора, названием урока и числом вопросов
	GetSummary(ctx context.Context, id uint) (*QuizSummary, error)
	// Update обновляет только поля теста, вопросы не затрагиваются
	Update(ctx context.Context, quiz *entity.Quiz) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, limit, offset int) ([]QuizSummary, int64, error)
	ListByLesson(ctx context.Context, lessonID uint) ([]QuizSummary, error)
	CountByLesson(ctx context.Context, lessonID uint) (int64, error)
}
