package repository

import (
	"context"

	"github.com/yourusername/lms-api/internal/domain/entity"
)

// QuestionRepository определяет методы для работы с вопросами
type QuestionRepository interface {
	CreateBatch(ctx context.Context, questions []entity.Question) error
	GetByQuizID(ctx context.Context, quizID uint) ([]entity.Question, error)
	DeleteByQuizID(ctx context.Context, quizID uint) error
}
