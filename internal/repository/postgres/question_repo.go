package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/yourusername/lms-api/internal/domain/entity"
	"github.com/yourusername/lms-api/internal/pkg/dbctx"
)

// QuestionRepo реализует repository.QuestionRepository
type QuestionRepo struct {
	db *gorm.DB
}

// NewQuestionRepo создает новый репозиторий вопросов
func NewQuestionRepo(db *gorm.DB) *QuestionRepo {
	return &QuestionRepo{db: db}
}

// CreateBatch сохраняет несколько вопросов одним запросом
func (r *QuestionRepo) CreateBatch(ctx context.Context, questions []entity.Question) error {
	if len(questions) == 0 {
		return nil
	}
	return wrapDBError(dbctx.Conn(ctx, r.db).Create(&questions).Error, "create questions")
}

// GetByQuizID возвращает вопросы теста в порядке id
func (r *QuestionRepo) GetByQuizID(ctx context.Context, quizID uint) ([]entity.Question, error) {
	var questions []entity.Question
	err := dbctx.Conn(ctx, r.db).Where("quiz_id = ?", quizID).Order("id ASC").Find(&questions).Error
	if err != nil {
		return nil, wrapDBError(err, "get questions")
	}
	return questions, nil
}

// DeleteByQuizID удаляет все вопросы теста
func (r *QuestionRepo) DeleteByQuizID(ctx context.Context, quizID uint) error {
	return wrapDBError(
		dbctx.Conn(ctx, r.db).Where("quiz_id = ?", quizID).Delete(&entity.Question{}).Error,
		"delete questions",
	)
}
