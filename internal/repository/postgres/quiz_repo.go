package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/yourusername/lms-api/internal/domain/entity"
	"github.com/yourusername/lms-api/internal/domain/repository"
	"github.com/yourusername/lms-api/internal/pkg/dbctx"
	apperrors "github.com/yourusername/lms-api/internal/pkg/errors"
)

const quizSummaryColumns = `quizzes.*,
	users.username AS creator_username,
	lessons.title AS lesson_title,
	(SELECT COUNT(*) FROM questions WHERE questions.quiz_id = quizzes.id) AS question_count`

// QuizRepo реализует repository.QuizRepository
type QuizRepo struct {
	db *gorm.DB
}

// NewQuizRepo создает новый репозиторий тестов
func NewQuizRepo(db *gorm.DB) *QuizRepo {
	return &QuizRepo{db: db}
}

func (r *QuizRepo) summaryQuery(ctx context.Context) *gorm.DB {
	return dbctx.Conn(ctx, r.db).Table("quizzes").
		Select(quizSummaryColumns).
		Joins("LEFT JOIN users ON users.id = quizzes.created_by").
		Joins("LEFT JOIN lessons ON lessons.id = quizzes.lesson_id")
}

// Create сохраняет тест вместе с вопросами
func (r *QuizRepo) Create(ctx context.Context, quiz *entity.Quiz) error {
	err := dbctx.Conn(ctx, r.db).Omit("Lesson", "Creator").Create(quiz).Error
	return wrapDBError(err, "create quiz")
}

// GetByID возвращает тест без вопросов
func (r *QuizRepo) GetByID(ctx context.Context, id uint) (*entity.Quiz, error) {
	var quiz entity.Quiz
	if err := dbctx.Conn(ctx, r.db).First(&quiz, id).Error; err != nil {
		return nil, wrapDBError(err, "get quiz")
	}
	return &quiz, nil
}

// GetWithQuestions возвращает тест с вопросами, упорядоченными по id
func (r *QuizRepo) GetWithQuestions(ctx context.Context, id uint) (*entity.Quiz, error) {
	var quiz entity.Quiz
	err := dbctx.Conn(ctx, r.db).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.id ASC")
		}).
		First(&quiz, id).Error
	if err != nil {
		return nil, wrapDBError(err, "get quiz with questions")
	}
	return &quiz, nil
}

// GetSummary возвращает тест с автором, уроком и числом вопросов
func (r *QuizRepo) GetSummary(ctx context.Context, id uint) (*repository.QuizSummary, error) {
	var rows []repository.QuizSummary
	if err := r.summaryQuery(ctx).Where("quizzes.id = ?", id).Limit(1).Scan(&rows).Error; err != nil {
		return nil, wrapDBError(err, "get quiz summary")
	}
	if len(rows) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return &rows[0], nil
}

// Update обновляет поля теста
func (r *QuizRepo) Update(ctx context.Context, quiz *entity.Quiz) error {
	result := dbctx.Conn(ctx, r.db).Model(&entity.Quiz{}).
		Where("id = ?", quiz.ID).
		Updates(map[string]interface{}{
			"title":       quiz.Title,
			"description": quiz.Description,
			"lesson_id":   quiz.LessonID,
			"updated_at":  time.Now(),
		})
	if result.Error != nil {
		return wrapDBError(result.Error, "update quiz")
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// Delete удаляет тест. Вопросы и результаты удаляются вызывающей стороной или каскадом FK
func (r *QuizRepo) Delete(ctx context.Context, id uint) error {
	result := dbctx.Conn(ctx, r.db).Delete(&entity.Quiz{}, id)
	if result.Error != nil {
		return wrapDBError(result.Error, "delete quiz")
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// List возвращает страницу тестов от новых к старым
func (r *QuizRepo) List(ctx context.Context, limit, offset int) ([]repository.QuizSummary, int64, error) {
	var total int64
	if err := dbctx.Conn(ctx, r.db).Model(&entity.Quiz{}).Count(&total).Error; err != nil {
		return nil, 0, wrapDBError(err, "count quizzes")
	}

	var rows []repository.QuizSummary
	err := r.summaryQuery(ctx).
		Order("quizzes.created_at DESC").Order("quizzes.id DESC").
		Limit(limit).Offset(offset).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, wrapDBError(err, "list quizzes")
	}
	return rows, total, nil
}

// ListByLesson возвращает тесты урока в порядке создания
func (r *QuizRepo) ListByLesson(ctx context.Context, lessonID uint) ([]repository.QuizSummary, error) {
	var rows []repository.QuizSummary
	err := r.summaryQuery(ctx).
		Where("quizzes.lesson_id = ?", lessonID).
		Order("quizzes.created_at ASC").Order("quizzes.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, wrapDBError(err, "list lesson quizzes")
	}
	return rows, nil
}

// CountByLesson возвращает число тестов, привязанных к уроку
func (r *QuizRepo) CountByLesson(ctx context.Context, lessonID uint) (int64, error) {
	var count int64
	if err := dbctx.Conn(ctx, r.db).Model(&entity.Quiz{}).Where("lesson_id = ?", lessonID).Count(&count).Error; err != nil {
		return 0, wrapDBError(err, "count lesson quizzes")
	}
	return count, nil
}
