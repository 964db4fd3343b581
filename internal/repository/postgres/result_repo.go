package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/yourusername/lms-api/internal/domain/entity"
	"github.com/yourusername/lms-api/internal/domain/repository"
	"github.com/yourusername/lms-api/internal/pkg/dbctx"
	apperrors "github.com/yourusername/lms-api/internal/pkg/errors"
)

const leaderboardColumns = `quiz_results.id AS result_id, quiz_results.user_id, users.username,
	quiz_results.score, quiz_results.total_points, quiz_results.completed_at`

// ResultRepo реализует repository.ResultRepository
type ResultRepo struct {
	db *gorm.DB
}

// NewResultRepo создает новый репозиторий результатов
func NewResultRepo(db *gorm.DB) *ResultRepo {
	return &ResultRepo{db: db}
}

// Create сохраняет результат попытки
func (r *ResultRepo) Create(ctx context.Context, result *entity.Result) error {
	return wrapDBError(dbctx.Conn(ctx, r.db).Omit("User", "Quiz").Create(result).Error, "create result")
}

// GetByID возвращает результат по ID
func (r *ResultRepo) GetByID(ctx context.Context, id uint) (*entity.Result, error) {
	var result entity.Result
	if err := dbctx.Conn(ctx, r.db).First(&result, id).Error; err != nil {
		return nil, wrapDBError(err, "get result")
	}
	return &result, nil
}

// ExistsForUserAndQuiz проверяет, проходил ли пользователь тест
func (r *ResultRepo) ExistsForUserAndQuiz(ctx context.Context, userID, quizID uint) (bool, error) {
	var count int64
	err := dbctx.Conn(ctx, r.db).Model(&entity.Result{}).
		Where("user_id = ? AND quiz_id = ?", userID, quizID).
		Count(&count).Error
	if err != nil {
		return false, wrapDBError(err, "check result exists")
	}
	return count > 0, nil
}

// Delete удаляет результат
func (r *ResultRepo) Delete(ctx context.Context, id uint) error {
	result := dbctx.Conn(ctx, r.db).Delete(&entity.Result{}, id)
	if result.Error != nil {
		return wrapDBError(result.Error, "delete result")
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteByQuizID удаляет все результаты теста
func (r *ResultRepo) DeleteByQuizID(ctx context.Context, quizID uint) error {
	return wrapDBError(
		dbctx.Conn(ctx, r.db).Where("quiz_id = ?", quizID).Delete(&entity.Result{}).Error,
		"delete quiz results",
	)
}

func (r *ResultRepo) leaderboardQuery(ctx context.Context, quizID uint) *gorm.DB {
	return dbctx.Conn(ctx, r.db).Table("quiz_results").
		Select(leaderboardColumns).
		Joins("JOIN users ON users.id = quiz_results.user_id").
		Where("quiz_results.quiz_id = ?", quizID).
		Order("quiz_results.score DESC").
		Order("quiz_results.completed_at ASC").
		Order("quiz_results.id ASC")
}

// GetLeaderboard возвращает страницу лидерборда теста и общее число попыток
func (r *ResultRepo) GetLeaderboard(ctx context.Context, quizID uint, limit, offset int) ([]repository.LeaderboardRow, int64, error) {
	var total int64
	if err := dbctx.Conn(ctx, r.db).Model(&entity.Result{}).Where("quiz_id = ?", quizID).Count(&total).Error; err != nil {
		return nil, 0, wrapDBError(err, "count quiz results")
	}

	var rows []repository.LeaderboardRow
	if err := r.leaderboardQuery(ctx, quizID).Limit(limit).Offset(offset).Scan(&rows).Error; err != nil {
		return nil, 0, wrapDBError(err, "get leaderboard")
	}
	return rows, total, nil
}

// ListForExport возвращает все результаты теста в порядке лидерборда
func (r *ResultRepo) ListForExport(ctx context.Context, quizID uint) ([]repository.LeaderboardRow, error) {
	var rows []repository.LeaderboardRow
	if err := r.leaderboardQuery(ctx, quizID).Scan(&rows).Error; err != nil {
		return nil, wrapDBError(err, "list results for export")
	}
	return rows, nil
}

// GetStatistics считает проценты построчно и агрегирует их.
// Попытки с total_points = 0 дают NULL и не участвуют в AVG/MAX/MIN.
func (r *ResultRepo) GetStatistics(ctx context.Context, quizID uint) (*repository.QuizStatistics, error) {
	var stats repository.QuizStatistics
	err := dbctx.Conn(ctx, r.db).Raw(`
		SELECT
			COUNT(*) AS total_attempts,
			COALESCE(AVG(score * 100.0 / NULLIF(total_points, 0)), 0) AS average_percentage,
			COALESCE(MAX(score * 100.0 / NULLIF(total_points, 0)), 0) AS highest_percentage,
			COALESCE(MIN(score * 100.0 / NULLIF(total_points, 0)), 0) AS lowest_percentage
		FROM quiz_results
		WHERE quiz_id = ?`, quizID).
		Scan(&stats).Error
	if err != nil {
		return nil, wrapDBError(err, "get quiz statistics")
	}
	return &stats, nil
}

// GetUserHistory возвращает результаты пользователя от новых к старым
func (r *ResultRepo) GetUserHistory(ctx context.Context, userID uint, limit, offset int) ([]repository.UserResultRow, int64, error) {
	var total int64
	if err := dbctx.Conn(ctx, r.db).Model(&entity.Result{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, wrapDBError(err, "count user results")
	}

	var rows []repository.UserResultRow
	err := dbctx.Conn(ctx, r.db).Table("quiz_results").
		Select(`quiz_results.id, quiz_results.user_id, users.username,
			quiz_results.quiz_id, quizzes.title AS quiz_title, quizzes.description AS quiz_description,
			lessons.title AS lesson_title,
			quiz_results.score, quiz_results.total_points, quiz_results.completed_at`).
		Joins("JOIN users ON users.id = quiz_results.user_id").
		Joins("JOIN quizzes ON quizzes.id = quiz_results.quiz_id").
		Joins("LEFT JOIN lessons ON lessons.id = quizzes.lesson_id").
		Where("quiz_results.user_id = ?", userID).
		Order("quiz_results.completed_at DESC").
		Order("quiz_results.id DESC").
		Limit(limit).Offset(offset).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, wrapDBError(err, "get user history")
	}
	return rows, total, nil
}

// GetDetail возвращает результат с данными пользователя, теста и урока
func (r *ResultRepo) GetDetail(ctx context.Context, id uint) (*repository.ResultDetailRow, error) {
	var rows []repository.ResultDetailRow
	err := dbctx.Conn(ctx, r.db).Table("quiz_results").
		Select(`quiz_results.*, users.username, users.email,
			quizzes.title AS quiz_title, quizzes.description AS quiz_description,
			quizzes.lesson_id, lessons.title AS lesson_title`).
		Joins("JOIN users ON users.id = quiz_results.user_id").
		Joins("JOIN quizzes ON quizzes.id = quiz_results.quiz_id").
		Joins("LEFT JOIN lessons ON lessons.id = quizzes.lesson_id").
		Where("quiz_results.id = ?", id).
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return nil, wrapDBError(err, "get result detail")
	}
	if len(rows) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return &rows[0], nil
}
