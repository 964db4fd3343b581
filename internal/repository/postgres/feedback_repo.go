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

// FeedbackRepo реализует repository.FeedbackRepository
type FeedbackRepo struct {
	db *gorm.DB
}

// NewFeedbackRepo создает новый репозиторий отзывов
func NewFeedbackRepo(db *gorm.DB) *FeedbackRepo {
	return &FeedbackRepo{db: db}
}

func (r *FeedbackRepo) viewQuery(ctx context.Context) *gorm.DB {
	return dbctx.Conn(ctx, r.db).Table("feedback").
		Select("feedback.*, users.username, lessons.title AS lesson_title").
		Joins("JOIN users ON users.id = feedback.user_id").
		Joins("JOIN lessons ON lessons.id = feedback.lesson_id")
}

func (r *FeedbackRepo) Create(ctx context.Context, feedback *entity.Feedback) error {
	return wrapDBError(dbctx.Conn(ctx, r.db).Omit("User", "Lesson").Create(feedback).Error, "create feedback")
}

func (r *FeedbackRepo) GetByID(ctx context.Context, id uint) (*entity.Feedback, error) {
	var feedback entity.Feedback
	if err := dbctx.Conn(ctx, r.db).First(&feedback, id).Error; err != nil {
		return nil, wrapDBError(err, "get feedback")
	}
	return &feedback, nil
}

// ExistsForUserAndLesson проверяет, оставлял ли пользователь отзыв об уроке
func (r *FeedbackRepo) ExistsForUserAndLesson(ctx context.Context, userID, lessonID uint) (bool, error) {
	var count int64
	err := dbctx.Conn(ctx, r.db).Model(&entity.Feedback{}).
		Where("user_id = ? AND lesson_id = ?", userID, lessonID).
		Count(&count).Error
	if err != nil {
		return false, wrapDBError(err, "check feedback exists")
	}
	return count > 0, nil
}

// Update обновляет урок, оценку и комментарий отзыва
func (r *FeedbackRepo) Update(ctx context.Context, feedback *entity.Feedback) error {
	result := dbctx.Conn(ctx, r.db).Model(&entity.Feedback{}).
		Where("id = ?", feedback.ID).
		Updates(map[string]interface{}{
			"lesson_id":  feedback.LessonID,
			"rating":     feedback.Rating,
			"comment":    feedback.Comment,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return wrapDBError(result.Error, "update feedback")
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *FeedbackRepo) Delete(ctx context.Context, id uint) error {
	result := dbctx.Conn(ctx, r.db).Delete(&entity.Feedback{}, id)
	if result.Error != nil {
		return wrapDBError(result.Error, "delete feedback")
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteByLessonID удаляет все отзывы урока
func (r *FeedbackRepo) DeleteByLessonID(ctx context.Context, lessonID uint) error {
	return wrapDBError(
		dbctx.Conn(ctx, r.db).Where("lesson_id = ?", lessonID).Delete(&entity.Feedback{}).Error,
		"delete lesson feedback",
	)
}

// ListAll возвращает страницу всех отзывов от новых к старым
func (r *FeedbackRepo) ListAll(ctx context.Context, limit, offset int) ([]repository.FeedbackView, int64, error) {
	var total int64
	if err := dbctx.Conn(ctx, r.db).Model(&entity.Feedback{}).Count(&total).Error; err != nil {
		return nil, 0, wrapDBError(err, "count feedback")
	}

	var rows []repository.FeedbackView
	err := r.viewQuery(ctx).
		Order("feedback.created_at DESC").Order("feedback.id DESC").
		Limit(limit).Offset(offset).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, wrapDBError(err, "list feedback")
	}
	return rows, total, nil
}

func (r *FeedbackRepo) ListByLesson(ctx context.Context, lessonID uint) ([]repository.FeedbackView, error) {
	var rows []repository.FeedbackView
	err := r.viewQuery(ctx).
		Where("feedback.lesson_id = ?", lessonID).
		Order("feedback.created_at DESC").Order("feedback.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, wrapDBError(err, "list lesson feedback")
	}
	return rows, nil
}

func (r *FeedbackRepo) ListByUser(ctx context.Context, userID uint) ([]repository.FeedbackView, error) {
	var rows []repository.FeedbackView
	err := r.viewQuery(ctx).
		Where("feedback.user_id = ?", userID).
		Order("feedback.created_at DESC").Order("feedback.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, wrapDBError(err, "list user feedback")
	}
	return rows, nil
}

// GetLessonRatingStats возвращает среднюю оценку, число отзывов и распределение по оценкам 1..5
func (r *FeedbackRepo) GetLessonRatingStats(ctx context.Context, lessonID uint) (*repository.RatingStats, error) {
	type ratingCount struct {
		Rating int
		Count  int64
	}
	var counts []ratingCount
	err := dbctx.Conn(ctx, r.db).Model(&entity.Feedback{}).
		Select("rating, COUNT(*) AS count").
		Where("lesson_id = ?", lessonID).
		Group("rating").
		Scan(&counts).Error
	if err != nil {
		return nil, wrapDBError(err, "get lesson rating stats")
	}

	stats := &repository.RatingStats{RatingBreakdown: make(map[int]int64, entity.MaxRating)}
	for rating := entity.MinRating; rating <= entity.MaxRating; rating++ {
		stats.RatingBreakdown[rating] = 0
	}

	var sum int64
	for _, c := range counts {
		stats.RatingBreakdown[c.Rating] = c.Count
		stats.TotalFeedback += c.Count
		sum += int64(c.Rating) * c.Count
	}
	if stats.TotalFeedback > 0 {
		stats.AverageRating = float64(sum) / float64(stats.TotalFeedback)
	}
	return stats, nil
}
