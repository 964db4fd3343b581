package postgres

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/yourusername/lms-api/internal/domain/entity"
	"github.com/yourusername/lms-api/internal/domain/repository"
	"github.com/yourusername/lms-api/internal/pkg/dbctx"
	apperrors "github.com/yourusername/lms-api/internal/pkg/errors"
)

const lessonViewColumns = "lessons.*, users.username AS creator_username"

// LessonRepo реализует repository.LessonRepository
type LessonRepo struct {
	db *gorm.DB
}

// NewLessonRepo создает новый репозиторий уроков
func NewLessonRepo(db *gorm.DB) *LessonRepo {
	return &LessonRepo{db: db}
}

func (r *LessonRepo) viewQuery(ctx context.Context) *gorm.DB {
	return dbctx.Conn(ctx, r.db).Table("lessons").
		Select(lessonViewColumns).
		Joins("LEFT JOIN users ON users.id = lessons.created_by")
}

// Create создает урок
func (r *LessonRepo) Create(ctx context.Context, lesson *entity.Lesson) error {
	return wrapDBError(dbctx.Conn(ctx, r.db).Omit("Creator").Create(lesson).Error, "create lesson")
}

// GetByID возвращает урок с именем автора
func (r *LessonRepo) GetByID(ctx context.Context, id uint) (*repository.LessonView, error) {
	var views []repository.LessonView
	if err := r.viewQuery(ctx).Where("lessons.id = ?", id).Limit(1).Scan(&views).Error; err != nil {
		return nil, wrapDBError(err, "get lesson")
	}
	if len(views) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return &views[0], nil
}

// Exists проверяет существование урока
func (r *LessonRepo) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := dbctx.Conn(ctx, r.db).Model(&entity.Lesson{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, wrapDBError(err, "check lesson exists")
	}
	return count > 0, nil
}

// Update обновляет редактируемые поля урока
func (r *LessonRepo) Update(ctx context.Context, lesson *entity.Lesson) error {
	result := dbctx.Conn(ctx, r.db).Model(&entity.Lesson{}).
		Where("id = ?", lesson.ID).
		Updates(map[string]interface{}{
			"title":       lesson.Title,
			"description": lesson.Description,
			"content":     lesson.Content,
			"video_url":   lesson.VideoURL,
			"level":       lesson.Level,
			"updated_at":  time.Now(),
		})
	if result.Error != nil {
		return wrapDBError(result.Error, "update lesson")
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// Delete удаляет урок
func (r *LessonRepo) Delete(ctx context.Context, id uint) error {
	result := dbctx.Conn(ctx, r.db).Delete(&entity.Lesson{}, id)
	if result.Error != nil {
		return wrapDBError(result.Error, "delete lesson")
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// List возвращает страницу уроков от новых к старым
func (r *LessonRepo) List(ctx context.Context, limit, offset int) ([]repository.LessonView, int64, error) {
	var total int64
	if err := dbctx.Conn(ctx, r.db).Model(&entity.Lesson{}).Count(&total).Error; err != nil {
		return nil, 0, wrapDBError(err, "count lessons")
	}

	var views []repository.LessonView
	err := r.viewQuery(ctx).
		Order("lessons.created_at DESC").Order("lessons.id DESC").
		Limit(limit).Offset(offset).
		Scan(&views).Error
	if err != nil {
		return nil, 0, wrapDBError(err, "list lessons")
	}
	return views, total, nil
}

// Search ищет уроки по подстроке в названии, описании и содержании без учета регистра.
// LOWER(...) LIKE работает одинаково в Postgres и SQLite.
func (r *LessonRepo) Search(ctx context.Context, query string, limit, offset int) ([]repository.LessonView, int64, error) {
	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"
	where := "LOWER(lessons.title) LIKE ? ESCAPE '\\' OR LOWER(lessons.description) LIKE ? ESCAPE '\\' OR LOWER(lessons.content) LIKE ? ESCAPE '\\'"

	var total int64
	err := dbctx.Conn(ctx, r.db).Model(&entity.Lesson{}).
		Where(where, pattern, pattern, pattern).
		Count(&total).Error
	if err != nil {
		return nil, 0, wrapDBError(err, "count lesson search")
	}

	var views []repository.LessonView
	err = r.viewQuery(ctx).
		Where(where, pattern, pattern, pattern).
		Order("lessons.created_at DESC").Order("lessons.id DESC").
		Limit(limit).Offset(offset).
		Scan(&views).Error
	if err != nil {
		return nil, 0, wrapDBError(err, "search lessons")
	}
	return views, total, nil
}

// escapeLike экранирует спецсимволы LIKE в пользовательском вводе
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
