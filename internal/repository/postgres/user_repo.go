package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/yourusername/lms-api/internal/domain/entity"
	"github.com/yourusername/lms-api/internal/pkg/dbctx"
	apperrors "github.com/yourusername/lms-api/internal/pkg/errors"
)

// UserRepo реализует repository.UserRepository
type UserRepo struct {
	db *gorm.DB
}

// NewUserRepo создает новый репозиторий пользователей
func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db: db}
}

// Create создает нового пользователя
func (r *UserRepo) Create(ctx context.Context, user *entity.User) error {
	return wrapDBError(dbctx.Conn(ctx, r.db).Create(user).Error, "create user")
}

// GetByID возвращает пользователя по ID
func (r *UserRepo) GetByID(ctx context.Context, id uint) (*entity.User, error) {
	var user entity.User
	if err := dbctx.Conn(ctx, r.db).First(&user, id).Error; err != nil {
		return nil, wrapDBError(err, "get user")
	}
	return &user, nil
}

// GetByUsername возвращает пользователя по имени пользователя
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	var user entity.User
	if err := dbctx.Conn(ctx, r.db).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, wrapDBError(err, "get user by username")
	}
	return &user, nil
}

// ExistsByUsernameOrEmail проверяет, занято ли имя пользователя или email
func (r *UserRepo) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	var count int64
	err := dbctx.Conn(ctx, r.db).Model(&entity.User{}).
		Where("username = ? OR email = ?", username, email).
		Count(&count).Error
	if err != nil {
		return false, wrapDBError(err, "check user exists")
	}
	return count > 0, nil
}

// List возвращает пользователей от новых к старым
func (r *UserRepo) List(ctx context.Context, limit, offset int) ([]entity.User, int64, error) {
	db := dbctx.Conn(ctx, r.db)

	var total int64
	if err := db.Model(&entity.User{}).Count(&total).Error; err != nil {
		return nil, 0, wrapDBError(err, "count users")
	}

	var users []entity.User
	err := db.Order("created_at DESC").Order("id DESC").
		Limit(limit).Offset(offset).
		Find(&users).Error
	if err != nil {
		return nil, 0, wrapDBError(err, "list users")
	}
	return users, total, nil
}

// UpdateRole меняет роль пользователя
func (r *UserRepo) UpdateRole(ctx context.Context, userID uint, role entity.Role) error {
	result := dbctx.Conn(ctx, r.db).Model(&entity.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"role":       role,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return wrapDBError(result.Error, "update user role")
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// Count возвращает число пользователей с указанной ролью (или всех, если роль пустая)
func (r *UserRepo) Count(ctx context.Context, role entity.Role) (int64, error) {
	query := dbctx.Conn(ctx, r.db).Model(&entity.User{})
	if role != "" {
		query = query.Where("role = ?", role)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, wrapDBError(err, "count users")
	}
	return count, nil
}

// CountCreatedSince возвращает число пользователей, зарегистрированных начиная с since
func (r *UserRepo) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := dbctx.Conn(ctx, r.db).Model(&entity.User{}).
		Where("created_at >= ?", since).
		Count(&count).Error
	if err != nil {
		return 0, wrapDBError(err, "count new users")
	}
	return count, nil
}
