package repository

import (
	"context"
	"time"

	"github.com/yourusername/lms-api/internal/domain/entity"
)

// UserRepository определяет методы для работы с пользователями
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id uint) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	// ExistsByUsernameOrEmail проверяет, занято ли имя пользователя или email
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	// List возвращает пользователей от новых к старым и общее количество
	List(ctx context.Context, limit, offset int) ([]entity.User, int64, error)
	UpdateRole(ctx context.Context, userID uint, role entity.Role) error
	// Count возвращает число пользователей; role == "" означает всех
	Count(ctx context.Context, role entity.Role) (int64, error)
	CountCreatedSince(ctx context.Context, since time.Time) (int64, error)
}
