package repository

import (
	"context"

	"github.com/yourusername/lms-api/internal/domain/entity"
)

// ResultRepository определяет методы для работы с результатами тестов
type ResultRepository interface {
	Create(ctx context.Context, result *entity.Result) error
	GetByID(ctx context.Context, id uint) (*entity.Result, error)
	ExistsForUserAndQuiz(ctx context.Context, userID, quizID uint) (bool, error)
	Delete(ctx context.Context, id uint) error
	DeleteByQuizID(ctx context.Context, quizID uint) error

	// GetLeaderboard возвращает страницу результатов теста: score DESC, completed_at ASC
	GetLeaderboard(ctx context.Context, quizID uint, limit, offset int) ([]LeaderboardRow, int64, error)
	// ListForExport возвращает все результаты теста в порядке лидерборда
	ListForExport(ctx context.Context, quizID uint) ([]LeaderboardRow, error)
	// GetStatistics агрегирует проценты по всем попыткам теста
	GetStatistics(ctx context.Context, quizID uint) (*QuizStatistics, error)
	// GetUserHistory возвращает результаты пользователя от новых к старым
	GetUserHistory(ctx context.Context, userID uint, limit, offset int) ([]UserResultRow, int64, error)
	// GetDetail возвращает результат с данными пользователя, теста и урока
	GetDetail(ctx context.Context, id uint) (*ResultDetailRow, error)
}
