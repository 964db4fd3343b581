// Package testutil поднимает in-memory SQLite с той же схемой, что и production,
// и создает тестовые данные для интеграционных тестов репозиториев и сервисов.
package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/yourusername/lms-api/internal/domain/entity"
)

// NewDB открывает отдельную in-memory базу для теста и применяет AutoMigrate.
// Пул ограничен одним соединением, поэтому все запросы внутри транзакции
// должны идти через контекст с транзакцией.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1&_busy_timeout=5000", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&entity.User{},
		&entity.Lesson{},
		&entity.Quiz{},
		&entity.Question{},
		&entity.Result{},
		&entity.Feedback{},
	))
	return db
}

// CreateUser сохраняет пользователя с паролем "password"
func CreateUser(t testing.TB, db *gorm.DB, username string, role entity.Role) *entity.User {
	t.Helper()
	user := &entity.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "password",
		Role:     role,
	}
	require.NoError(t, db.WithContext(context.Background()).Create(user).Error)
	return user
}

// CreateLesson сохраняет урок
func CreateLesson(t testing.TB, db *gorm.DB, title string, authorID *uint) *entity.Lesson {
	t.Helper()
	lesson := &entity.Lesson{
		Title:     title,
		Content:   "Content of " + title,
		Level:     entity.LevelBeginner,
		CreatedBy: authorID,
	}
	require.NoError(t, db.Create(lesson).Error)
	return lesson
}

// CreateQuiz сохраняет тест с вопросами
func CreateQuiz(t testing.TB, db *gorm.DB, title string, lessonID *uint, questions ...entity.Question) *entity.Quiz {
	t.Helper()
	quiz := &entity.Quiz{
		Title:     title,
		LessonID:  lessonID,
		Questions: questions,
	}
	require.NoError(t, db.Omit("Lesson", "Creator").Create(quiz).Error)
	return quiz
}

// TwoQuestionQuiz создает тест из двух вопросов на 1 и 2 балла с правильными ответами 0 и 1
func TwoQuestionQuiz(t testing.TB, db *gorm.DB, lessonID *uint) *entity.Quiz {
	t.Helper()
	return CreateQuiz(t, db, "Go basics", lessonID,
		entity.Question{
			QuestionText:  "Which keyword declares a goroutine?",
			Options:       entity.StringArray{"go", "async", "spawn"},
			CorrectAnswer: 0,
			Points:        1,
		},
		entity.Question{
			QuestionText:  "Which type is safe for concurrent counters?",
			Options:       entity.StringArray{"int", "atomic.Int64", "string"},
			CorrectAnswer: 1,
			Points:        2,
		},
	)
}
