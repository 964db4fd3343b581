package repository

import (
	"time"

	"github.com/yourusername/lms-api/internal/domain/entity"
)

// Строки, получаемые JOIN-запросами. Поля без gorm-тегов заполняются по именам колонок.

// LessonView - урок с именем автора
type LessonView struct {
	entity.Lesson
	CreatorUsername *string
}

// QuizSummary - тест с именем автора, названием урока и числом вопросов
type QuizSummary struct {
	entity.Quiz
	CreatorUsername *string
	LessonTitle     *string
	QuestionCount   int64
}

// LeaderboardRow - строка лидерборда теста
type LeaderboardRow struct {
	ResultID    uint
	UserID      uint
	Username    string
	Score       int
	TotalPoints int
	CompletedAt time.Time
}

// UserResultRow - строка истории результатов пользователя
type UserResultRow struct {
	ID              uint
	UserID          uint
	Username        string
	QuizID          uint
	QuizTitle       string
	QuizDescription string
	LessonTitle     *string
	Score           int
	TotalPoints     int
	CompletedAt     time.Time
}

// ResultDetailRow - результат с данными пользователя, теста и урока
type ResultDetailRow struct {
	entity.Result
	Username        string
	Email           string
	QuizTitle       string
	QuizDescription string
	LessonID        *uint
	LessonTitle     *string
}

// QuizStatistics - агрегаты по процентам попыток теста
type QuizStatistics struct {
	TotalAttempts     int64   `json:"total_attempts"`
	AveragePercentage float64 `json:"average_percentage"`
	HighestPercentage float64 `json:"highest_percentage"`
	LowestPercentage  float64 `json:"lowest_percentage"`
}

// FeedbackView - отзыв с именем пользователя и названием урока
type FeedbackView struct {
	entity.Feedback
	Username    string
	LessonTitle string
}

// RatingStats - статистика оценок урока
type RatingStats struct {
	AverageRating   float64
	TotalFeedback   int64
	RatingBreakdown map[int]int64
}
