package entity

import (
	"time"
)

// Quiz представляет тест, опционально привязанный к уроку
type Quiz struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"size:200;not null" json:"title"`
	Description string     `gorm:"size:500;not null;default:''" json:"description"`
	LessonID    *uint      `gorm:"index" json:"lesson_id"`
	Lesson      *Lesson    `gorm:"foreignKey:LessonID;constraint:OnDelete:SET NULL" json:"-"`
	CreatedBy   *uint      `json:"created_by"`
	Creator     *User      `gorm:"foreignKey:CreatedBy;constraint:OnDelete:SET NULL" json:"-"`
	Questions   []Question `gorm:"foreignKey:QuizID;constraint:OnDelete:CASCADE" json:"questions,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Quiz) TableName() string {
	return "quizzes"
}

// TotalPoints возвращает сумму баллов всех вопросов
func (q *Quiz) TotalPoints() int {
	total := 0
	for i := range q.Questions {
		total += q.Questions[i].Points
	}
	return total
}
