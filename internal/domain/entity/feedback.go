package entity

import "time"

const (
	MinRating = 1
	MaxRating = 5
)

// Feedback представляет отзыв пользователя об уроке. Один отзыв на пару пользователь-урок
type Feedback struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index;uniqueIndex:idx_user_lesson" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	LessonID  uint      `gorm:"not null;index;uniqueIndex:idx_user_lesson" json:"lesson_id"`
	Lesson    *Lesson   `gorm:"foreignKey:LessonID;constraint:OnDelete:CASCADE" json:"-"`
	Rating    int       `gorm:"not null;check:rating >= 1 AND rating <= 5" json:"rating"`
	Comment   string    `gorm:"type:text;not null;default:''" json:"comment"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Feedback) TableName() string {
	return "feedback"
}

// ValidRating проверяет, что оценка лежит в диапазоне 1..5
func ValidRating(rating int) bool {
	return rating >= MinRating && rating <= MaxRating
}
