package entity

import "time"

// LessonLevel задает уровень сложности урока
type LessonLevel string

const (
	LevelBeginner     LessonLevel = "beginner"
	LevelIntermediate LessonLevel = "intermediate"
	LevelAdvanced     LessonLevel = "advanced"
)

// Valid сообщает, является ли значение известным уровнем
func (l LessonLevel) Valid() bool {
	switch l {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
		return true
	}
	return false
}

// Lesson представляет учебный урок
type Lesson struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	Title       string      `gorm:"size:200;not null" json:"title"`
	Description string      `gorm:"size:500;not null;default:''" json:"description"`
	Content     string      `gorm:"type:text;not null" json:"content"`
	VideoURL    string      `gorm:"size:500;not null;default:''" json:"video_url"`
	Level       LessonLevel `gorm:"size:20;not null;default:'beginner'" json:"level"`
	CreatedBy   *uint       `gorm:"index" json:"created_by"`
	Creator     *User       `gorm:"foreignKey:CreatedBy;constraint:OnDelete:SET NULL" json:"-"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Lesson) TableName() string {
	return "lessons"
}
